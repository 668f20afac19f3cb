package directory

import (
	"context"
	"errors"
	"testing"
)

type failingDirectory struct{}

func (failingDirectory) FindByID(ctx context.Context, id string) (*Customer, error) {
	return nil, errors.New("connection refused")
}

func (failingDirectory) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	return nil, errors.New("connection refused")
}

func (failingDirectory) FindByName(ctx context.Context, name string) (*Customer, error) {
	return nil, errors.New("connection refused")
}

func TestIdentifyByAccountID(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "My user ID is USER010234, I was charged twice")
	if identity.Customer == nil || identity.Customer.Name != "Amanda Foster" {
		t.Fatalf("expected Amanda Foster, got %+v", identity.Customer)
	}
	if !identity.Attempted {
		t.Fatal("resolving an id counts as an identification attempt")
	}
}

func TestIdentifyByEmail(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "you can reach me at amanda.foster@marketing.pro")
	if identity.Customer == nil || identity.Customer.ID != "USER010234" {
		t.Fatalf("expected USER010234, got %+v", identity.Customer)
	}
}

func TestIdentifyUnknownAccountID(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "my account id is USER999999")
	if identity.Customer != nil {
		t.Fatalf("unknown id must not resolve, got %+v", identity.Customer)
	}
	if !identity.Attempted {
		t.Fatal("an unknown id is still an identification attempt")
	}
}

func TestIdentifyByFullName(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "My name is Mike Johnson and I want to upgrade my account")
	if identity.Customer == nil || identity.Customer.ID != "USER005654" {
		t.Fatalf("expected USER005654, got %+v", identity.Customer)
	}
	if !identity.Attempted {
		t.Fatal("resolving a name counts as an identification attempt")
	}
}

func TestIdentifyByFirstName(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "this is amanda, my renewal failed")
	if identity.Customer == nil || identity.Customer.ID != "USER010234" {
		t.Fatalf("a unique first name must resolve, got %+v", identity.Customer)
	}
}

func TestIdentifyByUnknownName(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "my name is kuldeep")
	if identity.Customer != nil {
		t.Fatalf("an unknown name must not resolve, got %+v", identity.Customer)
	}
	if !identity.Attempted {
		t.Fatal("an unknown name is still an identification attempt")
	}
}

func TestIdentifyNoAttempt(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "I have an issue of payment")
	if identity.Customer != nil || identity.Attempted {
		t.Fatalf("plain query must not look like identification, got %+v", identity)
	}
}

func TestIdentifyFilteredNamePhrases(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(MustEmbedded())
	identity := id.Identify(context.Background(), "I'm having trouble with checkout")
	if identity.Attempted {
		t.Fatal("'I'm having ...' is not an identification attempt")
	}
}

func TestIdentifyDirectoryFailureDowngrades(t *testing.T) {
	t.Parallel()

	id := NewIdentifier(failingDirectory{})
	identity := id.Identify(context.Background(), "My user ID is USER010234")
	if identity.Customer != nil {
		t.Fatalf("directory failure must leave the turn unidentified, got %+v", identity.Customer)
	}
	if !identity.Attempted {
		t.Fatal("the attempt flag is independent of directory health")
	}
}
