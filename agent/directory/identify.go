package directory

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	accountIDPattern = regexp.MustCompile(`(?i)\bUSER\d{6}\b`)
	labeledIDPattern = regexp.MustCompile(`(?i)(?:account|id)[:\s]+([A-Z0-9]{6,})`)
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	namePattern      = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|this is)\s+([A-Za-z]+(?:\s+[A-Za-z]+){0,2})`)
)

var identificationHints = []string{
	"my account", "my name", "i am", "this is", "my email",
	"account id", "user id", "my profile", "logged in as",
}

// Identity is the outcome of scanning a query for customer identifiers.
type Identity struct {
	Customer *Customer

	// Attempted is set when the query looked like an identification attempt
	// (a name, an unknown account id, ...) even though nothing resolved.
	Attempted bool
}

// Identifier extracts account ids, email addresses, and introduced names
// from raw query text and resolves them against a Directory. A directory
// failure downgrades to "no customer identified"; it is never fatal to
// the turn.
type Identifier struct {
	dir Directory
}

func NewIdentifier(dir Directory) *Identifier {
	return &Identifier{dir: dir}
}

func (i *Identifier) Identify(ctx context.Context, query string) Identity {
	out := Identity{Attempted: i.IsIdentificationAttempt(query)}
	if i == nil || i.dir == nil {
		return out
	}

	if id := extractAccountID(query); id != "" {
		out.Attempted = true
		if c := i.lookup(ctx, func() (*Customer, error) { return i.dir.FindByID(ctx, id) }); c != nil {
			out.Customer = c
			return out
		}
	}

	if email := extractEmail(query); email != "" {
		out.Attempted = true
		if c := i.lookup(ctx, func() (*Customer, error) { return i.dir.FindByEmail(ctx, email) }); c != nil {
			out.Customer = c
			return out
		}
	}

	if name := extractName(query); name != "" {
		out.Attempted = true
		if c := i.lookup(ctx, func() (*Customer, error) { return i.dir.FindByName(ctx, name) }); c != nil {
			out.Customer = c
		}
	}
	return out
}

func (i *Identifier) lookup(ctx context.Context, find func() (*Customer, error)) *Customer {
	c, err := find()
	if err == nil {
		return c
	}
	if !errors.Is(err, ErrCustomerNotFound) && !errors.Is(err, ErrEmptyLookupKey) {
		log.Warn().Err(err).Msg("customer directory unavailable, continuing unidentified")
	}
	return nil
}

// IsIdentificationAttempt reports whether the query contains phrasing that
// usually accompanies an attempt to identify an account.
func (i *Identifier) IsIdentificationAttempt(query string) bool {
	lower := strings.ToLower(query)
	for _, hint := range identificationHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func extractAccountID(query string) string {
	if m := accountIDPattern.FindString(query); m != "" {
		return strings.ToUpper(m)
	}
	if m := labeledIDPattern.FindStringSubmatch(query); len(m) == 2 {
		return strings.ToUpper(m[1])
	}
	return ""
}

func extractEmail(query string) string {
	return emailPattern.FindString(query)
}

func extractName(query string) string {
	m := namePattern.FindStringSubmatch(query)
	if len(m) != 2 {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if name == "" || len(strings.Fields(name)) > 3 {
		return ""
	}
	for _, word := range []string{"calling", "having", "looking", "trying"} {
		if strings.Contains(strings.ToLower(name), word) {
			return ""
		}
	}
	return name
}
