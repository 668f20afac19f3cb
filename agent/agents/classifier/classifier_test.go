package classifier

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

func TestClassifyKeywordRouting(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)

	cases := []struct {
		name  string
		query string
		want  contractx.Category
	}{
		{name: "billing keyword", query: "I have an issue of payment", want: contractx.CategoryBilling},
		{name: "billing refund", query: "when will my REFUND arrive", want: contractx.CategoryBilling},
		{name: "technical broken", query: "the dashboard is broken again", want: contractx.CategoryTechnical},
		{name: "technical error", query: "I keep seeing an error on login", want: contractx.CategoryTechnical},
		{name: "general greeting", query: "my name is kuldeep", want: contractx.CategoryGeneral},
		{name: "general question", query: "what plans do you offer", want: contractx.CategoryGeneral},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(context.Background(), tc.query)
			if got.Category != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.query, got.Category, tc.want)
			}
		})
	}
}

func TestClassifyBillingPrecedence(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	got := c.Classify(context.Background(), "the payment system shows an error")
	if got.Category != contractx.CategoryBilling {
		t.Fatalf("billing must win over technical, got %s", got.Category)
	}
	if got.Source != contractx.SourceRules {
		t.Fatalf("expected rules source, got %s", got.Source)
	}
}

func TestClassifyFallbackSource(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	got := c.Classify(context.Background(), "good morning")
	if got.Category != contractx.CategoryGeneral {
		t.Fatalf("expected GENERAL, got %s", got.Category)
	}
	if got.Source != contractx.SourceFallback {
		t.Fatalf("expected fallback source, got %s", got.Source)
	}
}

func TestClassifyCustomVocabulary(t *testing.T) {
	t.Parallel()

	c := New(Vocabulary{
		contractx.CategoryTechnical: {"outage"},
	}, nil)

	got := c.Classify(context.Background(), "is there an outage right now")
	if got.Category != contractx.CategoryTechnical {
		t.Fatalf("custom vocabulary must route, got %s", got.Category)
	}

	got = c.Classify(context.Background(), "I need a refund")
	if got.Category != contractx.CategoryGeneral {
		t.Fatalf("custom vocabulary replaces the defaults, got %s", got.Category)
	}
}
