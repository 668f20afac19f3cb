// Package classifier routes raw query text to a support category. The
// primary path is deterministic keyword matching; an optional model
// fallback handles queries the rules cannot place.
package classifier

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

// Vocabulary maps each category to the phrases that signal it. It is
// configuration data: swapping it never touches the state machine.
type Vocabulary map[contractx.Category][]string

// DefaultVocabulary returns the stock keyword sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		contractx.CategoryBilling: {
			"billing", "payment", "charge", "invoice", "refund", "money", "cost", "price",
		},
		contractx.CategoryTechnical: {
			"bug", "error", "technical", "feature", "system", "not working", "broken",
		},
	}
}

// precedence breaks ties deterministically: BILLING beats TECHNICAL beats
// the GENERAL catch-all.
var precedence = []contractx.Category{
	contractx.CategoryBilling,
	contractx.CategoryTechnical,
}

type Classifier struct {
	vocab    Vocabulary
	fallback *ModelFallback
}

// New builds a rule classifier. fallback may be nil for fully offline use.
func New(vocab Vocabulary, fallback *ModelFallback) *Classifier {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	return &Classifier{vocab: vocab, fallback: fallback}
}

// Classify never fails: when neither rules nor the fallback produce a
// category, the query is GENERAL.
func (c *Classifier) Classify(ctx context.Context, query string) contractx.Classification {
	lower := strings.ToLower(query)

	for _, category := range precedence {
		for _, keyword := range c.vocab[category] {
			if strings.Contains(lower, keyword) {
				return contractx.Classification{
					Category:  category,
					Rationale: "matched keyword: " + keyword,
					Source:    contractx.SourceRules,
				}
			}
		}
	}

	if c.fallback != nil {
		if result, err := c.fallback.Classify(ctx, query); err == nil {
			return result
		} else {
			log.Warn().Err(err).Msg("model classification failed, defaulting to GENERAL")
		}
	}

	return contractx.Classification{
		Category:  contractx.CategoryGeneral,
		Rationale: "no category signal matched",
		Source:    contractx.SourceFallback,
	}
}
