// Package generator holds one drafting strategy per support category.
// Dispatch is a closed table: adding a category is a table entry plus one
// strategy, never a new subclass hierarchy.
package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

type strategyPair struct {
	template *TemplateStrategy
	model    *ModelStrategy
}

// Pool routes generate requests to the strategy for the assigned category.
// The enriched model path is optional per category; when it is missing or
// failing the deterministic template path answers instead, so Generate
// only errors on an unknown category.
type Pool struct {
	strategies map[contractx.Category]*strategyPair
}

type PoolOption func(*Pool)

// WithModelStrategy enables the enriched path for the strategy's category.
func WithModelStrategy(m *ModelStrategy) PoolOption {
	return func(p *Pool) {
		if m == nil {
			return
		}
		if pair, ok := p.strategies[m.category]; ok {
			pair.model = m
		}
	}
}

func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		strategies: map[contractx.Category]*strategyPair{
			contractx.CategoryBilling:   {template: NewTemplateStrategy(contractx.CategoryBilling)},
			contractx.CategoryTechnical: {template: NewTemplateStrategy(contractx.CategoryTechnical)},
			contractx.CategoryGeneral:   {template: NewTemplateStrategy(contractx.CategoryGeneral)},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Pool) Generate(ctx context.Context, req contractx.GenerateRequest) (string, error) {
	pair, ok := p.strategies[req.Category]
	if !ok {
		return "", fmt.Errorf("%w: no generator for category=%q", contractx.ErrValidation, req.Category)
	}

	if pair.model != nil {
		draft, err := pair.model.Generate(ctx, req)
		if err == nil {
			return draft, nil
		}
		log.Warn().
			Err(err).
			Str("category", string(req.Category)).
			Msg("model generation failed, using template path")
	}

	return pair.template.Render(req), nil
}
