package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

// Generate produces a draft for the current pass. On the first pass
// Feedback is empty; revision passes carry the reviewer's issues so the
// generator can amend the prior draft deterministically.
func Generate(ctx context.Context, in *GraphState, generator contractx.Generator) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator is required", contractx.ErrValidation)
	}

	draft, err := generator.Generate(ctx, contractx.GenerateRequest{
		Query:                   in.Text,
		Category:                in.Classification.Category,
		Customer:                in.ActiveCustomer(),
		History:                 in.History,
		Feedback:                in.Feedback,
		IdentificationAttempted: in.Identity.Attempted,
	})
	if err != nil {
		return nil, fmt.Errorf("generate draft category=%s: %w", in.Classification.Category, err)
	}

	in.Draft = draft
	return in, nil
}
