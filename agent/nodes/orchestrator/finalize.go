package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
)

// Revise consumes the verdict and arms the next generate pass with the
// reviewer's issues. The category stays fixed.
func Revise(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.RevisionCount++
	in.Feedback = append([]string(nil), in.Verdict.Issues...)
	log.Debug().
		Str("session_id", in.SessionID).
		Int("revision", in.RevisionCount).
		Strs("issues", in.Feedback).
		Msg("revision pass requested")
	return in, nil
}

// Finalize stamps the terminal state on the turn, commits the staged
// customer binding, persists the turn, and emits the turn event. A
// cancelled context aborts before any of that, so a half-finished turn
// never reaches session history and never binds a customer.
func Finalize(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	publisher contractx.TurnPublisher,
) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return GraphOutput{}, err
	}

	if in.Session != nil {
		in.Session.BindCustomer(in.Identity.Customer, in.Now)
	}

	state := contractx.TurnApproved
	if in.Verdict.Decision == contractx.DecisionRevise {
		state = contractx.TurnBudgetExhausted
	}

	in.Turn.FinalResponse = in.Draft
	in.Turn.State = state
	if err := store.Append(ctx, in.SessionID, in.Turn); err != nil {
		return GraphOutput{}, fmt.Errorf("append turn session=%s: %w", in.SessionID, err)
	}

	result := contractx.TurnResult{
		Response: in.Turn.FinalResponse,
		Category: in.Turn.Category,
		Score:    in.Verdict.Score,
		State:    state,
	}

	if publisher != nil {
		if err := publisher.PublishTurn(ctx, in.SessionID, result); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", in.SessionID).
				Msg("turn event publish failed")
		}
	}

	log.Info().
		Str("session_id", in.SessionID).
		Str("turn_id", in.Turn.ID.String()).
		Str("category", string(result.Category)).
		Str("state", string(state)).
		Int("score", result.Score).
		Int("drafts", len(in.Turn.Drafts)).
		Msg("turn finalized")

	return GraphOutput{Result: result}, nil
}
