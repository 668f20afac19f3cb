package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
)

// Review scores the current draft and records it as a draft version on the
// turn. Reviewer failures are coerced to approval so a broken reviewer can
// never spin the revision cycle.
func Review(ctx context.Context, in *GraphState, reviewer contractx.Reviewer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if reviewer == nil {
		return nil, fmt.Errorf("%w: reviewer is required", contractx.ErrValidation)
	}

	verdict, err := reviewer.Review(ctx, contractx.ReviewRequest{
		Query:    in.Text,
		Draft:    in.Draft,
		Category: in.Classification.Category,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("reviewer failed, approving current draft")
		verdict = contractx.Verdict{
			Score:    0,
			Issues:   []string{"Review unavailable"},
			Decision: contractx.DecisionApprove,
		}
	}
	verdict = clampVerdict(verdict)

	in.Verdict = verdict
	in.Turn.Drafts = append(in.Turn.Drafts, statex.DraftVersion{
		Text:   in.Draft,
		Score:  verdict.Score,
		Issues: verdict.Issues,
	})
	return in, nil
}

// ShouldRevise is the branch condition after review: another generate pass
// only happens on a REVISE decision with budget remaining.
func ShouldRevise(in *GraphState) bool {
	if in == nil {
		return false
	}
	return in.Verdict.Decision == contractx.DecisionRevise && in.RevisionCount < in.MaxRevisions
}

func clampVerdict(v contractx.Verdict) contractx.Verdict {
	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 100 {
		v.Score = 100
	}
	if v.Decision != contractx.DecisionRevise {
		v.Decision = contractx.DecisionApprove
	}
	return v
}
