package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

// Classify assigns the turn's category. It runs exactly once per turn;
// revision passes keep the category fixed.
func Classify(ctx context.Context, in *GraphState, classifier contractx.Classifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", contractx.ErrValidation)
	}

	classification := classifier.Classify(ctx, in.Text)
	if !classification.Category.Valid() {
		log.Warn().
			Str("session_id", in.SessionID).
			Str("category", string(classification.Category)).
			Msg("classifier returned unknown category, using GENERAL")
		classification.Category = contractx.CategoryGeneral
		classification.Source = contractx.SourceFallback
	}

	in.Classification = classification
	in.Turn.Category = classification.Category
	return in, nil
}
