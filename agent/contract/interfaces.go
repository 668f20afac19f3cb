package contract

import "context"

// Classifier assigns a category to raw query text. It never fails: when no
// signal matches it answers GENERAL.
type Classifier interface {
	Classify(ctx context.Context, query string) Classification
}

// Generator produces a draft response for one category.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Reviewer scores a draft against the original query. Implementations are
// expected to be pure; an error or out-of-range verdict is coerced to
// approval by the orchestrator so a broken reviewer can never loop forever.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (Verdict, error)
}

// TurnPublisher receives finalized turns for downstream consumers.
// Publish failures must be contained by the implementation.
type TurnPublisher interface {
	PublishTurn(ctx context.Context, sessionID string, result TurnResult) error
}
