package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
	nodex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

const (
	defaultMaxRevisions  = 1
	defaultHistoryWindow = 5

	endSessionReply   = "Your session has ended. Thank you for contacting support."
	resetSessionReply = "Session reset. How can I help you today?"
)

type Config struct {
	// MaxRevisions caps how many times the reviewer can send a draft back.
	// Zero means the first draft is always final.
	MaxRevisions int

	// HistoryWindow is how many prior turns generators see as context.
	HistoryWindow int
}

// Orchestrator drives the classify, generate, review, finalize cycle for
// one turn at a time per session.
type Orchestrator struct {
	store      statex.Store
	identifier *directoryx.Identifier
	classifier contractx.Classifier
	generator  contractx.Generator
	reviewer   contractx.Reviewer
	publisher  contractx.TurnPublisher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	maxRevisions  int
	historyWindow int

	now func() time.Time
}

func New(
	store statex.Store,
	identifier *directoryx.Identifier,
	classifier contractx.Classifier,
	generator contractx.Generator,
	reviewer contractx.Reviewer,
	publisher contractx.TurnPublisher,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if reviewer == nil {
		return nil, errors.New("reviewer is required")
	}

	maxRevisions := cfg.MaxRevisions
	if maxRevisions < 0 {
		maxRevisions = defaultMaxRevisions
	}
	historyWindow := cfg.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}

	o := &Orchestrator{
		store:         store,
		identifier:    identifier,
		classifier:    classifier,
		generator:     generator,
		reviewer:      reviewer,
		publisher:     publisher,
		maxRevisions:  maxRevisions,
		historyWindow: historyWindow,
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn processes one message in a session and returns the finalized
// result. Turns within one session run strictly one at a time; different
// sessions proceed concurrently.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, text string) (contractx.TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return contractx.TurnResult{}, ErrInvalidSession
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return contractx.TurnResult{}, ErrInvalidMessage
	}

	release, err := o.store.Acquire(ctx, sessionID)
	if err != nil {
		return contractx.TurnResult{}, err
	}
	defer release()

	switch text {
	case contractx.TokenEndSession:
		return o.endSession(ctx, sessionID)
	case contractx.TokenResetSession:
		return o.resetSession(ctx, sessionID)
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return o.recover(ctx, sessionID, text, err)
	}
	return out.Result, nil
}

func (o *Orchestrator) endSession(ctx context.Context, sessionID string) (contractx.TurnResult, error) {
	if _, err := o.store.GetOrCreate(ctx, sessionID); err != nil {
		return contractx.TurnResult{}, err
	}
	if err := o.store.Terminate(ctx, sessionID); err != nil {
		return contractx.TurnResult{}, err
	}
	log.Info().Str("session_id", sessionID).Msg("session terminated")
	return contractx.TurnResult{
		Response: endSessionReply,
		Category: contractx.CategoryGeneral,
		State:    contractx.TurnApproved,
	}, nil
}

func (o *Orchestrator) resetSession(ctx context.Context, sessionID string) (contractx.TurnResult, error) {
	if _, err := o.store.GetOrCreate(ctx, sessionID); err != nil {
		return contractx.TurnResult{}, err
	}
	if err := o.store.Reset(ctx, sessionID); err != nil {
		return contractx.TurnResult{}, err
	}
	log.Info().Str("session_id", sessionID).Msg("session reset")
	return contractx.TurnResult{
		Response: resetSessionReply,
		Category: contractx.CategoryGeneral,
		State:    contractx.TurnApproved,
	}, nil
}

// recover maps a failed turn to the safe fallback. Validation failures and
// cancellations pass through; anything else is logged, recorded as an error
// turn, and hidden from the caller.
func (o *Orchestrator) recover(ctx context.Context, sessionID, text string, cause error) (contractx.TurnResult, error) {
	switch {
	case errors.Is(cause, ErrInvalidMessage),
		errors.Is(cause, ErrInvalidSession),
		errors.Is(cause, contractx.ErrSessionTerminated),
		errors.Is(cause, statex.ErrSessionNotFound):
		return contractx.TurnResult{}, cause
	}
	if ctx.Err() != nil {
		return contractx.TurnResult{}, cause
	}

	log.Error().
		Err(cause).
		Str("session_id", sessionID).
		Msg("turn failed, returning safe fallback")

	turn := statex.NewTurn(text, o.now())
	turn.FinalResponse = contractx.SafeFallbackResponse
	turn.State = contractx.TurnError
	if err := o.store.Append(ctx, sessionID, turn); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("error turn not recorded")
	}

	return contractx.TurnResult{
		Response: contractx.SafeFallbackResponse,
		State:    contractx.TurnError,
	}, nil
}
