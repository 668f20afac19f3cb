package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Result contractx.TurnResult
}

// GraphState is threaded through every node of one turn. The generate and
// review nodes run repeatedly when the reviewer asks for a revision, so the
// revision counter and feedback live here rather than in the turn.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	MaxRevisions  int
	HistoryWindow int

	Session  *statex.Session
	Turn     statex.Turn
	History  []contractx.HistoryEntry
	Identity directoryx.Identity

	Classification contractx.Classification

	Draft         string
	Feedback      []string
	Verdict       contractx.Verdict
	RevisionCount int
}

// ActiveCustomer is the customer this turn may reference: the session's
// committed binding, or the one staged by identification this turn.
func (s *GraphState) ActiveCustomer() *directoryx.Customer {
	if s.Session != nil && s.Session.Customer != nil {
		return s.Session.Customer
	}
	return s.Identity.Customer
}

func ValidateRequest(in GraphInput, nowFn func() time.Time, maxRevisions, historyWindow int) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	if maxRevisions < 0 {
		maxRevisions = 0
	}

	return &GraphState{
		SessionID:     sessionID,
		Text:          text,
		Now:           nowFn().UTC(),
		MaxRevisions:  maxRevisions,
		HistoryWindow: historyWindow,
	}, nil
}
