package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
)

var (
	ErrInvalidSession  = errors.New("session id is empty")
	ErrTurnNotTerminal = errors.New("turn has no terminal state")
	ErrTurnCorrupt     = errors.New("turn violates draft invariants")
)

// DraftVersion is one generate→review round-trip inside a turn.
type DraftVersion struct {
	Text   string   `json:"text"`
	Score  int      `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// Turn is one request/response cycle. It is assembled by the orchestrator
// while the turn runs and is immutable once it carries a terminal state.
type Turn struct {
	ID            uuid.UUID           `json:"id"`
	RawQuery      string              `json:"raw_query"`
	Category      contractx.Category  `json:"category"`
	Drafts        []DraftVersion      `json:"drafts"`
	FinalResponse string              `json:"final_response,omitempty"`
	State         contractx.TurnState `json:"state,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewTurn(rawQuery string, now time.Time) Turn {
	return Turn{
		ID:        uuid.New(),
		RawQuery:  rawQuery,
		CreatedAt: now.UTC(),
	}
}

// Finalized reports whether the turn reached a terminal state.
func (t *Turn) Finalized() bool {
	return t.State != ""
}

// Validate checks the turn invariants: final response set iff terminal,
// and category assigned for every finalized non-error turn.
func (t *Turn) Validate() error {
	if (t.FinalResponse != "") != t.Finalized() {
		return fmt.Errorf("%w: final_response/state mismatch", ErrTurnCorrupt)
	}
	if t.Finalized() && t.State != contractx.TurnError && !t.Category.Valid() {
		return fmt.Errorf("%w: finalized turn has no category", ErrTurnCorrupt)
	}
	return nil
}

// Session is the per-conversation context. It is owned by the Store and
// mutated only by the orchestrator while it holds the session's turn lock.
type Session struct {
	ID         string               `json:"id"`
	CustomerID string               `json:"customer_id,omitempty"`
	Customer   *directoryx.Customer `json:"customer,omitempty"`
	Turns      []Turn               `json:"turns,omitempty"`
	Terminated bool                 `json:"terminated,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		ID:        sessionID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// BindCustomer attaches a customer record. Once a session is bound it stays
// bound until reset; later turns do not rebind.
func (s *Session) BindCustomer(c *directoryx.Customer, now time.Time) {
	if s == nil || c == nil || s.CustomerID != "" {
		return
	}
	s.CustomerID = c.ID
	s.Customer = c
	s.Touch(now)
}

// Reset clears history, customer binding, and the terminated flag.
func (s *Session) Reset(now time.Time) {
	s.CustomerID = ""
	s.Customer = nil
	s.Turns = nil
	s.Terminated = false
	s.Touch(now)
}

// History returns the most recent limit turns as generator context entries,
// oldest first. limit <= 0 means everything.
func (s *Session) History(limit int) []contractx.HistoryEntry {
	if s == nil || len(s.Turns) == 0 {
		return nil
	}
	turns := s.Turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	entries := make([]contractx.HistoryEntry, 0, len(turns))
	for i := range turns {
		entries = append(entries, contractx.HistoryEntry{
			Query:    turns[i].RawQuery,
			Response: turns[i].FinalResponse,
			Category: turns[i].Category,
		})
	}
	return entries
}
