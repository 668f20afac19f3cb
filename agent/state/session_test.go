package state

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
)

func TestTurnValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()

	open := NewTurn("hello", now)
	if open.Finalized() {
		t.Fatal("fresh turn must not be finalized")
	}
	if err := open.Validate(); err != nil {
		t.Fatalf("open turn must validate, got %v", err)
	}

	missingResponse := NewTurn("hello", now)
	missingResponse.State = contractx.TurnApproved
	missingResponse.Category = contractx.CategoryGeneral
	if err := missingResponse.Validate(); !errors.Is(err, ErrTurnCorrupt) {
		t.Fatalf("terminal state without response must be corrupt, got %v", err)
	}

	missingState := NewTurn("hello", now)
	missingState.FinalResponse = "done"
	if err := missingState.Validate(); !errors.Is(err, ErrTurnCorrupt) {
		t.Fatalf("response without terminal state must be corrupt, got %v", err)
	}

	missingCategory := NewTurn("hello", now)
	missingCategory.FinalResponse = "done"
	missingCategory.State = contractx.TurnApproved
	if err := missingCategory.Validate(); !errors.Is(err, ErrTurnCorrupt) {
		t.Fatalf("finalized turn without category must be corrupt, got %v", err)
	}

	errorTurn := NewTurn("hello", now)
	errorTurn.FinalResponse = contractx.SafeFallbackResponse
	errorTurn.State = contractx.TurnError
	if err := errorTurn.Validate(); err != nil {
		t.Fatalf("error turns carry no category, got %v", err)
	}
}

func TestSessionBindCustomerOnce(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess := NewSession("s1", now)

	first, err := directoryx.MustEmbedded().FindByID(context.Background(), "USER010234")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	second, err := directoryx.MustEmbedded().FindByID(context.Background(), "USER001234")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	sess.BindCustomer(first, now)
	if sess.CustomerID != "USER010234" {
		t.Fatalf("expected binding to USER010234, got %s", sess.CustomerID)
	}

	sess.BindCustomer(second, now)
	if sess.CustomerID != "USER010234" {
		t.Fatalf("binding must not be overwritten, got %s", sess.CustomerID)
	}

	sess.Reset(now)
	if sess.CustomerID != "" || sess.Customer != nil {
		t.Fatal("reset must drop the customer binding")
	}
	sess.BindCustomer(second, now)
	if sess.CustomerID != "USER001234" {
		t.Fatalf("rebinding after reset must work, got %s", sess.CustomerID)
	}
}

func TestSessionHistoryOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess := NewSession("s1", now)
	for _, q := range []string{"a", "b", "c"} {
		turn := finalizedTurn(q, contractx.CategoryGeneral, now)
		sess.Turns = append(sess.Turns, turn)
	}

	entries := sess.History(2)
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Query != "b" || entries[1].Query != "c" {
		t.Fatalf("history must be oldest first within the window, got %+v", entries)
	}
	if entries[1].Response != "final response for c" {
		t.Fatalf("history must carry final responses, got %+v", entries[1])
	}

	if got := sess.History(-1); len(got) != 3 {
		t.Fatalf("negative limit returns everything, got %d", len(got))
	}
}
