package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

func finalizedTurn(query string, category contractx.Category, now time.Time) Turn {
	turn := NewTurn(query, now)
	turn.Category = category
	turn.Drafts = []DraftVersion{{Text: "draft", Score: 100}}
	turn.FinalResponse = "final response for " + query
	turn.State = contractx.TurnApproved
	return turn
}

func TestGetOrCreateExactlyOnce(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	const workers = 50
	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			sess, err := store.GetOrCreate(context.Background(), "s1")
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent first access must yield one session instance")
		}
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}
}

func TestAppendRejectsNonTerminalTurn(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.GetOrCreate(context.Background(), "s1"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	turn := NewTurn("hello", time.Now())
	if err := store.Append(context.Background(), "s1", turn); !errors.Is(err, ErrTurnNotTerminal) {
		t.Fatalf("expected ErrTurnNotTerminal, got %v", err)
	}
}

func TestAppendRejectsCorruptTurn(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.GetOrCreate(context.Background(), "s1"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	turn := NewTurn("hello", time.Now())
	turn.State = contractx.TurnApproved
	turn.Category = contractx.CategoryGeneral
	// Terminal state without a final response.
	if err := store.Append(context.Background(), "s1", turn); !errors.Is(err, ErrTurnCorrupt) {
		t.Fatalf("expected ErrTurnCorrupt, got %v", err)
	}
}

func TestAppendUnknownSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	turn := finalizedTurn("hello", contractx.CategoryGeneral, time.Now())
	if err := store.Append(context.Background(), "missing", turn); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestHistoryWindow(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.GetOrCreate(ctx, "s1"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	now := time.Now()
	for _, q := range []string{"first", "second", "third"} {
		if err := store.Append(ctx, "s1", finalizedTurn(q, contractx.CategoryGeneral, now)); err != nil {
			t.Fatalf("Append(%s) error = %v", q, err)
		}
	}

	entries, err := store.History(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Query != "second" || entries[1].Query != "third" {
		t.Fatalf("window must keep the most recent turns oldest first, got %+v", entries)
	}

	all, err := store.History(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("limit 0 must return everything, got %d", len(all))
	}
}

func TestResetAndTerminate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	sess, err := store.GetOrCreate(ctx, "s1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if err := store.Append(ctx, "s1", finalizedTurn("hello", contractx.CategoryGeneral, time.Now())); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Terminate(ctx, "s1"); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	if !sess.Terminated {
		t.Fatal("expected terminated session")
	}

	if err := store.Reset(ctx, "s1"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if sess.Terminated || len(sess.Turns) != 0 {
		t.Fatalf("reset must clear state, got terminated=%v turns=%d", sess.Terminated, len(sess.Turns))
	}
}

func TestAcquireSerializesTurns(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	release, err := store.Acquire(ctx, "s1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		second, err := store.Acquire(ctx, "s1")
		if err != nil {
			t.Errorf("second Acquire() error = %v", err)
			close(acquired)
			return
		}
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire must proceed after release")
	}

	// Double release is a no-op.
	release()
}

func TestEvictExpiredSkipsActiveSessions(t *testing.T) {
	t.Parallel()

	current := time.Now()
	store := NewMemoryStore(
		WithTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	if _, err := store.GetOrCreate(ctx, "idle"); err != nil {
		t.Fatalf("GetOrCreate(idle) error = %v", err)
	}
	release, err := store.Acquire(ctx, "active")
	if err != nil {
		t.Fatalf("Acquire(active) error = %v", err)
	}

	current = current.Add(2 * time.Minute)
	if evicted := store.EvictExpired(); evicted != 1 {
		t.Fatalf("expected one eviction, got %d", evicted)
	}
	if store.Len() != 1 {
		t.Fatalf("active session must survive, got %d sessions", store.Len())
	}

	release()
	current = current.Add(2 * time.Minute)
	if evicted := store.EvictExpired(); evicted != 1 {
		t.Fatalf("released session should expire, got %d evictions", evicted)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestEvictDisabledWithoutTTL(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(WithTTL(0))
	if _, err := store.GetOrCreate(context.Background(), "s1"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if evicted := store.EvictExpired(); evicted != 0 {
		t.Fatalf("eviction must be disabled, got %d", evicted)
	}
}
