package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
)

// LoadSession resolves the session and snapshots its history for the
// generators. The caller already holds the session's turn lock, so reading
// session fields directly is safe here.
func LoadSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.GetOrCreate(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", in.SessionID, err)
	}
	if sess.Terminated {
		return nil, fmt.Errorf("session %s: %w", in.SessionID, contractx.ErrSessionTerminated)
	}

	in.Session = sess
	in.History = sess.History(in.HistoryWindow)
	in.Turn = statex.NewTurn(in.Text, in.Now)
	return in, nil
}

// IdentifyCustomer scans the query for account ids, emails, or names and
// stages the resolved customer on the graph state. The session binding is
// committed in Finalize, so a turn that never finishes leaves the session
// untouched. Later turns reuse an existing binding without re-scanning.
func IdentifyCustomer(ctx context.Context, in *GraphState, identifier *directoryx.Identifier) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if in.Session.Customer != nil {
		in.Identity = directoryx.Identity{Customer: in.Session.Customer}
		return in, nil
	}

	if identifier == nil {
		return in, nil
	}

	in.Identity = identifier.Identify(ctx, in.Text)
	return in, nil
}
