package ports

import (
	"context"
	"encoding/json"

	"github.com/aretw0/souqra/pkg/domain"
)

// StartRequest is the input of a new session.
type StartRequest struct {
	Brief domain.Brief
	Owner string
}

// Controller is the session-facing API used by the transport adapters (HTTP, MCP, CLI).
type Controller interface {
	// Start creates a session and runs it to its first pause.
	Start(ctx context.Context, req StartRequest) (*domain.State, error)

	// SubmitFeedback writes a selection and runs to the next pause or completion.
	// raw may be a full object, a name/style string or an index into the candidates.
	SubmitFeedback(ctx context.Context, sessionID string, field domain.Field, raw json.RawMessage) (*domain.State, error)

	// Resume continues a session without new input (e.g. after a crash mid-run).
	Resume(ctx context.Context, sessionID string) (*domain.State, error)

	// Retry clears the error marker of a failed step and runs it again.
	Retry(ctx context.Context, sessionID string) (*domain.State, error)

	// Session returns the current snapshot.
	Session(ctx context.Context, sessionID string) (*domain.State, error)

	// Sessions lists the stored session IDs.
	Sessions(ctx context.Context) ([]string, error)

	// Kits lists completed sessions of an owner; all owners when owner is empty.
	Kits(ctx context.Context, owner string) ([]domain.LaunchKit, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error
}
