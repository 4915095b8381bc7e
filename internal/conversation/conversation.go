package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Turn is one persisted question/answer exchange. Turns are immutable and
// append-only per session.
type Turn struct {
	SessionID      string
	UserQuery      string
	SystemResponse string
	CreatedAt      time.Time
}

// Store persists conversation turns. RecentTurns returns at most limit turns
// in chronological order (oldest first), so prompts read top-to-bottom like
// the conversation did.
type Store interface {
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	AppendTurn(ctx context.Context, sessionID, userQuery, systemResponse string) error
}

// NewSessionID mints an opaque session identifier for callers that start a
// fresh conversation.
func NewSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "sess_" + hex[:12]
}
