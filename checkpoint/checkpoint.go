// Package checkpoint persists one snapshot per session: the full
// conversation state plus the graph's next-node pointer. A saved record is
// sufficient to resume a suspended session with an identical continuation.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for a session id.
var ErrNotFound = errors.New("checkpoint: not found")

// Record is the persisted state of one session. Conversation holds the
// serialized core.Conversation; Next is the engine's node pointer ("" when
// the session idles awaiting user input).
type Record struct {
	SessionID    string          `json:"session_id"`
	Conversation json.RawMessage `json:"conversation"`
	Next         string          `json:"next"`
	Terminated   bool            `json:"terminated"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Clone returns a deep copy safe for independent mutation.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Conversation = make(json.RawMessage, len(r.Conversation))
	copy(clone.Conversation, r.Conversation)
	return &clone
}

// Store persists session checkpoints keyed by session id. Save overwrites
// the previous record for the session; Load returns ErrNotFound for unknown
// ids.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, sessionID string) (*Record, error)
	Delete(ctx context.Context, sessionID string) error
}
