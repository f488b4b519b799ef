// Package conversation provides the durable, append-only log of chat turns,
// queryable per session.
//
// Sessions are created per conversation; the session id is the join key for
// turns and is supplied by callers on subsequent operations. The store does
// not enforce that a turn's session exists; integrity is a contract with
// the caller, not a database guarantee.
package conversation

import "time"

// Role constants define valid turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultRecentLimit is the number of turns Recent returns when callers use
// the default (about five exchanges).
const DefaultRecentLimit = 10

// Session represents one conversation session.
type Session struct {
	ID        string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is a single chat turn. Turns are append-only; for a fixed session
// they are totally ordered by CreatedAt (insertion id breaks ties).
type Turn struct {
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
