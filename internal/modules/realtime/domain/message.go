package domain

import (
	"encoding/json"
	"time"
)

// Frame is the wire envelope used in both directions on a socket.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// InboundFrame is a client frame whose data is decoded by the command that handles it.
type InboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ChangeEvent describes one domain mutation to fan out. It is produced by a
// request handler after the store write succeeded and consumed once by the hub.
type ChangeEvent struct {
	Kind         string    `json:"kind"`
	Payload      any       `json:"payload"`
	Topic        string    `json:"topic,omitempty"`
	ActingUserID string    `json:"actingUserId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Notification is an externally produced message addressed to one user or to
// the watchers of a label. With neither set it goes to every connection.
type Notification struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
	Label  string `json:"label,omitempty"`
	Data   any    `json:"data,omitempty"`
}
