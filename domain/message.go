// Package domain contains core concepts of the chat relay.
// This file defines Message events and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Username  string
	Text      string
	Room      string
	Lang      string // ISO 639-1, empty when undetected
	CreatedAt time.Time
}
