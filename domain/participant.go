// Package domain contains core concepts of the chat relay.
// This file defines connections and the users bound to them.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID is the opaque identifier the transport assigns to a live socket.
type ConnectionID string

func (c ConnectionID) String() string { return string(c) }

// User is the presence record of one joined connection.
// A connection owns at most one User at any time.
type User struct {
	ConnectionID ConnectionID
	Username     string
	Room         string
}
