package realtime

import "mindcare/backend/internal/models"

// Client is one live authenticated connection, whatever its transport.
// A user may hold several at once (multiple browser tabs); the hub tells
// them apart by ConnID.
type Client interface {
	// ConnID is the unique identifier of this connection.
	ConnID() string
	// UserID is the authenticated user behind the connection.
	UserID() string
	// Role is the authenticated user's role.
	Role() models.Role

	// SendChannel is where the hub queues outbound events for this
	// connection.
	SendChannel() chan<- models.Event

	// Run starts the connection's read and write pumps.
	Run()
	// Close shuts down the outbound side; the pumps tear the rest down.
	Close()
}
