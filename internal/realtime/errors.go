package realtime

import "fmt"

// ValidationError rejects a client request before any state is touched:
// empty content, spoofed sender id, or an appointment the caller is not a
// participant of. Surfaced only to the offending connection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// PersistenceError wraps a store failure during a send or mark-read. Nothing
// is broadcast and no partial state remains; the client decides whether to
// retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
