package ports

import "chatrelay/internal/core/domain"

// EventSink delivers outbound events to live connections. Delivery is
// fire-and-forget: a send to a connection that is gone is a silent no-op for
// the caller, which may at most log the returned error.
type EventSink interface {
	// SendToConn delivers the event to one connection. The error exists for
	// logging only and must never be surfaced back to the originating client.
	SendToConn(conn domain.ConnID, event domain.Event) error

	// Broadcast delivers the event to every live connection.
	Broadcast(event domain.Event)
}
