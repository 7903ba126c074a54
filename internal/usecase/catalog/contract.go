package catalog

import "github.com/kailas-cloud/vecmcp/internal/connection"

// Connections exposes the active connection and its lifecycle events.
type Connections interface {
	Current() (connection.Handle, bool)
	Subscribe(fn func(connection.Event)) (unsubscribe func())
}
