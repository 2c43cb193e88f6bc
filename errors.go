package mt2mw

import "errors"

// Exported errors for library consumers.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("mt2mw: client is closed")

	// ErrNoConfig indicates New was called without a configuration.
	ErrNoConfig = errors.New("mt2mw: no configuration")
)
