package stomp

// Transport is the capability set the STOMP client requires from the
// underlying secure WebSocket connection (§6). Every operation that
// touches the network suspends and reports completion through onDone;
// Transport implementations do not block the caller.
type Transport interface {
	// Connect opens the underlying connection. onDone is invoked exactly
	// once, with a non-nil error on failure.
	Connect(onDone func(err error))

	// Send writes a single text frame. onDone is invoked exactly once.
	Send(data []byte, onDone func(err error))

	// Close closes the connection. onDone is invoked exactly once.
	Close(onDone func(err error))

	// SetOnMessage registers the handler invoked for every text frame
	// received after a successful Connect. Must be called before Connect.
	SetOnMessage(func(data []byte))

	// SetOnDisconnected registers the handler invoked at most once when the
	// connection drops, whether cleanly closed or not. clean reports
	// whether this was the result of a local Close.
	SetOnDisconnected(func(clean bool, cause error))
}
