package stomp

import "errors"

// Codec errors (§4.1). Parse returns one of the first five, wrapped in a
// ParseError tagged by the offending cause; NewFrame wraps ErrUnknownCommand
// or ErrMissingRequiredHeader in a ConstructError.
var (
	ErrUnknownCommand        = errors.New("stomp: unknown command")
	ErrMalformedHeader       = errors.New("stomp: malformed header")
	ErrBadEscape             = errors.New("stomp: header value has a disallowed escape")
	ErrLengthMismatch        = errors.New("stomp: body length does not match content-length")
	ErrMissingNull           = errors.New("stomp: frame is missing its terminating NUL")
	ErrMissingRequiredHeader = errors.New("stomp: missing required header")
)

// ParseError wraps a parse failure with the byte offset it was found at,
// where known.
type ParseError struct {
	Err    error
	Offset int
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConstructError is returned by NewFrame when a frame cannot be constructed
// for the command given (e.g. a required header is absent).
type ConstructError struct {
	Command Command
	Err     error
}

func (e *ConstructError) Error() string {
	return "stomp: cannot construct " + string(e.Command) + " frame: " + e.Err.Error()
}

func (e *ConstructError) Unwrap() error {
	return e.Err
}

// ClientError is the closed error taxonomy for the STOMP client (§7).
type ClientError int

const (
	ClientOk ClientError = iota
	ClientCouldNotConnectToWebSocketsServer
	ClientCouldNotSendStompFrame
	ClientCouldNotSendSubscribeFrame
	ClientCouldNotCloseWebSocketsConnection
	ClientUnexpectedCouldNotCreateValidFrame
	ClientUnexpectedMessageContentType
	ClientUnexpectedSubscriptionMismatch
	ClientWebSocketsServerDisconnected
	ClientNotIdle
)

func (e ClientError) String() string {
	switch e {
	case ClientOk:
		return "Ok"
	case ClientCouldNotConnectToWebSocketsServer:
		return "CouldNotConnectToWebSocketsServer"
	case ClientCouldNotSendStompFrame:
		return "CouldNotSendStompFrame"
	case ClientCouldNotSendSubscribeFrame:
		return "CouldNotSendSubscribeFrame"
	case ClientCouldNotCloseWebSocketsConnection:
		return "CouldNotCloseWebSocketsConnection"
	case ClientUnexpectedCouldNotCreateValidFrame:
		return "UnexpectedCouldNotCreateValidFrame"
	case ClientUnexpectedMessageContentType:
		return "UnexpectedMessageContentType"
	case ClientUnexpectedSubscriptionMismatch:
		return "UnexpectedSubscriptionMismatch"
	case ClientWebSocketsServerDisconnected:
		return "WebSocketsServerDisconnected"
	case ClientNotIdle:
		return "NotIdle"
	default:
		return "UndefinedError"
	}
}
