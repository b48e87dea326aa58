package stomp

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dante2608/Network-monitor/reactor"
)

// state is the STOMP client connection state machine (§3, §4.3).
type state int

const (
	stateIdle state = iota
	stateWsConnecting
	stateStompConnecting
	stateConnected
	stateClosing
	stateClosed
	stateFaulted
)

// subscription is a registry record: (destination, onSubscribe, onMessage)
// plus the one-shot flag distinguishing a pending SUBSCRIBE (sent, receipt
// unacknowledged) from a live one, per the teacher's map+mutex registries
// (server/broker.go, server/registery.go) adapted to single-entry lookup by
// subscription ID instead of topic fan-out.
type subscription struct {
	id          string
	destination string
	onSubscribe func(ClientError, string)
	onMessage   func(ClientError, []byte)
	acked       bool
}

// Client is the STOMP 1.2 client state machine (C3). It owns the transport
// and the subscription registry; it never blocks the caller and never
// invokes a user callback directly — every callback is posted to the
// reactor's user strand, and every transport completion is handled on the
// reactor's transport strand, so the two never run concurrently with each
// other (§5).
type Client struct {
	url       string
	transport Transport
	reactor   *reactor.Reactor

	mu      sync.Mutex
	state   state
	entered bool // true while a matching reactor.Enter has not yet been Left

	username string
	password string

	onConnect    func(ClientError)
	onDisconnect func(ClientError)

	subs map[string]*subscription
}

// New constructs a STOMP client bound to a transport and driven by the
// given reactor. url is sent as the STOMP `host` header.
func New(url string, transport Transport, r *reactor.Reactor) *Client {
	c := &Client{
		url:       url,
		transport: transport,
		reactor:   r,
		state:     stateIdle,
		subs:      make(map[string]*subscription),
	}
	transport.SetOnMessage(c.onTransportMessage)
	transport.SetOnDisconnected(c.onTransportDisconnected)
	return c
}

// Connect opens the WebSocket connection and then authenticates over STOMP.
// It is idempotent only from Idle; calling it from any other state is a
// programming error and fails synchronously, via onConnect, with
// ClientNotIdle (§4.3).
func (c *Client) Connect(username, password string, onConnect, onDisconnect func(ClientError)) {
	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		c.post(func() {
			if onConnect != nil {
				onConnect(ClientNotIdle)
			}
		})
		return
	}
	c.state = stateWsConnecting
	c.username = username
	c.password = password
	c.onConnect = onConnect
	c.onDisconnect = onDisconnect
	c.entered = true
	c.mu.Unlock()

	// A connection attempt is outstanding work from here until the client
	// reaches a terminal state (Closed or Faulted): the reactor must keep
	// running even while no frame is currently in flight, because a
	// response from the server may still arrive.
	c.reactor.Enter()
	c.transport.Connect(func(err error) {
		c.onTransportStrand(func() { c.handleTransportConnected(err) })
	})
}

// leaveOnce reports the matching Enter from Connect as done, exactly once,
// no matter how many terminal-state paths race to call it (explicit Close,
// a protocol ERROR, or the transport dropping on its own).
func (c *Client) leaveOnce() {
	c.mu.Lock()
	entered := c.entered
	c.entered = false
	c.mu.Unlock()
	if entered {
		c.reactor.Leave()
	}
}

// Subscribe sends a SUBSCRIBE frame for destination. It returns the
// subscription ID immediately iff the frame was handed to the transport.
// If the frame cannot be constructed it returns the empty string and
// onSubscribe is invoked, once, with ClientUnexpectedCouldNotCreateValidFrame.
// If the transport later reports that the send failed, the subscription is
// removed from the registry and onSubscribe is invoked, once, with
// ClientCouldNotSendSubscribeFrame and an empty ID (§4.3 item 2).
func (c *Client) Subscribe(destination string, onSubscribe func(ClientError, string), onMessage func(ClientError, []byte)) string {
	id := uuid.NewString()

	frame, err := NewFrame(CommandSubscribe, []HeaderPair{
		{HeaderID, id},
		{HeaderDestination, destination},
		{HeaderAck, "auto"},
		{HeaderReceipt, id},
	}, nil)
	if err != nil {
		slog.Error("stomp: could not construct SUBSCRIBE frame", "error", err)
		c.post(func() {
			if onSubscribe != nil {
				onSubscribe(ClientUnexpectedCouldNotCreateValidFrame, "")
			}
		})
		return ""
	}

	sub := &subscription{id: id, destination: destination, onSubscribe: onSubscribe, onMessage: onMessage}

	c.mu.Lock()
	c.subs[id] = sub
	c.mu.Unlock()

	c.transport.Send(frame.Serialize(), func(err error) {
		c.onTransportStrand(func() { c.handleSubscribeSent(id, destination, onSubscribe, err) })
	})
	return id
}

func (c *Client) handleSubscribeSent(id, destination string, onSubscribe func(ClientError, string), err error) {
	if err == nil {
		return
	}
	slog.Error("stomp: could not send SUBSCRIBE frame", "destination", destination, "error", err)
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
	c.post(func() {
		if onSubscribe != nil {
			onSubscribe(ClientCouldNotSendSubscribeFrame, "")
		}
	})
}

// Close drains the subscription registry and closes the transport. Calling
// it from Idle reports ClientCouldNotCloseWebSocketsConnection (§4.3 item 3).
func (c *Client) Close(onClose func(ClientError)) {
	c.mu.Lock()
	if c.state == stateIdle {
		c.mu.Unlock()
		c.post(func() {
			if onClose != nil {
				onClose(ClientCouldNotCloseWebSocketsConnection)
			}
		})
		return
	}
	c.subs = make(map[string]*subscription)
	c.state = stateClosing
	c.mu.Unlock()

	c.transport.Close(func(err error) {
		c.onTransportStrand(func() { c.handleClosed(onClose, err) })
	})
}

func (c *Client) handleClosed(onClose func(ClientError), err error) {
	c.mu.Lock()
	c.state = stateClosed
	c.mu.Unlock()
	c.leaveOnce()
	result := ClientOk
	if err != nil {
		result = ClientCouldNotCloseWebSocketsConnection
	}
	c.post(func() {
		if onClose != nil {
			onClose(result)
		}
	})
}

// post schedules fn on the user strand: every user-visible callback
// (onConnect, onDisconnect, onClose, onSubscribe, onMessage) is delivered
// this way, never called directly from a transport completion (§4.3
// "Callback context").
func (c *Client) post(fn func()) {
	c.reactor.UserStrand.Post(fn)
}

// onTransportStrand schedules fn on the transport strand: every transport
// completion and every byte of frame parsing runs here, serialized with
// every other transport event, and never concurrently with a user callback
// running on the user strand (§5 "Two strands").
func (c *Client) onTransportStrand(fn func()) {
	c.reactor.TransportStrand.Post(fn)
}

func (c *Client) handleTransportConnected(err error) {
	if err != nil {
		c.mu.Lock()
		c.state = stateFaulted
		cb := c.onConnect
		c.mu.Unlock()
		c.leaveOnce()
		slog.Error("stomp: could not connect to WebSocket server", "error", err)
		c.post(func() {
			if cb != nil {
				cb(ClientCouldNotConnectToWebSocketsServer)
			}
		})
		return
	}

	c.mu.Lock()
	c.state = stateStompConnecting
	username, password, url := c.username, c.password, c.url
	c.mu.Unlock()

	frame, err := NewFrame(CommandStomp, []HeaderPair{
		{HeaderAcceptVersion, "1.2"},
		{HeaderHost, url},
		{HeaderLogin, username},
		{HeaderPasscode, password},
	}, nil)
	if err != nil {
		slog.Error("stomp: could not construct STOMP frame", "error", err)
		c.mu.Lock()
		c.state = stateFaulted
		cb := c.onConnect
		c.mu.Unlock()
		c.leaveOnce()
		c.post(func() {
			if cb != nil {
				cb(ClientUnexpectedCouldNotCreateValidFrame)
			}
		})
		return
	}

	c.transport.Send(frame.Serialize(), func(err error) {
		c.onTransportStrand(func() { c.handleStompFrameSent(err) })
	})
}

func (c *Client) handleStompFrameSent(err error) {
	if err == nil {
		return
	}
	slog.Error("stomp: could not send STOMP frame", "error", err)
	c.mu.Lock()
	c.state = stateFaulted
	cb := c.onConnect
	c.mu.Unlock()
	c.leaveOnce()
	c.post(func() {
		if cb != nil {
			cb(ClientCouldNotSendStompFrame)
		}
	})
}

// onTransportMessage is the transport's inbound-frame callback. It hands
// off to the transport strand immediately: parsing and dispatch happen
// there, never on whatever goroutine the transport delivered the bytes on.
func (c *Client) onTransportMessage(data []byte) {
	c.onTransportStrand(func() { c.handleTransportMessage(data) })
}

// handleTransportMessage decodes one inbound frame. A malformed frame
// arriving while still authenticating fails the connection attempt the same
// way the original implementation's OnWsMessage does (it posts onConnect_
// with kUnexpectedCouldNotCreateValidFrame rather than trying to resync the
// stream); once Connected there is no pending onConnect left to report
// through, so the frame is logged and dropped, leaving the connection open
// for the server to close if it chooses.
func (c *Client) handleTransportMessage(data []byte) {
	frame, err := Parse(data)
	if err != nil {
		slog.Error("stomp: received a malformed frame", "error", err)
		c.mu.Lock()
		s := c.state
		c.mu.Unlock()
		if s == stateWsConnecting || s == stateStompConnecting {
			c.mu.Lock()
			c.state = stateFaulted
			cb := c.onConnect
			c.mu.Unlock()
			c.leaveOnce()
			c.post(func() {
				if cb != nil {
					cb(ClientUnexpectedCouldNotCreateValidFrame)
				}
			})
		}
		return
	}
	slog.Debug("stomp: received frame", "command", frame.Command)

	switch frame.Command {
	case CommandConnected:
		c.handleConnected()
	case CommandError:
		c.handleError(frame)
	case CommandMessage:
		c.handleSubscriptionMessage(frame)
	case CommandReceipt:
		c.handleSubscriptionReceipt(frame)
	default:
		slog.Warn("stomp: unexpected command from server", "command", frame.Command)
	}
}

func (c *Client) handleConnected() {
	c.mu.Lock()
	c.state = stateConnected
	cb := c.onConnect
	c.mu.Unlock()
	c.post(func() {
		if cb != nil {
			cb(ClientOk)
		}
	})
}

// handleError implements the pinned Open Question behavior (spec.md §9):
// an ERROR while authenticating closes the connection and reports through
// onDisconnect, never re-invoking onConnect after it may already have
// fired Ok. An ERROR once Connected is logged and the connection is left
// open; the server will typically close it itself.
func (c *Client) handleError(frame Frame) {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	slog.Error("stomp: server sent ERROR", "body", string(frame.Body))

	if s == stateStompConnecting {
		c.mu.Lock()
		c.state = stateClosing
		c.mu.Unlock()
		c.transport.Close(func(err error) {
			c.onTransportStrand(func() { c.handleErrorClosed() })
		})
	}
}

func (c *Client) handleErrorClosed() {
	c.mu.Lock()
	c.state = stateClosed
	cb := c.onDisconnect
	c.mu.Unlock()
	c.leaveOnce()
	c.post(func() {
		if cb != nil {
			cb(ClientWebSocketsServerDisconnected)
		}
	})
}

func (c *Client) handleSubscriptionMessage(frame Frame) {
	subID, _ := frame.Header(HeaderSubscription)

	c.mu.Lock()
	sub, ok := c.subs[subID]
	c.mu.Unlock()
	if !ok {
		slog.Warn("stomp: MESSAGE for unknown subscription, dropping", "subscription", subID)
		return
	}

	destination, _ := frame.Header(HeaderDestination)
	if destination != sub.destination {
		cb := sub.onMessage
		c.post(func() {
			if cb != nil {
				cb(ClientUnexpectedSubscriptionMismatch, nil)
			}
		})
		return
	}

	cb := sub.onMessage
	body := frame.Body
	c.post(func() {
		if cb != nil {
			cb(ClientOk, body)
		}
	})
}

func (c *Client) handleSubscriptionReceipt(frame Frame) {
	subID, _ := frame.Header(HeaderReceiptID)

	c.mu.Lock()
	sub, ok := c.subs[subID]
	if ok && sub.acked {
		ok = false
	} else if ok {
		sub.acked = true
	}
	c.mu.Unlock()
	if !ok {
		slog.Warn("stomp: unmatched RECEIPT, dropping", "receipt-id", subID)
		return
	}

	cb := sub.onSubscribe
	c.post(func() {
		if cb != nil {
			cb(ClientOk, subID)
		}
	})
}

// onTransportDisconnected is the transport's unsolicited-drop callback;
// like onTransportMessage, it hands off to the transport strand immediately.
func (c *Client) onTransportDisconnected(clean bool, cause error) {
	c.onTransportStrand(func() { c.handleTransportDisconnected(clean, cause) })
}

func (c *Client) handleTransportDisconnected(clean bool, cause error) {
	c.mu.Lock()
	if c.state == stateClosed || c.state == stateFaulted {
		c.mu.Unlock()
		return
	}
	if clean {
		c.state = stateClosed
	} else {
		c.state = stateFaulted
	}
	cb := c.onDisconnect
	c.mu.Unlock()
	c.leaveOnce()

	result := ClientOk
	if !clean {
		result = ClientWebSocketsServerDisconnected
	}
	if cause != nil {
		slog.Error("stomp: transport disconnected", "error", cause)
	}
	c.post(func() {
		if cb != nil {
			cb(result)
		}
	})
}
