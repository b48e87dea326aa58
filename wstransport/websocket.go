// Package wstransport implements stomp.Transport over a secure WebSocket
// connection, adapted from the teacher's client/websocket.go. Where the
// teacher's transport blocked the caller on Connect/Send/Read, this one
// reports every completion through a callback so it can be driven from the
// reactor's transport strand without ever stalling it.
package wstransport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

// LoadCACertPool builds a RootCAs pool from a single PEM file, the CA trust
// anchor the STOMP server's certificate must chain to (§6, C1). There is no
// ecosystem library in the pack for this; every repo that touches TLS does
// it directly against crypto/tls and crypto/x509
// (C360Studio-semstreams/pkg/tlsutil.LoadClientTLSConfig), so this mirrors
// that rather than reaching for something heavier.
func LoadCACertPool(caCertFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(caCertFile)
	if err != nil {
		return nil, fmt.Errorf("wstransport: read CA cert file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("wstransport: %s does not contain a valid PEM certificate", caCertFile)
	}
	return pool, nil
}

// Transport is the secure WebSocket implementation of stomp.Transport.
// Connect, Send and Close run their I/O on a private goroutine and report
// completion through onDone; once connected, a single read loop goroutine
// delivers inbound text frames to onMessage until the connection drops.
type Transport struct {
	url       string
	tlsConfig *tls.Config

	mu             sync.Mutex
	writeMu        sync.Mutex // serializes writes on conn
	conn           *websocket.Conn
	closedByUs     bool
	onMessage      func(data []byte)
	onDisconnected func(clean bool, cause error)
}

// New constructs a Transport that will dial rawURL (ws:// or wss://) using
// tlsConfig for the TLS handshake when the scheme is wss. tlsConfig may be
// nil for ws://.
func New(rawURL string, tlsConfig *tls.Config) *Transport {
	return &Transport{url: rawURL, tlsConfig: tlsConfig}
}

func (t *Transport) SetOnMessage(fn func(data []byte)) {
	t.onMessage = fn
}

func (t *Transport) SetOnDisconnected(fn func(clean bool, cause error)) {
	t.onDisconnected = fn
}

// Connect dials the WebSocket server and, on success, starts the read loop.
func (t *Transport) Connect(onDone func(err error)) {
	go func() {
		u, err := url.Parse(t.url)
		if err != nil {
			onDone(fmt.Errorf("wstransport: invalid URL: %w", err))
			return
		}

		dialer := websocket.Dialer{TLSClientConfig: t.tlsConfig}
		conn, _, err := dialer.Dial(u.String(), nil)
		if err != nil {
			onDone(fmt.Errorf("wstransport: dial failed: %w", err))
			return
		}

		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()

		go t.readLoop(conn)
		onDone(nil)
	}()
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			clean := t.closedByUs
			cb := t.onDisconnected
			t.mu.Unlock()
			if cb != nil {
				cb(clean, err)
			}
			return
		}
		t.mu.Lock()
		cb := t.onMessage
		t.mu.Unlock()
		if cb != nil {
			cb(data)
		}
	}
}

// Send writes a single text frame. Per gorilla/websocket's concurrency
// contract, at most one writer may be in flight on a connection at a time;
// writeMu enforces that when Sends (or a Send and a Close) overlap.
func (t *Transport) Send(data []byte, onDone func(err error)) {
	go func() {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			onDone(fmt.Errorf("wstransport: not connected"))
			return
		}
		t.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		t.writeMu.Unlock()
		if err != nil {
			onDone(fmt.Errorf("wstransport: write failed: %w", err))
			return
		}
		onDone(nil)
	}()
}

// Close sends a WebSocket close frame and tears down the connection. The
// read loop's subsequent ReadMessage error still reaches onDisconnected,
// but with clean set to true since closedByUs was recorded first.
func (t *Transport) Close(onDone func(err error)) {
	go func() {
		t.mu.Lock()
		conn := t.conn
		t.closedByUs = true
		t.mu.Unlock()
		if conn == nil {
			onDone(nil)
			return
		}
		deadline := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		t.writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage, deadline)
		t.writeMu.Unlock()
		err := conn.Close()
		onDone(err)
	}()
}
