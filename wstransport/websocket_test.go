package wstransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func TestConnectSendAndReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	tr := New(strings.Replace(srv.URL, "http://", "ws://", 1), nil)

	received := make(chan []byte, 1)
	tr.SetOnMessage(func(data []byte) { received <- data })

	connectErr := make(chan error, 1)
	tr.Connect(func(err error) { connectErr <- err })
	if err := <-connectErr; err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	sendErr := make(chan error, 1)
	tr.Send([]byte("hello"), func(err error) { sendErr <- err })
	if err := <-sendErr; err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case data := <-received:
		if string(data) != "hello" {
			t.Fatalf("expected echoed hello, got %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive echoed message")
	}

	closeErr := make(chan error, 1)
	tr.Close(func(err error) { closeErr <- err })
	if err := <-closeErr; err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestDisconnectReportedWhenServerCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	tr := New(strings.Replace(srv.URL, "http://", "ws://", 1), nil)

	disconnected := make(chan bool, 1)
	tr.SetOnDisconnected(func(clean bool, cause error) { disconnected <- clean })

	connectErr := make(chan error, 1)
	tr.Connect(func(err error) { connectErr <- err })
	if err := <-connectErr; err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case clean := <-disconnected:
		if clean {
			t.Fatal("expected an unsolicited server close to be reported as unclean")
		}
	case <-time.After(time.Second):
		t.Fatal("onDisconnected was never invoked")
	}
}

func TestConnectFailsOnBadURL(t *testing.T) {
	tr := New("ws://127.0.0.1:0/does-not-exist", nil)

	connectErr := make(chan error, 1)
	tr.Connect(func(err error) { connectErr <- err })
	if err := <-connectErr; err == nil {
		t.Fatal("expected Connect to fail against an unreachable address")
	}
}
