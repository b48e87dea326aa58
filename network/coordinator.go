// Package network implements the network monitor coordinator (C4): it
// composes a stomp.Client with a TransportNetwork state store, translating
// protocol events into applied state changes while serializing the overall
// lifecycle (configure -> connect -> subscribe -> stream -> record -> stop).
// Grounded on original_source/inc/network-monitor/network-monitor.h, the
// one component in this repo with no direct teacher analogue — its
// Configure/Run/Stop/on-connect/on-message shape is carried over from there
// and expressed in the teacher's idiom (log/slog, ClientError-style enums).
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dante2608/Network-monitor/reactor"
	"github.com/dante2608/Network-monitor/stomp"
)

const (
	networkEventsEndpoint = "/network-events"
	subscriptionEndpoint  = "/passengers"
	layoutEndpoint        = "/network-layout.json"
)

// Config is everything Configure needs to bring up the coordinator (§4.4).
type Config struct {
	URL               string
	Port              string
	Username          string
	Password          string
	CACertFile        string
	NetworkLayoutFile string
}

// TransportFactory builds the stomp.Transport the coordinator's client will
// use, given the fully-qualified wss:// URL to dial. Injected so tests can
// substitute a mock transport without the coordinator knowing about
// wstransport or TLS at all.
type TransportFactory func(url string) stomp.Transport

// Coordinator is the network monitor coordinator (C4). It owns the reactor,
// the STOMP client and the TransportNetwork exclusively (§3 Ownership).
type Coordinator struct {
	network    TransportNetwork
	downloader FileDownloader
	parser     LayoutParser
	newTransport TransportFactory

	reactor *reactor.Reactor
	client  *stomp.Client

	mu        sync.Mutex
	lastError CoordinatorError
}

// New constructs a Coordinator around the given TransportNetwork. downloader
// and parser supply the default network-layout acquisition steps; newTransport
// builds the secure WebSocket transport the STOMP client will run over.
func New(net TransportNetwork, downloader FileDownloader, parser LayoutParser, newTransport TransportFactory) *Coordinator {
	return &Coordinator{
		network:      net,
		downloader:   downloader,
		parser:       parser,
		newTransport: newTransport,
		reactor:      reactor.New(),
		lastError:    CoordinatorUndefinedError,
	}
}

// Configure sets up the connection and performs the error checks in §4.4.
// It issues the client's Connect but does not drive the reactor: the
// connection's completions are handled only once Run is called.
func (c *Coordinator) Configure(ctx context.Context, cfg Config) CoordinatorError {
	slog.Info("network: configuring coordinator")

	if cfg.CACertFile == "" {
		slog.Error("network: no CA cert file configured")
		return CoordinatorMissingCaCertFile
	}
	if _, err := os.Stat(cfg.CACertFile); err != nil {
		slog.Error("network: could not find CA cert file", "path", cfg.CACertFile)
		return CoordinatorMissingCaCertFile
	}

	layoutFile := cfg.NetworkLayoutFile
	if layoutFile != "" {
		if _, err := os.Stat(layoutFile); err != nil {
			slog.Error("network: could not find network layout file", "path", layoutFile)
			return CoordinatorMissingNetworkLayoutFile
		}
	} else {
		layoutFile = filepath.Join(os.TempDir(), "network-layout.json")
		fileURL := fmt.Sprintf("https://%s%s", cfg.URL, layoutEndpoint)
		slog.Info("network: downloading network layout file", "url", fileURL, "dest", layoutFile)
		if err := c.downloader.Download(ctx, fileURL, layoutFile, cfg.CACertFile); err != nil {
			slog.Error("network: could not download network layout file", "error", err)
			return CoordinatorFailedNetworkLayoutFileDownload
		}
	}

	slog.Info("network: loading network layout file", "path", layoutFile)
	doc, err := c.parser.ParseFile(layoutFile)
	if err != nil || len(doc) == 0 {
		slog.Error("network: could not parse network layout file", "path", layoutFile, "error", err)
		return CoordinatorFailedNetworkLayoutFileParsing
	}

	slog.Info("network: constructing the transport network")
	if err := c.network.FromLayout(doc); err != nil {
		slog.Error("network: could not construct the transport network", "error", err)
		return CoordinatorFailedTransportNetworkConstruction
	}

	slog.Info("network: constructing the STOMP client")
	url := fmt.Sprintf("wss://%s:%s%s", cfg.URL, cfg.Port, networkEventsEndpoint)
	transport := c.newTransport(url)
	c.client = stomp.New(cfg.URL, transport, c.reactor)
	c.client.Connect(cfg.Username, cfg.Password, c.onConnect, c.onDisconnect)

	slog.Info("network: coordinator successfully configured")
	return CoordinatorOk
}

// Run drives the reactor until its work is exhausted.
func (c *Coordinator) Run() error {
	slog.Info("network: running the network monitor")
	c.setLastError(CoordinatorOk)
	return c.reactor.Run(context.Background())
}

// RunFor drives the reactor for at most d.
func (c *Coordinator) RunFor(d time.Duration) error {
	slog.Info("network: running the network monitor", "duration", d)
	c.setLastError(CoordinatorOk)
	return c.reactor.RunFor(d)
}

// Stop cancels outstanding work. last_error is left untouched so the caller
// can still inspect what happened before Stop was called.
func (c *Coordinator) Stop() {
	slog.Info("network: stopping the network monitor")
	c.reactor.Stop()
}

// LastError reports the most recently recorded error (last-writer-wins).
func (c *Coordinator) LastError() CoordinatorError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Network exposes the internal TransportNetwork. The returned reference has
// the same lifetime as the Coordinator.
func (c *Coordinator) Network() TransportNetwork {
	return c.network
}

func (c *Coordinator) setLastError(e CoordinatorError) {
	c.mu.Lock()
	c.lastError = e
	c.mu.Unlock()
}

func (c *Coordinator) onConnect(ec stomp.ClientError) {
	if ec != stomp.ClientOk {
		slog.Error("network: STOMP client connection failed", "error", ec)
		c.setLastError(CoordinatorCouldNotConnectToStompClient)
		c.client.Close(nil)
		return
	}
	slog.Info("network: STOMP client connected")

	slog.Info("network: subscribing", "destination", subscriptionEndpoint)
	id := c.client.Subscribe(subscriptionEndpoint, c.onSubscribe, c.onMessage)
	if id == "" {
		slog.Error("network: STOMP client subscription failed")
		c.setLastError(CoordinatorCouldNotSubscribeToPassengerEvents)
		c.client.Close(nil)
	}
}

func (c *Coordinator) onDisconnect(ec stomp.ClientError) {
	slog.Error("network: STOMP client disconnected", "error", ec)
	c.setLastError(CoordinatorStompClientDisconnected)
}

func (c *Coordinator) onSubscribe(ec stomp.ClientError, subscriptionID string) {
	if ec != stomp.ClientOk {
		slog.Error("network: unable to subscribe", "destination", subscriptionEndpoint, "error", ec)
		c.setLastError(CoordinatorCouldNotSubscribeToPassengerEvents)
		return
	}
	slog.Info("network: STOMP client subscribed", "destination", subscriptionEndpoint)
}

func (c *Coordinator) onMessage(ec stomp.ClientError, msg []byte) {
	if ec != stomp.ClientOk {
		slog.Error("network: subscription delivered an error instead of a message", "error", ec)
		return
	}

	var event PassengerEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		slog.Error("network: could not parse passenger event", "body", string(msg), "error", err)
		c.setLastError(CoordinatorCouldNotParsePassengerEvent)
		return
	}

	if err := c.network.RecordPassengerEvent(event); err != nil {
		slog.Error("network: could not record passenger event", "event", event, "error", err)
		c.setLastError(CoordinatorCouldNotRecordPassengerEvent)
		return
	}
	slog.Debug("network: recorded passenger event", "station", event.StationID, "kind", event.Kind)
}
