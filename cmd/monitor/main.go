// Command monitor runs the network monitor coordinator as a standalone
// process: it loads configuration, brings up the STOMP client over a secure
// WebSocket, and keeps the reactor running until interrupted.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dante2608/Network-monitor/config"
	"github.com/dante2608/Network-monitor/discovery"
	"github.com/dante2608/Network-monitor/network"
	"github.com/dante2608/Network-monitor/network/memnetwork"
	"github.com/dante2608/Network-monitor/stomp"
	"github.com/dante2608/Network-monitor/wstransport"
)

func main() {
	logger := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(logger))

	cfg := config.Load()

	serverURL := flag.String("server-url", cfg.ServerURL, "event service host, overrides LTNM_SERVER_URL")
	serverPort := flag.String("server-port", cfg.ServerPort, "event service port, overrides LTNM_SERVER_PORT")
	username := flag.String("username", cfg.Username, "STOMP login, overrides LTNM_USERNAME")
	password := flag.String("password", cfg.Password, "STOMP passcode, overrides LTNM_PASSWORD")
	caCertFile := flag.String("ca-cert", cfg.CACertFile, "CA cert PEM file, overrides LTNM_CA_CERT_FILE")
	layoutPath := flag.String("network-layout", cfg.NetworkLayoutPath, "local network layout file, overrides LTNM_NETWORK_LAYOUT_FILE_PATH")
	discoverTimeout := flag.Duration("discover-timeout", 5*time.Second, "how long to wait for mDNS discovery when -server-url is unset")
	flag.Parse()

	if *serverURL == "" {
		slog.Info("monitor: no server URL configured, trying mDNS discovery")
		svc, err := discovery.FindNetworkEventsService(*discoverTimeout)
		if err != nil {
			slog.Error("monitor: could not discover a network-events service", "error", err)
			os.Exit(1)
		}
		*serverURL = svc.Address
		*serverPort = strconv.Itoa(svc.Port)
	}

	app := newApp(network.Config{
		URL:               *serverURL,
		Port:              *serverPort,
		Username:          *username,
		Password:          *password,
		CACertFile:        *caCertFile,
		NetworkLayoutFile: *layoutPath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		slog.Error("monitor: exiting with error", "error", err)
		os.Exit(1)
	}
}

// app wires the coordinator's collaborators and drives the reactor until
// ctx is cancelled, in the teacher's App.Start style (main.go: App.Start
// blocks on ctx.Done and then tears transports down).
type app struct {
	coordinator *network.Coordinator
	cfg         network.Config
}

func newApp(cfg network.Config) *app {
	newTransport := func(url string) stomp.Transport {
		var tlsConfig *tls.Config
		if pool, err := wstransport.LoadCACertPool(cfg.CACertFile); err == nil {
			tlsConfig = &tls.Config{RootCAs: pool}
		} else {
			slog.Error("monitor: could not load CA cert pool", "error", err)
		}
		return wstransport.New(url, tlsConfig)
	}

	coordinator := network.New(memnetwork.New(), &network.HTTPDownloader{}, network.JSONFileParser{}, newTransport)
	return &app{coordinator: coordinator, cfg: cfg}
}

func (a *app) Start(ctx context.Context) error {
	if ec := a.coordinator.Configure(ctx, a.cfg); ec != network.CoordinatorOk {
		slog.Error("monitor: configure failed", "error", ec)
		return errConfigure{ec}
	}

	done := make(chan error, 1)
	go func() { done <- a.coordinator.Run() }()

	select {
	case <-ctx.Done():
		slog.Info("monitor: shutting down")
		a.coordinator.Stop()
		<-done
		return nil
	case err := <-done:
		return err
	}
}

type errConfigure struct{ ec network.CoordinatorError }

func (e errConfigure) Error() string { return "monitor: configure failed: " + e.ec.String() }
