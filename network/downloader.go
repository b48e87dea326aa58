package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dante2608/Network-monitor/wstransport"
)

// HTTPDownloader is the default FileDownloader, fetching the network-layout
// document over HTTPS verified against the same CA anchor the STOMP client
// trusts. No ecosystem HTTP client library appears anywhere in the pack, so
// this stays on net/http (§10).
type HTTPDownloader struct {
	Timeout time.Duration
}

// Download fetches url and writes its body to destPath, verifying the
// server certificate against caCertPath.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath, caCertPath string) error {
	pool, err := wstransport.LoadCACertPool(caCertPath)
	if err != nil {
		return fmt.Errorf("network: load CA cert for download: %w", err)
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("network: build download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("network: download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("network: download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("network: create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("network: write downloaded file: %w", err)
	}
	return nil
}
