// Package browser talks to the DevTools HTTP endpoint of an opened profile.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultInterval between readiness polls
const DefaultInterval = 500 * time.Millisecond

// Info is the body of /json/version
type Info struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// VersionURL turns the "http" endpoint BitBrowser reports (host:port, with or
// without scheme) into the DevTools version URL
func VersionURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	return strings.TrimSuffix(endpoint, "/") + "/json/version"
}

// WaitReady polls /json/version until the browser answers 200 or ctx ends.
// interval defaults to DefaultInterval when <= 0.
func WaitReady(ctx context.Context, httpClient *http.Client, endpoint string, interval time.Duration) (Info, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	url := VersionURL(endpoint)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		info, err := version(ctx, httpClient, url)
		if err == nil {
			return info, nil
		}

		select {
		case <-ctx.Done():
			return Info{}, fmt.Errorf("browser at %s not ready after %d attempts: %w (last error: %v)", endpoint, attempts, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

func version(ctx context.Context, httpClient *http.Client, url string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Info{}, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("invalid version response: %w", err)
	}
	return info, nil
}
