package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const probeID = 1

// Version is the answer to Browser.getVersion
type Version struct {
	Product         string `json:"product"`
	ProtocolVersion string `json:"protocolVersion"`
	Revision        string `json:"revision"`
	UserAgent       string `json:"userAgent"`
	JSVersion       string `json:"jsVersion"`
}

// Probe connects to a DevTools endpoint and asks the browser for its version.
// Without a deadline on ctx the exchange is bounded by the dial timeout.
func Probe(ctx context.Context, wsURL string) (Version, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return Version{}, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	cmd := map[string]any{"id": probeID, "method": "Browser.getVersion"}
	if err := conn.WriteJSON(cmd); err != nil {
		return Version{}, fmt.Errorf("failed to send command: %w", err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return Version{}, ctx.Err()
			}
			if !time.Now().Before(deadline) {
				return Version{}, context.DeadlineExceeded
			}
			return Version{}, fmt.Errorf("failed to read response: %w", err)
		}
		// events and replies to other ids are skipped
		if gjson.GetBytes(msg, "id").Int() != probeID {
			continue
		}
		if e := gjson.GetBytes(msg, "error"); e.Exists() {
			return Version{}, errors.New("browser error: " + e.Get("message").String())
		}
		result := gjson.GetBytes(msg, "result")
		if !result.IsObject() {
			return Version{}, errors.New("response without result")
		}
		var v Version
		if err := json.Unmarshal([]byte(result.Raw), &v); err != nil {
			return Version{}, fmt.Errorf("failed to decode result: %w", err)
		}
		return v, nil
	}
}
