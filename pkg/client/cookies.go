package client

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/guregu/null.v3"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// SetCookies writes cookies into an open profile
func (c *Client) SetCookies(ctx context.Context, browserID string, cookies []models.Cookie) error {
	_, err := c.Call(ctx, "/browser/cookies/set", models.CookiesSetRequest{BrowserID: browserID, Cookies: cookies})
	return err
}

// GetCookies reads the cookies of an open profile
func (c *Client) GetCookies(ctx context.Context, browserID string) ([]models.Cookie, error) {
	return Typed[[]models.Cookie](ctx, c, "/browser/cookies/get", models.BrowserIDRequest{BrowserID: browserID})
}

// ClearCookies removes the cookies of a profile. With saveSynced the
// cloud-synced copy is cleared too.
func (c *Client) ClearCookies(ctx context.Context, browserID string, saveSynced bool) error {
	_, err := c.Call(ctx, "/browser/cookies/clear", models.CookiesClearRequest{BrowserID: browserID, SaveSynced: saveSynced})
	return err
}

// FormatCookies converts a raw cookie string or cookie list into the
// service's cookie format. hostname may be empty.
func (c *Client) FormatCookies(ctx context.Context, cookie any, hostname string) ([]models.Cookie, error) {
	raw, err := json.Marshal(cookie)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cookie: %w", err)
	}
	req := models.CookiesFormatRequest{Cookie: raw, Hostname: null.NewString(hostname, hostname != "")}
	return Typed[[]models.Cookie](ctx, c, "/browser/cookies/format", req)
}
