package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// DefaultPageSize is used by ListBrowsers when the request leaves it at zero
const DefaultPageSize = 100

// UpdateBrowser creates a profile, or updates it when req.ID is set
func (c *Client) UpdateBrowser(ctx context.Context, req models.BrowserUpdateRequest) (models.Profile, error) {
	if req.Name == "" && !req.ID.Valid {
		return models.Profile{}, errors.New("name is required to create a profile")
	}
	return Typed[models.Profile](ctx, c, "/browser/update", req)
}

// UpdateBrowserPartial changes only the given fields on several profiles
func (c *Client) UpdateBrowserPartial(ctx context.Context, req models.BrowserPartialUpdateRequest) (json.RawMessage, error) {
	if len(req.IDs) == 0 {
		return nil, errors.New("at least one id is required")
	}
	return c.Call(ctx, "/browser/update/partial", req)
}

// OpenBrowser launches a profile and returns its debugging endpoints
func (c *Client) OpenBrowser(ctx context.Context, req models.OpenRequest) (models.OpenResult, error) {
	if req.ID == "" {
		return models.OpenResult{}, errors.New("id is required")
	}
	return Typed[models.OpenResult](ctx, c, "/browser/open", req)
}

// CloseBrowser closes a running profile
func (c *Client) CloseBrowser(ctx context.Context, id string) error {
	_, err := c.Call(ctx, "/browser/close", models.IDRequest{ID: id})
	return err
}

// DeleteBrowser permanently removes a profile
func (c *Client) DeleteBrowser(ctx context.Context, id string) error {
	_, err := c.Call(ctx, "/browser/delete", models.IDRequest{ID: id})
	return err
}

// DeleteBrowsers removes several profiles at once
func (c *Client) DeleteBrowsers(ctx context.Context, ids []string) error {
	_, err := c.Call(ctx, "/browser/delete/ids", models.IDsRequest{IDs: ids})
	return err
}

// BrowserDetail fetches one profile
func (c *Client) BrowserDetail(ctx context.Context, id string) (models.Profile, error) {
	return Typed[models.Profile](ctx, c, "/browser/detail", models.IDRequest{ID: id})
}

// ListBrowsers fetches one page of profiles. Pages are zero-based.
func (c *Client) ListBrowsers(ctx context.Context, req models.ListRequest) (models.ProfileList, error) {
	if req.PageSize <= 0 {
		req.PageSize = DefaultPageSize
	}
	return Typed[models.ProfileList](ctx, c, "/browser/list", req)
}

// ResetClosedState clears a profile stuck in the "opening" state
func (c *Client) ResetClosedState(ctx context.Context, id string) error {
	_, err := c.Call(ctx, "/users", models.IDRequest{ID: id})
	return err
}

// CloseBySeqs closes the profiles with the given sequence numbers
func (c *Client) CloseBySeqs(ctx context.Context, seqs []int) error {
	_, err := c.Call(ctx, "/browser/close/byseqs", models.SeqsRequest{Seqs: seqs})
	return err
}

// CloseAll closes every open profile
func (c *Client) CloseAll(ctx context.Context) error {
	_, err := c.Call(ctx, "/browser/close/all", nil)
	return err
}

// MoveToGroup assigns profiles to a group
func (c *Client) MoveToGroup(ctx context.Context, groupID string, browserIDs []string) error {
	_, err := c.Call(ctx, "/browser/group/update", models.GroupMoveRequest{GroupID: groupID, BrowserIDs: browserIDs})
	return err
}

// UpdateRemark sets the same remark on several profiles
func (c *Client) UpdateRemark(ctx context.Context, browserIDs []string, remark string) error {
	_, err := c.Call(ctx, "/browser/remark/update", models.RemarkRequest{BrowserIDs: browserIDs, Remark: remark})
	return err
}

// UpdateProxy changes the proxy of several profiles
func (c *Client) UpdateProxy(ctx context.Context, req models.ProxyUpdateRequest) (json.RawMessage, error) {
	if len(req.IDs) == 0 {
		return nil, errors.New("at least one id is required")
	}
	return c.Call(ctx, "/browser/proxy/update", req)
}

// CheckAgent asks the service to test a proxy
func (c *Client) CheckAgent(ctx context.Context, req models.CheckAgentRequest) (json.RawMessage, error) {
	return c.Call(ctx, "/checkagent", req)
}

// RandomFingerprint regenerates the fingerprint of a profile
func (c *Client) RandomFingerprint(ctx context.Context, browserID string) (json.RawMessage, error) {
	return c.Call(ctx, "/browser/fingerprint/random", models.BrowserIDRequest{BrowserID: browserID})
}

// ClearCache wipes the local cache of the given profiles
func (c *Client) ClearCache(ctx context.Context, ids []string) error {
	_, err := c.Call(ctx, "/cache/clear", models.IDsRequest{IDs: ids})
	return err
}

// ClearCacheExceptExtensions wipes the cache but keeps installed extensions
func (c *Client) ClearCacheExceptExtensions(ctx context.Context, ids []string) error {
	_, err := c.Call(ctx, "/cache/clear/exceptExtensions", models.IDsRequest{IDs: ids})
	return err
}

// OpenedPorts maps open profile ids to their debugging ports
func (c *Client) OpenedPorts(ctx context.Context) (map[string]string, error) {
	return Typed[map[string]string](ctx, c, "/browser/ports", nil)
}

// PIDs maps the given profile ids to their process ids
func (c *Client) PIDs(ctx context.Context, ids []string) (map[string]int, error) {
	return Typed[map[string]int](ctx, c, "/browser/pids", models.IDsRequest{IDs: ids})
}

// AllPIDs maps every open profile id to its process id
func (c *Client) AllPIDs(ctx context.Context) (map[string]int, error) {
	return Typed[map[string]int](ctx, c, "/browser/pids/all", nil)
}
