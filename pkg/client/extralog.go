package client

import (
	"context"
	"encoding/json"
	"errors"

	"gopkg.in/guregu/null.v3"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

var errLogIDRequired = errors.New("log id is required")

// ListExtralogs searches the local log library
func (c *Client) ListExtralogs(ctx context.Context, req models.ExtralogListRequest) (models.ExtralogList, error) {
	return Typed[models.ExtralogList](ctx, c, "/extralog/list", req)
}

// AddExtralog stores a new entry. ID must be left null.
func (c *Client) AddExtralog(ctx context.Context, req models.ExtralogRequest) (models.ExtralogItem, error) {
	req.ID = null.Int{}
	return Typed[models.ExtralogItem](ctx, c, "/extralog/add", req)
}

// UpdateExtralog changes the non-null fields of an existing entry
func (c *Client) UpdateExtralog(ctx context.Context, req models.ExtralogRequest) (json.RawMessage, error) {
	if !req.ID.Valid || req.ID.Int64 == 0 {
		return nil, errLogIDRequired
	}
	return c.Call(ctx, "/extralog/update", req)
}

// DeleteExtralog removes an entry
func (c *Client) DeleteExtralog(ctx context.Context, id int64) error {
	if id == 0 {
		return errLogIDRequired
	}
	_, err := c.Call(ctx, "/extralog/delete", map[string]any{"id": id})
	return err
}

// ExtralogDetail fetches one entry
func (c *Client) ExtralogDetail(ctx context.Context, id int64) (models.ExtralogItem, error) {
	if id == 0 {
		return models.ExtralogItem{}, errLogIDRequired
	}
	return Typed[models.ExtralogItem](ctx, c, "/extralog/detail", map[string]any{"id": id})
}

// ClearExtralogs removes every entry
func (c *Client) ClearExtralogs(ctx context.Context) error {
	_, err := c.Call(ctx, "/extralog/clear", nil)
	return err
}
