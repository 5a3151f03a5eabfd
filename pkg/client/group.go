package client

import (
	"context"
	"errors"

	"gopkg.in/guregu/null.v3"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

const defaultGroupPageSize = 10

// ListGroups fetches one page of groups
func (c *Client) ListGroups(ctx context.Context, page, pageSize int) (models.GroupList, error) {
	if pageSize <= 0 {
		pageSize = defaultGroupPageSize
	}
	return Typed[models.GroupList](ctx, c, "/group/list", map[string]any{"page": page, "pageSize": pageSize})
}

// AddGroup creates a group. sortNum may be null.
func (c *Client) AddGroup(ctx context.Context, name string, sortNum null.Int) (models.Group, error) {
	if name == "" {
		return models.Group{}, errors.New("group name is required")
	}
	return Typed[models.Group](ctx, c, "/group/add", models.GroupRequest{GroupName: name, SortNum: sortNum})
}

// EditGroup renames a group and optionally changes its sort order
func (c *Client) EditGroup(ctx context.Context, id, name string, sortNum null.Int) (models.Group, error) {
	if id == "" {
		return models.Group{}, errors.New("group id is required")
	}
	req := models.GroupRequest{ID: null.StringFrom(id), GroupName: name, SortNum: sortNum}
	return Typed[models.Group](ctx, c, "/group/edit", req)
}

// DeleteGroup removes a group
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	_, err := c.Call(ctx, "/group/delete", models.IDRequest{ID: id})
	return err
}

// GroupDetail fetches one group
func (c *Client) GroupDetail(ctx context.Context, id string) (models.Group, error) {
	return Typed[models.Group](ctx, c, "/group/detail", models.IDRequest{ID: id})
}
