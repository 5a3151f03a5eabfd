package client

import (
	"context"
	"encoding/json"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// ResetWindowBounds arranges open windows on screen
func (c *Client) ResetWindowBounds(ctx context.Context, req models.WindowBoundsRequest) error {
	_, err := c.Call(ctx, "/windowbounds", req)
	return err
}

// FlexibleWindowBounds arranges the windows of the given sequence numbers,
// or all open windows when seqs is empty.
func (c *Client) FlexibleWindowBounds(ctx context.Context, seqs []int) error {
	_, err := c.Call(ctx, "/windowbounds/flexable", models.WindowBoundsRequest{SeqList: seqs})
	return err
}

// AllDisplays lists the monitors known to the service
func (c *Client) AllDisplays(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "/alldisplays", nil)
}

// RunRPA starts an RPA task
func (c *Client) RunRPA(ctx context.Context, taskID string) error {
	_, err := c.Call(ctx, "/rpa/run", models.IDRequest{ID: taskID})
	return err
}

// StopRPA stops an RPA task
func (c *Client) StopRPA(ctx context.Context, taskID string) error {
	_, err := c.Call(ctx, "/rpa/stop", models.IDRequest{ID: taskID})
	return err
}

// Autopaste pastes url into the address bar of an open profile
func (c *Client) Autopaste(ctx context.Context, browserID, url string) error {
	_, err := c.Call(ctx, "/autopaste", models.AutopasteRequest{BrowserID: browserID, URL: url})
	return err
}

// ReadExcel returns the parsed rows of an Excel file on the service host
func (c *Client) ReadExcel(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Call(ctx, "/utils/readexcel", models.FileRequest{Filepath: path})
}

// ReadFile returns the contents of a text file on the service host
func (c *Client) ReadFile(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Call(ctx, "/utils/readfile", models.FileRequest{Filepath: path})
}
