package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shehryarbajwa/bitbrowser-go/internal/browser"
	"github.com/shehryarbajwa/bitbrowser-go/internal/proxy"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/session"
)

func parseStatus(s string) (models.SessionStatus, error) {
	status := models.SessionStatus(s)
	if s != "" && !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

func getCmdSync(gs *globalState) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Page through every profile and print the resulting sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatus(status)
			if err != nil {
				return err
			}
			c, err := gs.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			m := session.NewManager(c, gs.cfg.PageSize, gs.logger)
			res, err := m.Synchronize(gs.ctx)
			if err != nil {
				return err
			}
			if res.Truncated {
				gs.logger.WithField("total", res.Total).Warn("Profile list ended before the reported total")
			}
			return gs.print(struct {
				session.Result
				Sessions []models.Session `json:"sessions"`
			}{res, m.Sessions(filter)})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only print sessions with this status (open or closed)")
	return cmd
}

func getCmdDetail(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <id>",
		Short: "Print one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := gs.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			p, err := c.BrowserDetail(gs.ctx, args[0])
			if err != nil {
				return err
			}
			return gs.print(p)
		},
	}
}

func getCmdOpen(gs *globalState) *cobra.Command {
	var (
		probe     bool
		wait      time.Duration
		extraArgs []string
	)
	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a profile and print its DevTools endpoints",
		Long: `Open a profile and print its DevTools endpoints.

  With --wait the DevTools HTTP endpoint is polled until the browser answers.
  With --probe the DevTools websocket is contacted once and the browser
  version is printed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := gs.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			m := session.NewManager(c, gs.cfg.PageSize, gs.logger)
			sess, err := m.Open(gs.ctx, args[0], extraArgs)
			if err != nil {
				return err
			}
			if wait > 0 {
				ctx, cancel := context.WithTimeout(gs.ctx, wait)
				info, err := browser.WaitReady(ctx, nil, sess.HTTP, 0)
				cancel()
				if err != nil {
					return err
				}
				gs.logger.WithField("browser", info.Browser).Info("DevTools ready")
			}
			if !probe {
				return gs.print(sess)
			}

			v, err := proxy.Probe(gs.ctx, sess.WS)
			if err != nil {
				return err
			}
			return gs.print(struct {
				Session models.Session `json:"session"`
				Version proxy.Version  `json:"version"`
			}{sess, v})
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "ask the opened browser for its version")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for DevTools to answer")
	cmd.Flags().StringArrayVar(&extraArgs, "arg", nil, "extra browser launch argument, repeatable")
	return cmd
}

func getCmdClose(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Close a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := gs.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.CloseBrowser(gs.ctx, args[0]); err != nil {
				return err
			}
			gs.logger.WithField("id", args[0]).Info("Profile closed")
			return nil
		},
	}
}

func getCmdGroups(gs *globalState) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List profile groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := gs.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			groups, err := c.ListGroups(gs.ctx, page, pageSize)
			if err != nil {
				return err
			}
			return gs.print(groups)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "groups per page (10 when 0)")
	return cmd
}
