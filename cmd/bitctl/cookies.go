package main

import (
	"github.com/spf13/cobra"

	"github.com/shehryarbajwa/bitbrowser-go/internal/snapshot"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/client"
)

func getCmdCookies(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Snapshot and restore profile cookies",
	}

	withStore := func(fn func(*snapshot.Store) error) error {
		c, err := gs.newClient()
		if err != nil {
			return err
		}
		defer c.Close()
		store, err := snapshot.NewStore(c, gs.cfg.SnapshotDir, gs.logger)
		if err != nil {
			return err
		}
		return fn(store)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "capture <browserId>",
		Short: "Save the cookies of an open profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *snapshot.Store) error {
				snap, err := s.Capture(gs.ctx, args[0])
				if err != nil {
					return err
				}
				return gs.print(snap)
			})
		},
	}, &cobra.Command{
		Use:   "restore <snapshotId> [browserId]",
		Short: "Write a saved snapshot into a profile (the original one by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			return withStore(func(s *snapshot.Store) error {
				snap, err := s.Restore(gs.ctx, args[0], target)
				if err != nil {
					return err
				}
				return gs.print(snap)
			})
		},
	}, &cobra.Command{
		Use:   "list [browserId]",
		Short: "List saved snapshots, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			browserID := ""
			if len(args) == 1 {
				browserID = args[0]
			}
			return withStore(func(s *snapshot.Store) error {
				return gs.print(s.List(browserID))
			})
		},
	})
	return cmd
}

var _ snapshot.CookieSource = (*client.Client)(nil)
