package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shehryarbajwa/bitbrowser-go/internal/config"
)

type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "bitctl",
		Short:             "control a local BitBrowser service",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.SetOut(gs.stdOut)
	c.cmd.SetErr(gs.stdErr)
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())

	c.cmd.AddCommand(
		getCmdSync(gs),
		getCmdDetail(gs),
		getCmdOpen(gs),
		getCmdClose(gs),
		getCmdGroups(gs),
		getCmdCookies(gs),
		getCmdServe(gs),
	)
	return c
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&c.gs.flags.url, "url", "", "BitBrowser service URL (env BITBROWSER_URL)")
	flags.StringVar(&c.gs.flags.token, "token", "", "API token sent as x-api-key (env BITBROWSER_TOKEN)")
	flags.StringVar(&c.gs.flags.timeout, "timeout", "", "per request timeout, e.g. 10s (env BITBROWSER_TIMEOUT)")
	flags.StringVar(&c.gs.flags.logLevel, "log-level", "", "log level (env BITBROWSER_LOG_LEVEL)")
	flags.StringVarP(&c.gs.flags.output, "output", "o", "json", "output format: json or yaml")
	return flags
}

// persistentPreRunE loads the configuration; flags win over the environment
func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.gs.envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = c.gs.flags.url
	}
	if flags.Changed("token") {
		cfg.Token = c.gs.flags.token
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(c.gs.flags.timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.gs.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	c.gs.logger.SetLevel(level)
	c.gs.cfg = cfg
	c.gs.logger.WithField("url", cfg.URL).Debug("Configuration loaded")
	return nil
}
