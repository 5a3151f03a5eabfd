package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/shehryarbajwa/bitbrowser-go/internal/config"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/client"
)

type globalFlags struct {
	url      string
	token    string
	timeout  string
	logLevel string
	output   string
}

// globalState is everything a command needs from the process; tests swap in
// their own writers and env files.
type globalState struct {
	ctx      context.Context
	stdOut   io.Writer
	stdErr   io.Writer
	envFiles []string

	flags  globalFlags
	cfg    config.Config
	logger *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &logrus.TextFormatter{FullTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	return &globalState{
		ctx:    ctx,
		stdOut: os.Stdout,
		stdErr: os.Stderr,
		logger: logger,
	}
}

func (gs *globalState) newClient() (*client.Client, error) {
	return client.NewClient(gs.cfg.ClientConfig(), gs.logger)
}

// print writes v in the selected output format
func (gs *globalState) print(v any) error {
	switch gs.flags.output {
	case "json":
		enc := json.NewEncoder(gs.stdOut)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// go through JSON so the keys follow the json tags
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(gs.stdOut)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", gs.flags.output)
	}
}
