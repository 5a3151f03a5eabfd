package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

var errNotEnvelope = errors.New("body is not an envelope object")

func decodeEnvelope(raw []byte) (*models.Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, errors.New("body is not valid JSON")
		}
		return nil, errNotEnvelope
	}

	var env models.Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if env.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", errNotEnvelope)
	}
	return &env, nil
}
