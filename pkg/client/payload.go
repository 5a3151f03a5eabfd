package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload turns a request value into the object sent on the wire.
//
// nil becomes an empty object. Maps are sent as they are. Structs are encoded
// through their json tags and every null member is dropped, recursively, so
// request types built from null.* fields only carry what was set.
func Payload(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("payload must encode to a JSON object: %w", err)
	}
	if out == nil {
		return map[string]any{}, nil
	}
	pruneNulls(out)
	return out, nil
}

func pruneNulls(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			pruneNulls(t)
		}
	}
}

// encodeBody marshals what Call sends. Values that are not objects (arrays,
// primitives, raw JSON) go out untouched.
func encodeBody(v any) ([]byte, error) {
	switch t := v.(type) {
	case json.RawMessage:
		if len(t) == 0 {
			return []byte("{}"), nil
		}
		return t, nil
	case []byte:
		if len(t) == 0 {
			return []byte("{}"), nil
		}
		return t, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	if len(b) == 0 || b[0] != '{' && !bytes.Equal(b, []byte("null")) {
		return b, nil
	}

	m, err := Payload(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
