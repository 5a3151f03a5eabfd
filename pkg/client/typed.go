package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// Typed performs Call and decodes the data into T. When T implements
// models.Shape its required fields are checked first.
func Typed[T any](ctx context.Context, c *Client, endpoint string, payload any) (T, error) {
	var out T
	data, err := c.Call(ctx, endpoint, payload)
	if err != nil {
		return out, err
	}
	if err := decodeShape(data, &out); err != nil {
		var verr *ResponseValidationError
		if errors.As(err, &verr) {
			verr.Endpoint = endpoint
		}
		return out, err
	}
	return out, nil
}

// decodeShape fills out from data or returns a *ResponseValidationError
func decodeShape(data json.RawMessage, out any) error {
	shape := shapeName(out)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	if err := checkRequired(data, requiredFields(out)); err != nil {
		err.Shape = shape
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		verr := &ResponseValidationError{Shape: shape, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			verr.Field = typeErr.Field
		}
		return verr
	}
	return nil
}

func checkRequired(data json.RawMessage, fields []models.Field) *ResponseValidationError {
	if len(fields) == 0 {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return &ResponseValidationError{Err: errors.New("payload is not valid JSON")}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return &ResponseValidationError{Err: fmt.Errorf("payload is %s, not an object", describe(root))}
	}

	for _, f := range fields {
		res := root.Get(f.Path)
		if !res.Exists() || res.Type == gjson.Null {
			return &ResponseValidationError{Field: f.Path, Err: errMissingField}
		}
		if !kindMatches(res, f.Kind) {
			return &ResponseValidationError{
				Field: f.Path,
				Err:   fmt.Errorf("%w: want %s, got %s", errWrongKind, f.Kind, describe(res)),
			}
		}
	}
	return nil
}

func kindMatches(res gjson.Result, kind models.Kind) bool {
	switch kind {
	case models.KindString:
		return res.Type == gjson.String
	case models.KindNumber:
		return res.Type == gjson.Number
	case models.KindBool:
		return res.Type == gjson.True || res.Type == gjson.False
	case models.KindObject:
		return res.IsObject()
	case models.KindArray:
		return res.IsArray()
	}
	return true
}

func describe(res gjson.Result) string {
	switch {
	case res.IsObject():
		return "object"
	case res.IsArray():
		return "array"
	case res.Type == gjson.True || res.Type == gjson.False:
		return "bool"
	}
	return res.Type.String()
}

func requiredFields(out any) []models.Field {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if s, ok := reflect.Zero(t).Interface().(models.Shape); ok {
		return s.RequiredFields()
	}
	return nil
}

func shapeName(out any) string {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
