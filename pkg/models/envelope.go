package models

import (
	"encoding/json"

	"gopkg.in/guregu/null.v3"
)

// Envelope is the uniform wrapper around every response of the service
type Envelope struct {
	Success *bool           `json:"success"`
	Msg     null.String     `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// Kind is the JSON kind expected for a required field of a typed result
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

// Field names a required path (gjson syntax) in a response payload
type Field struct {
	Path string
	Kind Kind
}

// Shape is implemented by typed results that declare required fields.
// Payloads missing one of them, or carrying it with another kind, are
// rejected before decoding.
type Shape interface {
	RequiredFields() []Field
}
