package models

import "time"

// SessionStatus represents the locally tracked state of a browser profile
type SessionStatus string

const (
	StatusOpen   SessionStatus = "open"
	StatusClosed SessionStatus = "closed"
)

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Session pairs a profile with its locally tracked open/closed status
type Session struct {
	ID       string        `json:"id"`
	Status   SessionStatus `json:"status"`
	Profile  Profile       `json:"profile"`
	WS       string        `json:"ws,omitempty"`
	HTTP     string        `json:"http,omitempty"`
	OpenedAt time.Time     `json:"openedAt,omitzero"`
	SyncedAt time.Time     `json:"syncedAt"`
}
