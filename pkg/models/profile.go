package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"
)

// Port is a proxy port. The service sends it either as a string or a number.
type Port string

// UnmarshalJSON accepts "8080", 8080 and null
func (p *Port) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Port(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("port must be a string or number: %w", err)
		}
		*p = Port(n.String())
	}
	return nil
}

// Int returns the numeric port, or 0 when unset or not numeric
func (p Port) Int() int {
	n, err := strconv.Atoi(string(p))
	if err != nil {
		return 0
	}
	return n
}

// Profile is a remote browser profile as returned by list, detail and update
type Profile struct {
	ID           string `json:"id"`
	Seq          int    `json:"seq"`
	Code         string `json:"code,omitempty"`
	Platform     string `json:"platform,omitempty"`
	PlatformIcon string `json:"platformIcon,omitempty"`
	URL          string `json:"url,omitempty"`
	Name         string `json:"name"`
	Remark       string `json:"remark,omitempty"`
	UserName     string `json:"userName,omitempty"`
	Password     string `json:"password,omitempty"`
	Cookie       string `json:"cookie,omitempty"`

	ProxyMethod   int    `json:"proxyMethod,omitempty"`
	ProxyType     string `json:"proxyType,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          Port   `json:"port,omitempty"`
	ProxyUserName string `json:"proxyUserName,omitempty"`
	ProxyPassword string `json:"proxyPassword,omitempty"`

	GroupID  string `json:"groupId,omitempty"`
	Status   int    `json:"status,omitempty"`
	IP       string `json:"ip,omitempty"`
	Country  string `json:"country,omitempty"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`

	// BrowserFingerPrint is kept verbatim; its layout belongs to the service.
	BrowserFingerPrint json.RawMessage `json:"browserFingerPrint,omitempty"`
}

// RequiredFields implements Shape
func (Profile) RequiredFields() []Field {
	return []Field{{Path: "id", Kind: KindString}}
}

// Fingerprint returns a fingerprint attribute by gjson path, e.g. "coreVersion"
func (p Profile) Fingerprint(path string) gjson.Result {
	if len(p.BrowserFingerPrint) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(p.BrowserFingerPrint, path)
}

// CoreVersion is the emulated browser core version, if any
func (p Profile) CoreVersion() string {
	return p.Fingerprint("coreVersion").String()
}

// ProfileList is one page of /browser/list
type ProfileList struct {
	TotalNum int       `json:"totalNum"`
	List     []Profile `json:"list"`
}

// RequiredFields implements Shape
func (ProfileList) RequiredFields() []Field {
	return []Field{{Path: "totalNum", Kind: KindNumber}}
}

// ListRequest is the payload of /browser/list. Filters are merged into the
// request body as-is.
type ListRequest struct {
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	GroupID  null.String    `json:"groupId"`
	Name     null.String    `json:"name"`
	Remark   null.String    `json:"remark"`
	Seq      null.Int       `json:"seq"`
	Filters  map[string]any `json:"-"`
}

// MarshalJSON folds Filters into the top-level object
func (r ListRequest) MarshalJSON() ([]byte, error) {
	type plain ListRequest
	b, err := json.Marshal(plain(r))
	if err != nil || len(r.Filters) == 0 {
		return b, err
	}
	out := make(map[string]any, len(r.Filters)+6)
	for k, v := range r.Filters {
		out[k] = v
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// OpenRequest is the payload of /browser/open
type OpenRequest struct {
	ID    string    `json:"id"`
	Args  []string  `json:"args,omitempty"`
	Queue null.Bool `json:"queue"`
}

// OpenResult is the handle returned by /browser/open
type OpenResult struct {
	WS          string      `json:"ws"`
	HTTP        string      `json:"http"`
	CoreVersion null.String `json:"coreVersion"`
	Driver      null.String `json:"driver"`
	Seq         null.Int    `json:"seq"`
	Name        null.String `json:"name"`
	Remark      null.String `json:"remark"`
	GroupID     null.String `json:"groupId"`
	PID         null.Int    `json:"pid"`
}

// RequiredFields implements Shape
func (OpenResult) RequiredFields() []Field {
	return []Field{
		{Path: "ws", Kind: KindString},
		{Path: "http", Kind: KindString},
	}
}

// BrowserUpdateRequest is the payload of /browser/update. A valid ID selects
// update, an invalid one create. Fields left null are not sent.
type BrowserUpdateRequest struct {
	ID           null.String `json:"id"`
	GroupID      null.String `json:"groupId"`
	Platform     null.String `json:"platform"`
	PlatformIcon null.String `json:"platformIcon"`
	URL          null.String `json:"url"`
	Name         string      `json:"name"`
	Remark       null.String `json:"remark"`
	UserName     null.String `json:"userName"`
	Password     null.String `json:"password"`
	Cookie       null.String `json:"cookie"`

	ProxyMethod   int         `json:"proxyMethod"`
	ProxyType     string      `json:"proxyType"`
	Host          null.String `json:"host"`
	Port          null.String `json:"port"`
	ProxyUserName null.String `json:"proxyUserName"`
	ProxyPassword null.String `json:"proxyPassword"`

	IP       null.String `json:"ip"`
	Country  null.String `json:"country"`
	Province null.String `json:"province"`
	City     null.String `json:"city"`

	// An empty object asks the service for a random fingerprint.
	BrowserFingerPrint map[string]any `json:"browserFingerPrint"`
}

// NewBrowserUpdateRequest returns a create request with the service defaults:
// custom proxy method, no proxy and a random fingerprint.
func NewBrowserUpdateRequest(name string) BrowserUpdateRequest {
	return BrowserUpdateRequest{
		Name:               name,
		ProxyMethod:        2,
		ProxyType:          "noproxy",
		BrowserFingerPrint: map[string]any{},
	}
}

// BrowserPartialUpdateRequest is the payload of /browser/update/partial
type BrowserPartialUpdateRequest struct {
	IDs                []string       `json:"ids"`
	Name               null.String    `json:"name"`
	Remark             null.String    `json:"remark"`
	GroupID            null.String    `json:"groupId"`
	BrowserFingerPrint map[string]any `json:"browserFingerPrint"`
}
