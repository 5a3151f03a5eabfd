package models

import (
	"encoding/json"

	"gopkg.in/guregu/null.v3"
)

// IDRequest addresses a single profile
type IDRequest struct {
	ID string `json:"id"`
}

// IDsRequest addresses several profiles
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// SeqsRequest addresses profiles by sequence number
type SeqsRequest struct {
	Seqs []int `json:"seqs"`
}

// GroupMoveRequest is the payload of /browser/group/update
type GroupMoveRequest struct {
	GroupID    string   `json:"groupId"`
	BrowserIDs []string `json:"browserIds"`
}

// RemarkRequest is the payload of /browser/remark/update
type RemarkRequest struct {
	BrowserIDs []string `json:"browserIds"`
	Remark     string   `json:"remark"`
}

// ProxyUpdateRequest is the payload of /browser/proxy/update
type ProxyUpdateRequest struct {
	IDs                 []string    `json:"ids"`
	IPCheckService      string      `json:"ipCheckService"`
	ProxyMethod         int         `json:"proxyMethod"`
	ProxyType           null.String `json:"proxyType"`
	Host                null.String `json:"host"`
	Port                null.Int    `json:"port"`
	ProxyUserName       null.String `json:"proxyUserName"`
	ProxyPassword       null.String `json:"proxyPassword"`
	DynamicIPURL        null.String `json:"dynamicIpUrl"`
	DynamicIPChannel    null.String `json:"dynamicIpChannel"`
	IsDynamicIPChangeIP null.Bool   `json:"isDynamicIpChangeIp"`
	IsGlobalProxyInfo   null.Bool   `json:"isGlobalProxyInfo"`
	IsIPv6              null.Bool   `json:"isIpv6"`
}

// CheckAgentRequest is the payload of /checkagent
type CheckAgentRequest struct {
	Host          string      `json:"host"`
	Port          string      `json:"port"`
	ProxyType     string      `json:"proxyType"`
	ProxyUserName null.String `json:"proxyUserName"`
	ProxyPassword null.String `json:"proxyPassword"`
	CheckExists   null.Int    `json:"checkExists"`
}

// Cookie is a browser cookie as exchanged with the cookie endpoints
type Cookie struct {
	Name     string      `json:"name"`
	Value    string      `json:"value"`
	Domain   string      `json:"domain"`
	Path     null.String `json:"path"`
	Expires  null.Float  `json:"expires"`
	HTTPOnly null.Bool   `json:"httpOnly"`
	Secure   null.Bool   `json:"secure"`
	SameSite null.String `json:"sameSite"`
}

// CookiesSetRequest is the payload of /browser/cookies/set
type CookiesSetRequest struct {
	BrowserID string   `json:"browserId"`
	Cookies   []Cookie `json:"cookies"`
}

// CookiesClearRequest is the payload of /browser/cookies/clear
type CookiesClearRequest struct {
	BrowserID  string `json:"browserId"`
	SaveSynced bool   `json:"saveSynced"`
}

// CookiesFormatRequest is the payload of /browser/cookies/format. Cookie is
// either a raw cookie string or a list of cookie objects.
type CookiesFormatRequest struct {
	Cookie   json.RawMessage `json:"cookie"`
	Hostname null.String     `json:"hostname"`
}

// BrowserIDRequest addresses a profile by the browserId key
type BrowserIDRequest struct {
	BrowserID string `json:"browserId"`
}

// WindowBoundsRequest is the payload of /windowbounds
type WindowBoundsRequest struct {
	Type    null.String `json:"type"`
	StartX  null.Int    `json:"startX"`
	StartY  null.Int    `json:"startY"`
	Width   null.Int    `json:"width"`
	Height  null.Int    `json:"height"`
	Col     null.Int    `json:"col"`
	SpaceX  null.Int    `json:"spaceX"`
	SpaceY  null.Int    `json:"spaceY"`
	OffsetX null.Int    `json:"offsetX"`
	OffsetY null.Int    `json:"offsetY"`
	SeqList []int       `json:"seqlist,omitempty"`
}

// AutopasteRequest is the payload of /autopaste
type AutopasteRequest struct {
	BrowserID string `json:"browserId"`
	URL       string `json:"url"`
}

// FileRequest is the payload of the /utils read endpoints
type FileRequest struct {
	Filepath string `json:"filepath"`
}
