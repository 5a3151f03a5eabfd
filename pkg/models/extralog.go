package models

import "gopkg.in/guregu/null.v3"

// The local log endpoints use snake_case on the wire.

// ExtralogItem is one entry of the service's local key/value log library
type ExtralogItem struct {
	ID           int64       `json:"id"`
	LogKey       string      `json:"log_key"`
	LogName      string      `json:"log_name"`
	LogValue     string      `json:"log_value"`
	LogType      string      `json:"log_type"`
	LogDesc      null.String `json:"log_desc"`
	LogRemark    null.String `json:"log_remark"`
	LogExtraInfo null.String `json:"log_extra_info"`
	CreatedTime  null.String `json:"created_time"`
	UpdatedTime  null.String `json:"updated_time"`
}

// RequiredFields implements Shape
func (ExtralogItem) RequiredFields() []Field {
	return []Field{{Path: "id", Kind: KindNumber}}
}

// ExtralogList is one page of /extralog/list
type ExtralogList struct {
	TotalNum int            `json:"totalNum"`
	List     []ExtralogItem `json:"list"`
}

// RequiredFields implements Shape
func (ExtralogList) RequiredFields() []Field {
	return []Field{{Path: "totalNum", Kind: KindNumber}}
}

// ExtralogListRequest is the payload of /extralog/list
type ExtralogListRequest struct {
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	SearchKey   string      `json:"search_key"`
	SearchValue string      `json:"search_value"`
	OrderBy     null.String `json:"order_by"`
}

// ExtralogRequest is the payload of /extralog/add and /extralog/update.
// ID is only sent for updates.
type ExtralogRequest struct {
	ID           null.Int    `json:"id"`
	LogKey       null.String `json:"log_key"`
	LogName      null.String `json:"log_name"`
	LogValue     null.String `json:"log_value"`
	LogType      null.String `json:"log_type"`
	LogDesc      null.String `json:"log_desc"`
	LogRemark    null.String `json:"log_remark"`
	LogExtraInfo null.String `json:"log_extra_info"`
}
