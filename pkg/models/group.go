package models

import "gopkg.in/guregu/null.v3"

// Group is a named folder of browser profiles
type Group struct {
	ID        string   `json:"id"`
	GroupName string   `json:"groupName"`
	SortNum   null.Int `json:"sortNum"`
}

// RequiredFields implements Shape
func (Group) RequiredFields() []Field {
	return []Field{
		{Path: "id", Kind: KindString},
		{Path: "groupName", Kind: KindString},
	}
}

// GroupList is one page of /group/list
type GroupList struct {
	TotalNum int     `json:"totalNum"`
	List     []Group `json:"list"`
}

// RequiredFields implements Shape
func (GroupList) RequiredFields() []Field {
	return []Field{{Path: "totalNum", Kind: KindNumber}}
}

// GroupRequest is the payload of /group/add and /group/edit
type GroupRequest struct {
	ID        null.String `json:"id"`
	GroupName string      `json:"groupName"`
	SortNum   null.Int    `json:"sortNum"`
}
