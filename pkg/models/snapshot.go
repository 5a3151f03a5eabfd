package models

import "time"

// Snapshot describes a stored copy of a profile's cookies
type Snapshot struct {
	ID        string    `json:"id"`
	BrowserID string    `json:"browserId"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// SnapshotFile is the on-disk form of a snapshot
type SnapshotFile struct {
	Snapshot
	Cookies []Cookie `json:"cookies"`
}
