package types

import "time"

// File content encodings
const (
	EncodingText   = "utf-8"
	EncodingBase64 = "base64"
)

// AppFile is a file extracted from an imported archive
type AppFile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AppID    string `gorm:"index;not null;size:40" json:"appId"`
	Filename string `gorm:"not null" json:"filename"`
	Content  string `gorm:"type:text" json:"content"`
	Encoding string `gorm:"size:16;default:utf-8" json:"encoding"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Setting is a persisted preference; Value holds JSON text
type Setting struct {
	Key          string    `gorm:"primaryKey;size:128" json:"key"`
	Value        string    `gorm:"type:text" json:"value"`
	LastModified time.Time `json:"lastModified"`
}

// Sync actions appended by the store
const (
	ActionAppInstalled = "app_installed"
	ActionAppUpdated   = "app_updated"
	ActionAppDeleted   = "app_deleted"
	ActionDataImported = "data_imported"
)

// SyncEvent is an entry in the append-only mutation log
type SyncEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"index;size:64" json:"action"`
	Data      Bag       `gorm:"serializer:json" json:"data"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Synced    bool      `gorm:"index" json:"synced"`
	DeviceID  string    `gorm:"size:64" json:"deviceId"`
}

// UsageTally counts launches of one app on one local calendar day
type UsageTally struct {
	Date  string `gorm:"primaryKey;size:10" json:"date"`
	AppID string `gorm:"primaryKey;size:40" json:"appId"`
	Count int64  `gorm:"not null;default:0" json:"count"`
}

// DayLayout formats UsageTally dates
const DayLayout = "2006-01-02"

// StoreEntry is an app-store listing
type StoreEntry struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"index;not null" json:"name"`
	Description string   `json:"description"`
	Author      string   `gorm:"index" json:"author"`
	GitHubURL   string   `gorm:"column:github_url" json:"githubUrl"`
	Rating      float64  `gorm:"index" json:"rating"`
	Downloads   int64    `gorm:"index" json:"downloads"`
	Featured    bool     `gorm:"index" json:"featured"`
	Categories  []string `gorm:"serializer:json" json:"categories"`
}

// StoreStats summarizes store contents
type StoreStats struct {
	TotalApps     int64      `json:"totalApps"`
	TotalFiles    int64      `json:"totalFiles"`
	SettingsCount int64      `json:"settingsCount"`
	FavoriteApps  int64      `json:"favoriteApps"`
	Categories    int64      `json:"categories"`
	LastInstall   *time.Time `json:"lastInstall,omitempty"`
	DBSize        int64      `json:"dbSize"`
}

// SnapshotVersion is written into every exported snapshot
const SnapshotVersion = "1.0.0"

// Snapshot is the full-store export document
type Snapshot struct {
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	DeviceID  string        `json:"deviceId"`
	Data      *SnapshotData `json:"data"`
}

// SnapshotData carries the exported rows
type SnapshotData struct {
	Apps       []App        `json:"apps"`
	Settings   []Setting    `json:"settings"`
	SyncEvents []SyncEvent  `json:"syncEvents"`
	AppFiles   []AppFile    `json:"appFiles,omitempty"`
	Usage      []UsageTally `json:"usage,omitempty"`
}
