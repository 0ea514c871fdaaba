package types

import "time"

// AppType discriminates how an app is stored and launched
type AppType string

const (
	AppTypeHTML   AppType = "html"   // single HTML document stored inline
	AppTypeZip    AppType = "zip"    // archive import, main document inline plus files
	AppTypeWebApp AppType = "webapp" // reference to a remote URL
	AppTypePWA    AppType = "pwa"    // reference to a progressive web app
	AppTypeGitHub AppType = "github" // reference to a GitHub repository
)

// Valid reports whether t is a known app type
func (t AppType) Valid() bool {
	switch t {
	case AppTypeHTML, AppTypeZip, AppTypeWebApp, AppTypePWA, AppTypeGitHub:
		return true
	}
	return false
}

// Inline reports whether records of this type carry their document
func (t AppType) Inline() bool {
	return t == AppTypeHTML || t == AppTypeZip
}

// Bag is an open key/value map persisted as JSON and never interpreted
// beyond the few keys the launcher reads explicitly.
type Bag map[string]interface{}

// String returns the string value stored under key, or ""
func (b Bag) String(key string) string {
	if b == nil {
		return ""
	}
	if s, ok := b[key].(string); ok {
		return s
	}
	return ""
}

// Well-known metadata keys
const (
	MetaLaunchMode   = "launchMode"
	MetaReachability = "reachability"
	MetaSource       = "source"
)

// Launch modes stored under MetaLaunchMode
const (
	LaunchTab    = "tab"
	LaunchWindow = "window"
	LaunchFrame  = "frame"
)

// NormalizeLaunchMode maps legacy mode names onto the current ones and
// reports whether mode is known. The empty mode is valid and means tab.
func NormalizeLaunchMode(mode string) (string, bool) {
	switch mode {
	case "", LaunchTab, "newpage":
		return LaunchTab, true
	case LaunchWindow:
		return LaunchWindow, true
	case LaunchFrame, "iframe":
		return LaunchFrame, true
	}
	return "", false
}

// Reachability values recorded for URL imports
const (
	Reachable  = "reachable"
	Unverified = "unverified"
)

// DefaultCategory is used when an app has no category
const DefaultCategory = "uncategorized"

// App is an installed application record
type App struct {
	ID            string    `gorm:"primaryKey;size:40" json:"id"`
	Name          string    `gorm:"not null;index" json:"name"`
	Content       *string   `gorm:"type:text" json:"content,omitempty"`
	Type          AppType   `gorm:"size:16;index" json:"type"`
	URL           string    `json:"url,omitempty"`
	GitHubURL     string    `gorm:"column:github_url" json:"githubUrl,omitempty"`
	Favicon       string    `json:"favicon,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Emoji         string    `json:"emoji,omitempty"`
	Author        string    `json:"author,omitempty"`
	Description   string    `json:"description,omitempty"`
	Category      string    `gorm:"index" json:"category"`
	Version       string    `json:"version,omitempty"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	UseCustomIcon bool      `json:"useCustomIcon"`
	InstallDate   time.Time `gorm:"index" json:"installDate"`
	LastUsed      time.Time `gorm:"index" json:"lastUsed"`
	UsageCount    int64     `gorm:"not null;default:0" json:"usageCount"`
	Favorite      bool      `gorm:"index" json:"favorite"`
	Manifest      Bag       `gorm:"serializer:json" json:"manifest,omitempty"`
	Permissions   []string  `gorm:"serializer:json" json:"permissions,omitempty"`
	Metadata      Bag       `gorm:"serializer:json" json:"metadata,omitempty"`
}

// HasContent reports whether the record carries an inline document
func (a *App) HasContent() bool {
	return a.Content != nil && *a.Content != ""
}

// AppUpdate is a partial update; nil fields are left untouched
type AppUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Author        *string   `json:"author,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Version       *string   `json:"version,omitempty"`
	Emoji         *string   `json:"emoji,omitempty"`
	Icon          *string   `json:"icon,omitempty"`
	Favicon       *string   `json:"favicon,omitempty"`
	URL           *string   `json:"url,omitempty"`
	Content       *string   `json:"content,omitempty"`
	UseCustomIcon *bool     `json:"useCustomIcon,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	Metadata      Bag       `json:"metadata,omitempty"`
}

// Draft is a normalized import result awaiting installation
type Draft struct {
	App    App       `json:"app"`
	Files  []AppFile `json:"files,omitempty"`
	Source AppType   `json:"source"`
}
