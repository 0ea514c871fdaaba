package backup

import (
	"strings"
	"time"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// legacyDateLayout is the it-IT locale timestamp older versions stored
const legacyDateLayout = "2/1/2006, 15:04:05"

// ProfileApp is an app as written to profiles and legacy snapshots. It
// accepts both the current field set and the legacy one: tags as a comma
// separated string, genre instead of category, dateAdded instead of
// installDate.
type ProfileApp struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Content       *string     `json:"content,omitempty"`
	Type          string      `json:"type"`
	URL           string      `json:"url,omitempty"`
	GitHubURL     string      `json:"githubUrl,omitempty"`
	Favicon       string      `json:"favicon,omitempty"`
	Icon          string      `json:"icon,omitempty"`
	Emoji         string      `json:"emoji,omitempty"`
	Author        string      `json:"author,omitempty"`
	Description   string      `json:"description,omitempty"`
	Category      string      `json:"category,omitempty"`
	Genre         string      `json:"genre,omitempty"`
	Version       string      `json:"version,omitempty"`
	Tags          interface{} `json:"tags"`
	UseCustomIcon bool        `json:"useCustomIcon"`
	UsageCount    int64       `json:"usageCount"`
	Favorite      bool        `json:"favorite"`
	InstallDate   string      `json:"installDate,omitempty"`
	LastUsed      string      `json:"lastUsed,omitempty"`
	DateAdded     string      `json:"dateAdded,omitempty"`
	Manifest      types.Bag   `json:"manifest,omitempty"`
	Permissions   []string    `json:"permissions,omitempty"`
	Metadata      types.Bag   `json:"metadata,omitempty"`
}

func fromApp(a *types.App) ProfileApp {
	return ProfileApp{
		ID:            a.ID,
		Name:          a.Name,
		Content:       a.Content,
		Type:          string(a.Type),
		URL:           a.URL,
		GitHubURL:     a.GitHubURL,
		Favicon:       a.Favicon,
		Icon:          a.Icon,
		Emoji:         a.Emoji,
		Author:        a.Author,
		Description:   a.Description,
		Category:      a.Category,
		Version:       a.Version,
		Tags:          append([]string{}, a.Tags...),
		UseCustomIcon: a.UseCustomIcon,
		UsageCount:    a.UsageCount,
		Favorite:      a.Favorite,
		InstallDate:   a.InstallDate.UTC().Format(time.RFC3339Nano),
		LastUsed:      a.LastUsed.UTC().Format(time.RFC3339Nano),
		Manifest:      a.Manifest,
		Permissions:   a.Permissions,
		Metadata:      a.Metadata,
	}
}

// toApp converts p into a record. Unknown types fall back to html when
// content is present and webapp otherwise.
func (p *ProfileApp) toApp() types.App {
	app := types.App{
		ID:            p.ID,
		Name:          strings.TrimSpace(p.Name),
		Content:       p.Content,
		Type:          types.AppType(p.Type),
		URL:           p.URL,
		GitHubURL:     p.GitHubURL,
		Favicon:       p.Favicon,
		Icon:          p.Icon,
		Emoji:         p.Emoji,
		Author:        p.Author,
		Description:   p.Description,
		Category:      firstNonEmpty(p.Category, p.Genre),
		Version:       p.Version,
		Tags:          tagList(p.Tags),
		UseCustomIcon: p.UseCustomIcon,
		UsageCount:    p.UsageCount,
		Favorite:      p.Favorite,
		Manifest:      p.Manifest,
		Permissions:   p.Permissions,
		Metadata:      p.Metadata,
	}
	if !app.Type.Valid() {
		if app.HasContent() {
			app.Type = types.AppTypeHTML
		} else {
			app.Type = types.AppTypeWebApp
		}
	}
	if app.UsageCount < 0 {
		app.UsageCount = 0
	}
	app.InstallDate = parseTime(firstNonEmpty(p.InstallDate, p.DateAdded))
	app.LastUsed = parseTime(p.LastUsed)
	return app
}

func tagList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return orEmpty(utils.SplitTags(t))
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return orEmpty(utils.SplitTags(parts...))
	case []string:
		return orEmpty(utils.SplitTags(t...))
	}
	return []string{}
}

func orEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// parseTime accepts RFC 3339 and the legacy it-IT layout; anything else
// yields the zero time, which the store replaces with now
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyDateLayout, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// tallies flattens day -> app id -> count
func tallies(stats map[string]map[string]int64) []types.UsageTally {
	var out []types.UsageTally
	for day, apps := range stats {
		if _, err := time.Parse(types.DayLayout, day); err != nil {
			continue
		}
		for appID, n := range apps {
			if n > 0 {
				out = append(out, types.UsageTally{Date: day, AppID: appID, Count: n})
			}
		}
	}
	return out
}
