package catalog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// Views with special meaning; any other view is a category name
const (
	ViewAll       = "all"
	ViewFavorites = "favorites"
	ViewRecent    = "recent"
)

// SortKey selects the catalog order
type SortKey string

const (
	SortLastUsed    SortKey = "lastUsed"
	SortName        SortKey = "name"
	SortInstallDate SortKey = "installDate"
	SortCategory    SortKey = "category"
)

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortLastUsed, SortName, SortInstallDate, SortCategory:
		return true
	}
	return false
}

// View modes
const (
	ModeGrid = "grid"
	ModeList = "list"
)

// DefaultRecentWindow bounds the recent view
const DefaultRecentWindow = 30 * 24 * time.Hour

// State is the user's current catalog selection
type State struct {
	View       string   `json:"view"`
	Sort       SortKey  `json:"sort"`
	ViewMode   string   `json:"viewMode"`
	Search     string   `json:"search"`
	FilterTags []string `json:"filterTags"`
}

// DefaultState shows everything, most recently used first
func DefaultState() State {
	return State{View: ViewAll, Sort: SortLastUsed, ViewMode: ModeGrid, FilterTags: []string{}}
}

// Options tune Apply
type Options struct {
	Locale       language.Tag
	RecentWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.Locale == language.Und {
		o.Locale = language.English
	}
	if o.RecentWindow <= 0 {
		o.RecentWindow = DefaultRecentWindow
	}
	return o
}

// Apply filters and sorts apps for s. The filters are conjunctive: view
// scope, free-text search over name, author and description, then the tag
// filter. now anchors the recent view.
func Apply(apps []types.App, s State, now time.Time, opts Options) []types.App {
	opts = opts.withDefaults()
	search := strings.ToLower(strings.TrimSpace(s.Search))

	out := make([]types.App, 0, len(apps))
	for _, app := range apps {
		if !inView(&app, s.View, now, opts.RecentWindow) {
			continue
		}
		if search != "" && !matchesSearch(&app, search) {
			continue
		}
		if len(s.FilterTags) > 0 && !matchesTags(&app, s.FilterTags) {
			continue
		}
		out = append(out, app)
	}

	sortApps(out, s.Sort, collate.New(opts.Locale))
	return out
}

// CategoryOf returns the app's category, defaulting to uncategorized
func CategoryOf(app *types.App) string {
	if c := strings.TrimSpace(app.Category); c != "" {
		return c
	}
	return types.DefaultCategory
}

func inView(app *types.App, view string, now time.Time, window time.Duration) bool {
	switch view {
	case "", ViewAll:
		return true
	case ViewFavorites:
		return app.Favorite
	case ViewRecent:
		return !app.LastUsed.IsZero() && now.Sub(app.LastUsed) <= window
	default:
		return CategoryOf(app) == view
	}
}

func matchesSearch(app *types.App, term string) bool {
	for _, field := range []string{app.Name, app.Author, app.Description} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesTags(app *types.App, active []string) bool {
	joined := strings.ToLower(strings.Join(app.Tags, ","))
	category := CategoryOf(app)
	for _, tag := range active {
		if tag == "" {
			continue
		}
		if strings.Contains(joined, strings.ToLower(tag)) || tag == category {
			return true
		}
	}
	return false
}

func sortApps(apps []types.App, key SortKey, col *collate.Collator) {
	var less func(a, b *types.App) bool
	switch key {
	case SortName:
		less = func(a, b *types.App) bool { return col.CompareString(a.Name, b.Name) < 0 }
	case SortInstallDate:
		less = func(a, b *types.App) bool { return a.InstallDate.After(b.InstallDate) }
	case SortCategory:
		less = func(a, b *types.App) bool {
			if c := col.CompareString(CategoryOf(a), CategoryOf(b)); c != 0 {
				return c < 0
			}
			return col.CompareString(a.Name, b.Name) < 0
		}
	default:
		less = func(a, b *types.App) bool { return a.LastUsed.After(b.LastUsed) }
	}
	sort.SliceStable(apps, func(i, j int) bool { return less(&apps[i], &apps[j]) })
}

// Category is one sidebar group
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories groups apps by category, alphabetically
func Categories(apps []types.App, locale language.Tag) []Category {
	counts := make(map[string]int)
	for i := range apps {
		counts[CategoryOf(&apps[i])]++
	}
	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, Count: n})
	}
	col := collate.New(Options{Locale: locale}.withDefaults().Locale)
	sort.Slice(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	return out
}

// FilterTags is the sorted union of every tag and every category. Tags
// stored as legacy comma strings are split.
func FilterTags(apps []types.App, locale language.Tag) []string {
	seen := make(map[string]bool)
	for i := range apps {
		for _, tag := range utils.SplitTags(apps[i].Tags...) {
			seen[tag] = true
		}
		seen[CategoryOf(&apps[i])] = true
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	col := collate.New(Options{Locale: locale}.withDefaults().Locale)
	sort.Slice(out, func(i, j int) bool { return col.CompareString(out[i], out[j]) < 0 })
	return out
}

// Counts summarizes the unfiltered list
type Counts struct {
	All       int `json:"all"`
	Favorites int `json:"favorites"`
	Recent    int `json:"recent"`
}

// Count tallies apps for the sidebar
func Count(apps []types.App, now time.Time, window time.Duration) Counts {
	if window <= 0 {
		window = DefaultRecentWindow
	}
	c := Counts{All: len(apps)}
	for i := range apps {
		if apps[i].Favorite {
			c.Favorites++
		}
		if inView(&apps[i], ViewRecent, now, window) {
			c.Recent++
		}
	}
	return c
}
