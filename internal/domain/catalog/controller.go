package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Source supplies the full app list; satisfied by *store.Store
type Source interface {
	GetAllApps(ctx context.Context, f store.Filter) ([]types.App, error)
}

// Preferences persists the sort key and view mode across restarts
type Preferences interface {
	GetSettingString(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key string, value interface{}) error
}

// Config tunes the controller
type Config struct {
	Locale       string
	RecentWindow time.Duration
}

// View is a rendered catalog
type View struct {
	State      State       `json:"state"`
	Apps       []types.App `json:"apps"`
	Categories []Category  `json:"categories"`
	FilterTags []string    `json:"filterTags"`
	Counts     Counts      `json:"counts"`
}

// Controller holds the loaded list and the current state
type Controller struct {
	source  Source
	prefs   Preferences
	opts    Options
	now     func() time.Time
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu         sync.RWMutex
	loaded     bool
	apps       []types.App
	state      State
	visible    []types.App
	categories []Category
	tags       []string
}

// Option customizes a Controller
type Option func(*Controller)

// WithPreferences persists sort and view mode through prefs
func WithPreferences(prefs Preferences) Option {
	return func(c *Controller) { c.prefs = prefs }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMetrics attaches metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a controller; call Reload before reading it
func New(source Source, cfg Config, log *logging.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn("Unknown catalog locale, using English", zap.String("locale", cfg.Locale))
		tag = language.English
	}

	c := &Controller{
		source: source,
		opts:   Options{Locale: tag, RecentWindow: cfg.RecentWindow}.withDefaults(),
		now:    time.Now,
		logger: log.Named("catalog"),
		state:  DefaultState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reload refetches every app and reapplies the current state. The first
// reload also restores persisted preferences.
func (c *Controller) Reload(ctx context.Context) error {
	apps, err := c.source.GetAllApps(ctx, store.Filter{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.restorePreferences(ctx)
		c.loaded = true
	}
	c.apps = apps
	c.categories = Categories(apps, c.opts.Locale)
	c.tags = FilterTags(apps, c.opts.Locale)
	c.refilter()
	c.metrics.SetCatalogApps(len(apps))
	return nil
}

func (c *Controller) restorePreferences(ctx context.Context) {
	if c.prefs == nil {
		return
	}
	if sortBy, err := c.prefs.GetSettingString(ctx, store.SettingSortBy, ""); err == nil && SortKey(sortBy).Valid() {
		c.state.Sort = SortKey(sortBy)
	}
	if mode, err := c.prefs.GetSettingString(ctx, store.SettingViewMode, ""); err == nil && validMode(mode) {
		c.state.ViewMode = mode
	}
}

// refilter must be called with mu held
func (c *Controller) refilter() {
	c.visible = Apply(c.apps, c.state, c.now(), c.opts)
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.FilterTags = append([]string{}, c.state.FilterTags...)
	return s
}

// Visible returns the filtered, sorted apps
func (c *Controller) Visible() []types.App {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.App(nil), c.visible...)
}

// Snapshot returns the rendered catalog. The recent view is re-evaluated
// against the current time.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refilter()

	s := c.state
	s.FilterTags = append([]string{}, c.state.FilterTags...)
	return View{
		State:      s,
		Apps:       append([]types.App{}, c.visible...),
		Categories: append([]Category{}, c.categories...),
		FilterTags: append([]string{}, c.tags...),
		Counts:     Count(c.apps, c.now(), c.opts.RecentWindow),
	}
}

// SetView selects all, favorites, recent or a category
func (c *Controller) SetView(view string) {
	c.update(func(s *State) { s.View = normalizeView(view) })
}

// SetSearch sets the free-text query
func (c *Controller) SetSearch(q string) {
	c.update(func(s *State) { s.Search = q })
}

// SetFilterTags replaces the active filter tags
func (c *Controller) SetFilterTags(tags []string) {
	c.update(func(s *State) { s.FilterTags = cleanTags(tags) })
}

// ToggleFilterTag activates tag, or deactivates it when already active
func (c *Controller) ToggleFilterTag(tag string) {
	c.update(func(s *State) {
		for i, t := range s.FilterTags {
			if t == tag {
				s.FilterTags = append(s.FilterTags[:i:i], s.FilterTags[i+1:]...)
				return
			}
		}
		s.FilterTags = cleanTags(append(s.FilterTags, tag))
	})
}

// SetSort changes the order and persists it
func (c *Controller) SetSort(ctx context.Context, key SortKey) error {
	if !key.Valid() {
		return types.NewValidationError("sort", fmt.Sprintf("unknown sort key %q", key))
	}
	c.update(func(s *State) { s.Sort = key })
	return c.persist(ctx, store.SettingSortBy, string(key))
}

// SetViewMode switches between grid and list and persists it
func (c *Controller) SetViewMode(ctx context.Context, mode string) error {
	if !validMode(mode) {
		return types.NewValidationError("viewMode", "must be grid or list")
	}
	c.update(func(s *State) { s.ViewMode = mode })
	return c.persist(ctx, store.SettingViewMode, mode)
}

// SetState replaces the whole state after validating it
func (c *Controller) SetState(ctx context.Context, next State) error {
	if next.Sort == "" {
		next.Sort = SortLastUsed
	}
	if next.ViewMode == "" {
		next.ViewMode = ModeGrid
	}
	if !next.Sort.Valid() {
		return types.NewValidationError("sort", fmt.Sprintf("unknown sort key %q", next.Sort))
	}
	if !validMode(next.ViewMode) {
		return types.NewValidationError("viewMode", "must be grid or list")
	}
	next.View = normalizeView(next.View)
	next.FilterTags = cleanTags(next.FilterTags)

	c.update(func(s *State) { *s = next })
	if err := c.persist(ctx, store.SettingSortBy, string(next.Sort)); err != nil {
		return err
	}
	return c.persist(ctx, store.SettingViewMode, next.ViewMode)
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	c.refilter()
}

func (c *Controller) persist(ctx context.Context, key, value string) error {
	if c.prefs == nil {
		return nil
	}
	return c.prefs.SetSetting(ctx, key, value)
}

func validMode(mode string) bool {
	return mode == ModeGrid || mode == ModeList
}

func normalizeView(view string) string {
	view = strings.TrimSpace(view)
	if view == "" {
		return ViewAll
	}
	return view
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
