package launch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/metadata"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Display strategies
const (
	StrategyUnwrap   = "unwrap"   // iframe wrapper opened at its embedded URL
	StrategyDocument = "document" // inline content served as a document
	StrategyURL      = "url"      // remote reference opened directly
)

// Source is what a browsing context displays: a URL or an HTML document
type Source struct {
	URL           string `json:"url,omitempty"`
	Document      string `json:"-"`
	MimeType      string `json:"mimeType,omitempty"`
	Mode          string `json:"mode"`
	ReleaseOnLoad bool   `json:"releaseOnLoad"`
}

// IsDocument reports whether the source carries an inline document
func (s Source) IsDocument() bool {
	return s.URL == ""
}

// Presenter opens and closes named browsing contexts
type Presenter interface {
	OpenContext(ctx context.Context, name string, src Source) error
	CloseContext(ctx context.Context, name string) error
}

// Store is the persistence the controller needs; satisfied by *store.Store
type Store interface {
	GetApp(ctx context.Context, id string) (*types.App, error)
	RecordLaunch(ctx context.Context, id string, at time.Time) (*types.App, error)
}

// Result describes a completed launch
type Result struct {
	App      *types.App `json:"app"`
	Context  string     `json:"context"`
	Strategy string     `json:"strategy"`
	Source   Source     `json:"source"`
}

// Controller launches apps
type Controller struct {
	store     Store
	presenter Presenter
	grid      *FrameGrid
	now       func() time.Time
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// Option customizes a Controller
type Option func(*Controller)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMetrics attaches metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// NewController creates a controller with a frame grid in the default layout
func NewController(s Store, p Presenter, log *logging.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	c := &Controller{
		store:     s,
		presenter: p,
		grid:      NewFrameGrid(p, DefaultLayout),
		now:       time.Now,
		logger:    log.Named("launch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grid returns the frame grid
func (c *Controller) Grid() *FrameGrid {
	return c.grid
}

// AppContext names the browsing context for an app document
func AppContext(appID string) string {
	return "sakai_app_" + appID
}

// WebAppContext names the browsing context for an app URL
func WebAppContext(appID string) string {
	return "sakai_webapp_" + appID
}

// DocumentMimeType is served for inline documents, which are stored as UTF-8
const DocumentMimeType = "text/html; charset=utf-8"

// Resolve picks the display strategy for app without side effects
func Resolve(app *types.App) (name, strategy string, src Source, err error) {
	mode, ok := types.NormalizeLaunchMode(app.Metadata.String(types.MetaLaunchMode))
	if !ok {
		mode = types.LaunchTab
	}

	if app.HasContent() {
		// web apps carried over from older versions are stored as iframe wrappers
		if !app.Type.Inline() {
			if inner := metadata.ExtractIframeSource(*app.Content); isWebURL(inner) {
				return WebAppContext(app.ID), StrategyUnwrap, Source{URL: inner, Mode: mode}, nil
			}
		}
		return AppContext(app.ID), StrategyDocument, Source{
			Document:      *app.Content,
			MimeType:      DocumentMimeType,
			Mode:          mode,
			ReleaseOnLoad: true,
		}, nil
	}

	if target := firstNonEmpty(app.URL, app.GitHubURL); target != "" {
		return WebAppContext(app.ID), StrategyURL, Source{URL: target, Mode: mode}, nil
	}
	return "", "", Source{}, fmt.Errorf("%w: %s", types.ErrNothingToLaunch, app.ID)
}

// Launch records the launch, then opens the app. Relaunching an app
// targets the same named context.
func (c *Controller) Launch(ctx context.Context, app *types.App) (*Result, error) {
	if app == nil {
		return nil, types.NewValidationError("app", "is required")
	}
	name, strategy, src, err := Resolve(app)
	if err != nil {
		return nil, err
	}

	updated, err := c.store.RecordLaunch(ctx, app.ID, c.now())
	if err != nil {
		return nil, err
	}
	if err := c.presenter.OpenContext(ctx, name, src); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	c.metrics.RecordLaunch(string(app.Type), strategy)
	c.logger.Info("App launched",
		zap.String("id", app.ID),
		zap.String("context", name),
		zap.String("strategy", strategy),
		zap.String("mode", src.Mode),
	)
	return &Result{App: updated, Context: name, Strategy: strategy, Source: src}, nil
}

// LaunchByID loads and launches the app with id
func (c *Controller) LaunchByID(ctx context.Context, id string) (*Result, error) {
	app, err := c.store.GetApp(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Launch(ctx, app)
}

// OpenInFrame records a launch and loads the app into a grid slot
func (c *Controller) OpenInFrame(ctx context.Context, slot int, id string) (*Slot, error) {
	if err := c.grid.check(slot); err != nil {
		return nil, err
	}
	app, err := c.store.GetApp(ctx, id)
	if err != nil {
		return nil, err
	}
	_, strategy, src, err := Resolve(app)
	if err != nil {
		return nil, err
	}
	// slot contexts are released on close, not on load
	src.ReleaseOnLoad = false
	src.Mode = types.LaunchFrame

	if _, err := c.store.RecordLaunch(ctx, app.ID, c.now()); err != nil {
		return nil, err
	}
	s, err := c.grid.Load(ctx, slot, app, src)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordLaunch(string(app.Type), "frame_"+strategy)
	return s, nil
}

func isWebURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
