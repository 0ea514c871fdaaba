package importer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/github"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// Source selects an import procedure
type Source string

const (
	SourceFile   Source = "file"
	SourceURL    Source = "url"
	SourceGitHub Source = "github"
	SourcePWA    Source = "pwa"
)

// Emojis is the decorative icon palette for apps without an icon
var Emojis = []string{
	"⚡", "🚀", "🎯", "💡", "🔧", "🎨", "📊", "🌟", "🔮", "🎪",
	"🎭", "💫", "🌈", "🎲", "🎸", "🎹", "🎵", "🎬", "📱", "💻",
	"🖥️", "⌚", "📷", "🎮", "🕹️",
}

// Overrides are user supplied values applied on top of a draft
type Overrides struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Version     *string  `json:"version,omitempty"`
	Icon        *string  `json:"icon,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	LaunchMode  string   `json:"launchMode,omitempty"`
}

// Request describes one import
type Request struct {
	Source    Source
	Filename  string
	Data      []byte
	URL       string
	Overrides Overrides
}

// Pipeline runs imports
type Pipeline struct {
	cfg     config.ImportConfig
	http    *client.Client
	github  *github.Client
	logger  *logging.Logger
	metrics *monitoring.Metrics
	pick    func(n int) int
}

// New creates a pipeline. A nil github client is built on top of c.
func New(cfg config.ImportConfig, c *client.Client, gh *github.Client, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	if c == nil {
		c = client.NewClient(client.DefaultConfig())
	}
	if gh == nil {
		gh = github.New(c, cfg.GitHubAPI, cfg.GitHubToken)
	}
	if cfg.MaxArchiveBytes <= 0 {
		cfg.MaxArchiveBytes = config.Default().Import.MaxArchiveBytes
	}
	return &Pipeline{
		cfg:    cfg,
		http:   c,
		github: gh,
		logger: log.Named("importer"),
		pick:   rand.IntN,
	}
}

// WithMetrics attaches metrics
func (p *Pipeline) WithMetrics(m *monitoring.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Import runs the procedure selected by req.Source, applies the user's
// overrides, validates the result and assigns a decorative emoji when no
// icon could be resolved.
func (p *Pipeline) Import(ctx context.Context, req Request) (*types.Draft, error) {
	timer := monitoring.NewTimer()

	draft, err := p.dispatch(ctx, req)
	if err == nil {
		err = applyOverrides(draft, req.Overrides)
	}
	if err == nil {
		err = Validate(draft)
	}
	if err != nil {
		p.metrics.RecordImport(string(req.Source), reason(err), timer.Elapsed())
		p.logger.Warn("Import failed",
			zap.String("source", string(req.Source)),
			zap.Error(err),
		)
		return nil, err
	}

	p.decorate(draft)
	p.metrics.RecordImport(string(req.Source), "ok", timer.Elapsed())
	p.logger.Debug("Import prepared",
		zap.String("source", string(req.Source)),
		zap.String("name", draft.App.Name),
		zap.Int("files", len(draft.Files)),
	)
	return draft, nil
}

func (p *Pipeline) dispatch(ctx context.Context, req Request) (*types.Draft, error) {
	switch req.Source {
	case SourceFile:
		return p.ImportFile(ctx, req.Filename, req.Data)
	case SourceURL:
		return p.ImportURL(ctx, req.URL)
	case SourceGitHub:
		draft, _, err := p.ImportGitHub(ctx, req.URL)
		return draft, err
	case SourcePWA:
		return p.ImportPWA(ctx, req.URL)
	default:
		return nil, types.NewValidationError("source", fmt.Sprintf("unknown import source %q", req.Source))
	}
}

func applyOverrides(d *types.Draft, o Overrides) error {
	app := &d.App
	if o.Name != nil {
		app.Name = strings.TrimSpace(*o.Name)
	}
	if o.Description != nil {
		app.Description = strings.TrimSpace(*o.Description)
	}
	if o.Category != nil {
		app.Category = strings.TrimSpace(*o.Category)
	}
	if o.Version != nil && strings.TrimSpace(*o.Version) != "" {
		app.Version = strings.TrimSpace(*o.Version)
	}
	if o.Icon != nil {
		app.Icon = strings.TrimSpace(*o.Icon)
		app.UseCustomIcon = app.Icon != ""
	}
	if o.Tags != nil {
		app.Tags = utils.SplitTags(o.Tags...)
	}
	if o.LaunchMode != "" {
		mode, ok := types.NormalizeLaunchMode(o.LaunchMode)
		if !ok {
			return types.NewValidationError("launchMode", "must be one of tab, window, frame")
		}
		if app.Metadata == nil {
			app.Metadata = types.Bag{}
		}
		app.Metadata[types.MetaLaunchMode] = mode
	}
	return nil
}

// Validate checks the draft's user-visible fields
func Validate(d *types.Draft) error {
	if d == nil {
		return types.NewValidationError("draft", "is required")
	}
	if err := utils.ValidateName(d.App.Name); err != nil {
		return err
	}
	if err := utils.ValidateDescription(d.App.Description); err != nil {
		return err
	}
	if err := utils.ValidateCategory(d.App.Category); err != nil {
		return err
	}
	return utils.ValidateTags(d.App.Tags)
}

func (p *Pipeline) decorate(d *types.Draft) {
	if d.App.Icon == "" && d.App.Favicon == "" && d.App.Emoji == "" {
		d.App.Emoji = Emojis[p.pick(len(Emojis))]
	}
}

// heuristic clamps derived text to the field limits
func heuristic(s string, limit int) string {
	return utils.Truncate(strings.Join(strings.Fields(s), " "), limit)
}

func reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrValidation):
		return "validation"
	case errors.Is(err, types.ErrNoHTMLInArchive):
		return "no_html"
	case errors.Is(err, types.ErrRepoNotFound):
		return "repo_not_found"
	case errors.Is(err, types.ErrNetworkUnavailable):
		return "network"
	default:
		return "error"
	}
}
