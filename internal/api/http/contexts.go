package http

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/launch"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
)

// Context registry errors
var (
	ErrUnknownContext  = errors.New("unknown browsing context")
	ErrContextReleased = errors.New("browsing context already loaded")
)

// ContextInfo describes an open browsing context
type ContextInfo struct {
	Name     string        `json:"name"`
	Source   launch.Source `json:"source"`
	OpenedAt time.Time     `json:"openedAt"`
	Loaded   bool          `json:"loaded"`
}

type browsingContext struct {
	info    ContextInfo
	release sync.Once
}

// ContextRegistry keeps the sources of named browsing contexts until the
// client loads them. Opening a name that is already open replaces its
// source. A source with ReleaseOnLoad is dropped after the first load;
// every source is dropped exactly once, at the latest on close.
type ContextRegistry struct {
	mu       sync.Mutex
	contexts map[string]*browsingContext
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time
}

// NewContextRegistry creates an empty registry
func NewContextRegistry(log *logging.Logger, metrics *monitoring.Metrics) *ContextRegistry {
	if log == nil {
		log = logging.NewNop()
	}
	return &ContextRegistry{
		contexts: make(map[string]*browsingContext),
		logger:   log.Named("contexts"),
		metrics:  metrics,
		now:      time.Now,
	}
}

// OpenContext implements launch.Presenter
func (r *ContextRegistry) OpenContext(_ context.Context, name string, src launch.Source) error {
	bc := &browsingContext{info: ContextInfo{Name: name, Source: src, OpenedAt: r.now()}}

	r.mu.Lock()
	prev := r.contexts[name]
	r.contexts[name] = bc
	r.mu.Unlock()

	if prev != nil {
		r.drop(prev)
	}
	r.metrics.ContextOpened()
	r.logger.Debug("context opened",
		zap.String("name", name),
		zap.Bool("document", src.IsDocument()),
		zap.String("mode", src.Mode),
	)
	return nil
}

// CloseContext implements launch.Presenter; closing an unknown name is a no-op
func (r *ContextRegistry) CloseContext(_ context.Context, name string) error {
	r.mu.Lock()
	bc := r.contexts[name]
	delete(r.contexts, name)
	r.mu.Unlock()

	if bc != nil {
		r.drop(bc)
		r.logger.Debug("context closed", zap.String("name", name))
	}
	return nil
}

// Load returns the source for name and marks it loaded. A ReleaseOnLoad
// source can be loaded once; later loads fail with ErrContextReleased.
func (r *ContextRegistry) Load(name string) (launch.Source, error) {
	r.mu.Lock()
	bc, ok := r.contexts[name]
	if !ok {
		r.mu.Unlock()
		return launch.Source{}, ErrUnknownContext
	}
	if bc.info.Loaded && bc.info.Source.ReleaseOnLoad {
		r.mu.Unlock()
		return launch.Source{}, ErrContextReleased
	}
	src := bc.info.Source
	bc.info.Loaded = true
	if src.ReleaseOnLoad {
		bc.info.Source.Document = ""
	}
	r.mu.Unlock()

	if src.ReleaseOnLoad {
		r.drop(bc)
	}
	return src, nil
}

// Get returns the state of name without loading it
func (r *ContextRegistry) Get(name string) (ContextInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bc, ok := r.contexts[name]
	if !ok {
		return ContextInfo{}, false
	}
	return bc.info, true
}

// List returns every open context ordered by name
func (r *ContextRegistry) List() []ContextInfo {
	r.mu.Lock()
	out := make([]ContextInfo, 0, len(r.contexts))
	for _, bc := range r.contexts {
		out = append(out, bc.info)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of open contexts
func (r *ContextRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}

func (r *ContextRegistry) drop(bc *browsingContext) {
	bc.release.Do(func() {
		r.metrics.HandleReleased()
	})
}
