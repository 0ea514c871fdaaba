package launch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Layout is a frame grid arrangement
type Layout string

const (
	Layout2x1 Layout = "2x1"
	Layout1x2 Layout = "1x2"
	Layout3x1 Layout = "3x1"
	Layout1x3 Layout = "1x3"
	Layout2x2 Layout = "2x2"

	DefaultLayout = Layout2x1
)

var layoutSlots = map[Layout]int{
	Layout2x1: 2,
	Layout1x2: 2,
	Layout3x1: 3,
	Layout1x3: 3,
	Layout2x2: 4,
}

// Slots returns the number of frames in l, or 0 for an unknown layout
func (l Layout) Slots() int {
	return layoutSlots[l]
}

// FrameContext names the browsing context of a grid slot
func FrameContext(slot int) string {
	return "sakai_frame_" + strconv.Itoa(slot)
}

// Slot is one frame of the grid
type Slot struct {
	Index    int       `json:"index"`
	Context  string    `json:"context"`
	AppID    string    `json:"appId,omitempty"`
	AppName  string    `json:"appName,omitempty"`
	Source   *Source   `json:"source,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// Empty reports whether no app is loaded in the slot
func (s *Slot) Empty() bool {
	return s.AppID == ""
}

// FrameGrid shows several apps side by side. Slots load, reload and close
// independently.
type FrameGrid struct {
	presenter Presenter

	mu     sync.Mutex
	layout Layout
	slots  []Slot
}

// NewFrameGrid creates an empty grid
func NewFrameGrid(p Presenter, layout Layout) *FrameGrid {
	if layout.Slots() == 0 {
		layout = DefaultLayout
	}
	g := &FrameGrid{presenter: p, layout: layout}
	g.slots = make([]Slot, layout.Slots())
	for i := range g.slots {
		g.slots[i] = Slot{Index: i, Context: FrameContext(i)}
	}
	return g
}

// Layout returns the current layout
func (g *FrameGrid) Layout() Layout {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.layout
}

// Slots returns a copy of every slot
func (g *FrameGrid) Slots() []Slot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Slot(nil), g.slots...)
}

// SetLayout switches layout. Slots beyond the new count are closed;
// the remaining slots keep their apps.
func (g *FrameGrid) SetLayout(ctx context.Context, l Layout) error {
	n := l.Slots()
	if n == 0 {
		return fmt.Errorf("%w: %q", types.ErrInvalidLayout, l)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for i := n; i < len(g.slots); i++ {
		if !g.slots[i].Empty() {
			if err := g.presenter.CloseContext(ctx, g.slots[i].Context); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if n < len(g.slots) {
		g.slots = g.slots[:n]
	}
	for i := len(g.slots); i < n; i++ {
		g.slots = append(g.slots, Slot{Index: i, Context: FrameContext(i)})
	}
	g.layout = l
	return firstErr
}

func (g *FrameGrid) check(slot int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkLocked(slot)
}

func (g *FrameGrid) checkLocked(slot int) error {
	if slot < 0 || slot >= len(g.slots) {
		return fmt.Errorf("%w: %d (layout %s has %d slots)", types.ErrInvalidSlot, slot, g.layout, len(g.slots))
	}
	return nil
}

// Load opens src for app in slot, replacing whatever the slot held
func (g *FrameGrid) Load(ctx context.Context, slot int, app *types.App, src Source) (*Slot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(slot); err != nil {
		return nil, err
	}

	s := &g.slots[slot]
	if !s.Empty() {
		if err := g.presenter.CloseContext(ctx, s.Context); err != nil {
			return nil, err
		}
		g.clear(s)
	}
	if err := g.presenter.OpenContext(ctx, s.Context, src); err != nil {
		return nil, err
	}

	s.AppID = app.ID
	s.AppName = app.Name
	s.Source = &src
	s.LoadedAt = time.Now()
	out := *s
	return &out, nil
}

// Reload reopens the slot's current source
func (g *FrameGrid) Reload(ctx context.Context, slot int) (*Slot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(slot); err != nil {
		return nil, err
	}

	s := &g.slots[slot]
	if s.Empty() {
		return nil, fmt.Errorf("%w: slot %d is empty", types.ErrInvalidSlot, slot)
	}
	if err := g.presenter.CloseContext(ctx, s.Context); err != nil {
		return nil, err
	}
	if err := g.presenter.OpenContext(ctx, s.Context, *s.Source); err != nil {
		g.clear(s)
		return nil, err
	}
	s.LoadedAt = time.Now()
	out := *s
	return &out, nil
}

// Close empties the slot and releases its context. Closing an empty slot
// is a no-op.
func (g *FrameGrid) Close(ctx context.Context, slot int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(slot); err != nil {
		return err
	}

	s := &g.slots[slot]
	if s.Empty() {
		return nil
	}
	err := g.presenter.CloseContext(ctx, s.Context)
	g.clear(s)
	return err
}

func (g *FrameGrid) clear(s *Slot) {
	*s = Slot{Index: s.Index, Context: s.Context}
}
