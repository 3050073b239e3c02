package wilayah

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultWait bounds how long SetSelections waits for one child level.
const DefaultWait = 5 * time.Second

// Selection is the chosen code of each level. Empty means nothing chosen.
type Selection struct {
	Province string `json:"province"`
	Regency  string `json:"regency"`
	District string `json:"district"`
	Village  string `json:"village"`
}

// Loading reports which option lists are being fetched.
type Loading struct {
	Provinces bool `json:"provinces"`
	Regencies bool `json:"regencies"`
	Districts bool `json:"districts"`
	Villages  bool `json:"villages"`
}

// State is a copy of the cascade at one moment.
type State struct {
	Selected  Selection `json:"selected"`
	Provinces []Region  `json:"provinces"`
	Regencies []Region  `json:"regencies"`
	Districts []Region  `json:"districts"`
	Villages  []Region  `json:"villages"`
	Loading   Loading   `json:"loading"`
}

// Cascade holds the four dependent selections of an address form.
// Choosing a level replaces the options of the level below it and clears
// every selection and option list further down.
type Cascade struct {
	src    Source
	wait   time.Duration
	logger *slog.Logger

	// op serializes selections; mu guards the state they change.
	op    sync.Mutex
	mu    sync.RWMutex
	state State
}

type CascadeOption func(*Cascade)

// WithWait sets how long SetSelections waits for each child level.
func WithWait(d time.Duration) CascadeOption {
	return func(c *Cascade) {
		if d > 0 {
			c.wait = d
		}
	}
}

func WithLogger(l *slog.Logger) CascadeOption {
	return func(c *Cascade) { c.logger = l }
}

func NewCascade(src Source, opts ...CascadeOption) *Cascade {
	c := &Cascade{src: src, wait: DefaultWait, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadProvinces fetches the top level.
func (c *Cascade) LoadProvinces(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	list, err := c.fetch(ctx, LevelProvince, "", &c.state.Loading.Provinces)
	c.mu.Lock()
	c.state.Provinces = list
	c.mu.Unlock()
	return err
}

// SelectProvince chooses a province and loads its regencies. An empty code
// clears the province and everything below it.
func (c *Cascade) SelectProvince(ctx context.Context, code string) error {
	c.op.Lock()
	defer c.op.Unlock()
	return c.selectProvince(ctx, code)
}

func (c *Cascade) SelectRegency(ctx context.Context, code string) error {
	c.op.Lock()
	defer c.op.Unlock()
	return c.selectRegency(ctx, code)
}

func (c *Cascade) SelectDistrict(ctx context.Context, code string) error {
	c.op.Lock()
	defer c.op.Unlock()
	return c.selectDistrict(ctx, code)
}

// SelectVillage chooses a village. Villages are the last level.
func (c *Cascade) SelectVillage(code string) {
	c.op.Lock()
	defer c.op.Unlock()
	c.mu.Lock()
	c.state.Selected.Village = code
	c.mu.Unlock()
}

func (c *Cascade) selectProvince(ctx context.Context, code string) error {
	c.mu.Lock()
	c.state.Selected = Selection{Province: code}
	c.state.Regencies, c.state.Districts, c.state.Villages = nil, nil, nil
	c.mu.Unlock()
	if code == "" {
		return nil
	}

	list, err := c.fetch(ctx, LevelRegency, code, &c.state.Loading.Regencies)
	c.mu.Lock()
	c.state.Regencies = list
	c.mu.Unlock()
	return err
}

func (c *Cascade) selectRegency(ctx context.Context, code string) error {
	c.mu.Lock()
	c.state.Selected.Regency = code
	c.state.Selected.District, c.state.Selected.Village = "", ""
	c.state.Districts, c.state.Villages = nil, nil
	c.mu.Unlock()
	if code == "" {
		return nil
	}

	list, err := c.fetch(ctx, LevelDistrict, code, &c.state.Loading.Districts)
	c.mu.Lock()
	c.state.Districts = list
	c.mu.Unlock()
	return err
}

func (c *Cascade) selectDistrict(ctx context.Context, code string) error {
	c.mu.Lock()
	c.state.Selected.District = code
	c.state.Selected.Village = ""
	c.state.Villages = nil
	c.mu.Unlock()
	if code == "" {
		return nil
	}

	list, err := c.fetch(ctx, LevelVillage, code, &c.state.Loading.Villages)
	c.mu.Lock()
	c.state.Villages = list
	c.mu.Unlock()
	return err
}

// fetch loads one option list, keeping the loading flag up while it runs.
// A failed fetch yields an empty list.
func (c *Cascade) fetch(ctx context.Context, level Level, parent string, flag *bool) ([]Region, error) {
	c.mu.Lock()
	*flag = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		*flag = false
		c.mu.Unlock()
	}()

	list, err := c.src.Regions(ctx, level, parent)
	if err != nil {
		c.logger.WarnContext(ctx, "region options not loaded", "level", string(level), "parent", parent, "error", err)
		return []Region{}, err
	}
	return list, nil
}

// Reset clears every selection and every option list below provinces.
func (c *Cascade) Reset() {
	c.op.Lock()
	defer c.op.Unlock()
	c.reset()
}

func (c *Cascade) reset() {
	c.mu.Lock()
	c.state.Selected = Selection{}
	c.state.Regencies, c.state.Districts, c.state.Villages = nil, nil, nil
	c.mu.Unlock()
}

// SetSelections resets the cascade and applies sel top down. Each level
// waits at most the configured duration for its child options; when they
// do not arrive it stops with ErrOptionsNotLoaded, keeping what was applied.
func (c *Cascade) SetSelections(ctx context.Context, sel Selection) error {
	c.op.Lock()
	defer c.op.Unlock()

	c.reset()
	if sel.Province == "" {
		return nil
	}

	steps := []struct {
		apply func(context.Context, string) error
		code  string
		child string
		next  string
		opts  func() int
	}{
		{c.selectProvince, sel.Province, string(LevelRegency), sel.Regency, func() int { return len(c.state.Regencies) }},
		{c.selectRegency, sel.Regency, string(LevelDistrict), sel.District, func() int { return len(c.state.Districts) }},
		{c.selectDistrict, sel.District, string(LevelVillage), sel.Village, func() int { return len(c.state.Villages) }},
	}

	for _, step := range steps {
		waitCtx, cancel := context.WithTimeout(ctx, c.wait)
		err := step.apply(waitCtx, step.code)
		cancel()

		if step.next == "" {
			return err
		}
		c.mu.RLock()
		n := step.opts()
		c.mu.RUnlock()
		if n == 0 {
			if err != nil {
				return fmt.Errorf("%w: %s of %s: %w", ErrOptionsNotLoaded, step.child, step.code, err)
			}
			return fmt.Errorf("%w: %s of %s", ErrOptionsNotLoaded, step.child, step.code)
		}
	}

	c.mu.Lock()
	c.state.Selected.Village = sel.Village
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Cascade) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Provinces = cloneRegions(s.Provinces)
	s.Regencies = cloneRegions(s.Regencies)
	s.Districts = cloneRegions(s.Districts)
	s.Villages = cloneRegions(s.Villages)
	return s
}

func (c *Cascade) Selected() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Selected
}

func (c *Cascade) ProvinceName(code string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nameOf(c.state.Provinces, code)
}

func (c *Cascade) RegencyName(code string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nameOf(c.state.Regencies, code)
}

func (c *Cascade) DistrictName(code string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nameOf(c.state.Districts, code)
}

func (c *Cascade) VillageName(code string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return nameOf(c.state.Villages, code)
}

// FullAddress joins the selected names from village up to province,
// skipping levels without a known name.
func (c *Cascade) FullAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	parts := make([]string, 0, 4)
	for _, name := range []string{
		nameOf(s.Villages, s.Selected.Village),
		nameOf(s.Districts, s.Selected.District),
		nameOf(s.Regencies, s.Selected.Regency),
		nameOf(s.Provinces, s.Selected.Province),
	} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

func nameOf(list []Region, code string) string {
	if code == "" {
		return ""
	}
	for _, r := range list {
		if r.Code == code {
			return r.Name
		}
	}
	return ""
}

func cloneRegions(list []Region) []Region {
	if list == nil {
		return nil
	}
	out := make([]Region, len(list))
	copy(out, list)
	return out
}
