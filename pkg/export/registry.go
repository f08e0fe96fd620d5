package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// State describes the readiness of a registered renderer.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

var (
	// ErrNotReady is returned while a renderer is still warming up or failed to load.
	ErrNotReady = errors.New("export: renderer not ready")
	// ErrUnsupportedFormat is returned for formats that were never registered.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

var warmup = Dataset{Sheet: "warmup", Headers: []string{"warmup"}, Rows: [][]string{{"1"}}}

type entry struct {
	renderer Renderer
	state    State
	err      error
}

// Registry tracks which serializers are usable. Renderers start in the loading state
// and become ready once a warmup render succeeds.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewRegistry registers the given renderers in the loading state.
func NewRegistry(logger *zap.Logger, renderers ...Renderer) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{entries: make(map[string]*entry, len(renderers)), logger: logger}
	for _, renderer := range renderers {
		r.entries[renderer.Format()] = &entry{renderer: renderer, state: StateLoading}
	}
	return r
}

// Load warms every renderer still loading in the background. Wait blocks until done.
func (r *Registry) Load(ctx context.Context) {
	r.mu.RLock()
	pending := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.state == StateLoading {
			pending = append(pending, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range pending {
		r.wg.Add(1)
		go func(e *entry) {
			defer r.wg.Done()
			err := warm(ctx, e.renderer)
			r.mu.Lock()
			defer r.mu.Unlock()
			if err != nil {
				e.state = StateFailed
				e.err = err
				r.logger.Warn("export renderer failed to load", zap.String("format", e.renderer.Format()), zap.Error(err))
				return
			}
			e.state = StateReady
			r.logger.Debug("export renderer ready", zap.String("format", e.renderer.Format()))
		}(e)
	}
}

// Wait blocks until every warm-up started by Load has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Renderer returns the renderer for format once it is ready.
func (r *Registry) Renderer(format string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if e.state != StateReady {
		if e.err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotReady, format, e.err)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotReady, format)
	}
	return e.renderer, nil
}

// State reports the readiness of format.
func (r *Registry) State(format string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[format]
	if !ok {
		return "", false
	}
	return e.state, true
}

// States snapshots readiness for every registered format.
func (r *Registry) States() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]State, len(r.entries))
	for format, e := range r.entries {
		out[format] = e.state
	}
	return out
}

// Formats lists registered formats in lexical order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for format := range r.entries {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

func warm(ctx context.Context, renderer Renderer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := renderer.Render(warmup)
	return err
}
