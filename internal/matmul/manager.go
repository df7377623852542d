package matmul

import (
	"sync"
	"sync/atomic"

	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Manager dispatches multiplies of precision T onto a core team.
//
// The selector of a call comes from the layer descriptor; a tuning entry
// registered for the call's Tag overrides it. Whatever is chosen, a
// selector the catalogue cannot serve for the given shape resolves to
// Naive.
type Manager[T tensor.Elem] struct {
	team      *parallel.Team
	mode      Mode
	catalogue *catalogue[T]

	mu     sync.RWMutex
	tuning map[Tag]Selector

	calls [numSelectors]atomic.Int64
}

// NewManager returns a manager forking on team.
func NewManager[T tensor.Elem](team *parallel.Team, mode Mode) *Manager[T] {
	return &Manager[T]{
		team:      team,
		mode:      mode,
		catalogue: catalogueFor[T](),
		tuning:    make(map[Tag]Selector),
	}
}

// Team returns the core team the manager forks on.
func (m *Manager[T]) Team() *parallel.Team {
	return m.team
}

// Mode returns the manager's mode.
func (m *Manager[T]) Mode() Mode {
	return m.mode
}

// TagFor builds the selection tag of a (layer, pass) on this manager.
func (m *Manager[T]) TagFor(layer LayerKind, pass PassKind) Tag {
	return Tag{
		Layer:     layer,
		Pass:      pass,
		Precision: tensor.PrecisionOf[T](),
		Cores:     m.team.Cores(),
	}
}

// Tune pins the routine used for every call carrying tag.
func (m *Manager[T]) Tune(tag Tag, sel Selector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tuning[tag] = sel
}

// Resolve returns the selector Run would execute.
func (m *Manager[T]) Resolve(tag Tag, sel Selector, args *Args[T]) Selector {
	if m.mode == ModeReference {
		return Naive
	}

	m.mu.RLock()
	if tuned, ok := m.tuning[tag]; ok {
		sel = tuned
	}
	m.mu.RUnlock()

	if !sel.Valid() || !m.catalogue[sel].accepts(args) {
		return Naive
	}
	return sel
}

// Run computes args.C on every core of the team and returns once all
// cores are done. Core i owns output rows Chunk(N, cores, i).
func (m *Manager[T]) Run(tag Tag, sel Selector, args *Args[T]) {
	sel = m.Resolve(tag, sel, args)
	m.calls[sel].Add(1)

	fn := m.catalogue[sel].fn
	m.team.ForRange(args.N, func(lo, hi int) {
		fn(args, lo, hi)
	})
}

// Stats returns how many calls each routine has executed.
func (m *Manager[T]) Stats() map[Selector]int64 {
	out := make(map[Selector]int64)
	for s := range m.calls {
		if n := m.calls[s].Load(); n > 0 {
			out[Selector(s)] = n
		}
	}
	return out
}
