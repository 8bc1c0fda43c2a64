// Package interp smooths discrete network positions into render-rate motion.
package interp

// Store is a keyed entity store that can advance every live entity one
// smoothing step.
type Store interface {
	StepAll(alpha float64)
}

// Scheduler runs once per rendered frame and steps every registered store by
// its class smoothing factor.
//
// The factors are constant per class, NOT scaled by elapsed frame time: the
// effective smoothing speed therefore varies with device frame rate. This
// matches the tuning the server was balanced against and is kept on purpose.
type Scheduler struct {
	entries []entry
}

type entry struct {
	store Store
	alpha float64
}

// Add registers a store. alpha is clamped into (0,1); values at or beyond
// the bounds would either freeze the entity or teleport it.
func (s *Scheduler) Add(store Store, alpha float64) {
	if alpha <= 0 {
		alpha = 0.01
	}
	if alpha >= 1 {
		alpha = 0.99
	}
	s.entries = append(s.entries, entry{store: store, alpha: alpha})
}

// Advance steps every store once. Called from the frame callback; nothing is
// skipped or retried.
func (s *Scheduler) Advance() {
	for _, e := range s.entries {
		e.store.StepAll(e.alpha)
	}
}
