// Package entity reconciles server snapshots into locally held, render-ready
// entities. One generic Reconciler is instantiated per entity class (players,
// zombies, projectiles) with class-specific create/update/release behavior.
package entity

// Snapshot is one authoritative entity record inside a server snapshot.
type Snapshot interface {
	EntityID() int64
}

// Class supplies the per-entity-class strategy: how to build an entity from
// its first snapshot, fold a later snapshot into it, and release its visual
// resources. Release must be idempotent.
type Class[S Snapshot, E any] interface {
	Create(s S) *E
	Update(e *E, s S)
	Release(e *E)
}

// Reconciler diffs each incoming snapshot list against the keyed store and
// applies create/update/remove effects. It is not safe for concurrent use;
// the session loop owns it.
type Reconciler[S Snapshot, E any] struct {
	class    Class[S, E]
	entities map[int64]*E
	seen     map[int64]struct{} // scratch set, reused across passes
}

func NewReconciler[S Snapshot, E any](class Class[S, E]) *Reconciler[S, E] {
	return &Reconciler[S, E]{
		class:    class,
		entities: map[int64]*E{},
		seen:     map[int64]struct{}{},
	}
}

// Reconcile applies one authoritative list. Creates and updates run first in
// list order; removal runs strictly after, so an id that is removed in the
// same tick another appears cannot be confused with it. An update for an id
// we have never seen is an implicit create (lower layers may reorder).
func (r *Reconciler[S, E]) Reconcile(list []S) {
	for _, s := range list {
		id := s.EntityID()
		if e, ok := r.entities[id]; ok {
			r.class.Update(e, s)
		} else {
			r.entities[id] = r.class.Create(s)
		}
		r.seen[id] = struct{}{}
	}

	for id, e := range r.entities {
		if _, ok := r.seen[id]; ok {
			continue
		}
		r.class.Release(e)
		delete(r.entities, id)
	}
	clear(r.seen)
}

func (r *Reconciler[S, E]) Get(id int64) (*E, bool) {
	e, ok := r.entities[id]
	return e, ok
}

func (r *Reconciler[S, E]) Len() int { return len(r.entities) }

func (r *Reconciler[S, E]) Each(fn func(id int64, e *E)) {
	for id, e := range r.entities {
		fn(id, e)
	}
}

// StepAll advances interpolation for every live entity. Every class used by
// the engine embeds Body, so the assertion always holds; entities without it
// simply hold still.
func (r *Reconciler[S, E]) StepAll(alpha float64) {
	for _, e := range r.entities {
		if m, ok := any(e).(Interpolated); ok {
			m.Step(alpha)
		}
	}
}

// Clear releases every entity unconditionally. Used on session teardown;
// safe to call twice.
func (r *Reconciler[S, E]) Clear() {
	for id, e := range r.entities {
		r.class.Release(e)
		delete(r.entities, id)
	}
}
