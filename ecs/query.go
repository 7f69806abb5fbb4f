package ecs

import (
	"sort"

	"github.com/milk9111/redroom/ecs/component"
)

// kindID is satisfied by every component.ComponentKind.
type kindID interface {
	ID() component.ComponentID
}

// Query returns the live entities owning every listed kind, ordered by id.
// The result is a snapshot, so systems may destroy entities while ranging over it.
func Query(w *World, kinds ...kindID) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.store(k.ID(), false)
		if s == nil || s.Len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}
	// iterate the smallest set
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].Len() < sets[j].Len() })

	out := make([]Entity, 0, sets[0].Len())
	for _, e := range sets[0].Entities() {
		match := true
		for _, other := range sets[1:] {
			if !other.Has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id() < out[j].id() })
	return out
}

// First returns the lowest-id entity owning the kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	ents := Query(w, kind)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

// ForEach calls fn for every entity owning kind a.
func ForEach[A any](w *World, a component.ComponentKind[A], fn func(Entity, *A)) {
	for _, e := range Query(w, a) {
		va, okA := Get(w, e, a)
		if okA {
			fn(e, va)
		}
	}
}

// ForEach2 calls fn for every entity owning kinds a and b.
func ForEach2[A, B any](w *World, a component.ComponentKind[A], b component.ComponentKind[B], fn func(Entity, *A, *B)) {
	for _, e := range Query(w, a, b) {
		va, okA := Get(w, e, a)
		vb, okB := Get(w, e, b)
		if okA && okB {
			fn(e, va, vb)
		}
	}
}

// ForEach3 calls fn for every entity owning kinds a, b and c.
func ForEach3[A, B, C any](w *World, a component.ComponentKind[A], b component.ComponentKind[B], c component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	for _, e := range Query(w, a, b, c) {
		va, okA := Get(w, e, a)
		vb, okB := Get(w, e, b)
		vc, okC := Get(w, e, c)
		if okA && okB && okC {
			fn(e, va, vb, vc)
		}
	}
}

// ForEach4 calls fn for every entity owning kinds a, b, c and d.
func ForEach4[A, B, C, D any](w *World, a component.ComponentKind[A], b component.ComponentKind[B], c component.ComponentKind[C], d component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	for _, e := range Query(w, a, b, c, d) {
		va, okA := Get(w, e, a)
		vb, okB := Get(w, e, b)
		vc, okC := Get(w, e, c)
		vd, okD := Get(w, e, d)
		if okA && okB && okC && okD {
			fn(e, va, vb, vc, vd)
		}
	}
}
