package encoding

import (
	"github.com/bits-and-blooms/bitset"
	gekko "github.com/gekko3d/shaderenc"
)

// snapshot is a once-per-frame, presence-bitset-backed copy of one component
// storage: Get(id) never dereferences an absent slot, it consults the
// bitset first. Built once via the ECS's existing Query machinery, never
// joined against another snapshot — the caller decides which entity ids to
// probe, matching the "it never joins" contract of the component view.
type snapshot[T any] struct {
	present *bitset.BitSet
	values  map[gekko.EntityId]T
}

func buildSnapshot[T any](cmd *gekko.Commands) snapshot[T] {
	s := snapshot[T]{
		present: bitset.New(0),
		values:  make(map[gekko.EntityId]T),
	}
	gekko.MakeQuery1[T](cmd).Map(func(id gekko.EntityId, c *T) bool {
		s.present.Set(uint(id))
		s.values[id] = *c
		return true
	})
	return s
}

func (s snapshot[T]) get(id gekko.EntityId) (T, bool) {
	if !s.present.Test(uint(id)) {
		var zero T
		return zero, false
	}
	v, ok := s.values[id]
	return v, ok
}

// View1 is a read-only, single-component-type projection over the world,
// fetched once per frame.
type View1[A any] struct {
	a snapshot[A]
}

func NewView1[A any](cmd *gekko.Commands) View1[A] {
	return View1[A]{a: buildSnapshot[A](cmd)}
}

// Get returns the component value for id and whether it was present.
func (v View1[A]) Get(id gekko.EntityId) (A, bool) { return v.a.get(id) }

// Reads reports the component types this view touches, for the scheduler
// bridge's resource-read set.
func (v View1[A]) Reads() []any { var a A; return []any{a} }

// View2 is a read-only, two-component-type projection over the world.
type View2[A, B any] struct {
	a snapshot[A]
	b snapshot[B]
}

func NewView2[A, B any](cmd *gekko.Commands) View2[A, B] {
	return View2[A, B]{a: buildSnapshot[A](cmd), b: buildSnapshot[B](cmd)}
}

func (v View2[A, B]) Get(id gekko.EntityId) (A, bool, B, bool) {
	a, aok := v.a.get(id)
	b, bok := v.b.get(id)
	return a, aok, b, bok
}

func (v View2[A, B]) Reads() []any { var a A; var b B; return []any{a, b} }

// View3 is a read-only, three-component-type projection over the world.
type View3[A, B, C any] struct {
	a snapshot[A]
	b snapshot[B]
	c snapshot[C]
}

func NewView3[A, B, C any](cmd *gekko.Commands) View3[A, B, C] {
	return View3[A, B, C]{a: buildSnapshot[A](cmd), b: buildSnapshot[B](cmd), c: buildSnapshot[C](cmd)}
}

func (v View3[A, B, C]) Get(id gekko.EntityId) (A, bool, B, bool, C, bool) {
	a, aok := v.a.get(id)
	b, bok := v.b.get(id)
	c, cok := v.c.get(id)
	return a, aok, b, bok, c, cok
}

func (v View3[A, B, C]) Reads() []any { var a A; var b B; var c C; return []any{a, b, c} }
