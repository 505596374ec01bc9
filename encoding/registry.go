package encoding

// Registry holds three registration-order lists of encoders (globals,
// batch, instance) and resolves a layout's property set against them via a
// greedy cover: iterate encoders in registration order, kind by kind: each
// whose declared properties are a subset of what's still uncovered claims
// them and is added to the cover. Registration order is therefore the
// tie-break between encoders capable of covering the same property — this
// is a deliberate divergence from a max-coverage-per-step greedy (which
// would instead prefer whichever candidate currently covers the most
// properties, independent of registration order).
type Registry struct {
	globals  []GlobalsEncoder
	batch    []BatchEncoder
	instance []InstanceEncoder
}

// NewRegistry returns an empty, append-only registry. The registry is
// frozen after setup — Register* calls are not safe to interleave with
// Cover calls from other goroutines.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterGlobals(e GlobalsEncoder) { r.globals = append(r.globals, e) }
func (r *Registry) RegisterBatch(e BatchEncoder)     { r.batch = append(r.batch, e) }
func (r *Registry) RegisterInstance(e InstanceEncoder) {
	r.instance = append(r.instance, e)
}

// ResolvedEncoders is the set of encoders a Cover call selected for one
// layout, one list per kind, in registration order.
type ResolvedEncoders struct {
	Globals  []GlobalsEncoder
	Batch    []BatchEncoder
	Instance []InstanceEncoder
}

// Cover attempts to cover layout's full property set using the registry's
// encoders. ok is false when properties remain unclaimed after all three
// kinds have run — an unservable layout, per §4.5: the caller must skip the
// pipeline and log once per distinct layout rather than treat this as
// fatal.
func (r *Registry) Cover(layout Layout) (resolved ResolvedEncoders, ok bool) {
	remaining := make(map[PropertyId]struct{})
	for _, id := range layout.PropertySet() {
		remaining[id] = struct{}{}
	}

	for _, e := range r.globals {
		if claim(e.Properties().Ids(), remaining) {
			resolved.Globals = append(resolved.Globals, e)
		}
	}
	for _, e := range r.batch {
		if claim(e.Properties().Ids(), remaining) {
			resolved.Batch = append(resolved.Batch, e)
		}
	}
	for _, e := range r.instance {
		if claim(e.Properties().Ids(), remaining) {
			resolved.Instance = append(resolved.Instance, e)
		}
	}

	return resolved, len(remaining) == 0
}

// claim checks whether ids is a subset of remaining and, if so, removes
// every id in ids from remaining and returns true.
func claim(ids []PropertyId, remaining map[PropertyId]struct{}) bool {
	for _, id := range ids {
		if _, present := remaining[id]; !present {
			return false
		}
	}
	for _, id := range ids {
		delete(remaining, id)
	}
	return true
}
