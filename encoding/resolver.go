package encoding

import gekko "github.com/gekko3d/shaderenc"

// KeyFunc maps one anchor-component-bearing entity to the pipeline it
// belongs to. Returning ok=false skips the entity entirely (it renders in
// no pipeline this frame).
type KeyFunc[A any] func(component *A, entity gekko.EntityId, cmd *gekko.Commands) (layout Layout, key PipelineKey, ok bool)

// Resolver walks a designated anchor component every frame, maps each
// entity to a pipeline via KeyFunc, deduplicates pipelines by PipelineKey
// through an insertion-ordered index, and caches PipelineKey -> pipeline
// index across frames so unchanged entities don't force a new Pipeline.
type Resolver[A any] struct {
	keyFn KeyFunc[A]

	order []PipelineKey
	index map[PipelineKey]int
	pipes []*Pipeline
}

// NewResolver constructs a resolver for anchor component A.
func NewResolver[A any](keyFn KeyFunc[A]) *Resolver[A] {
	return &Resolver[A]{
		keyFn: keyFn,
		index: make(map[PipelineKey]int),
	}
}

// Resolve iterates every entity carrying the anchor component, assigns it to
// a pipeline, and returns the full set of pipelines touched this frame, in
// first-occurrence order. Pipelines from a previous frame whose key is not
// observed this frame are dropped from the returned slice (but their cache
// entry is evicted lazily by Clear, not here).
func (r *Resolver[A]) Resolve(cmd *gekko.Commands) []*Pipeline {
	seenThisFrame := make(map[PipelineKey]struct{})
	var touched []*Pipeline

	gekko.MakeQuery1[A](cmd).Map(func(id gekko.EntityId, a *A) bool {
		layout, key, ok := r.keyFn(a, id, cmd)
		if !ok {
			return true
		}

		idx, cached := r.index[key]
		var pipe *Pipeline
		if cached {
			pipe = r.pipes[idx]
		} else {
			pipe = newPipeline(key, layout)
			idx = len(r.pipes)
			r.pipes = append(r.pipes, pipe)
			r.order = append(r.order, key)
			r.index[key] = idx
		}

		if _, already := seenThisFrame[key]; !already {
			seenThisFrame[key] = struct{}{}
			pipe.reset()
			touched = append(touched, pipe)
		}
		pipe.EntitySet = append(pipe.EntitySet, id)
		return true
	})

	return touched
}

// Clear evicts every cached pipeline mapping. Call at frame boundaries when
// hot-reload or an explicit invalidation requires every entity to be
// re-resolved from scratch next frame.
func (r *Resolver[A]) Clear() {
	r.order = nil
	r.index = make(map[PipelineKey]int)
	r.pipes = nil
}

// Invalidate evicts a single cached pipeline by key, forcing it to be
// rebuilt (with a fresh Pipeline, losing its buffers) next time an entity
// resolves to that key.
func (r *Resolver[A]) Invalidate(key PipelineKey) {
	idx, ok := r.index[key]
	if !ok {
		return
	}
	delete(r.index, key)
	r.pipes[idx] = nil
}
