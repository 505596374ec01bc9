package encoding

import gekko "github.com/gekko3d/shaderenc"

// PipelineKey identifies a distinct render target — e.g. (shader, mesh) —
// and is comparable by value so the resolver can deduplicate entities into
// pipelines with a plain map.
type PipelineKey string

// Pipeline is the per-frame state for one distinct render target: its
// layout, the ordered set of entities it draws, the batch assignment, the
// resolved encoders, and the output buffers the draw consumer reads.
type Pipeline struct {
	Key    PipelineKey
	Layout Layout

	// EntitySet is in stable, frame-local iteration order — the order
	// entities were first observed by the resolver this frame.
	EntitySet []gekko.EntityId

	BatchPerEntity []uint16
	BatchOffsets   []uint32

	Encoders ResolvedEncoders

	GlobalsBytes   []byte
	BatchBytes     []byte
	InstancesBytes []byte

	GlobalsDescriptors map[PropertyId][]EncodedDescriptor
	BatchDescriptors   map[PropertyId][]EncodedDescriptor

	// Valid is false when this frame's encode aborted partway through; the
	// draw consumer must check it before reading the buffers above, per the
	// "fatal logic error aborts the pipeline, marks published state
	// invalid" propagation rule.
	Valid bool
}

func newPipeline(key PipelineKey, layout Layout) *Pipeline {
	return &Pipeline{Key: key, Layout: layout}
}

// reset clears per-frame state while keeping the layout and buffers (which
// are resized in place by the encode driver, not reallocated fresh).
func (p *Pipeline) reset() {
	p.EntitySet = p.EntitySet[:0]
	p.BatchPerEntity = p.BatchPerEntity[:0]
	p.BatchOffsets = p.BatchOffsets[:0]
	p.Valid = false
}

// BatchCount is the number of distinct batches this frame, 0 before
// batching has run.
func (p *Pipeline) BatchCount() int {
	if len(p.BatchOffsets) == 0 {
		return 0
	}
	return len(p.BatchOffsets) - 1
}
