package encoding

import (
	"fmt"

	gekko "github.com/gekko3d/shaderenc"
)

// Driver orchestrates one frame's encode across every pipeline a Resolver
// hands it: batching, buffer sizing, and encoder dispatch. It owns no
// entity data itself — every input comes from the Pipeline passed to
// EncodePipeline.
type Driver struct {
	alloc  BufferAllocator
	logger gekko.Logger
	config Config

	warnedLayouts map[string]struct{}
}

// NewDriver constructs a Driver. logger may be nil, in which case
// diagnostics are silently dropped.
func NewDriver(alloc BufferAllocator, logger gekko.Logger, config Config) *Driver {
	return &Driver{
		alloc:         alloc,
		logger:        logger,
		config:        config,
		warnedLayouts: make(map[string]struct{}),
	}
}

func (d *Driver) warnf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Warnf(format, args...)
	}
}

func (d *Driver) errorf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Errorf(format, args...)
	}
}

// EncodePipeline resolves encoders for p.Layout, clusters batches, sizes
// buffers, and dispatches every globals/batch/instance encoder. A fatal
// logic error anywhere in the pass aborts just this pipeline: p.Valid is
// left false and the error is logged, but the call does not panic past this
// boundary, so sibling pipelines still get encoded this frame.
func (d *Driver) EncodePipeline(p *Pipeline, registry *Registry) {
	p.Valid = false

	resolved, ok := registry.Cover(p.Layout)
	if !ok {
		layoutKey := fmt.Sprintf("%v", p.Layout.PropertySet())
		if _, warned := d.warnedLayouts[layoutKey]; !warned {
			d.warnedLayouts[layoutKey] = struct{}{}
			d.warnf("encoding: pipeline %s: unservable layout, skipping", p.Key)
		}
		return
	}
	p.Encoders = resolved

	defer func() {
		if r := recover(); r != nil {
			p.Valid = false
			d.errorf("encoding: pipeline %s: encode aborted: %v", p.Key, r)
		}
	}()

	if err := d.encodePipeline(p); err != nil {
		p.Valid = false
		d.warnf("encoding: pipeline %s: buffer allocation failed, skipping this frame: %v", p.Key, err)
		return
	}
	p.Valid = true
}

func (d *Driver) encodePipeline(p *Pipeline) error {
	batchWrites := clusterBatches(p, p.Encoders.Batch, d.config.batchRoundSize())
	instanceWrites := computeInstanceWrites(p)

	n := len(p.EntitySet)
	batchCount := p.BatchCount()

	headroom := d.config.headroom()
	globalsSize := p.Layout.Globals.Stride
	batchSize := p.Layout.Batch.Stride * max(batchCount, 1)
	instancesSize := p.Layout.Instances.Stride * max(n, 1)
	globalsBuf, err := d.alloc.EnsureBuffer(p.Key, BufferGlobals, globalsSize, headroom)
	if err != nil {
		return fmt.Errorf("globals buffer: %w", err)
	}
	batchBuf, err := d.alloc.EnsureBuffer(p.Key, BufferBatch, batchSize, headroom)
	if err != nil {
		return fmt.Errorf("batch buffer: %w", err)
	}
	instancesBuf, err := d.alloc.EnsureBuffer(p.Key, BufferInstances, instancesSize, headroom)
	if err != nil {
		return fmt.Errorf("instances buffer: %w", err)
	}
	// EnsureBuffer returns the full (padded) capacity; the stride sets and
	// the published bytes cover only the prefix this frame uses, which is a
	// whole number of strides.
	globalsBuf = globalsBuf[:globalsSize]
	batchBuf = batchBuf[:batchSize]
	instancesBuf = instancesBuf[:instancesSize]

	globalsStrides := NewStrideSet(globalsBuf, p.Layout.Globals)
	batchStrides := NewStrideSet(batchBuf, p.Layout.Batch)
	instanceStrides := NewStrideSet(instancesBuf, p.Layout.Instances)

	globalsWriter := &Writer{Strides: globalsStrides, Descriptors: NewDescriptorWriter(p.Layout.GlobalsDescriptors, 1)}
	batchWriter := &Writer{Strides: batchStrides, Descriptors: NewDescriptorWriter(p.Layout.BatchDescriptors, max(batchCount, 1))}
	instanceWriter := &Writer{Strides: instanceStrides, Descriptors: NewDescriptorWriter(nil, 0)}

	for _, e := range p.Encoders.Globals {
		e.Encode(globalsWriter)
	}
	for _, e := range p.Encoders.Batch {
		e.Encode(batchWrites, batchWriter)
	}
	for _, e := range p.Encoders.Instance {
		e.Encode(instanceWrites, instanceWriter)
	}

	p.GlobalsBytes = globalsBuf
	p.BatchBytes = batchBuf
	p.InstancesBytes = instancesBuf
	p.GlobalsDescriptors = globalsWriter.Descriptors.slots
	p.BatchDescriptors = batchWriter.Descriptors.slots
	return nil
}

// computeInstanceWrites assigns each entity its instance slot: entities of
// batch b occupy the contiguous range [BatchOffsets[b], BatchOffsets[b+1]),
// in EntitySet order within that batch.
func computeInstanceWrites(p *Pipeline) []Op {
	next := make([]uint32, p.BatchCount())
	copy(next, p.BatchOffsets[:len(next)])

	writes := make([]Op, len(p.EntitySet))
	for i, id := range p.EntitySet {
		b := p.BatchPerEntity[i]
		writes[i] = Op{EntityId: id, WriteIndex: int(next[b])}
		next[b]++
	}
	return writes
}
