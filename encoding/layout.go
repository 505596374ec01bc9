package encoding

import "fmt"

// FieldLayout places one buffer property at an absolute byte offset within
// its region.
type FieldLayout struct {
	Id     PropertyId
	Offset int
}

// BufferRegion describes one of a pipeline's three output buffers: the
// offset of each buffer-kind property plus the padded per-element stride.
type BufferRegion struct {
	Fields []FieldLayout
	Stride int
}

// Layout is the runtime description of a pipeline's buffer regions and
// descriptor slots, normally produced by shader reflection external to this
// core (EncodingLayout.from_shader in the external-interfaces contract).
type Layout struct {
	Globals            BufferRegion
	GlobalsDescriptors  []PropertyId
	Batch               BufferRegion
	BatchDescriptors    []PropertyId
	Instances           BufferRegion
}

// NewLayout validates and constructs a Layout. It panics on malformed input:
// a configuration error surfaced at setup, per the error-handling taxonomy's
// "layout malformed" case.
func NewLayout(globals, batch, instances BufferRegion, globalsDescriptors, batchDescriptors []PropertyId) Layout {
	l := Layout{
		Globals:            globals,
		GlobalsDescriptors: globalsDescriptors,
		Batch:              batch,
		BatchDescriptors:   batchDescriptors,
		Instances:          instances,
	}
	if err := l.validate(); err != nil {
		panic(fmt.Sprintf("encoding: invalid layout: %v", err))
	}
	return l
}

func (l Layout) validate() error {
	for name, region := range map[string]BufferRegion{
		"globals": l.Globals, "batch": l.Batch, "instances": l.Instances,
	} {
		if err := region.validate(); err != nil {
			return fmt.Errorf("%s region: %w", name, err)
		}
	}
	return nil
}

func (r BufferRegion) validate() error {
	if len(r.Fields) == 0 {
		return nil
	}
	if r.Stride <= 0 {
		return fmt.Errorf("stride must be > 0, got %d", r.Stride)
	}

	seen := make(map[PropertyId]struct{}, len(r.Fields))
	type span struct {
		start, end int
		id         PropertyId
	}
	spans := make([]span, 0, len(r.Fields))

	for _, f := range r.Fields {
		if _, dup := seen[f.Id]; dup {
			return fmt.Errorf("duplicate property %s", f.Id)
		}
		seen[f.Id] = struct{}{}

		size := f.Id.Kind.Size()
		end := f.Offset + size
		if end > r.Stride {
			return fmt.Errorf("property %s at offset %d size %d exceeds stride %d", f.Id, f.Offset, size, r.Stride)
		}
		spans = append(spans, span{start: f.Offset, end: end, id: f.Id})
	}

	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			if spans[i].start < spans[j].end && spans[j].start < spans[i].end {
				return fmt.Errorf("properties %s and %s overlap", spans[i].id, spans[j].id)
			}
		}
	}
	return nil
}

// PropertySet returns every PropertyId declared across all three buffer
// regions plus both descriptor slots, in globals-fields, globals-descriptors,
// batch-fields, batch-descriptors, instances-fields declaration order. A
// descriptor id left out here would never enter Registry.Cover's remaining
// work-set, so it would never need an encoder to claim it — and would also
// poison claim() for any encoder whose Properties() legitimately mixes a
// descriptor id with buffer ids, since claim() requires every declared id to
// already be in remaining.
func (l Layout) PropertySet() []PropertyId {
	var ids []PropertyId
	for _, f := range l.Globals.Fields {
		ids = append(ids, f.Id)
	}
	ids = append(ids, l.GlobalsDescriptors...)
	for _, f := range l.Batch.Fields {
		ids = append(ids, f.Id)
	}
	ids = append(ids, l.BatchDescriptors...)
	for _, f := range l.Instances.Fields {
		ids = append(ids, f.Id)
	}
	return ids
}
