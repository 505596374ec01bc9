package encoding

import gekko "github.com/gekko3d/shaderenc"

// Op pairs an entity with its destination slot in an output buffer. Used
// uniformly by the batch-key pass, the batch pass, and the instance pass;
// lifetime is one frame.
type Op struct {
	EntityId   gekko.EntityId
	WriteIndex int
}

// Writer is what an encoder's Encode method writes through: buffer-kind
// properties go through Strides, descriptor-kind properties through
// Descriptors.
type Writer struct {
	Strides     *StrideSet
	Descriptors *DescriptorWriter
}

// DescriptorWriter collects descriptor-kind property values by write index,
// one slice per declared descriptor property.
type DescriptorWriter struct {
	slots map[PropertyId][]EncodedDescriptor
}

// NewDescriptorWriter preallocates count slots for each id in ids.
func NewDescriptorWriter(ids []PropertyId, count int) *DescriptorWriter {
	slots := make(map[PropertyId][]EncodedDescriptor, len(ids))
	for _, id := range ids {
		slots[id] = make([]EncodedDescriptor, count)
	}
	return &DescriptorWriter{slots: slots}
}

// WriteAt records d as the value for id at index.
func (w *DescriptorWriter) WriteAt(id PropertyId, index int, d EncodedDescriptor) {
	slot, ok := w.slots[id]
	if !ok {
		panic("encoding: no descriptor slot for property " + id.String())
	}
	if index < 0 || index >= len(slot) {
		panic("encoding: descriptor write index out of bounds for property " + id.String())
	}
	slot[index] = d
}

// List returns the accumulated descriptors for id, in write-index order.
func (w *DescriptorWriter) List(id PropertyId) []EncodedDescriptor {
	return w.slots[id]
}

// ResourceSet is the union of reads/writes an encoder (or a whole pipeline)
// declares, used by the system scheduling bridge to decide which encode
// tasks may run in parallel.
type ResourceSet struct {
	Reads  []any
	Writes []any
}

// GlobalsEncoder produces one encoded value per pipeline per frame,
// independent of any entity, written at index 0 of each of its strides.
type GlobalsEncoder interface {
	Properties() PropertySet
	Reads() []any
	Encode(w *Writer)
}

// BatchEncoder produces per-batch values. It runs twice per frame: once to
// emit comparable batch-key bytes per op (EncodeBatchKeys), and once to emit
// the full property encoding at write_index = batch id (Encode).
type BatchEncoder interface {
	Properties() PropertySet
	Reads() []any
	// BatchKeySize is the number of key bytes this encoder contributes per
	// entity to the batch clusterer's comparison.
	BatchKeySize() int
	// EncodeBatchKeys writes BatchKeySize() bytes per op into keyStride, a
	// dense per-op row of exactly that width.
	EncodeBatchKeys(ops []Op, keyStride []byte)
	// Encode writes the full property encoding for each op, whose
	// WriteIndex is the destination batch id.
	Encode(ops []Op, w *Writer)
}

// InstanceEncoder produces per-instance values, written at write_index =
// the instance slot chosen by the encode driver.
type InstanceEncoder interface {
	Properties() PropertySet
	Reads() []any
	Encode(ops []Op, w *Writer)
}

func resourceSetOf(reads, writes []any) ResourceSet {
	return ResourceSet{Reads: reads, Writes: writes}
}
