package encoding

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Stride is a view of one property's column through an interleaved buffer:
// base pointer, the stride between consecutive elements, how many elements
// fit, and the element's byte size. Constructing a Stride never allocates —
// it arithmetics directly into the caller-owned byte region, the same
// unsafe.Pointer idiom the ECS's AnySlice.DataPointer uses to reach into a
// reflect-backed component slice without copying.
type Stride struct {
	base          unsafe.Pointer
	elementStride int
	count         int
	elemSize      int
	checkedOut    *atomic.Bool
}

// WriteAt copies len(bytes) (must equal the stride's element size) into the
// index'th element. Bounds- and size-checked unconditionally: this core has
// no separate release-mode fast path, since a contract violation here is
// exactly the "fail fast with a diagnostic" case the spec calls for.
func (s Stride) WriteAt(index int, data []byte) {
	if len(data) != s.elemSize {
		panic(fmt.Sprintf("encoding: stride write of %d bytes, want %d", len(data), s.elemSize))
	}
	if index < 0 || index >= s.count {
		panic(fmt.Sprintf("encoding: stride write index %d out of bounds [0,%d)", index, s.count))
	}
	dst := unsafe.Add(s.base, index*s.elementStride)
	dstSlice := unsafe.Slice((*byte)(dst), s.elemSize)
	copy(dstSlice, data)
}

// Count is the number of addressable elements in the stride.
func (s Stride) Count() int { return s.count }

// StrideSet hands out exclusive, non-overlapping Stride handles into one
// byte buffer for the duration of a single encode pass. Go has no borrow
// checker, so exclusivity is checked at run time: NewStrideSet takes the
// buffer for the pass, Checkout hands out at most one handle per property
// (a checked-out stride is never returned to the set), and any attempt to
// re-check-out a property is a programmer error detected immediately rather
// than silently racing.
type StrideSet struct {
	region  BufferRegion
	strides map[PropertyId]Stride
}

// NewStrideSet validates buf against region and constructs one Stride per
// buffer-kind field. Panics (a stride builder precondition violation, fatal
// per the error taxonomy) if region.Stride is non-positive or if len(buf) is
// not a whole multiple of the stride; a region with no fields skips both
// checks. Field overlap is not checked here: BufferRegion.validate, run by
// NewLayout, rejects overlapping fields.
func NewStrideSet(buf []byte, region BufferRegion) *StrideSet {
	if len(region.Fields) == 0 {
		return &StrideSet{region: region, strides: make(map[PropertyId]Stride)}
	}
	if region.Stride <= 0 {
		panic(fmt.Sprintf("encoding: stride set: stride must be > 0, got %d", region.Stride))
	}
	if len(buf)%region.Stride != 0 {
		panic(fmt.Sprintf("encoding: stride set: buffer length %d not a multiple of stride %d", len(buf), region.Stride))
	}

	count := len(buf) / region.Stride
	var base unsafe.Pointer
	if len(buf) > 0 {
		base = unsafe.Pointer(&buf[0])
	}

	ss := &StrideSet{
		region:  region,
		strides: make(map[PropertyId]Stride, len(region.Fields)),
	}
	for _, f := range region.Fields {
		var fieldBase unsafe.Pointer
		if base != nil {
			fieldBase = unsafe.Add(base, f.Offset)
		}
		ss.strides[f.Id] = Stride{
			base:          fieldBase,
			elementStride: region.Stride,
			count:         count,
			elemSize:      f.Id.Kind.Size(),
			checkedOut:    new(atomic.Bool),
		}
	}
	return ss
}

// Checkout hands out the exclusive Stride for id. Panics — a duplicate
// stride checkout, fatal at the registry-cover stage per the spec, but also
// guarded here as a defense against a misbehaving caller — if id is not in
// the set or has already been checked out.
func (ss *StrideSet) Checkout(id PropertyId) Stride {
	s, ok := ss.strides[id]
	if !ok {
		panic(fmt.Sprintf("encoding: no stride for property %s in this region", id))
	}
	if !s.checkedOut.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("encoding: property %s stride already checked out", id))
	}
	return s
}
