// Package encoding implements the data-driven GPU shader-input encoder: the
// resolver, batch clusterer, encoder dispatch, and strided buffer writer that
// turn a world of ECS entities into tightly packed interleaved GPU buffers
// for a set of render pipelines.
package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PropertyKind is the closed set of shader input types a Property can declare.
// Mirrors the scalar/vector/matrix/descriptor kinds named in the data model.
type PropertyKind int

const (
	KindVec2 PropertyKind = iota
	KindVec4
	KindMat4
	KindVec2i
	KindVec4i
	KindMat4i
	KindVec2u
	KindVec4u
	KindMat4u
	KindTexture
)

func (k PropertyKind) String() string {
	switch k {
	case KindVec2:
		return "Vec2"
	case KindVec4:
		return "Vec4"
	case KindMat4:
		return "Mat4"
	case KindVec2i:
		return "Vec2i"
	case KindVec4i:
		return "Vec4i"
	case KindMat4i:
		return "Mat4i"
	case KindVec2u:
		return "Vec2u"
	case KindVec4u:
		return "Vec4u"
	case KindMat4u:
		return "Mat4u"
	case KindTexture:
		return "Texture"
	default:
		return fmt.Sprintf("PropertyKind(%d)", int(k))
	}
}

// IsDescriptor reports whether values of this kind are forwarded as opaque
// descriptor handles rather than encoded into a buffer.
func (k PropertyKind) IsDescriptor() bool {
	return k == KindTexture
}

// Size is the fixed byte size of the kind's buffer representation, 0 for
// descriptor kinds.
func (k PropertyKind) Size() int {
	switch k {
	case KindVec2, KindVec2i, KindVec2u:
		return 8
	case KindVec4, KindVec4i, KindVec4u:
		return 16
	case KindMat4, KindMat4i, KindMat4u:
		return 64
	case KindTexture:
		return 0
	default:
		panic(fmt.Sprintf("encoding: unknown property kind %d", int(k)))
	}
}

// PropertyId identifies one shader input by kind and interned name, and is
// comparable by value.
type PropertyId struct {
	Kind PropertyKind
	Name string
}

func (id PropertyId) String() string {
	return fmt.Sprintf("%s:%s", id.Kind, id.Name)
}

// Property declares a single shader input: its identity, its fixed size, how
// to turn a Go value into its wire representation, and the value to emit
// when the source component is absent. Properties compose into ordered sets
// via Props(...); duplicates within a set are a setup-time error.
type Property struct {
	id       PropertyId
	fallback any
}

// NewProperty constructs a Property. name is interned so PropertyId values
// compare cheaply and by value across the registry.
func NewProperty(kind PropertyKind, name string, fallback any) Property {
	return Property{id: PropertyId{Kind: kind, Name: intern(name)}, fallback: fallback}
}

func (p Property) Id() PropertyId { return p.id }

func (p Property) Size() int { return p.id.Kind.Size() }

func (p Property) Fallback() any { return p.fallback }

// Encode turns value into its buffer byte representation. Panics if called
// on a descriptor-kind property; use EncodeDescriptor instead.
func (p Property) Encode(value any) []byte {
	if p.id.Kind.IsDescriptor() {
		panic(fmt.Sprintf("encoding: Encode called on descriptor property %s", p.id))
	}
	buf := new(bytes.Buffer)
	buf.Grow(p.Size())
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		panic(fmt.Errorf("encoding: property %s: %w", p.id, err))
	}
	if buf.Len() != p.Size() {
		panic(fmt.Sprintf("encoding: property %s encoded %d bytes, want %d", p.id, buf.Len(), p.Size()))
	}
	return buf.Bytes()
}

// EncodeDescriptor turns value into an EncodedDescriptor. Panics if called on
// a buffer-kind property.
func (p Property) EncodeDescriptor(value any) EncodedDescriptor {
	if !p.id.Kind.IsDescriptor() {
		panic(fmt.Sprintf("encoding: EncodeDescriptor called on buffer property %s", p.id))
	}
	switch p.id.Kind {
	case KindTexture:
		handle, ok := value.(TextureHandle)
		if !ok {
			panic(fmt.Sprintf("encoding: property %s expects a TextureHandle, got %T", p.id, value))
		}
		return EncodedDescriptor{Kind: p.id.Kind, Texture: handle}
	default:
		panic(fmt.Sprintf("encoding: unhandled descriptor kind %s", p.id.Kind))
	}
}

// PropertySet is an ordered, declaration-order list of properties produced
// or consumed together. Order determines encoded-value slot order, never
// layout offsets — the strided writer translates between the two.
type PropertySet []Property

// Props builds a PropertySet, panicking on a duplicate PropertyId — property
// sets forbid duplicates by construction, per the property algebra contract.
func Props(properties ...Property) PropertySet {
	seen := make(map[PropertyId]struct{}, len(properties))
	for _, p := range properties {
		if _, dup := seen[p.Id()]; dup {
			panic(fmt.Sprintf("encoding: duplicate property %s in set", p.Id()))
		}
		seen[p.Id()] = struct{}{}
	}
	return PropertySet(properties)
}

// Ids returns the PropertyIds in the set's declaration order.
func (s PropertySet) Ids() []PropertyId {
	ids := make([]PropertyId, len(s))
	for i, p := range s {
		ids[i] = p.Id()
	}
	return ids
}

// Contains reports whether id is a member of the set.
func (s PropertySet) Contains(id PropertyId) bool {
	for _, p := range s {
		if p.Id() == id {
			return true
		}
	}
	return false
}
