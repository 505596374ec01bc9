package encoding

import "github.com/go-gl/mathgl/mgl32"

// Vec2i/Vec4i/Mat4i/Vec2u/Vec4u/Mat4u have no mathgl equivalent (mathgl only
// covers floating-point vector/matrix math), so the integer and unsigned
// property kinds use plain fixed-size arrays instead.
type Vec2i [2]int32
type Vec4i [4]int32
type Mat4i [16]int32
type Vec2u [2]uint32
type Vec4u [4]uint32
type Mat4u [16]uint32

// Vec2Property declares a Vec2 shader input backed by mgl32.Vec2.
func Vec2Property(name string, fallback mgl32.Vec2) Property {
	return NewProperty(KindVec2, name, fallback)
}

// Vec4Property declares a Vec4 shader input backed by mgl32.Vec4.
func Vec4Property(name string, fallback mgl32.Vec4) Property {
	return NewProperty(KindVec4, name, fallback)
}

// Mat4Property declares a Mat4 shader input backed by mgl32.Mat4.
func Mat4Property(name string, fallback mgl32.Mat4) Property {
	return NewProperty(KindMat4, name, fallback)
}

// Vec2iProperty declares a signed 2-component integer shader input.
func Vec2iProperty(name string, fallback Vec2i) Property {
	return NewProperty(KindVec2i, name, fallback)
}

// Vec4iProperty declares a signed 4-component integer shader input.
func Vec4iProperty(name string, fallback Vec4i) Property {
	return NewProperty(KindVec4i, name, fallback)
}

// Mat4iProperty declares a signed 4x4 integer matrix shader input.
func Mat4iProperty(name string, fallback Mat4i) Property {
	return NewProperty(KindMat4i, name, fallback)
}

// Vec2uProperty declares an unsigned 2-component integer shader input.
func Vec2uProperty(name string, fallback Vec2u) Property {
	return NewProperty(KindVec2u, name, fallback)
}

// Vec4uProperty declares an unsigned 4-component integer shader input.
func Vec4uProperty(name string, fallback Vec4u) Property {
	return NewProperty(KindVec4u, name, fallback)
}

// Mat4uProperty declares an unsigned 4x4 integer matrix shader input.
func Mat4uProperty(name string, fallback Mat4u) Property {
	return NewProperty(KindMat4u, name, fallback)
}

// TextureProperty declares a descriptor-bound texture shader input.
func TextureProperty(name string, fallback TextureHandle) Property {
	return NewProperty(KindTexture, name, fallback)
}
