package gekko

import "github.com/go-gl/mathgl/mgl32"

// TransformComponent places an entity in world space. Rotation is a
// quaternion rather than the teacher's single roll-angle float, since
// particle direction sampling (particles_ecs.go) needs a full 3D orientation
// to sample a spawn cone around an arbitrary emitter axis.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// CameraComponent marks the entity whose view the renderer draws from.
type CameraComponent struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Up        mgl32.Vec3
	Fov       float32
	Aspect    float32
}
