package gekko

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLerp(t *testing.T) {
	if got := lerp(0, 10, 0.5); got != 5 {
		t.Errorf("lerp(0,10,0.5) = %v, want 5", got)
	}
	if got := lerp(2, 2, 0.7); got != 2 {
		t.Errorf("lerp(2,2,0.7) = %v, want 2", got)
	}
}

func TestEnsurePool_CreatesAndResizes(t *testing.T) {
	pools := &ParticlePools{pools: make(map[EntityId]*particlePool)}

	pl := ensurePool(pools, 1, 4)
	if pl.capacity != 4 || len(pl.pos) != 4 {
		t.Fatalf("expected capacity 4, got %d", pl.capacity)
	}

	pl.alive = 2
	same := ensurePool(pools, 1, 4)
	if same.alive != 2 {
		t.Errorf("re-fetching with the same capacity should not reset the pool")
	}

	grown := ensurePool(pools, 1, 8)
	if grown.capacity != 8 || grown.alive != 0 {
		t.Errorf("growing capacity should reallocate and reset alive count, got cap=%d alive=%d", grown.capacity, grown.alive)
	}
}

func TestSampleDirectionRng_ZeroConeAlignsWithUpAxis(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dir := sampleDirectionRng(mgl32.QuatIdent(), 0, rng)
	want := mgl32.Vec3{0, 1, 0}
	if dir.Sub(want).Len() > 1e-5 {
		t.Errorf("expected direction aligned with up axis, got %v", dir)
	}
}

func TestSampleDirectionRng_IsNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		dir := sampleDirectionRng(mgl32.QuatIdent(), 45, rng)
		if l := dir.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("sampled direction %v not unit length: %v", dir, l)
		}
	}
}

func TestSimulateEmitter_SpawnsUpToMax(t *testing.T) {
	pl := &particlePool{
		pos:   make([]mgl32.Vec3, 4),
		vel:   make([]mgl32.Vec3, 4),
		age:   make([]float32, 4),
		life:  make([]float32, 4),
		size:  make([]float32, 4),
		color: make([][4]float32, 4),
	}
	job := emitterJob{
		pos: mgl32.Vec3{0, 0, 0},
		rot: mgl32.QuatIdent(),
		em: ParticleEmitterComponent{
			Enabled:         true,
			MaxParticles:    4,
			SpawnRate:       1000, // force saturation in one tick
			LifetimeRange:   [2]float32{1, 1},
			StartSpeedRange: [2]float32{1, 1},
			StartSizeRange:  [2]float32{1, 1},
			StartColorMax:   [4]float32{1, 1, 1, 1},
		},
		pl: pl,
	}
	rng := rand.New(rand.NewSource(3))

	out := simulateEmitter(job, 1.0, mgl32.Vec3{0, 0, 0}, rng, nil)

	if pl.alive != 4 {
		t.Errorf("expected pool to saturate at MaxParticles=4, got alive=%d", pl.alive)
	}
	if len(out) != 4 {
		t.Errorf("expected 4 packed instances, got %d", len(out))
	}
}

func TestSimulateEmitter_CullsBeyondFarDistance(t *testing.T) {
	pl := &particlePool{pos: make([]mgl32.Vec3, 1), vel: make([]mgl32.Vec3, 1), age: make([]float32, 1), life: make([]float32, 1), size: make([]float32, 1), color: make([][4]float32, 1)}
	job := emitterJob{
		pos: mgl32.Vec3{1000, 0, 0},
		rot: mgl32.QuatIdent(),
		em:  ParticleEmitterComponent{Enabled: true, MaxParticles: 1, SpawnRate: 1000},
		pl:  pl,
	}
	rng := rand.New(rand.NewSource(4))

	out := simulateEmitter(job, 1.0, mgl32.Vec3{0, 0, 0}, rng, nil)

	if len(out) != 0 || pl.alive != 0 {
		t.Errorf("expected far emitter to be culled with no spawns, got %d instances, alive=%d", len(out), pl.alive)
	}
}

func TestSimulateEmitter_ParticlesExpireByLifetime(t *testing.T) {
	pl := &particlePool{
		pos:   []mgl32.Vec3{{0, 0, 0}},
		vel:   []mgl32.Vec3{{0, 0, 0}},
		age:   []float32{0.9},
		life:  []float32{1.0},
		size:  []float32{1},
		color: [][4]float32{{1, 1, 1, 1}},
		alive: 1,
	}
	job := emitterJob{
		pos: mgl32.Vec3{0, 0, 0},
		rot: mgl32.QuatIdent(),
		em:  ParticleEmitterComponent{Enabled: true, MaxParticles: 1},
		pl:  pl,
	}
	rng := rand.New(rand.NewSource(5))

	out := simulateEmitter(job, 0.2, mgl32.Vec3{0, 0, 0}, rng, nil)

	if pl.alive != 0 {
		t.Errorf("expected the single particle to expire, alive=%d", pl.alive)
	}
	if len(out) != 0 {
		t.Errorf("expected no packed instances after expiry, got %d", len(out))
	}
}

func TestParticlesCollect_EndToEnd(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	cmd.AddEntity(CameraComponent{Position: mgl32.Vec3{0, 0, 0}})
	cmd.AddEntity(
		TransformComponent{Position: mgl32.Vec3{0, 0, 0}, Rotation: mgl32.QuatIdent()},
		ParticleEmitterComponent{
			Enabled:         true,
			MaxParticles:    16,
			SpawnRate:       1000,
			LifetimeRange:   [2]float32{1, 1},
			StartSpeedRange: [2]float32{1, 1},
			StartSizeRange:  [2]float32{1, 1},
			StartColorMax:   [4]float32{1, 1, 1, 1},
		},
	)
	app.Flush()

	pools := &ParticlePools{pools: make(map[EntityId]*particlePool)}
	timeRes := &Time{Dt: 1.0}

	instances := particlesCollect(pools, timeRes, cmd)
	if len(instances) == 0 {
		t.Errorf("expected particlesCollect to produce instances from an enabled emitter")
	}
}

func TestParticlesCollect_NoEmittersReturnsEmpty(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	app.Flush()

	pools := &ParticlePools{pools: make(map[EntityId]*particlePool)}
	timeRes := &Time{Dt: 1.0}

	instances := particlesCollect(pools, timeRes, cmd)
	if len(instances) != 0 {
		t.Errorf("expected no instances with no emitters, got %d", len(instances))
	}
}
