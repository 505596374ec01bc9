package encoding

import (
	"fmt"
	"testing"

	gekko "github.com/gekko3d/shaderenc"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAllocator struct {
	buffers map[string][]byte
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{buffers: make(map[string][]byte)}
}

func (a *fakeAllocator) EnsureBuffer(pipeline PipelineKey, kind BufferKind, minSize int, headroom float64) ([]byte, error) {
	key := fmt.Sprintf("%s:%d", pipeline, kind)
	buf, ok := a.buffers[key]
	if !ok || len(buf) < minSize {
		grown := int(float64(minSize) * (1 + headroom))
		if grown < minSize {
			grown = minSize
		}
		buf = make([]byte, grown)
		a.buffers[key] = buf
	}
	return buf, nil
}

type rgba struct{ r, g, b, a float32 }

type tintInstanceEncoder struct{ view View1[rgba] }

var tintFallback = mgl32.Vec4{1, 1, 1, 1}
var tintProp = Vec4Property("tint", tintFallback)

func (e tintInstanceEncoder) Properties() PropertySet { return Props(tintProp) }
func (e tintInstanceEncoder) Reads() []any             { return e.view.Reads() }

func (e tintInstanceEncoder) Encode(ops []Op, w *Writer) {
	stride := w.Strides.Checkout(tintId())
	for _, op := range ops {
		v, ok := e.view.Get(op.EntityId)
		tint := tintFallback
		if ok {
			tint = mgl32.Vec4{v.r, v.g, v.b, v.a}
		}
		stride.WriteAt(op.WriteIndex, tintProp.Encode(tint))
	}
}

func scenarioALayout() Layout {
	return NewLayout(BufferRegion{}, BufferRegion{}, BufferRegion{
		Fields: []FieldLayout{{Id: tintId(), Offset: 0}},
		Stride: 16,
	}, nil, nil)
}

func TestDriver_EncodePipeline_ScenarioA(t *testing.T) {
	app := gekko.NewApp()
	cmd := app.Commands()
	e1 := cmd.AddEntity(rgba{r: 1, g: 0, b: 0, a: 1})
	app.Flush()

	registry := NewRegistry()
	enc := tintInstanceEncoder{view: NewView1[rgba](cmd)}
	registry.RegisterInstance(enc)

	p := newPipeline("scenarioA", scenarioALayout())
	p.EntitySet = []gekko.EntityId{e1}

	driver := NewDriver(newFakeAllocator(), nil, DefaultConfig())
	driver.EncodePipeline(p, registry)

	require.True(t, p.Valid)
	require.GreaterOrEqual(t, len(p.InstancesBytes), 16)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3F,
	}, p.InstancesBytes[0:16])
}

func TestDriver_EncodePipeline_ScenarioD_FallbackWhenComponentMissing(t *testing.T) {
	app := gekko.NewApp()
	cmd := app.Commands()
	e1 := cmd.AddEntity(struct{ unrelated int }{unrelated: 1})
	app.Flush()

	registry := NewRegistry()
	enc := tintInstanceEncoder{view: NewView1[rgba](cmd)}
	registry.RegisterInstance(enc)

	p := newPipeline("scenarioD", scenarioALayout())
	p.EntitySet = []gekko.EntityId{e1}

	driver := NewDriver(newFakeAllocator(), nil, DefaultConfig())
	driver.EncodePipeline(p, registry)

	require.True(t, p.Valid)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
	}, p.InstancesBytes[0:16])
}

func TestDriver_EncodePipeline_ScenarioE_UnservableLayoutSkipsThisPipelineOnly(t *testing.T) {
	app := gekko.NewApp()
	cmd := app.Commands()
	e1 := cmd.AddEntity(rgba{r: 1, g: 1, b: 1, a: 1})
	app.Flush()

	registry := NewRegistry()
	registry.RegisterInstance(tintInstanceEncoder{view: NewView1[rgba](cmd)})

	unservable := newPipeline("unservable", NewLayout(BufferRegion{}, BufferRegion{}, BufferRegion{
		Fields: []FieldLayout{{Id: texId(), Offset: 0}},
		Stride: 8,
	}, nil, nil))
	unservable.EntitySet = []gekko.EntityId{e1}

	servable := newPipeline("servable", scenarioALayout())
	servable.EntitySet = []gekko.EntityId{e1}

	alloc := newFakeAllocator()
	driver := NewDriver(alloc, nil, DefaultConfig())

	driver.EncodePipeline(unservable, registry)
	driver.EncodePipeline(servable, registry)

	assert.False(t, unservable.Valid)
	assert.True(t, servable.Valid)
	assert.NotEmpty(t, servable.InstancesBytes)
}

// failingAllocator always reports a transient allocation failure, to exercise
// the distinct error-return path BufferAllocator.EnsureBuffer promises
// alongside the fatal-logic-error/panic-recover path.
type failingAllocator struct{}

func (failingAllocator) EnsureBuffer(pipeline PipelineKey, kind BufferKind, minSize int, headroom float64) ([]byte, error) {
	return nil, fmt.Errorf("device out of memory")
}

func TestDriver_EncodePipeline_BufferAllocationFailureSkipsThisPipelineOnly(t *testing.T) {
	app := gekko.NewApp()
	cmd := app.Commands()
	e1 := cmd.AddEntity(rgba{r: 1, g: 1, b: 1, a: 1})
	app.Flush()

	registry := NewRegistry()
	registry.RegisterInstance(tintInstanceEncoder{view: NewView1[rgba](cmd)})

	p := newPipeline("scenarioA", scenarioALayout())
	p.EntitySet = []gekko.EntityId{e1}

	driver := NewDriver(failingAllocator{}, nil, DefaultConfig())
	driver.EncodePipeline(p, registry)

	assert.False(t, p.Valid, "a transient buffer allocation failure must skip the pipeline, not panic")
}
