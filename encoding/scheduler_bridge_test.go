package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readsEncoder is a GlobalsEncoder that declares an arbitrary Reads() set,
// used to build pipelines with controlled resource conflicts.
type readsEncoder struct {
	reads []any
}

func (e readsEncoder) Properties() PropertySet { return nil }
func (e readsEncoder) Reads() []any            { return e.reads }
func (e readsEncoder) Encode(w *Writer)        {}

func pipelineReading(key PipelineKey, reads ...any) *Pipeline {
	p := newPipeline(key, Layout{})
	p.Encoders.Globals = []GlobalsEncoder{readsEncoder{reads: reads}}
	return p
}

func TestGroupDisjoint_ConflictingPipelinesLandInDifferentGroups(t *testing.T) {
	a := pipelineReading("a", position{})
	b := pipelineReading("b", position{})

	groups := groupDisjoint([]*Pipeline{a, b})

	require.Len(t, groups, 2, "pipelines sharing a read resource must not share a group")
}

func TestGroupDisjoint_DisjointPipelinesShareAGroup(t *testing.T) {
	a := pipelineReading("a", position{})
	b := pipelineReading("b", velocity{})

	groups := groupDisjoint([]*Pipeline{a, b})

	require.Len(t, groups, 1, "pipelines with no shared resource can share a group")
	assert.Len(t, groups[0], 2)
}

func TestGroupDisjoint_ThreeWayConflictChain(t *testing.T) {
	// a reads position, b reads position+velocity, c reads velocity: a and b
	// conflict, b and c conflict, but a and c don't — b must end up alone.
	a := pipelineReading("a", position{})
	b := pipelineReading("b", position{}, velocity{})
	c := pipelineReading("c", velocity{})

	groups := groupDisjoint([]*Pipeline{a, b, c})

	require.Len(t, groups, 2)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, 3, total)
}

func TestPipelineResourceSet_IncludesImplicitBufferWrite(t *testing.T) {
	p := pipelineReading("pipeline-key", position{})
	rs := PipelineResourceSet(p)

	require.Len(t, rs.Reads, 1)
	require.Len(t, rs.Writes, 1)
	assert.Equal(t, PipelineKey("pipeline-key"), rs.Writes[0])
}

func TestDisjoint_SharedPipelineKeyWriteConflicts(t *testing.T) {
	a := ResourceSet{Writes: []any{PipelineKey("shared")}}
	b := ResourceSet{Writes: []any{PipelineKey("shared")}}

	assert.False(t, disjoint(a, b))
}
