package encoding

import (
	"encoding/binary"
	"testing"

	gekko "github.com/gekko3d/shaderenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTextureBatchEncoder struct {
	textureOf map[gekko.EntityId]uint32
}

func (f fakeTextureBatchEncoder) Properties() PropertySet { return nil }
func (f fakeTextureBatchEncoder) Reads() []any             { return nil }
func (f fakeTextureBatchEncoder) BatchKeySize() int         { return 4 }

func (f fakeTextureBatchEncoder) EncodeBatchKeys(ops []Op, keyStride []byte) {
	for i, op := range ops {
		binary.LittleEndian.PutUint32(keyStride[i*4:i*4+4], f.textureOf[op.EntityId])
	}
}

func (f fakeTextureBatchEncoder) Encode(ops []Op, w *Writer) {}

func TestClusterBatches_ScenarioB_TwoEntitiesSameTexture(t *testing.T) {
	p := &Pipeline{EntitySet: []gekko.EntityId{1, 2}}
	enc := fakeTextureBatchEncoder{textureOf: map[gekko.EntityId]uint32{1: 7, 2: 7}}

	writes := clusterBatches(p, []BatchEncoder{enc}, BatchRoundSize)

	assert.Equal(t, []uint16{0, 0}, p.BatchPerEntity)
	assert.Equal(t, []uint32{0, 2}, p.BatchOffsets)
	require.Len(t, writes, 1)
	assert.Equal(t, 0, writes[0].WriteIndex)
}

func TestClusterBatches_ScenarioC_ThreeEntitiesTwoBatches(t *testing.T) {
	p := &Pipeline{EntitySet: []gekko.EntityId{1, 2, 3}}
	enc := fakeTextureBatchEncoder{textureOf: map[gekko.EntityId]uint32{1: 7, 2: 9, 3: 7}}

	writes := clusterBatches(p, []BatchEncoder{enc}, BatchRoundSize)

	assert.Equal(t, []uint16{0, 1, 0}, p.BatchPerEntity)
	assert.Equal(t, []uint32{0, 2, 3}, p.BatchOffsets)
	require.Len(t, writes, 2)

	writeIndex := computeInstanceWrites(p)
	got := map[gekko.EntityId]int{}
	for _, op := range writeIndex {
		got[op.EntityId] = op.WriteIndex
	}
	assert.Equal(t, 0, got[1])
	assert.Equal(t, 2, got[2])
	assert.Equal(t, 1, got[3])
}

func TestClusterBatches_Invariant_BatchPerEntityBoundedByOffsets(t *testing.T) {
	p := &Pipeline{EntitySet: []gekko.EntityId{1, 2, 3, 4}}
	enc := fakeTextureBatchEncoder{textureOf: map[gekko.EntityId]uint32{1: 1, 2: 2, 3: 3, 4: 1}}

	clusterBatches(p, []BatchEncoder{enc}, BatchRoundSize)

	for _, b := range p.BatchPerEntity {
		assert.Less(t, int(b), len(p.BatchOffsets))
	}

	total := 0
	for i := 0; i < p.BatchCount(); i++ {
		total += int(p.BatchOffsets[i+1] - p.BatchOffsets[i])
	}
	assert.Equal(t, len(p.EntitySet), total)
}

func TestClusterBatches_SpansMultipleRounds(t *testing.T) {
	n := 3
	textures := make(map[gekko.EntityId]uint32, n)
	entities := make([]gekko.EntityId, n)
	for i := 0; i < n; i++ {
		entities[i] = gekko.EntityId(i + 1)
		textures[entities[i]] = uint32(i % 2)
	}
	p := &Pipeline{EntitySet: entities}
	enc := fakeTextureBatchEncoder{textureOf: textures}

	clusterBatches(p, []BatchEncoder{enc}, 2)

	assert.Len(t, p.BatchPerEntity, n)
	assert.Equal(t, 2, p.BatchCount())
}
