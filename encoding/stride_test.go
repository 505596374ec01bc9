package encoding

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrideSet_RoundTrip(t *testing.T) {
	region := BufferRegion{
		Fields: []FieldLayout{
			{Id: tintId(), Offset: 0},
			{Id: offsetId(), Offset: 16},
		},
		Stride: 24,
	}
	buf := make([]byte, region.Stride*3)
	ss := NewStrideSet(buf, region)

	tint := ss.Checkout(tintId())
	offset := ss.Checkout(offsetId())

	assert.Equal(t, 3, tint.Count())
	assert.Equal(t, 3, offset.Count())

	tintBytes := make([]byte, 16)
	binary.LittleEndian.PutUint32(tintBytes[0:4], 0x3F800000)
	tint.WriteAt(1, tintBytes)

	offsetBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(offsetBytes[0:4], 7)
	offset.WriteAt(1, offsetBytes)

	gotTint := buf[1*24+0 : 1*24+16]
	gotOffset := buf[1*24+16 : 1*24+24]
	assert.Equal(t, tintBytes, gotTint)
	assert.Equal(t, offsetBytes, gotOffset)
}

func TestStrideSet_DoubleCheckoutPanics(t *testing.T) {
	region := BufferRegion{Fields: []FieldLayout{{Id: tintId(), Offset: 0}}, Stride: 16}
	buf := make([]byte, 32)
	ss := NewStrideSet(buf, region)

	ss.Checkout(tintId())
	require.Panics(t, func() {
		ss.Checkout(tintId())
	})
}

func TestStride_WriteAtOutOfBoundsPanics(t *testing.T) {
	region := BufferRegion{Fields: []FieldLayout{{Id: tintId(), Offset: 0}}, Stride: 16}
	buf := make([]byte, 32)
	ss := NewStrideSet(buf, region)
	s := ss.Checkout(tintId())

	require.Panics(t, func() {
		s.WriteAt(2, make([]byte, 16))
	})
}

func TestStride_WriteAtWrongSizePanics(t *testing.T) {
	region := BufferRegion{Fields: []FieldLayout{{Id: tintId(), Offset: 0}}, Stride: 16}
	buf := make([]byte, 32)
	ss := NewStrideSet(buf, region)
	s := ss.Checkout(tintId())

	require.Panics(t, func() {
		s.WriteAt(0, make([]byte, 8))
	})
}

func TestNewStrideSet_BufferSizeNotMultipleOfStridePanics(t *testing.T) {
	region := BufferRegion{Fields: []FieldLayout{{Id: tintId(), Offset: 0}}, Stride: 16}
	require.Panics(t, func() {
		NewStrideSet(make([]byte, 17), region)
	})
}
