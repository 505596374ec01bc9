package gekko

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shaderenc/encoding"
)

// bufferSlot holds one pipeline/kind buffer: a GPU-resident copy alongside
// the CPU-side mirror the encoding core writes its bytes into. The two are
// only reconciled by Upload, not on every EnsureBuffer call, since a frame
// calls EnsureBuffer once per kind but writes its bytes afterwards.
type bufferSlot struct {
	gpuBuf *wgpu.Buffer
	mirror []byte
}

type bufferSlotKey struct {
	pipeline encoding.PipelineKey
	kind     encoding.BufferKind
}

// WgpuBufferAllocator is the concrete, wgpu-backed encoding.BufferAllocator:
// it owns one GPU buffer per (pipeline, kind) pair and grows both the GPU
// buffer and its CPU mirror geometrically, adapted from
// voxelrt/rt/gpu/manager.go's ensureBuffer 1.5x growth so repeated small
// growth requests don't each force a reallocation.
//
// RegisterPipelineSystem calls EnsureBuffer from multiple goroutines at once
// (one per pipeline within a disjoint-resource group), so mu guards every
// access to slots —
// a concurrent map write here is an unrecoverable fatal error, not a panic
// the per-pipeline recover() in driver.go could catch.
type WgpuBufferAllocator struct {
	gpuState *GpuState

	mu    sync.Mutex
	slots map[bufferSlotKey]*bufferSlot
}

func NewWgpuBufferAllocator(gpuState *GpuState) *WgpuBufferAllocator {
	return &WgpuBufferAllocator{
		gpuState: gpuState,
		slots:    make(map[bufferSlotKey]*bufferSlot),
	}
}

func (a *WgpuBufferAllocator) usageFor(kind encoding.BufferKind) wgpu.BufferUsage {
	base := wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	if kind == encoding.BufferGlobals {
		return base | wgpu.BufferUsageUniform
	}
	return base | wgpu.BufferUsageStorage
}

// EnsureBuffer implements encoding.BufferAllocator. The returned slice is the
// slot's CPU mirror, sized to the buffer's current full capacity; callers
// write their encoded bytes directly into it, and Upload pushes the mirror
// to the GPU buffer once the frame's encode pass has finished writing.
//
// A device.CreateBuffer failure is a transient external error, not a logic
// bug, so it's returned rather than panicked: the GPU buffer is created
// before the mirror grows, so on failure both the mirror and the stale (or
// nil) GPU buffer are left as they were, and the caller skips this pipeline
// for the frame, retrying the allocation next frame.
func (a *WgpuBufferAllocator) EnsureBuffer(pipeline encoding.PipelineKey, kind encoding.BufferKind, minSize int, headroom float64) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := bufferSlotKey{pipeline: pipeline, kind: kind}
	slot, ok := a.slots[key]
	if !ok {
		slot = &bufferSlot{}
		a.slots[key] = slot
	}

	if len(slot.mirror) >= minSize {
		return slot.mirror, nil
	}

	grown := int(float64(len(slot.mirror)) * 1.5)
	newSize := minSize
	if grown > newSize {
		newSize = grown
	}
	newSize += int(float64(minSize) * headroom)
	if newSize < 1 {
		newSize = 1
	}

	label := fmt.Sprintf("%s/%d", pipeline, kind)
	newBuf, err := a.gpuState.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(newSize),
		Usage:            a.usageFor(kind),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("gekko: create buffer %s: %w", label, err)
	}

	newMirror := make([]byte, newSize)
	copy(newMirror, slot.mirror)
	slot.mirror = newMirror

	if slot.gpuBuf != nil {
		slot.gpuBuf.Release()
	}
	slot.gpuBuf = newBuf

	return slot.mirror, nil
}

// Upload pushes every slot's CPU mirror to its GPU buffer. The render system
// calls this once per frame, after the encoding Driver has finished writing
// every pipeline's globals/batch/instance bytes for the frame.
func (a *WgpuBufferAllocator) Upload() {
	a.mu.Lock()
	defer a.mu.Unlock()

	queue := a.gpuState.queue
	for _, slot := range a.slots {
		if slot.gpuBuf == nil || len(slot.mirror) == 0 {
			continue
		}
		queue.WriteBuffer(slot.gpuBuf, 0, slot.mirror)
	}
}

// GpuBuffer returns the underlying wgpu buffer for a pipeline/kind pair, for
// the render pass to bind as a shader resource. Returns nil if EnsureBuffer
// was never called for this pair.
func (a *WgpuBufferAllocator) GpuBuffer(pipeline encoding.PipelineKey, kind encoding.BufferKind) *wgpu.Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, ok := a.slots[bufferSlotKey{pipeline: pipeline, kind: kind}]
	if !ok {
		return nil
	}
	return slot.gpuBuf
}
