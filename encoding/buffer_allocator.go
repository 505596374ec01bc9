package encoding

// BufferKind distinguishes the three output buffer roles a pipeline owns,
// so a single allocator can apply per-kind growth/placement policy.
type BufferKind int

const (
	BufferGlobals BufferKind = iota
	BufferBatch
	BufferInstances
)

// BufferAllocator is the GPU-backend collaborator named in the external
// interfaces: the core only asks for a big-enough byte region and a mapped
// view into it, never touching the GPU device directly.
type BufferAllocator interface {
	// EnsureBuffer grows (never shrinks) the named buffer so it holds at
	// least minSize bytes. When growth is actually needed, the allocator
	// pads the new capacity by headroom (a fraction, e.g. 0.5 for 50%) so
	// repeated small growth requests don't each force a reallocation. The
	// returned slice's length is the buffer's current full capacity, not
	// minSize.
	//
	// A non-nil error reports a transient external failure (e.g. the GPU
	// device rejected the allocation) rather than a logic error: the
	// caller skips this pipeline for the current frame and retries on the
	// next one, distinct from the fatal-logic-error/panic path.
	EnsureBuffer(pipeline PipelineKey, kind BufferKind, minSize int, headroom float64) ([]byte, error)
}

// BufferGrowthHeadroom is the fraction of extra capacity requested whenever
// a buffer must grow, so frequent small growth doesn't cause frequent
// reallocation.
const BufferGrowthHeadroom = 0.5
