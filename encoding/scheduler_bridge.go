package encoding

import (
	"reflect"
	"sync"

	gekko "github.com/gekko3d/shaderenc"
)

// PipelineResourceSet returns the union of reads/writes every resolved
// encoder in p declares, plus the buffer allocator write every pipeline
// implicitly performs. This is what the system scheduling bridge exposes to
// the host scheduler so non-conflicting pipelines can run in parallel.
func PipelineResourceSet(p *Pipeline) ResourceSet {
	var rs ResourceSet
	for _, e := range p.Encoders.Globals {
		rs.Reads = append(rs.Reads, e.Reads()...)
	}
	for _, e := range p.Encoders.Batch {
		rs.Reads = append(rs.Reads, e.Reads()...)
	}
	for _, e := range p.Encoders.Instance {
		rs.Reads = append(rs.Reads, e.Reads()...)
	}
	rs.Writes = append(rs.Writes, p.Key)
	return rs
}

// disjoint reports whether a and b share no read/write resource type, where
// "type" is compared via reflect.TypeOf since ResourceSet entries are
// zero-value component/resource samples (the same convention View1..View3's
// Reads() uses) or PipelineKey values for the implicit buffer write.
func disjoint(a, b ResourceSet) bool {
	setOf := func(rs ResourceSet) map[any]struct{} {
		s := make(map[any]struct{}, len(rs.Reads)+len(rs.Writes))
		for _, v := range rs.Reads {
			s[typeKey(v)] = struct{}{}
		}
		for _, v := range rs.Writes {
			s[typeKey(v)] = struct{}{}
		}
		return s
	}
	sa, sb := setOf(a), setOf(b)
	for k := range sa {
		if _, clash := sb[k]; clash {
			return false
		}
	}
	return true
}

func typeKey(v any) any {
	if key, ok := v.(PipelineKey); ok {
		return key
	}
	return reflect.TypeOf(v)
}

// ResolveFunc produces the set of pipelines touched this frame, e.g. a
// Resolver[A].Resolve bound to a *gekko.Commands.
type ResolveFunc func(cmd *gekko.Commands) []*Pipeline

// RegisterPipelineSystem wires one resolver/driver/registry triple into the
// app's PreRender stage as a single system. Each frame it resolves
// pipelines and partitions them into groups whose members are pairwise
// resource-disjoint (groupDisjoint). A group's members encode concurrently,
// each on its own goroutine, since nothing in that group conflicts; groups
// themselves run one at a time, since two pipelines landing in different
// groups do so precisely because they share a read/write resource — letting
// different groups overlap would race on that shared resource. Encoders
// within a single pipeline still run sequentially per kind, per §4.9/§5.
func RegisterPipelineSystem(app *gekko.App, resolve ResolveFunc, driver *Driver, registry *Registry) {
	system := func(cmd *gekko.Commands) {
		pipelines := resolve(cmd)
		groups := groupDisjoint(pipelines)

		for _, group := range groups {
			var wg sync.WaitGroup
			wg.Add(len(group))
			for _, p := range group {
				p := p
				go func() {
					defer wg.Done()
					driver.EncodePipeline(p, registry)
				}()
			}
			wg.Wait()
		}
	}

	app.UseSystem(gekko.System(system).InStage(gekko.PreRender))
}

// groupDisjoint partitions pipelines into batches whose resource sets are
// pairwise disjoint within each batch; pipelines with conflicting reads or
// writes land in different batches to avoid a data race between their
// encodes.
func groupDisjoint(pipelines []*Pipeline) [][]*Pipeline {
	type entry struct {
		p  *Pipeline
		rs ResourceSet
	}
	entries := make([]entry, len(pipelines))
	for i, p := range pipelines {
		entries[i] = entry{p: p, rs: PipelineResourceSet(p)}
	}

	var groups [][]entry
	for _, e := range entries {
		placed := false
		for gi := range groups {
			conflict := false
			for _, other := range groups[gi] {
				if !disjoint(e.rs, other.rs) {
					conflict = true
					break
				}
			}
			if !conflict {
				groups[gi] = append(groups[gi], e)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []entry{e})
		}
	}

	out := make([][]*Pipeline, len(groups))
	for gi, g := range groups {
		for _, e := range g {
			out[gi] = append(out[gi], e.p)
		}
	}
	return out
}
