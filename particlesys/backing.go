package particlesys

import (
	"github.com/embergrove/forgecs/components"
	"github.com/embergrove/forgecs/gfx"
)

// cpuBacking is the flat-array particle storage path, used whenever the
// host's Provider doesn't additionally satisfy gfx.Compute.
type cpuBacking struct {
	records []float32 // capacity * RecordFloats
}

func newCPUBacking(capacity int) *cpuBacking {
	return &cpuBacking{records: make([]float32, capacity*RecordFloats)}
}

func (b *cpuBacking) Kind() components.BackingKind { return components.BackingCPU }
func (b *cpuBacking) Dispose()                     { b.records = nil }

func (b *cpuBacking) capacity() int { return len(b.records) / RecordFloats }

func (b *cpuBacking) at(i int) record {
	o := i * RecordFloats
	return record(b.records[o : o+RecordFloats])
}

// firstFreeSlot returns the index of the first dead slot, or -1 if the
// buffer is full.
func (b *cpuBacking) firstFreeSlot() int {
	for i := 0; i < b.capacity(); i++ {
		if !b.at(i).alive() {
			return i
		}
	}
	return -1
}

// gpuBacking owns the SSBO a compute-shader physics/emit pass reads and
// writes in place, running the same algorithm as the CPU path over
// SSBO-backed records instead of a host-side array. Render-time binding is
// the particle render system's job; this struct only owns the buffer's
// lifetime.
type gpuBacking struct {
	gl   gfx.Provider
	ssbo gfx.Buffer
	cap  int
}

func newGPUBacking(gl gfx.Provider, capacity int) *gpuBacking {
	ssbo := gl.GenBuffer()
	gl.BindBuffer(gfx.SHADER_STORAGE_BUFFER, ssbo)
	gl.BufferData(gfx.SHADER_STORAGE_BUFFER, capacity*RecordFloats*4, nil, gfx.DYNAMIC_DRAW)
	return &gpuBacking{gl: gl, ssbo: ssbo, cap: capacity}
}

func (b *gpuBacking) Kind() components.BackingKind { return components.BackingGPU }
func (b *gpuBacking) Dispose()                     { b.gl.DeleteBuffer(b.ssbo) }
