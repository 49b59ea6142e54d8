package gfx

import gl "github.com/go-gl/gl/v4.3-core/gl"

// GL43 extends GL33 with the compute-shader entry points used by the GPU
// particle physics path. Construct only after ProbeCompute confirms the
// context actually exposes 4.3 Core.
type GL43 struct {
	GL33
}

// InitGL43 initializes function pointers against a 4.3 Core context.
func InitGL43() (*GL43, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	return &GL43{}, nil
}

func (g *GL43) DispatchCompute(groupsX, groupsY, groupsZ uint32) {
	gl.DispatchCompute(groupsX, groupsY, groupsZ)
}

func (g *GL43) MemoryBarrier(barriers Enum) { gl.MemoryBarrier(uint32(barriers)) }

func (g *GL43) BindBufferBase(target Enum, index uint32, b Buffer) {
	gl.BindBufferBase(uint32(target), index, uint32(b))
}

var _ Compute = (*GL43)(nil)

// ProbeCompute attempts to stand up a Compute provider on the current
// context, reporting false rather than an error when the context does
// not expose 4.3 Core. Nothing in this module calls it: the particle emit
// system decides once, at the first particle-buffer emission, by checking
// whether its own Provider also implements Compute.
func ProbeCompute() (Compute, bool) {
	impl, err := InitGL43()
	if err != nil {
		return nil, false
	}
	return impl, true
}
