// shader.go
package render

import "github.com/pkg/errors"

// Shader wraps a device shader module. Like Buffer, its release goes
// through the deferred destruction queue.
type Shader struct {
	ctx      *Context
	handle   ShaderHandle
	released bool
}

// NewShader creates a shader module from SPIR-V code, which must be a
// non-empty multiple of four bytes.
func NewShader(ctx *Context, code []byte) (*Shader, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("SPIR-V code length %d is not a positive multiple of 4", len(code))
	}

	handle, err := ctx.dev.CreateShader(code)
	if err != nil {
		return nil, errors.Wrap(err, "create shader module")
	}

	return &Shader{ctx: ctx, handle: handle}, nil
}

func (s *Shader) Handle() ShaderHandle {
	return s.handle
}

func (s *Shader) Release() {
	if s.released {
		return
	}
	s.released = true

	dev := s.ctx.dev
	handle := s.handle
	s.ctx.timeline.ScheduleDestroy(s.ctx.timeline.Reserved(), func() {
		dev.DestroyShader(handle)
	})
}
