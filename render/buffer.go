// buffer.go
package render

import "github.com/pkg/errors"

// Buffer is a GPU buffer with eagerly created backing memory. Release
// defers the actual destruction until the GPU timeline guarantees no
// submitted work can still reference it.
type Buffer struct {
	ctx      *Context
	info     BufferInfo
	usage    BufferUsage
	released bool
}

func NewBuffer(ctx *Context, spec BufferSpec) (*Buffer, error) {
	if spec.Size == 0 {
		return nil, errors.New("buffer size must be non-zero")
	}

	info, err := ctx.dev.CreateBuffer(spec)
	if err != nil {
		return nil, errors.Wrap(err, "create buffer")
	}

	return &Buffer{
		ctx:   ctx,
		info:  info,
		usage: spec.Usage,
	}, nil
}

func (b *Buffer) Handle() BufferHandle {
	return b.info.Handle
}

func (b *Buffer) Size() uint64 {
	return b.info.Size
}

// Mapped returns the host view of the buffer's memory, or nil for
// device-local buffers. Writing while the GPU reads the buffer is the
// caller's hazard to manage.
func (b *Buffer) Mapped() []byte {
	return b.info.Mapped
}

// DeviceAddress returns the GPU virtual address of the buffer. The buffer
// must have been created with UsageDeviceAddress.
func (b *Buffer) DeviceAddress() (uint64, error) {
	if b.usage&UsageDeviceAddress == 0 {
		return 0, errors.New("buffer was not created with device address usage")
	}
	return b.info.Address, nil
}

// Release schedules destruction at the current reserved timeline value, a
// conservative upper bound on every submission that may reference the
// buffer. Safe to call multiple times; only the first does anything.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true

	dev := b.ctx.dev
	handle := b.info.Handle
	b.ctx.timeline.ScheduleDestroy(b.ctx.timeline.Reserved(), func() {
		dev.DestroyBuffer(handle)
	})
}
