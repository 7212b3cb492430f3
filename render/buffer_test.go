// buffer_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferDeviceAddressRequiresUsageFlag(t *testing.T) {
	ctx := NewContext(newFakeDevice())

	plain, err := NewBuffer(ctx, BufferSpec{Size: 256, Usage: UsageStorage})
	require.NoError(t, err)

	_, err = plain.DeviceAddress()
	assert.Error(t, err)

	addressed, err := NewBuffer(ctx, BufferSpec{Size: 256, Usage: UsageStorage | UsageDeviceAddress})
	require.NoError(t, err)

	addr, err := addressed.DeviceAddress()
	require.NoError(t, err)
	assert.NotZero(t, addr)
}

func TestBufferMappedOnlyWhenHostVisible(t *testing.T) {
	ctx := NewContext(newFakeDevice())

	deviceLocal, err := NewBuffer(ctx, BufferSpec{Size: 64, Usage: UsageVertex})
	require.NoError(t, err)
	assert.Nil(t, deviceLocal.Mapped())

	hostVisible, err := NewBuffer(ctx, BufferSpec{Size: 64, Usage: UsageVertex, HostVisible: true})
	require.NoError(t, err)
	assert.Len(t, hostVisible.Mapped(), 64)
}

func TestBufferZeroSizeRejected(t *testing.T) {
	ctx := NewContext(newFakeDevice())

	_, err := NewBuffer(ctx, BufferSpec{Usage: UsageStorage})
	assert.Error(t, err)
}

func TestReleaseDefersDestructionUntilReservedCompletes(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	// Two submissions are outstanding when the buffer is released.
	ctx.Timeline().ReserveNext()
	ctx.Timeline().ReserveNext()

	buf, err := NewBuffer(ctx, BufferSpec{Size: 128, Usage: UsageStorage})
	require.NoError(t, err)
	buf.Release()

	// The GPU has only reached 1 of 2; the buffer must survive.
	dev.completed = 1
	require.NoError(t, ctx.Reap())
	assert.Empty(t, dev.destroyedBuffers)

	dev.completed = 2
	require.NoError(t, ctx.Reap())
	assert.Equal(t, []BufferHandle{buf.Handle()}, dev.destroyedBuffers)
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	buf, err := NewBuffer(ctx, BufferSpec{Size: 32, Usage: UsageStorage})
	require.NoError(t, err)

	buf.Release()
	buf.Release()

	require.NoError(t, ctx.Reap())
	assert.Len(t, dev.destroyedBuffers, 1)
}

func TestShaderReleaseGoesThroughDestructionQueue(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	ctx.Timeline().ReserveNext()

	shader, err := NewShader(ctx, make([]byte, 16))
	require.NoError(t, err)
	shader.Release()

	require.NoError(t, ctx.Reap())
	assert.Empty(t, dev.destroyedShaders)

	dev.completed = 1
	require.NoError(t, ctx.Reap())
	assert.Equal(t, []ShaderHandle{shader.Handle()}, dev.destroyedShaders)
}

func TestShaderRejectsBadSpirvLength(t *testing.T) {
	ctx := NewContext(newFakeDevice())

	_, err := NewShader(ctx, nil)
	assert.Error(t, err)

	_, err = NewShader(ctx, make([]byte, 7))
	assert.Error(t, err)
}
