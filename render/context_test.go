// context_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestroyWaitsDrainsThenShutsDown(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	// A pending destruction whose counter the device has completed.
	ctx.Timeline().ReserveNext()
	dev.completed = 1
	destroyed := false
	ctx.Timeline().ScheduleDestroy(1, func() { destroyed = true })

	require.NoError(t, ctx.Destroy())

	assert.Equal(t, 1, dev.waitIdleCalls)
	assert.True(t, destroyed)
	assert.Equal(t, 1, dev.shutdownCalls)
}

func TestDestroyPanicsOnUnsatisfiablePending(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	// Reserved but never completed: the drain cannot make progress, which
	// means a submission never signaled its reserved value.
	ctx.Timeline().ReserveNext()
	ctx.Timeline().ScheduleDestroy(1, func() {})

	assert.Panics(t, func() {
		_ = ctx.Destroy()
	})
	assert.Equal(t, 0, dev.shutdownCalls)
}

func TestDestroyIsIdempotent(t *testing.T) {
	dev := newFakeDevice()
	ctx := NewContext(dev)

	require.NoError(t, ctx.Destroy())
	require.NoError(t, ctx.Destroy())

	assert.Equal(t, 1, dev.waitIdleCalls)
	assert.Equal(t, 1, dev.shutdownCalls)
}
