// context.go
package render

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Context owns the device, the single submission queue's mutex and the
// timeline. Everything that records, submits or presents goes through one
// Context.
type Context struct {
	dev      Device
	timeline *Timeline
	log      *zap.Logger

	// queueMu totally orders submit and present on the shared queue.
	queueMu sync.Mutex

	destroyed bool
}

type ContextOption func(*Context)

func WithLogger(log *zap.Logger) ContextOption {
	return func(c *Context) {
		c.log = log
	}
}

func NewContext(dev Device, opts ...ContextOption) *Context {
	ctx := &Context{
		dev:      dev,
		timeline: NewTimeline(dev),
		log:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

func (c *Context) Device() Device {
	return c.dev
}

func (c *Context) Timeline() *Timeline {
	return c.timeline
}

func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Reap runs one cooperative destruction pass. Call it once per tick.
func (c *Context) Reap() error {
	return c.timeline.Reap()
}

// Destroy tears the context down. Order is load-bearing: device idle
// first, then a full drain of the destruction queue, then the backend's
// own teardown. A non-empty queue after the drain means a destruction was
// scheduled against a timeline value that never signaled.
func (c *Context) Destroy() error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true

	if err := c.dev.WaitIdle(); err != nil {
		return err
	}

	if err := c.timeline.Reap(); err != nil {
		return err
	}

	if n := c.timeline.PendingCount(); n != 0 {
		panic(fmt.Sprintf("render: %d deferred destructions still pending after idle drain", n))
	}

	c.log.Info("context destroyed",
		zap.Uint64("timeline_reserved", c.timeline.Reserved()))

	c.dev.Shutdown()
	return nil
}
