// Package throttle bounds the number of concurrent transfers and the byte
// rate of streamed content.
package throttle

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds transfer limits. Zero values mean unlimited.
type Config struct {
	// MaxTransfers is the maximum number of copies, moves and uploads
	// running at once.
	MaxTransfers int64

	// IOLimitBytesPerSec caps the throughput of streamed uploads and
	// downloads, shared by all of them.
	IOLimitBytesPerSec int64
}

// Controller enforces Config. A nil *Controller allows everything.
type Controller struct {
	slots     *semaphore.Weighted // nil if unlimited
	ioLimiter *rate.Limiter       // nil if unlimited
	burst     int
}

// New creates a controller for cfg.
func New(cfg Config) *Controller {
	c := &Controller{}
	if cfg.MaxTransfers > 0 {
		c.slots = semaphore.NewWeighted(cfg.MaxTransfers)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.burst = int(cfg.IOLimitBytesPerSec)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.burst)
	}
	return c
}

// Acquire waits for a transfer slot. The returned release func must be
// called once the transfer is done.
func (c *Controller) Acquire(ctx context.Context) (release func(), err error) {
	if c == nil || c.slots == nil {
		return func() {}, nil
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.slots.Release(1) }, nil
}

// Reader wraps r so reads wait for the shared IO budget.
func (c *Controller) Reader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, c: c}
}

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if len(p) > l.c.burst {
		p = p[:l.c.burst]
	}
	n, err := l.r.Read(p)
	if n > 0 {
		if werr := l.c.ioLimiter.WaitN(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
