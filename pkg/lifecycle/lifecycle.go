// Package lifecycle coordinates startup and shutdown hooks of long-lived
// subsystems such as database pools and storage clients.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Coordinator runs startup hooks concurrently, reports their combined
// result, and releases shutdown hooks when Shutdown is called.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu     sync.Mutex
	errs   []error
	ready  bool
	closed bool
}

// New creates a Coordinator whose context is derived from parent and is
// cancelled on Shutdown.
func New(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently. Its error is reported by WaitForStartup.
func (c *Coordinator) OnStartup(fn func() error) {
	c.startupWg.Go(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.errs = append(c.errs, err)
			c.mu.Unlock()
		}
	})
}

// OnShutdown runs fn concurrently. Hooks should block on
// <-c.Context().Done() before releasing their resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// WaitForStartup blocks until every startup hook has returned. It returns
// the joined hook errors; the coordinator is ready only when there are none.
func (c *Coordinator) WaitForStartup() error {
	c.startupWg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	err := errors.Join(c.errs...)
	c.ready = err == nil
	return err
}

// Ready reports whether startup completed without error and shutdown has
// not begun.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready && !c.closed
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
