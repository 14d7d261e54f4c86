package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/frostbyte73/core"

	"github.com/peerlink/interop/pkg/logger"
)

var (
	ErrClosed = errors.New("gateway has been closed")
)

type ctxKey struct{}

type task struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Gateway owns the single long-lived worker that device-affinity-sensitive
// operations must run on. Run dispatches synchronously: enqueue and wait.
// A task already executing on the worker may call Run again; it is detected
// through the task context and executed inline instead of deadlocking.
type Gateway struct {
	logger logger.Logger
	name   string

	// lock makes enqueue and close mutually exclusive: once the fuse
	// breaks under it, nothing enters ops, so the worker's drain is final
	// and every accepted task gets an answer.
	lock   sync.Mutex
	ops    chan task
	closed core.Fuse
}

func New(name string, size int) *Gateway {
	g := &Gateway{
		logger: logger.GetLogger().WithName(name),
		name:   name,
		ops:    make(chan task, size),
	}
	go g.process()
	return g
}

// Run executes fn on the gateway worker and blocks until it completes,
// propagating fn's error. fn receives a context tagged with the gateway
// identity; nested Run calls passing that context execute inline.
func (g *Gateway) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if OnGateway(ctx, g) {
		return fn(ctx)
	}

	t := task{fn: fn, done: make(chan error, 1)}

	g.lock.Lock()
	if g.closed.IsBroken() {
		g.lock.Unlock()
		return ErrClosed
	}
	select {
	case g.ops <- t:
		g.lock.Unlock()
	case <-ctx.Done():
		g.lock.Unlock()
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) Close() {
	g.lock.Lock()
	g.closed.Break()
	g.lock.Unlock()
}

func (g *Gateway) IsClosed() bool {
	return g.closed.IsBroken()
}

// OnGateway reports whether ctx originates from a task running on g.
func OnGateway(ctx context.Context, g *Gateway) bool {
	return ctx.Value(ctxKey{}) == g
}

func (g *Gateway) process() {
	base := context.WithValue(context.Background(), ctxKey{}, g)
	for {
		select {
		case t := <-g.ops:
			t.done <- t.fn(base)
		case <-g.closed.Watch():
			// nothing can enter ops once the fuse is broken; fail what
			// is left so no caller is left hanging
			for {
				select {
				case t := <-g.ops:
					t.done <- ErrClosed
				default:
					g.logger.Debugw("gateway worker stopped")
					return
				}
			}
		}
	}
}

// RunResult runs fn on the gateway and returns its value along with its
// error. The zero value is returned on dispatch failure.
func RunResult[T any](g *Gateway, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Run(ctx, func(ctx context.Context) error {
		var ferr error
		out, ferr = fn(ctx)
		return ferr
	})
	return out, err
}
