package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/crystal/pkg/figure"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to an evaluation that finished after a newer
	// one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	lib    *figure.Library
	errors []EvalError
	err    error
}

// next starts a new generation and returns it.
func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// current returns the latest generation.
func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await waits for the result of generation gen. A result that arrives after
// a newer generation started is discarded. When ctx ends first the
// goroutine is abandoned; zygomys cannot be interrupted, and its buffered
// send never blocks.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*figure.Library, []EvalError, error) {
	select {
	case res := <-ch:
		if gen != e.current() {
			return nil, nil, ErrSuperseded
		}
		return res.lib, res.errors, res.err

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout())
		}
		return nil, nil, ctx.Err()
	}
}
