// Package engine evaluates figure scripts: a small Lisp, run by zygomys in
// a sandbox, whose builtins build plane sets and name them as crystals.
// Evaluation produces a figure.Library.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/crystal/pkg/figure"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a script problem the user can fix: a parse error, an
// unknown symbol or a builtin rejecting its arguments. Line is 1-based, or
// 0 when zygomys did not report one.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs figure scripts. Every evaluation gets its own sandbox;
// the engine itself only tracks which evaluation is the latest.
type Engine struct {
	// Timeout bounds one evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

// Evaluate is EvaluateContext without a caller deadline.
func (e *Engine) Evaluate(source string) (*figure.Library, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext runs a figure script and returns the crystals it
// defined.
//
// Script problems come back as EvalErrors with a nil library. The error
// return is reserved for failures of the run itself: a panic, ErrTimeout,
// ErrSuperseded when a newer evaluation started meanwhile, or ctx ending.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*figure.Library, []EvalError, error) {
	gen := e.next()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		lib, evalErrs, err := evaluate(source)
		ch <- evalResult{lib: lib, errors: evalErrs, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()
	return e.await(ctx, ch, gen)
}

// evaluate runs source in a fresh sandbox.
func evaluate(source string) (*figure.Library, []EvalError, error) {
	lib := figure.NewLibrary()
	if strings.TrimSpace(source) == "" {
		return lib, nil, nil
	}

	// No filesystem or syscalls from scripts.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, lib)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return lib, nil, nil
}

// linePatterns recognise the ways zygomys reports a line number, most
// specific first: "Error on line N: ..." from the parser and "line N: ..."
// from the evaluator.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns a zygomys error into an EvalError, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
