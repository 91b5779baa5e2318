// Package engine resolves client interactions against a component tree and
// produces the view that follows each one.
package engine

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/state"
)

// Outcome describes what an interaction did.
type Outcome int

const (
	// OutcomeIgnored means the target could not be resolved.
	OutcomeIgnored Outcome = iota
	// OutcomeNoCallback means the target exists but carries no callback.
	OutcomeNoCallback
	// OutcomeFired means the bound callback ran to completion.
	OutcomeFired
	// OutcomeFailed means the bound callback panicked.
	OutcomeFailed
	// OutcomeUpdated means an input edit was written to the store.
	OutcomeUpdated
	// OutcomeDropped means the event kind is not handled; no render follows.
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNoCallback:
		return "no_callback"
	case OutcomeFired:
		return "fired"
	case OutcomeFailed:
		return "failed"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDropped:
		return "dropped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Engine owns a tree and the store its bindings resolve against. All
// interactions and renders run under one lock, so each interaction is fully
// processed before the next one starts, across every connection.
//
// Callbacks run while the lock is held and must not call back into the
// engine.
type Engine struct {
	mu    sync.Mutex
	tree  *core.Tree
	store *state.Store

	trace *TraceBuffer

	// OnRender, if set, is called with the duration of every full render.
	OnRender func(time.Duration)
}

// New returns an engine for tree and store.
func New(tree *core.Tree, store *state.Store) *Engine {
	if tree == nil {
		tree = core.NewTree()
	}
	if store == nil {
		store = state.New()
	}
	return &Engine{tree: tree, store: store, trace: NewTraceBuffer(0, 0)}
}

// Tree returns the component tree.
func (e *Engine) Tree() *core.Tree { return e.tree }

// Store returns the state store.
func (e *Engine) Store() *state.Store { return e.store }

// Trace returns the buffer of recent render timings.
func (e *Engine) Trace() *TraceBuffer { return e.trace }

// Render returns the view of the whole tree.
func (e *Engine) Render() render.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderLocked("render", "")
}

// Dispatch fires the callback bound to the node with the given identifier.
// An unknown identifier is ignored. A panicking callback is recovered,
// reported to the global error handler and returned as *errors.CallbackError;
// store mutations made before the panic are kept.
func (e *Engine) Dispatch(id core.ID) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatchLocked(id)
}

// Result is the product of Handle.
type Result struct {
	Outcome Outcome
	// View is the render that follows the interaction. It is nil only for
	// OutcomeDropped.
	View *render.View
}

// Handle applies ev and renders the tree. Every click and input event is
// followed by a render, whether or not it resolved; the returned error is a
// callback failure and does not suppress the view.
func (e *Engine) Handle(ev Event) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		outcome Outcome
		err     error
	)
	switch ev.Kind {
	case EventClick:
		outcome, err = e.dispatchLocked(ev.ID)
	case EventInput:
		outcome = e.editLocked(ev)
	default:
		return Result{Outcome: OutcomeDropped}, nil
	}

	v := e.renderLocked(string(ev.Kind), outcome.String())
	return Result{Outcome: outcome, View: &v}, err
}

func (e *Engine) renderLocked(cause, outcome string) render.View {
	start := time.Now()
	v := render.Render(e.tree.Root(), e.store)
	d := time.Since(start)

	e.trace.Add(RenderSample{
		Timestamp: start.UnixMilli(),
		RenderMs:  durationToMillis(d),
		Cause:     cause,
		Outcome:   outcome,
		Nodes:     countViews(v),
	}, d)
	if e.OnRender != nil {
		e.OnRender(d)
	}
	return v
}

func (e *Engine) dispatchLocked(id core.ID) (Outcome, error) {
	n, ok := e.tree.Lookup(id)
	if !ok {
		return OutcomeIgnored, nil
	}
	btn, ok := n.(*core.Button)
	if !ok || btn.OnClick == nil {
		return OutcomeNoCallback, nil
	}
	if err := safeCall(btn); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeFired, nil
}

// safeCall runs the button callback with panic recovery.
func safeCall(btn *core.Button) (cbErr *errors.CallbackError) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				cbErr = &errors.CallbackError{
					Node:       uint64(btn.ID()),
					NodeType:   btn.Kind().String(),
					Label:      btn.Label,
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				}
			}
		}()
		btn.OnClick()
	}()

	if cbErr != nil {
		errors.ReportCallbackError(cbErr)
	}
	return cbErr
}

func (e *Engine) editLocked(ev Event) Outcome {
	var in *core.Input
	if ev.ID != 0 {
		if n, ok := e.tree.Lookup(ev.ID); ok {
			in, _ = n.(*core.Input)
		}
	} else if ev.Variable != "" {
		in, _ = e.tree.Registry().InputFor(ev.Variable)
	}
	if in == nil {
		return OutcomeIgnored
	}
	e.store.Set(in.Variable, coerceInput(in, ev.Value))
	return OutcomeUpdated
}

// coerceInput converts text from a number field to a number. Whole values
// become int so that bindings print without a fraction.
func coerceInput(in *core.Input, v any) any {
	s, ok := v.(string)
	if !ok || in.Type != "number" {
		return v
	}
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return v
}

// typeName is used in diagnostics for values of unexpected type.
func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
