package testing

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/engine"
	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/state"
)

var (
	// ErrNotFound is returned when a finder used by Tap or EnterText
	// matches nothing in the current view.
	ErrNotFound = errors.New("finder matched no records")
	// ErrWrongType is returned when Tap targets something other than a
	// Button, or EnterText something other than an Input.
	ErrWrongType = errors.New("finder matched a record of the wrong type")
)

// Tester drives a component tree through the interaction engine without a
// browser or network. It keeps the view produced by the last render and
// evaluates finders against it.
//
// The tester installs a recording error handler while it is alive, so tests
// using it must not run in parallel with tests that rely on the global
// handler.
type Tester struct {
	engine *engine.Engine
	view   render.View

	prevHandler loomerrors.ErrorHandler
	recorder    *recordingHandler
}

// NewTester wraps tree and store in a fresh engine and renders once.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester(tree *core.Tree, store *state.Store) *Tester {
	return NewEngineTester(engine.New(tree, store))
}

// NewEngineTester drives an existing engine.
func NewEngineTester(e *engine.Engine) *Tester {
	t := &Tester{
		engine:      e,
		prevHandler: loomerrors.Handler(),
		recorder:    &recordingHandler{},
	}
	loomerrors.SetHandler(t.recorder)
	t.view = e.Render()
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, tree *core.Tree, store *state.Store) *Tester {
	tester := NewTester(tree, store)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the global error handler.
func (t *Tester) Cleanup() {
	loomerrors.SetHandler(t.prevHandler)
}

// Engine returns the engine under test.
func (t *Tester) Engine() *engine.Engine {
	return t.engine
}

// Store returns the store bindings resolve against.
func (t *Tester) Store() *state.Store {
	return t.engine.Store()
}

// View returns the view from the last render.
func (t *Tester) View() render.View {
	return t.view
}

// Pump re-renders the tree. Call it after mutating the store directly.
func (t *Tester) Pump() render.View {
	t.view = t.engine.Render()
	return t.view
}

// Find evaluates finder against the current view.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{views: finder.Evaluate(&t.view), finder: finder}
}

// Send hands ev to the engine and keeps the resulting view. The returned
// error is the callback failure, if any.
func (t *Tester) Send(ev engine.Event) (engine.Outcome, error) {
	res, err := t.engine.Handle(ev)
	if res.View != nil {
		t.view = *res.View
	}
	return res.Outcome, err
}

// Tap clicks the first Button matched by finder.
func (t *Tester) Tap(finder Finder) error {
	v, err := t.target(finder, "Button")
	if err != nil {
		return err
	}
	_, err = t.Send(engine.Event{Kind: engine.EventClick, ID: v.ID})
	return err
}

// EnterText submits value to the first Input matched by finder.
func (t *Tester) EnterText(finder Finder, value any) error {
	v, err := t.target(finder, "Input")
	if err != nil {
		return err
	}
	_, err = t.Send(engine.Event{Kind: engine.EventInput, ID: v.ID, Value: value})
	return err
}

// CallbackErrors returns the callback failures reported since the tester
// was created.
func (t *Tester) CallbackErrors() []*loomerrors.CallbackError {
	return t.recorder.callbacks()
}

func (t *Tester) target(finder Finder, typ string) (*render.View, error) {
	v := t.Find(finder).FirstOrNil()
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, finder.Description())
	}
	if v.Type != typ {
		return nil, fmt.Errorf("%w: %s found %s, want %s", ErrWrongType, finder.Description(), v.Type, typ)
	}
	return v, nil
}

type recordingHandler struct {
	mu     sync.Mutex
	failed []*loomerrors.CallbackError
}

func (h *recordingHandler) HandleError(*loomerrors.LoomError)  {}
func (h *recordingHandler) HandlePanic(*loomerrors.PanicError) {}

func (h *recordingHandler) HandleCallbackError(err *loomerrors.CallbackError) {
	h.mu.Lock()
	h.failed = append(h.failed, err)
	h.mu.Unlock()
}

func (h *recordingHandler) callbacks() []*loomerrors.CallbackError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*loomerrors.CallbackError(nil), h.failed...)
}
