package engine

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/errors"
)

// EventKind names a client interaction.
type EventKind string

const (
	// EventClick activates a button: {"type":"click","id":N}.
	EventClick EventKind = "click"
	// EventInput edits an input: {"type":"input","id":N,"value":V}. The
	// input may be addressed by "variable" instead of "id".
	EventInput EventKind = "input"
)

// Event is a decoded client frame.
type Event struct {
	Kind     EventKind
	ID       core.ID
	Variable string
	Value    any
}

// DecodeEvent parses a client frame. Frames of unknown kind decode without
// error; Handle drops them. A click whose id is missing or unreadable decodes
// with ID zero, which no node carries. Structural problems return
// *errors.ParseError.
func DecodeEvent(frame []byte) (Event, error) {
	fail := func(reason string) (Event, error) {
		return Event{}, &errors.ParseError{DataType: "Event", Got: string(frame), Reason: reason}
	}

	if !gjson.ValidBytes(frame) {
		return fail("invalid JSON")
	}
	root := gjson.ParseBytes(frame)
	if !root.IsObject() {
		return fail("frame is not an object")
	}

	kind := root.Get("type")
	if kind.Type != gjson.String {
		return fail("missing event type")
	}
	ev := Event{Kind: EventKind(kind.Str)}

	id, ok := decodeID(root.Get("id"))
	ev.ID = id

	switch ev.Kind {
	case EventInput:
		if !ok {
			return fail("invalid id " + root.Get("id").Raw)
		}
		if v := root.Get("variable"); v.Exists() {
			if v.Type != gjson.String {
				return fail("variable must be a string, got " + typeName(v.Value()))
			}
			ev.Variable = v.Str
		}
		if ev.ID == 0 && ev.Variable == "" {
			return fail("input without id or variable")
		}
		ev.Value = root.Get("value").Value()
	}
	return ev, nil
}

// decodeID accepts a positive integer or its decimal string form. A missing
// id decodes as zero; anything else unreadable returns zero and false.
func decodeID(r gjson.Result) (core.ID, bool) {
	switch r.Type {
	case gjson.Null:
		return 0, !r.Exists() || r.Raw == "null"
	case gjson.Number:
		n, err := strconv.ParseUint(r.Raw, 10, 64)
		if err != nil {
			return 0, false
		}
		return core.ID(n), true
	case gjson.String:
		n, err := strconv.ParseUint(r.Str, 10, 64)
		if err != nil {
			return 0, false
		}
		return core.ID(n), true
	default:
		return 0, false
	}
}
