package core

import (
	"strconv"
	"sync/atomic"
)

// ID identifies a node for the lifetime of the process. It is the handle sent
// to clients and returned by them in interaction events.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

var lastID atomic.Uint64

// newID allocates the next process-unique identifier.
func newID() ID {
	return ID(lastID.Add(1))
}

// Kind identifies the variant of a node.
type Kind int

const (
	KindText Kind = iota
	KindButton
	KindInput
	KindChart
	KindRow
	KindColumn
	KindCard
)

// String returns the variant name used as the tag of rendered view records.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindButton:
		return "Button"
	case KindInput:
		return "Input"
	case KindChart:
		return "Chart"
	case KindRow:
		return "Row"
	case KindColumn:
		return "Column"
	case KindCard:
		return "Card"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsContainer reports whether nodes of this kind hold children.
func (k Kind) IsContainer() bool {
	return k == KindRow || k == KindColumn || k == KindCard
}

// Node is one element of the component tree.
type Node interface {
	ID() ID
	Kind() Kind
}

// base carries the identity shared by all node types.
type base struct {
	id ID
}

func (b base) ID() ID { return b.id }

// Text displays a content string. Content may embed binding tokens such as
// "$count" and a small markup convention: a leading "# " or "## " makes a
// heading and a lone "---" a separator.
//
// Size, Weight and Color are optional style properties. An empty string means
// unset. A value that is a single binding token, such as "$status_color", is
// replaced wholesale by the bound value at render time.
type Text struct {
	base
	Content string
	Size    string
	Weight  string
	Color   string
}

func (*Text) Kind() Kind { return KindText }

// Button displays a label and runs OnClick when the client reports a click.
// OnClick never leaves the server.
type Button struct {
	base
	Label   string
	OnClick func()
	Variant string
}

func (*Button) Kind() Kind { return KindButton }

// Input edits the state variable named by Variable.
type Input struct {
	base
	Variable string
	Label    string
	Type     string
}

func (*Input) Kind() Kind { return KindInput }

// Chart plots the sequence held by the state variable named by Variable.
type Chart struct {
	base
	Variable string
	Type     string
	Title    string
	Labels   []string
}

func (*Chart) Kind() Kind { return KindChart }

// Container is a Row, Column or Card. It owns its children exclusively; the
// order of Children is declaration order and rendering order.
type Container struct {
	base
	kind     Kind
	children []Node
}

func (c *Container) Kind() Kind { return c.kind }

// Len returns the number of children.
func (c *Container) Len() int { return len(c.children) }

// Children returns a copy of the child list.
func (c *Container) Children() []Node {
	out := make([]Node, len(c.children))
	copy(out, c.children)
	return out
}

// VisitChildren calls visit for each child in order until visit returns false.
func (c *Container) VisitChildren(visit func(Node) bool) {
	for _, child := range c.children {
		if !visit(child) {
			return
		}
	}
}

func (c *Container) add(n Node) {
	c.children = append(c.children, n)
}
