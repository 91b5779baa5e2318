package core

// Tree builds a component tree declaratively. It owns the root container, the
// context stack of open containers, and the registry.
//
// Every constructor attaches the new node to the container on top of the
// context stack, or to the root when no container is open:
//
//	tree := core.NewTree()
//	tree.Column(func() {
//	    tree.Text("$count")
//	    tree.Button("Inc", increment)
//	})
//
// Tree is NOT safe for concurrent use. Build the layout from one goroutine
// before serving it.
type Tree struct {
	root     *Container
	stack    []*Container
	registry *Registry
}

// NewTree creates a tree whose root is an empty Column.
func NewTree() *Tree {
	t := &Tree{registry: NewRegistry()}
	t.root = &Container{base: base{id: newID()}, kind: KindColumn}
	t.registry.register(t.root)
	return t
}

// Root returns the root container.
func (t *Tree) Root() *Container { return t.root }

// Registry returns the identifier lookup table of this tree.
func (t *Tree) Registry() *Registry { return t.registry }

// Lookup resolves id to a node of this tree.
func (t *Tree) Lookup(id ID) (Node, bool) { return t.registry.Lookup(id) }

// Depth returns the number of currently open container scopes.
func (t *Tree) Depth() int { return len(t.stack) }

// Current returns the container that receives the next declared node.
func (t *Tree) Current() *Container {
	if n := len(t.stack); n > 0 {
		return t.stack[n-1]
	}
	return t.root
}

// Enter opens a scope on c and returns the function that closes it. The
// returned function pops exactly one entry no matter how often it is called,
// so it is safe to defer:
//
//	defer tree.Enter(card)()
func (t *Tree) Enter(c *Container) (exit func()) {
	t.stack = append(t.stack, c)
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Within runs body with c open. The scope is closed even if body panics.
func (t *Tree) Within(c *Container, body func()) {
	defer t.Enter(c)()
	if body != nil {
		body()
	}
}

// attach assigns n its identity, registers it and adds it to the current
// container. The identifier is set before n becomes reachable.
func (t *Tree) attach(n Node, b *base) {
	b.id = newID()
	t.registry.register(n)
	t.Current().add(n)
}

// Text declares a Text node.
func (t *Tree) Text(content string, opts ...TextOption) *Text {
	n := &Text{Content: content}
	for _, opt := range opts {
		opt(n)
	}
	t.attach(n, &n.base)
	return n
}

// Button declares a Button. onClick may be nil.
func (t *Tree) Button(label string, onClick func(), opts ...ButtonOption) *Button {
	n := &Button{Label: label, OnClick: onClick, Variant: DefaultButtonVariant}
	for _, opt := range opts {
		opt(n)
	}
	t.attach(n, &n.base)
	return n
}

// Input declares an Input editing the state variable named variable.
func (t *Tree) Input(variable string, opts ...InputOption) *Input {
	n := &Input{Variable: variable, Type: DefaultInputType}
	for _, opt := range opts {
		opt(n)
	}
	t.attach(n, &n.base)
	return n
}

// Chart declares a Chart plotting the state variable named variable.
func (t *Tree) Chart(variable string, opts ...ChartOption) *Chart {
	n := &Chart{Variable: variable, Type: DefaultChartType}
	for _, opt := range opts {
		opt(n)
	}
	t.attach(n, &n.base)
	return n
}

// Row declares a horizontal container and runs body with it open.
func (t *Tree) Row(body func()) *Container {
	return t.container(KindRow, body)
}

// Column declares a vertical container and runs body with it open.
func (t *Tree) Column(body func()) *Container {
	return t.container(KindColumn, body)
}

// Card declares a framed container and runs body with it open.
func (t *Tree) Card(body func()) *Container {
	return t.container(KindCard, body)
}

func (t *Tree) container(kind Kind, body func()) *Container {
	c := &Container{kind: kind}
	t.attach(c, &c.base)
	t.Within(c, body)
	return c
}
