package focus

import (
	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/types"
)

// Direction is a navigation vector through the node list
type Direction int

const (
	Down Direction = iota + 1
	Up
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "none"
	}
}

// Node is one focusable row of the modal list
type Node struct {
	Order   int // 1-based position in the list
	Enabled bool
	ID      types.GroupID
}

// State of the cycler
type State int

const (
	Closed State = iota
	Open
)

// HeaderOrder is the focus value of the title row, which sits outside the
// wrap-around list
const HeaderOrder = 0

// Cycler moves a single logical focus through an ordered node list with
// wrap-around, skipping disabled nodes in the direction of travel.
//
// Disabled nodes remember the vector that last tried to enter them. The
// memory is consulted when such a node later receives pointer focus.
type Cycler struct {
	nodes   []Node
	focused int
	state   State
	vectors map[int]Direction
}

// NewCycler creates a closed cycler over nodes. Node orders are rewritten
// to match their position.
func NewCycler(nodes []Node) *Cycler {
	c := &Cycler{}
	c.SetNodes(nodes)
	return c
}

// SetNodes replaces the node list, e.g. after filtering. Remembered vectors
// are dropped and focus returns to the header.
func (c *Cycler) SetNodes(nodes []Node) {
	c.nodes = make([]Node, len(nodes))
	for i, n := range nodes {
		n.Order = i + 1
		c.nodes[i] = n
	}
	c.vectors = make(map[int]Direction)
	c.focused = HeaderOrder
}

// Nodes returns a copy of the node list
func (c *Cycler) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Len returns the number of nodes
func (c *Cycler) Len() int {
	return len(c.nodes)
}

// Node returns the node at order
func (c *Cycler) Node(order int) (Node, bool) {
	if order < 1 || order > len(c.nodes) {
		return Node{}, false
	}
	return c.nodes[order-1], true
}

// State returns whether the cycler is open
func (c *Cycler) State() State {
	return c.state
}

// Open focuses the first eligible node the same way entering from the
// header does. It returns the focused order.
func (c *Cycler) Open() int {
	c.state = Open
	if len(c.nodes) == 0 {
		c.focused = HeaderOrder
		return c.focused
	}
	return c.MoveFocus(len(c.nodes), Down, nil)
}

// Close drops focus and remembered vectors
func (c *Cycler) Close() {
	c.state = Closed
	c.focused = HeaderOrder
	c.vectors = make(map[int]Direction)
}

// Focused returns the node holding focus; false while the header is
// focused or the list is empty
func (c *Cycler) Focused() (Node, bool) {
	return c.Node(c.focused)
}

// FocusedOrder returns the order holding focus, HeaderOrder for the title
func (c *Cycler) FocusedOrder() int {
	return c.focused
}

// FocusHeader moves focus to the title row
func (c *Cycler) FocusHeader() {
	c.focused = HeaderOrder
}

// Remember records dir as the vector that last tried to enter a disabled
// node
func (c *Cycler) Remember(order int, dir Direction) {
	if n, ok := c.Node(order); ok && !n.Enabled {
		c.vectors[order] = dir
	}
}

// Remembered returns the vector recorded for order
func (c *Cycler) Remembered(order int) (Direction, bool) {
	dir, ok := c.vectors[order]
	return dir, ok
}

// step is one raw move from order in dir, wrapping at both ends
func (c *Cycler) step(order int, dir Direction) int {
	n := len(c.nodes)
	if n == 1 {
		return 1
	}

	switch dir {
	case Up:
		if order > 1 && order <= n {
			return order - 1
		}
		return n
	default:
		if order >= 1 && order < n {
			return order + 1
		}
		return 1
	}
}

// walk follows dir from order until it reaches an enabled node, visiting
// at most every node once. visit is called for each disabled node passed.
// When no node is eligible the first raw step is returned.
func (c *Cycler) walk(from int, dir Direction, visit func(order int)) int {
	n := len(c.nodes)
	if n == 0 {
		return HeaderOrder
	}
	if n == 1 {
		return 1
	}

	first := c.step(from, dir)
	target := first
	for i := 0; i < n; i++ {
		if c.nodes[target-1].Enabled {
			return target
		}
		if visit != nil {
			visit(target)
		}
		target = c.step(target, dir)
	}
	return first
}

// NextEligible returns the order MoveFocus would land on without changing
// any state
func (c *Cycler) NextEligible(from int, dir Direction) int {
	return c.walk(from, dir, nil)
}

// MoveFocus suppresses ev when given, then moves focus from the node at
// from in dir. A list of one node always focuses that node. Disabled
// targets record dir and pass focus on in the same direction.
func (c *Cycler) MoveFocus(from int, dir Direction, ev *keyevent.Event) int {
	keyevent.Stop(ev)

	c.focused = c.walk(from, dir, func(order int) {
		c.vectors[order] = dir
	})
	return c.focused
}

// PointerFocus focuses the node at order after a click or hover. A
// disabled node with a remembered vector passes focus on at once; without
// one focus rests on it.
func (c *Cycler) PointerFocus(order int) int {
	n, ok := c.Node(order)
	if !ok {
		return c.focused
	}

	if !n.Enabled {
		if dir, ok := c.vectors[order]; ok {
			return c.MoveFocus(order, dir, nil)
		}
	}

	c.focused = order
	return c.focused
}

// EnterFromHeader moves focus from the title row into the list. Down
// enters from the tail so it wraps onto the first node; Up enters from the
// head so it wraps onto the last node.
func (c *Cycler) EnterFromHeader(dir Direction, ev *keyevent.Event) int {
	if len(c.nodes) == 0 {
		keyevent.Stop(ev)
		return c.focused
	}
	if dir == Up {
		return c.MoveFocus(1, Up, ev)
	}
	return c.MoveFocus(len(c.nodes), Down, ev)
}

// Navigate applies a movement intent to the current focus. It returns
// false for intents that are not movements.
func (c *Cycler) Navigate(intent Intent, ev *keyevent.Event) bool {
	switch intent {
	case IntentNext, IntentPrev:
		dir := Down
		if intent == IntentPrev {
			dir = Up
		}
		if c.focused == HeaderOrder {
			c.EnterFromHeader(dir, ev)
		} else {
			c.MoveFocus(c.focused, dir, ev)
		}
		return true
	case IntentFirst:
		c.EnterFromHeader(Down, ev)
		return true
	case IntentLast:
		c.EnterFromHeader(Up, ev)
		return true
	}
	return false
}
