package focus

import (
	"testing"

	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/types"
)

func enabledNodes(n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{Enabled: true, ID: types.GroupIDFromInt(i + 1)}
	}
	return nodes
}

func withDisabled(n int, disabled ...int) []Node {
	nodes := enabledNodes(n)
	for _, order := range disabled {
		nodes[order-1].Enabled = false
	}
	return nodes
}

func TestCycler_MoveFocusDown(t *testing.T) {
	c := NewCycler(enabledNodes(5))

	tests := []struct {
		from     int
		expected int
	}{
		{1, 2},
		{3, 4},
		{4, 5},
		{5, 1},
	}

	for _, tt := range tests {
		if got := c.MoveFocus(tt.from, Down, nil); got != tt.expected {
			t.Errorf("MoveFocus(%d, down) = %d, want %d", tt.from, got, tt.expected)
		}
		if c.FocusedOrder() != tt.expected {
			t.Errorf("FocusedOrder() = %d, want %d", c.FocusedOrder(), tt.expected)
		}
	}
}

func TestCycler_MoveFocusUp(t *testing.T) {
	c := NewCycler(enabledNodes(5))

	tests := []struct {
		from     int
		expected int
	}{
		{1, 5},
		{2, 1},
		{5, 4},
	}

	for _, tt := range tests {
		if got := c.MoveFocus(tt.from, Up, nil); got != tt.expected {
			t.Errorf("MoveFocus(%d, up) = %d, want %d", tt.from, got, tt.expected)
		}
	}
}

func TestCycler_SingleNodeAlwaysFocused(t *testing.T) {
	c := NewCycler(withDisabled(1, 1))

	for _, dir := range []Direction{Down, Up} {
		if got := c.MoveFocus(1, dir, nil); got != 1 {
			t.Errorf("MoveFocus(1, %s) = %d, want 1", dir, got)
		}
	}
}

func TestCycler_SkipsDisabledNodes(t *testing.T) {
	c := NewCycler(withDisabled(5, 2, 3))

	if got := c.MoveFocus(1, Down, nil); got != 4 {
		t.Errorf("MoveFocus(1, down) = %d, want 4", got)
	}
	if got := c.MoveFocus(4, Up, nil); got != 1 {
		t.Errorf("MoveFocus(4, up) = %d, want 1", got)
	}

	for _, order := range []int{2, 3} {
		dir, ok := c.Remembered(order)
		if !ok || dir != Up {
			t.Errorf("Remembered(%d) = %v, %v; want up", order, dir, ok)
		}
	}
}

func TestCycler_SkipsDisabledAcrossWrap(t *testing.T) {
	c := NewCycler(withDisabled(4, 1))

	if got := c.MoveFocus(4, Down, nil); got != 2 {
		t.Errorf("MoveFocus(4, down) = %d, want 2", got)
	}
	if got := c.MoveFocus(2, Up, nil); got != 4 {
		t.Errorf("MoveFocus(2, up) = %d, want 4", got)
	}
}

func TestCycler_NoEligibleNodeTerminates(t *testing.T) {
	c := NewCycler(withDisabled(3, 1, 2, 3))

	if got := c.MoveFocus(1, Down, nil); got != 2 {
		t.Errorf("MoveFocus(1, down) = %d, want 2", got)
	}
}

func TestCycler_NextEligibleIsPure(t *testing.T) {
	c := NewCycler(withDisabled(5, 3))
	c.MoveFocus(5, Down, nil)

	if got := c.NextEligible(2, Down); got != 4 {
		t.Errorf("NextEligible(2, down) = %d, want 4", got)
	}
	if c.FocusedOrder() != 1 {
		t.Errorf("NextEligible moved focus to %d", c.FocusedOrder())
	}
	if _, ok := c.Remembered(3); ok {
		t.Error("NextEligible recorded a vector")
	}
}

func TestCycler_MoveFocusSuppressesEvent(t *testing.T) {
	c := NewCycler(enabledNodes(3))
	ev := keyevent.New(keyevent.KeyDown, "ArrowDown", keyevent.CodeDown)

	c.MoveFocus(1, Down, ev)

	if !ev.DefaultPrevented() || !ev.ImmediatePropagationStopped() {
		t.Error("navigation key was not suppressed")
	}
}

func TestCycler_PointerFocusOnDisabledNode(t *testing.T) {
	tests := []struct {
		name     string
		disabled int
		vector   Direction
		expected int
	}{
		{"down to successor", 3, Down, 4},
		{"down wraps from last", 5, Down, 1},
		{"up to predecessor", 3, Up, 2},
		{"up wraps from first", 1, Up, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCycler(withDisabled(5, tt.disabled))
			c.Remember(tt.disabled, tt.vector)

			if got := c.PointerFocus(tt.disabled); got != tt.expected {
				t.Errorf("PointerFocus(%d) = %d, want %d", tt.disabled, got, tt.expected)
			}
		})
	}
}

func TestCycler_PointerFocusWithoutVectorRests(t *testing.T) {
	c := NewCycler(withDisabled(5, 3))

	if got := c.PointerFocus(3); got != 3 {
		t.Errorf("PointerFocus(3) = %d, want 3", got)
	}

	if got := c.PointerFocus(2); got != 2 {
		t.Errorf("PointerFocus(2) = %d, want 2", got)
	}
}

func TestCycler_PointerFocusUsesVectorFromKeyboard(t *testing.T) {
	c := NewCycler(withDisabled(5, 3))
	c.MoveFocus(2, Down, nil)

	if got := c.PointerFocus(3); got != 4 {
		t.Errorf("PointerFocus(3) = %d, want 4", got)
	}
}

func TestCycler_RememberIgnoresEnabledNodes(t *testing.T) {
	c := NewCycler(enabledNodes(3))
	c.Remember(2, Down)

	if _, ok := c.Remembered(2); ok {
		t.Error("enabled node should not remember a vector")
	}
}

func TestCycler_OpenFocusesFirstEligible(t *testing.T) {
	c := NewCycler(withDisabled(4, 1))
	if c.State() != Closed {
		t.Fatal("new cycler should be closed")
	}

	if got := c.Open(); got != 2 {
		t.Errorf("Open() focused %d, want 2", got)
	}
	if c.State() != Open {
		t.Error("state should be Open")
	}

	c.Close()
	if c.State() != Closed || c.FocusedOrder() != HeaderOrder {
		t.Error("Close() did not reset state")
	}
	if _, ok := c.Remembered(1); ok {
		t.Error("Close() kept remembered vectors")
	}
}

func TestCycler_EnterFromHeader(t *testing.T) {
	c := NewCycler(enabledNodes(4))
	c.FocusHeader()

	if got := c.EnterFromHeader(Down, nil); got != 1 {
		t.Errorf("down from header = %d, want 1", got)
	}

	c.FocusHeader()
	if got := c.EnterFromHeader(Up, nil); got != 4 {
		t.Errorf("up from header = %d, want 4", got)
	}
}

func TestCycler_Navigate(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		intent   Intent
		expected int
		handled  bool
	}{
		{"next", 2, IntentNext, 3, true},
		{"next wraps", 4, IntentNext, 1, true},
		{"prev", 2, IntentPrev, 1, true},
		{"prev wraps", 1, IntentPrev, 4, true},
		{"first", 3, IntentFirst, 1, true},
		{"last", 2, IntentLast, 4, true},
		{"next from header", HeaderOrder, IntentNext, 1, true},
		{"prev from header", HeaderOrder, IntentPrev, 4, true},
		{"activate is not movement", 2, IntentActivate, 2, false},
		{"close is not movement", 2, IntentClose, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCycler(enabledNodes(4))
			if tt.start == HeaderOrder {
				c.FocusHeader()
			} else {
				c.PointerFocus(tt.start)
			}

			handled := c.Navigate(tt.intent, nil)
			if handled != tt.handled {
				t.Errorf("Navigate() handled = %v, want %v", handled, tt.handled)
			}
			if c.FocusedOrder() != tt.expected {
				t.Errorf("focus = %d, want %d", c.FocusedOrder(), tt.expected)
			}
		})
	}
}

func TestCycler_SetNodesRenumbers(t *testing.T) {
	c := NewCycler([]Node{{Order: 9, Enabled: true}, {Order: 4, Enabled: true}})

	nodes := c.Nodes()
	if nodes[0].Order != 1 || nodes[1].Order != 2 {
		t.Errorf("orders = %d, %d; want 1, 2", nodes[0].Order, nodes[1].Order)
	}

	c.SetNodes(nil)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if got := c.Open(); got != HeaderOrder {
		t.Errorf("Open() on empty list = %d, want header", got)
	}
}
