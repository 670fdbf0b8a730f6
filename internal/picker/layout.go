package picker

// Rect is a screen area in terminal cells
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// HitKind tells what a pointer event landed on
type HitKind int

const (
	HitBackdrop HitKind = iota
	HitPanel
	HitHeader
	HitNode
)

// Hit is the result of a hit test
type Hit struct {
	Kind  HitKind
	Order int // set for HitNode
}

// Layout records where the last render placed the panel and its rows
type Layout struct {
	Panel  Rect
	Header Rect
	Rows   map[int]Rect // node order -> row area, visible rows only
}

// HitTest resolves the cell (x, y) against the layout
func (l Layout) HitTest(x, y int) Hit {
	if !l.Panel.Contains(x, y) {
		return Hit{Kind: HitBackdrop}
	}
	if l.Header.Contains(x, y) {
		return Hit{Kind: HitHeader}
	}
	for order, r := range l.Rows {
		if r.Contains(x, y) {
			return Hit{Kind: HitNode, Order: order}
		}
	}
	return Hit{Kind: HitPanel}
}
