package picker

import (
	"errors"
	"log/slog"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/tabkeys/internal/focus"
	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/page"
	"github.com/studiowebux/tabkeys/internal/types"
)

// OverlayID is the id the picker mounts under. Only one picker can be
// mounted on a window at a time.
const OverlayID = "tabkeys-group-picker"

var (
	ErrAlreadyOpen = errors.New("group picker is already open")
	ErrEmbedded    = errors.New("group picker only opens in the top-level window")
)

// Request is what the controller sends to show the picker
type Request struct {
	Groups        []types.Group
	ActiveGroupID types.GroupID
}

// Options configures a picker
type Options struct {
	// OnSelect receives the chosen group id, or types.NewGroupID for the
	// create entry. It runs after the picker has closed.
	OnSelect func(id types.GroupID)
	// OnClose runs whenever the picker closes, with or without a selection
	OnClose func()

	Localizer Localizer
	KeyMap    *focus.KeyMap
	// Icon renders the glyph in front of a row
	Icon   func(g types.Group) string
	Logger *slog.Logger
}

// Row is one visible list entry
type Row struct {
	ID      types.GroupID
	Title   string
	Enabled bool
	Focused bool
}

type entry struct {
	group   types.Group
	enabled bool
}

// Picker is the modal list for moving the active tab to another group. It
// traps key-down events with a capture listener while it is open.
type Picker struct {
	mu sync.Mutex

	win    *page.Window
	req    Request
	opts   Options
	keys   focus.KeyMap
	text   Localizer
	logger *slog.Logger

	cycler  *focus.Cycler
	entries []entry
	filter  string

	help   help.Model
	offset int
	layout Layout

	listener page.ListenerID
	closed   bool
}

// Open mounts a picker on win and focuses the first eligible row
func Open(win *page.Window, req Request, opts Options) (*Picker, error) {
	if !win.IsTop() {
		return nil, ErrEmbedded
	}
	if _, exists := win.Overlay(OverlayID); exists {
		return nil, ErrAlreadyOpen
	}

	p := &Picker{
		win:    win,
		req:    req,
		opts:   opts,
		keys:   focus.DefaultKeyMap(),
		text:   DefaultMessages,
		logger: slog.Default(),
		help:   help.New(),
	}
	if opts.KeyMap != nil {
		p.keys = *opts.KeyMap
	}
	if opts.Localizer != nil {
		p.text = opts.Localizer
	}
	if opts.Logger != nil {
		p.logger = opts.Logger
	}

	p.rebuildLocked()

	if !win.Mount(OverlayID, p) {
		return nil, ErrAlreadyOpen
	}
	p.listener = win.AddEventListener(keyevent.KeyDown, p.handleKey, page.Options{Capture: true})
	p.cycler.Open()

	p.logger.Debug("[PICKER] opened", "groups", len(req.Groups), "active", req.ActiveGroupID)
	return p, nil
}

// rebuildLocked recreates the node list from the groups matching the
// filter. The active group is disabled and the create entry is always last.
func (p *Picker) rebuildLocked() {
	groups := p.matchingGroups()

	entries := make([]entry, 0, len(groups)+1)
	for _, g := range groups {
		entries = append(entries, entry{group: g, enabled: g.ID != p.req.ActiveGroupID})
	}
	entries = append(entries, entry{
		group:   types.Group{ID: types.NewGroupID, Title: p.text.Message(MsgCreateNew)},
		enabled: true,
	})

	nodes := make([]focus.Node, len(entries))
	for i, e := range entries {
		nodes[i] = focus.Node{Enabled: e.enabled, ID: e.group.ID}
	}

	p.entries = entries
	p.offset = 0
	if p.cycler == nil {
		p.cycler = focus.NewCycler(nodes)
	} else {
		p.cycler.SetNodes(nodes)
	}
}

type groupSource []types.Group

func (s groupSource) String(i int) string { return s[i].Title }
func (s groupSource) Len() int            { return len(s) }

func (p *Picker) matchingGroups() []types.Group {
	if p.filter == "" {
		return p.req.Groups
	}

	matches := fuzzy.FindFrom(p.filter, groupSource(p.req.Groups))
	groups := make([]types.Group, 0, len(matches))
	for _, m := range matches {
		groups = append(groups, p.req.Groups[m.Index])
	}
	return groups
}

func (p *Picker) handleKey(ev *keyevent.Event) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	var (
		selected types.GroupID
		closing  bool
	)

	switch intent := p.keys.Classify(ev); intent {
	case focus.IntentClose:
		keyevent.Stop(ev)
		closing = true
	case focus.IntentActivate:
		keyevent.Stop(ev)
		selected, closing = p.focusedSelectionLocked()
	case focus.IntentNone:
		p.editFilterLocked(ev)
	default:
		p.cycler.Navigate(intent, ev)
	}
	p.mu.Unlock()

	if closing {
		p.finish(selected)
	}
}

func (p *Picker) focusedSelectionLocked() (types.GroupID, bool) {
	node, ok := p.cycler.Focused()
	if !ok || !node.Enabled {
		return "", false
	}
	return p.entries[node.Order-1].group.ID, true
}

// editFilterLocked handles type-to-filter. Printable keys without Ctrl,
// Alt or Meta extend the filter; Backspace shortens it.
func (p *Picker) editFilterLocked(ev *keyevent.Event) {
	if ev.Ctrl || ev.Alt || ev.Meta {
		return
	}

	if ev.KeyCode == keyevent.CodeBackspace || ev.Key == "Backspace" {
		if p.filter == "" {
			return
		}
		keyevent.Stop(ev)
		r := []rune(p.filter)
		p.filter = string(r[:len(r)-1])
		p.refilterLocked()
		return
	}

	if utf8.RuneCountInString(ev.Key) != 1 {
		return
	}
	r, _ := utf8.DecodeRuneInString(ev.Key)
	if !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return
	}

	keyevent.Stop(ev)
	p.filter += ev.Key
	p.refilterLocked()
}

func (p *Picker) refilterLocked() {
	p.rebuildLocked()
	p.cycler.EnterFromHeader(focus.Down, nil)
}

// Click handles a pointer press at (x, y) using the last rendered layout
func (p *Picker) Click(x, y int) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	var (
		selected types.GroupID
		closing  bool
	)

	hit := p.layout.HitTest(x, y)
	switch hit.Kind {
	case HitBackdrop:
		closing = true
	case HitNode:
		node, ok := p.cycler.Node(hit.Order)
		if !ok {
			break
		}
		if node.Enabled {
			selected = p.entries[node.Order-1].group.ID
			closing = true
		} else {
			p.cycler.PointerFocus(hit.Order)
		}
	}
	p.mu.Unlock()

	if closing {
		p.finish(selected)
	}
}

// Hover highlights the enabled row under (x, y)
func (p *Picker) Hover(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	hit := p.layout.HitTest(x, y)
	if hit.Kind != HitNode {
		return
	}
	if node, ok := p.cycler.Node(hit.Order); ok && node.Enabled {
		p.cycler.PointerFocus(hit.Order)
	}
}

func (p *Picker) finish(selected types.GroupID) {
	p.Close()

	if selected.IsZero() {
		return
	}
	p.logger.Debug("[PICKER] selected", "group", selected)
	if p.opts.OnSelect != nil {
		p.opts.OnSelect(selected)
	}
}

// Close unmounts the picker and removes its listener. Only the first call
// has any effect.
func (p *Picker) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cycler.Close()
	p.mu.Unlock()

	p.win.RemoveEventListener(p.listener)
	p.win.Unmount(OverlayID)
	p.logger.Debug("[PICKER] closed")

	if p.opts.OnClose != nil {
		p.opts.OnClose()
	}
}

// Closed reports whether the picker has been closed
func (p *Picker) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Rows returns the visible entries in display order
func (p *Picker) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rowsLocked()
}

func (p *Picker) rowsLocked() []Row {
	focused := p.cycler.FocusedOrder()
	rows := make([]Row, len(p.entries))
	for i, e := range p.entries {
		rows[i] = Row{
			ID:      e.group.ID,
			Title:   e.group.Title,
			Enabled: e.enabled,
			Focused: focused == i+1,
		}
	}
	return rows
}

// Focused returns the id of the focused row; false while the header has
// focus
func (p *Picker) Focused() (types.GroupID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, ok := p.cycler.Focused()
	if !ok {
		return "", false
	}
	return node.ID, true
}

// Filter returns the current filter text
func (p *Picker) Filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Layout returns where the last render placed the panel
func (p *Picker) Layout() Layout {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout
}
