package picker

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/studiowebux/tabkeys/internal/types"
)

var (
	colorBorder = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleFocused = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#91c9f7", Dark: "#1f4f7f"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleDisabled = lipgloss.NewStyle().
			Foreground(colorGray)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

const (
	maxPanelWidth = 60
	minPanelWidth = 24
	// header, filter line, blank line, footer
	chromeLines = 4
)

// View renders the picker centered in a width x height screen and records
// the layout used for hit-testing
func (p *Picker) View(width, height int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	inner := min(maxPanelWidth, width*3/4) - 4
	inner = max(inner, minPanelWidth-4)

	visible := max(1, height-2-chromeLines-2)
	visible = min(visible, len(p.entries))
	p.scrollLocked(visible)

	var lines []string
	title := ansi.Truncate(p.text.Message(MsgTitle), inner, "…")
	lines = append(lines, lipgloss.PlaceHorizontal(inner, lipgloss.Center, styleTitle.Render(title)))
	lines = append(lines, p.filterLine(inner))

	focused := p.cycler.FocusedOrder()
	for i := p.offset; i < p.offset+visible; i++ {
		lines = append(lines, p.renderRow(p.entries[i], i+1 == focused, inner))
	}

	p.help.Width = inner
	lines = append(lines, "", p.help.View(p.keys))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(inner + 2).
		Render(strings.Join(lines, "\n"))

	pw, ph := lipgloss.Width(panel), lipgloss.Height(panel)
	px, py := max(0, (width-pw)/2), max(0, (height-ph)/2)

	layout := Layout{
		Panel:  Rect{X: px, Y: py, W: pw, H: ph},
		Header: Rect{X: px + 1, Y: py + 1, W: pw - 2, H: 1},
		Rows:   make(map[int]Rect, visible),
	}
	for k := 0; k < visible; k++ {
		layout.Rows[p.offset+k+1] = Rect{X: px + 1, Y: py + 3 + k, W: pw - 2, H: 1}
	}
	p.layout = layout

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

// scrollLocked keeps the focused row inside the visible window
func (p *Picker) scrollLocked(visible int) {
	focused := p.cycler.FocusedOrder()
	if focused > 0 {
		if focused-1 < p.offset {
			p.offset = focused - 1
		}
		if focused-1 >= p.offset+visible {
			p.offset = focused - visible
		}
	}
	p.offset = max(0, min(p.offset, len(p.entries)-visible))
}

func (p *Picker) filterLine(width int) string {
	if p.filter == "" {
		return styleSubtle.Render(ansi.Truncate("/ "+p.text.Message(MsgFilter), width, "…"))
	}

	line := "/ " + p.filter
	if len(p.entries) == 1 {
		line += "  " + styleSubtle.Render(p.text.Message(MsgNoMatches))
	}
	return ansi.Truncate(line, width, "…")
}

func (p *Picker) renderRow(e entry, focused bool, width int) string {
	text := p.icon(e.group) + " " + e.group.Title
	if !e.enabled {
		text += " (" + p.text.Message(MsgCurrent) + ")"
	}
	text = ansi.Truncate(text, width, "…")

	switch {
	case focused:
		return styleFocused.Width(width).Render(text)
	case !e.enabled:
		return styleDisabled.Render(text)
	default:
		return text
	}
}

func (p *Picker) icon(g types.Group) string {
	if p.opts.Icon != nil {
		return p.opts.Icon(g)
	}
	if g.ID.IsNew() {
		return "+"
	}
	return "•"
}
