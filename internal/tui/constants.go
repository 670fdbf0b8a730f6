package tui

// UI Layout Constants

const (
	// Lines used by the title, status bar and footer
	MainViewOverheadLines = 6

	// Activity entries shown at most, newest last
	MaxActivityLines = 12

	// Minimum width before the status bar is truncated
	MinStatusWidth = 20
)
