package keybinds

import (
	"sort"

	"github.com/studiowebux/tabkeys/internal/types"
)

// Action represents a controller action that can be triggered by a hotkey
type Action = types.Action

const (
	// Group switching
	ActionLoadNextGroup         Action = "load-next-group"          // Switch to the next group
	ActionLoadPrevGroup         Action = "load-prev-group"          // Switch to the previous group
	ActionLoadFirstGroup        Action = "load-first-group"         // Switch to the first group
	ActionLoadLastGroup         Action = "load-last-group"          // Switch to the last group
	ActionLoadNextNonEmptyGroup Action = "load-next-non-empty-group" // Skip empty groups going forward
	ActionLoadPrevNonEmptyGroup Action = "load-prev-non-empty-group" // Skip empty groups going back
	ActionLoadCustomGroup       Action = "load-custom-group"        // Switch to the group named by groupId

	// Group management
	ActionAddNewGroup         Action = "add-new-group"         // Create an empty group
	ActionRenameGroup         Action = "rename-group"          // Rename the current group
	ActionDeleteCurrentGroup  Action = "delete-current-group"  // Delete the current group
	ActionDiscardGroup        Action = "discard-group"         // Unload the tabs of the current group
	ActionOpenManageGroups    Action = "open-manage-groups"    // Open the group manager

	// Tab moves
	ActionMoveActiveTabToCustomGroup Action = "move-active-tab-to-custom-group" // Ask for a destination group
	ActionMoveActiveTabToGroup       Action = "move-active-tab-to-group"        // Move the tab to groupId
)

var knownActions = map[Action]string{
	ActionLoadNextGroup:              "Load next group",
	ActionLoadPrevGroup:              "Load previous group",
	ActionLoadFirstGroup:             "Load first group",
	ActionLoadLastGroup:              "Load last group",
	ActionLoadNextNonEmptyGroup:      "Load next non-empty group",
	ActionLoadPrevNonEmptyGroup:      "Load previous non-empty group",
	ActionLoadCustomGroup:            "Load group",
	ActionAddNewGroup:                "Create new group",
	ActionRenameGroup:                "Rename current group",
	ActionDeleteCurrentGroup:         "Delete current group",
	ActionDiscardGroup:               "Discard current group",
	ActionOpenManageGroups:           "Open group manager",
	ActionMoveActiveTabToCustomGroup: "Move active tab to group...",
	ActionMoveActiveTabToGroup:       "Move active tab to group",
}

// IsKnownAction reports whether the controller understands a
func IsKnownAction(a Action) bool {
	_, ok := knownActions[a]
	return ok
}

// Describe returns a human-readable label for a
func Describe(a Action) string {
	if label, ok := knownActions[a]; ok {
		return label
	}
	return string(a)
}

// NeedsGroup reports whether a requires a groupId to be useful
func NeedsGroup(a Action) bool {
	return a == ActionLoadCustomGroup || a == ActionMoveActiveTabToGroup
}

// AllActions returns every known action sorted by name
func AllActions() []Action {
	actions := make([]Action, 0, len(knownActions))
	for a := range knownActions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
