// Package controller is the background process agents report to. It owns
// the tab groups, answers actions, and pushes signals to every agent.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/studiowebux/tabkeys/internal/keybinds"
	"github.com/studiowebux/tabkeys/internal/types"
)

// Broadcaster pushes a signal to every connected agent
type Broadcaster interface {
	Broadcast(sig types.Signal)
}

// Options configures a Controller
type Options struct {
	// Groups seeds the group list; DefaultGroups when empty
	Groups GroupsFile

	// GroupsPath, when set, receives the group list after every change
	GroupsPath string

	Logger *slog.Logger
}

// Controller answers agent actions against an in-memory group list
type Controller struct {
	mu      sync.Mutex
	groups  []GroupRecord
	active  int // index into groups
	nextID  int
	retired bool
	last    types.Action

	broadcaster Broadcaster
	groupsPath  string
	logger      *slog.Logger
}

// New creates a controller that broadcasts through b
func New(b Broadcaster, opts Options) *Controller {
	doc := opts.Groups
	if len(doc.Groups) == 0 {
		doc = DefaultGroups()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		groups:      append([]GroupRecord(nil), doc.Groups...),
		broadcaster: b,
		groupsPath:  opts.GroupsPath,
		logger:      logger,
	}
	for i, g := range c.groups {
		if g.ID == doc.Active {
			c.active = i
		}
		if g.ID > c.nextID {
			c.nextID = g.ID
		}
	}
	return c
}

// Retire makes every later reply ask the agent to unsubscribe
func (c *Controller) Retire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retired = true
	c.logger.Info("[CONTROLLER] retired, agents will be asked to unsubscribe")
}

// Groups returns the current groups in order
func (c *Controller) Groups() []types.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groupsLocked()
}

func (c *Controller) groupsLocked() []types.Group {
	out := make([]types.Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Group()
	}
	return out
}

// Active returns the id of the active group
func (c *Controller) Active() types.GroupID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.GroupIDFromInt(c.groups[c.active].ID)
}

// TabCount returns how many tabs the group holds, -1 for an unknown group
func (c *Controller) TabCount(id types.GroupID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.groups[i].Tabs
	}
	return -1
}

// LastAction returns the most recently handled action
func (c *Controller) LastAction() types.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Handle applies msg and acknowledges it. Unknown actions and bad group
// ids are logged and acknowledged anyway.
func (c *Controller) Handle(ctx context.Context, msg types.ActionMessage) types.ActionReply {
	c.mu.Lock()
	c.last = msg.Action
	changed, sig, err := c.applyLocked(msg)
	reply := types.ActionReply{ID: msg.ID, Unsubscribe: c.retired}
	var snapshot GroupsFile
	if changed {
		snapshot = c.snapshotLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("[CONTROLLER] action failed", "action", msg.Action, "error", err)
	} else {
		c.logger.Debug("[CONTROLLER] action handled", "action", msg.Action)
	}

	if changed && c.groupsPath != "" {
		if err := SaveGroups(c.groupsPath, snapshot); err != nil {
			c.logger.Error("[CONTROLLER] failed to save groups", "error", err)
		}
	}

	if sig != nil && c.broadcaster != nil {
		c.broadcaster.Broadcast(*sig)
	}

	return reply
}

func (c *Controller) applyLocked(msg types.ActionMessage) (changed bool, sig *types.Signal, err error) {
	n := len(c.groups)

	switch msg.Action {
	case keybinds.ActionLoadNextGroup:
		c.active = (c.active + 1) % n
	case keybinds.ActionLoadPrevGroup:
		c.active = (c.active - 1 + n) % n
	case keybinds.ActionLoadFirstGroup:
		c.active = 0
	case keybinds.ActionLoadLastGroup:
		c.active = n - 1
	case keybinds.ActionLoadNextNonEmptyGroup:
		c.active = c.nonEmptyLocked(1)
	case keybinds.ActionLoadPrevNonEmptyGroup:
		c.active = c.nonEmptyLocked(-1)

	case keybinds.ActionLoadCustomGroup:
		i, err := c.requireGroupLocked(msg.GroupID)
		if err != nil {
			return false, nil, err
		}
		c.active = i

	case keybinds.ActionAddNewGroup:
		c.active = c.addGroupLocked()

	case keybinds.ActionDeleteCurrentGroup:
		if n == 1 {
			return false, nil, fmt.Errorf("cannot delete the only group")
		}
		c.groups = append(c.groups[:c.active], c.groups[c.active+1:]...)
		if c.active >= len(c.groups) {
			c.active = len(c.groups) - 1
		}

	case keybinds.ActionMoveActiveTabToCustomGroup:
		return false, &types.Signal{
			Action:        types.SignalShowGroupPicker,
			Groups:        c.groupsLocked(),
			ActiveGroupID: types.GroupIDFromInt(c.groups[c.active].ID),
		}, nil

	case keybinds.ActionMoveActiveTabToGroup:
		if msg.GroupID == nil || msg.GroupID.IsZero() {
			return false, nil, fmt.Errorf("%s needs a group id", msg.Action)
		}
		var dest int
		if msg.GroupID.IsNew() {
			dest = c.addGroupLocked()
		} else {
			dest, err = c.requireGroupLocked(msg.GroupID)
			if err != nil {
				return false, nil, err
			}
		}
		if c.groups[c.active].Tabs > 0 {
			c.groups[c.active].Tabs--
		}
		c.groups[dest].Tabs++

	case keybinds.ActionRenameGroup, keybinds.ActionDiscardGroup, keybinds.ActionOpenManageGroups:
		c.logger.Info("[CONTROLLER] action has no effect without a browser", "action", msg.Action)
		return false, nil, nil

	default:
		return false, nil, fmt.Errorf("unknown action %q", msg.Action)
	}

	return true, nil, nil
}

func (c *Controller) addGroupLocked() int {
	c.nextID++
	c.groups = append(c.groups, GroupRecord{
		ID:    c.nextID,
		Title: fmt.Sprintf("Group %d", c.nextID),
	})
	return len(c.groups) - 1
}

// nonEmptyLocked walks from the active group in step direction and returns
// the first group holding tabs, or the active group when none does
func (c *Controller) nonEmptyLocked(step int) int {
	n := len(c.groups)
	for k := 1; k < n; k++ {
		i := ((c.active+step*k)%n + n) % n
		if c.groups[i].Tabs > 0 {
			return i
		}
	}
	return c.active
}

func (c *Controller) requireGroupLocked(id *types.GroupID) (int, error) {
	if id == nil || id.IsZero() {
		return 0, fmt.Errorf("missing group id")
	}
	i := c.indexLocked(*id)
	if i < 0 {
		return 0, fmt.Errorf("unknown group %s", *id)
	}
	return i, nil
}

func (c *Controller) indexLocked(id types.GroupID) int {
	n, ok := id.Int()
	if !ok {
		return -1
	}
	for i, g := range c.groups {
		if g.ID == n {
			return i
		}
	}
	return -1
}

func (c *Controller) snapshotLocked() GroupsFile {
	return GroupsFile{
		Active: c.groups[c.active].ID,
		Groups: append([]GroupRecord(nil), c.groups...),
	}
}
