package controller

import (
	"context"

	"github.com/studiowebux/tabkeys/internal/types"
)

// WatchHotkeys broadcasts update-hotkeys for every value received on
// changes. It returns when ctx is done or changes is closed.
func (c *Controller) WatchHotkeys(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			c.logger.Info("[CONTROLLER] hotkeys changed, notifying agents")
			if c.broadcaster != nil {
				c.broadcaster.Broadcast(types.Signal{Action: types.SignalUpdateHotkeys})
			}
		}
	}
}
