package types

// Action names something the controller knows how to do
type Action string

// ActionMessage is sent from the page agent to the controller
type ActionMessage struct {
	ID      string   `json:"id,omitempty"`
	Action  Action   `json:"action"`
	GroupID *GroupID `json:"groupId,omitempty"`
}

// ActionReply acknowledges an ActionMessage. Unsubscribe asks the agent to
// detach all of its listeners for good.
type ActionReply struct {
	ID          string `json:"id,omitempty"`
	Unsubscribe bool   `json:"unsubscribe,omitempty"`
}

// SignalAction is the kind of an inbound controller notification
type SignalAction string

const (
	// SignalUpdateHotkeys tells the agent the persisted chord table changed
	SignalUpdateHotkeys SignalAction = "update-hotkeys"

	// SignalShowGroupPicker asks the agent to open the group picker for the active tab
	SignalShowGroupPicker SignalAction = "move-tab-to-custom-group"
)

// Signal is a push notification from the controller. Groups and
// ActiveGroupID are only set for SignalShowGroupPicker.
type Signal struct {
	Sender        string       `json:"sender"`
	Action        SignalAction `json:"action"`
	Groups        []Group      `json:"groups,omitempty"`
	ActiveGroupID GroupID      `json:"activeGroupId,omitempty"`
}
