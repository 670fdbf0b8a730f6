/*
Package types defines the data shared by the agent, the controller and the
wire protocol between them.

# Overview

The types package provides shared type definitions for:
  - Actions an agent sends when a chord matches
  - Replies the controller returns for each action
  - Signals the controller pushes to every agent
  - Tab groups as the picker shows them

# Messages

ActionMessage:
  - Sent once per matched chord
  - Carries the action name and, for group-targeted actions, a GroupID
  - ID correlates the controller's ActionReply

ActionReply:
  - Acknowledges one ActionMessage
  - Unsubscribe asks the agent to detach for good

Signal:
  - Broadcast by the controller
  - Sender must match the agent's extension id or it is ignored
  - update-hotkeys makes agents reload their chord table
  - move-tab-to-custom-group opens the group picker with Groups and
    ActiveGroupID

# Groups

GroupID:
  - Numeric ids travel as strings, so JSON numbers and strings both decode
  - "new" is the picker's create-group entry

Group:
  - ID, Title and optional icon URL
  - The controller seeds a single "Unnamed" group when it has none

# JSON

Field names follow the extension's storage format: groupId, activeGroupId,
unsubscribe. Omitted optional fields decode to their zero values.
*/
package types
