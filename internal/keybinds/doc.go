/*
Package keybinds matches keyboard chords against a configurable hotkey
table and dispatches the matching action to the controller.

# Overview

A chord table is an ordered list of Chord entries. Each entry names four
modifier flags, a base key and the action it fires:

	[
	  {"ctrlKey": true, "shiftKey": false, "altKey": false, "metaKey": false,
	   "keyCode": 192, "key": "`", "action": "load-next-group"},
	  {"ctrlKey": true, "shiftKey": false, "altKey": false, "metaKey": false,
	   "key": "g", "action": "move-active-tab-to-group", "groupId": 7}
	]

Matching rules:
  - Modifier flags must be equal (Ctrl does not match Ctrl+Shift)
  - keyCode, when present, is compared numerically
  - otherwise key is compared case-insensitively
  - the first matching entry wins, later overlapping entries never fire

# Components

Matcher (matcher.go):
  - Owns the active table, the window listeners and the match guard
  - Reload fetches the persisted table through a ConfigStore and falls
    back to DefaultTable when nothing usable is stored
  - A match suppresses the event and sends the action on an ActionChannel
  - Teardown detaches everything when the controller asks to unsubscribe

Match guard:
  - Set when a match is dispatched, matcher-wide rather than per chord
  - Cleared by the acknowledgment or by the next key-up of any key
  - Holding a key down therefore dispatches once

Validator (validator.go):
  - Reports entries that can never fire (no key, bare modifier, shadowed)
  - Reports unknown actions and missing group ids
  - Advisory only, Configure never rejects a table

# Example Usage

	matcher := keybinds.NewMatcher(window, store, channel,
		keybinds.WithScheduler(post),
	)
	matcher.OnTeardown(cancelSignals)
	matcher.Reload(ctx)

	// later, when the controller reports a configuration change
	matcher.Reload(ctx)
*/
package keybinds
