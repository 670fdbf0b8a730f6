/*
Package tui hosts a tabkeys agent in the terminal.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: the agent, its window and what the status bar shows
  - Update: turns terminal input into page events
  - View: the status screen, or the open picker on top of it

# Key Events

Every key press becomes a trusted key-down event dispatched on the agent's
window. Terminals do not report releases, so the model schedules the
matching key-up after the configured release delay with tea.Tick. Mouse
presses and motion go to the open picker.

# Threading Model

The agent's asynchronous completions (acknowledgments, signals, reloads)
arrive on other goroutines. A Scheduler posts them onto the event loop
with Program.Send, so the agent's state is only touched from Update.
Scheduler.Schedule must not be called from inside Update.
*/
package tui
