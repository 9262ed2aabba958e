// Package ui implements the interactive control surface using bubbletea's Elm architecture.
//
// The TUI is a single-view launcher: a text input re-dispatched on every
// keystroke, a result list below it, and a status line for selection
// outcomes. Each keystroke issues one [dispatch.Dispatcher] call from a
// tea.Cmd; the dispatcher's debouncer coalesces bursts, and its nil
// sentinel keeps the previous list on screen while a newer query is in
// flight. Results apply in sequence order so a slow early dispatch can
// never overwrite a later one.
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
//
// Keyboard navigation: arrow keys move the selection, enter runs the
// selected result's action, esc or ctrl+c quits. Everything else feeds
// the input, with contextual help displayed via charmbracelet/bubbles/help.
package ui
