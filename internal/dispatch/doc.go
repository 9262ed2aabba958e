// package dispatch routes free-text queries to playback commands and
// catalog searches, producing a uniform list of displayable, actionable
// results for a host front-end.
//
// # Query Routing
//
// [Dispatcher.Dispatch] is the single entry point. It parses the input
// into a command and argument, then works through a layered policy:
// connectivity and token checks first, the now-playing status view for
// blank input, direct commands (play, pause, next, last, mute, vol,
// device, shuffle, diag, reconnect) immediately, search commands (artist,
// album, track, playlist) behind a debounce gate, and finally a global
// cross-category search for anything unrecognized. Faults never escape
// Dispatch; they are logged and rendered as the nothing-found result.
//
// # Debouncing
//
// Search commands hit a remote service, so the dispatcher coalesces
// keystroke bursts: every dispatch stamps a shared [Debouncer] on entry,
// search handlers wait a quiet window and run only if no later query
// arrived meanwhile. Superseded dispatches return a nil result list, a
// sentinel telling the host to keep whatever it last rendered. Direct
// commands never wait.
//
// # Search Aggregation
//
// [Aggregator] issues one remote search per query, resolves artwork for
// every hit concurrently, and joins the resolutions before assembling
// results in provider order. Zero hits render the canonical nothing-found
// entry; a blank argument renders nothing at all, except for playlists
// where blank lists the user's own library.
package dispatch
