package dispatch

import (
	"context"
	"sort"
)

// Handler executes one command against its argument.
type Handler func(ctx context.Context, arg string) ([]Result, error)

// command is a table entry: the handler plus its routing traits.
// expensive marks commands that reach the remote search API and therefore
// pass through the debounce gate.
type command struct {
	name      string
	expensive bool
	run       Handler
}

// Table is the command registry. It is built once at construction and
// never mutated afterward; lookups are exact-match by name.
type Table struct {
	commands map[string]command
}

// newTable registers every command against the dispatcher's handlers.
// vol and volume are aliases for the same handler.
func newTable(d *Dispatcher) *Table {
	t := &Table{commands: make(map[string]command)}

	for _, c := range []command{
		{name: "artist", expensive: true, run: d.handleArtist},
		{name: "album", expensive: true, run: d.handleAlbum},
		{name: "track", expensive: true, run: d.handleTrack},
		{name: "playlist", expensive: true, run: d.handlePlaylist},
		{name: "play", run: d.handlePlay},
		{name: "pause", run: d.handlePause},
		{name: "next", run: d.handleNext},
		{name: "last", run: d.handleLast},
		{name: "mute", run: d.handleMute},
		{name: "shuffle", run: d.handleShuffle},
		{name: "vol", run: d.handleVolume},
		{name: "volume", run: d.handleVolume},
		{name: "device", run: d.handleDevice},
		{name: "diag", run: d.handleDiag},
		{name: "reconnect", run: d.handleReconnect},
	} {
		t.commands[c.name] = c
	}

	return t
}

func (t *Table) lookup(name string) (command, bool) {
	c, ok := t.commands[name]
	return c, ok
}

// Commands returns every registered command name in sorted order.
func (t *Table) Commands() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
