package dispatch

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/services"
)

// Page sizes are fixed per category. Playlists page high because blank
// input lists the user's whole library.
const (
	trackPageSize    = 20
	artistPageSize   = 10
	albumPageSize    = 10
	playlistPageSize = 500
	globalPageSize   = 20
)

// searchFunc is the session call a category binds to.
type searchFunc func(ctx context.Context, query string, limit int) ([]services.Item, error)

// Aggregator runs one remote search per query and joins per-item artwork
// resolution into a single ordered result list.
type Aggregator struct {
	session services.Session
	builder *Builder
	metrics *Metrics
	logger  *log.Logger
}

// NewAggregator creates an Aggregator sharing the dispatcher's builder
// and metrics.
func NewAggregator(session services.Session, builder *Builder, metrics *Metrics, logger *log.Logger) *Aggregator {
	return &Aggregator{session: session, builder: builder, metrics: metrics, logger: logger}
}

// Artists searches the artist catalog.
func (a *Aggregator) Artists(ctx context.Context, arg string) ([]Result, error) {
	return a.search(ctx, a.session.SearchArtists, artistPageSize, false, arg)
}

// Albums searches the album catalog.
func (a *Aggregator) Albums(ctx context.Context, arg string) ([]Result, error) {
	return a.search(ctx, a.session.SearchAlbums, albumPageSize, false, arg)
}

// Tracks searches the track catalog.
func (a *Aggregator) Tracks(ctx context.Context, arg string) ([]Result, error) {
	return a.search(ctx, a.session.SearchTracks, trackPageSize, false, arg)
}

// Playlists searches playlists. A blank argument is a match-all query
// returning the user's own library.
func (a *Aggregator) Playlists(ctx context.Context, arg string) ([]Result, error) {
	return a.search(ctx, a.session.SearchPlaylists, playlistPageSize, true, arg)
}

// Global searches every category at once; the dispatcher uses it as the
// fallback for unrecognized input.
func (a *Aggregator) Global(ctx context.Context, arg string) ([]Result, error) {
	return a.search(ctx, a.session.SearchAll, globalPageSize, false, arg)
}

// search runs the shared category pipeline: connectivity precondition,
// blank-argument handling, one remote call, then artwork fan-out. A blank
// argument renders an empty (non-nil) list so the host shows nothing,
// unless blankAll makes blank a valid match-all query. Zero hits render
// the canonical nothing-found entry instead.
func (a *Aggregator) search(ctx context.Context, fetch searchFunc, limit int, blankAll bool, arg string) ([]Result, error) {
	if !a.session.Connected() {
		return a.builder.AuthRequired(), nil
	}

	if arg == "" && !blankAll {
		return []Result{}, nil
	}

	a.metrics.RecordSearch()

	items, err := fetch(ctx, arg, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return a.builder.NothingFound(), nil
	}

	return a.assemble(ctx, items), nil
}

// assemble resolves artwork for every item concurrently and waits for all
// resolutions before building results, preserving provider order. A
// failed resolution falls back to the default icon.
func (a *Aggregator) assemble(ctx context.Context, items []services.Item) []Result {
	icons := make([]string, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item services.Item) {
			defer wg.Done()
			// A panicking resolver must not escape the dispatch boundary;
			// the item just keeps the default icon.
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("artwork resolution panicked", "uri", item.URI, "panic", r)
				}
			}()

			icon, err := a.session.ResolveArtwork(ctx, item)
			if err != nil {
				a.logger.Debug("artwork resolution failed", "uri", item.URI, "error", err)
				return
			}
			icons[i] = icon
		}(i, item)
	}
	wg.Wait()

	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = a.builder.Playable(item, icons[i])
	}
	return results
}
