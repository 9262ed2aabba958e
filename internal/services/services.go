package services

import (
	"context"
)

// Item kinds returned by session searches.
const (
	KindTrack    = "track"
	KindArtist   = "artist"
	KindAlbum    = "album"
	KindPlaylist = "playlist"
)

// Session defines the interface for a playback provider connection.
type Session interface {
	// Connected reports whether the session holds an authorized client.
	Connected() bool

	// TokenValid reports whether the stored token is usable, either still
	// live or refreshable.
	TokenValid() bool

	// Reconnect re-establishes the session. With keepToken it reuses the
	// stored token; without it the interactive authorization flow runs.
	Reconnect(ctx context.Context, keepToken bool) error

	// UserID returns the authenticated user's ID, or "" before connect.
	UserID() string

	// Volume returns the last observed volume percent, or -1 when unknown.
	Volume() int

	// CurrentPlayback returns the active playback state.
	CurrentPlayback(ctx context.Context) (*Playback, error)

	// Transport controls. All act on the user's active device.
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	ToggleMute(ctx context.Context) error
	ToggleShuffle(ctx context.Context) error

	// Devices lists the user's available playback devices.
	Devices(ctx context.Context) ([]Device, error)

	// SelectDevice transfers playback to the device with the given ID.
	SelectDevice(ctx context.Context, id string) error

	// Category searches. Blank playlist queries list the user's own
	// playlists; other categories treat blank queries upstream.
	SearchArtists(ctx context.Context, query string, limit int) ([]Item, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]Item, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]Item, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]Item, error)

	// SearchAll searches every category with the same query and returns a
	// single merged list.
	SearchAll(ctx context.Context, query string, limit int) ([]Item, error)

	// ResolveArtwork resolves an item's cover image to a local icon
	// reference, or "" when the item has none.
	ResolveArtwork(ctx context.Context, item Item) (string, error)

	// PlayItem starts playback of the given URI on the active device.
	PlayItem(ctx context.Context, uri string) error
}

// ArtworkStore resolves remote artwork URLs to local icon references.
// Implementations may cache and download; "" means no artwork available.
type ArtworkStore interface {
	Resolve(ctx context.Context, key, imageURL string) (string, error)
}

// Item represents a playable search result from any category
type Item struct {
	Kind     string
	URI      string
	Name     string
	Byline   string
	ImageURL string
}

// Device represents a playback device
type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
	Volume int
}

// Playback represents the current playback state on the active device
type Playback struct {
	Playing  bool
	Shuffled bool
	Track    *Item
	Device   Device
}
