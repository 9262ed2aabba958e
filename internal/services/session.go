package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// AuthFlow runs an interactive authorization and returns the minted token.
// Wired by the CLI to the browser + callback server flow.
type AuthFlow func(ctx context.Context) (*oauth2.Token, error)

// SpotifySession implements [Session] against the Spotify Web API.
type SpotifySession struct {
	auth      *spotifyauth.Authenticator
	logger    *log.Logger
	limiter   *rate.Limiter
	art       ArtworkStore
	flow      AuthFlow
	tokenPath string

	mu      sync.Mutex
	client  *spotify.Client
	token   *oauth2.Token
	userID  string
	volume  int // last observed volume percent, -1 when unknown
	premute int // volume restored on unmute
}

// SessionOpts contains configuration options for creating a SpotifySession.
type SessionOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenPath    string
	Artwork      ArtworkStore
	Flow         AuthFlow
	Logger       *log.Logger
}

// NewSpotifySession creates a session from app credentials. A token stored
// at TokenPath is loaded eagerly so previously authorized sessions connect
// without user interaction; no network calls happen here.
func NewSpotifySession(opts SessionOpts) (*SpotifySession, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(opts.ClientID),
		spotifyauth.WithClientSecret(opts.ClientSecret),
		spotifyauth.WithRedirectURL(opts.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
		),
	)

	s := &SpotifySession{
		auth:      auth,
		logger:    opts.Logger,
		limiter:   rate.NewLimiter(rate.Limit(10), 5),
		art:       opts.Artwork,
		flow:      opts.Flow,
		tokenPath: opts.TokenPath,
		volume:    -1,
		premute:   50,
	}

	if opts.TokenPath != "" {
		if token, err := LoadToken(opts.TokenPath); err == nil {
			s.token = token
			s.client = spotify.New(auth.Client(context.Background(), token))
		}
	}

	return s, nil
}

// AuthURL returns the authorization URL for the given OAuth state token.
func (s *SpotifySession) AuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// Authenticator exposes the underlying authenticator for the callback server.
func (s *SpotifySession) Authenticator() *spotifyauth.Authenticator {
	return s.auth
}

// Connected reports whether the session holds an authorized client.
func (s *SpotifySession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// TokenValid reports whether the stored token is live or refreshable.
func (s *SpotifySession) TokenValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return false
	}
	return s.token.Valid() || s.token.RefreshToken != ""
}

// UserID returns the authenticated user's ID, or "" before the first
// verified connect.
func (s *SpotifySession) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Volume returns the last observed volume percent, or -1 when unknown.
func (s *SpotifySession) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Reconnect re-establishes the session. With keepToken the stored token is
// reloaded and verified; otherwise the interactive authorization flow runs
// and the minted token is persisted.
func (s *SpotifySession) Reconnect(ctx context.Context, keepToken bool) error {
	if keepToken {
		token, err := LoadToken(s.tokenPath)
		if err != nil {
			return fmt.Errorf("%w: no stored token", shared.ErrNotConnected)
		}
		if !token.Valid() && token.RefreshToken == "" {
			return shared.ErrTokenExpired
		}
		return s.connect(ctx, token)
	}

	if s.flow == nil {
		return fmt.Errorf("%w: interactive authorization unavailable", shared.ErrAuthFailed)
	}

	token, err := s.flow(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if s.tokenPath != "" {
		if err := SaveToken(s.tokenPath, token); err != nil {
			s.logger.Warn("failed to persist token", "error", err)
		}
	}

	return s.connect(ctx, token)
}

// connect builds a client from token and verifies it against the API.
func (s *SpotifySession) connect(ctx context.Context, token *oauth2.Token) error {
	client := spotify.New(s.auth.Client(context.Background(), token))

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return s.wrapAPI("verify connection", err)
	}

	// The transport may have refreshed the access token during the verify
	// call. Persist the fresh one so later processes skip reauthorization.
	if fresh, err := client.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		token = fresh
		if s.tokenPath != "" {
			if err := SaveToken(s.tokenPath, fresh); err != nil {
				s.logger.Warn("failed to persist refreshed token", "error", err)
			}
		}
	}

	s.mu.Lock()
	s.client = client
	s.token = token
	s.userID = user.ID
	s.mu.Unlock()

	s.logger.Info("spotify session connected", "user", user.ID)

	return nil
}

// CurrentPlayback returns the active playback state. Returns
// [shared.ErrNoActiveDevice] when no device is active and [shared.ErrNoTrack]
// when a device is active but nothing is loaded.
func (s *SpotifySession) CurrentPlayback(ctx context.Context) (*Playback, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	state, err := client.PlayerState(ctx)
	if err != nil {
		return nil, s.wrapAPI("player state", err)
	}

	if state.Device.ID == "" {
		return nil, shared.ErrNoActiveDevice
	}

	s.mu.Lock()
	s.volume = int(state.Device.Volume)
	s.mu.Unlock()

	if state.Item == nil {
		return nil, shared.ErrNoTrack
	}

	track := fromFullTrack(state.Item)
	return &Playback{
		Playing:  state.Playing,
		Shuffled: state.ShuffleState,
		Track:    &track,
		Device:   fromPlayerDevice(state.Device),
	}, nil
}

// Play resumes playback on the active device.
func (s *SpotifySession) Play(ctx context.Context) error {
	return s.transport(ctx, "play", func(c *spotify.Client) error { return c.Play(ctx) })
}

// Pause pauses playback on the active device.
func (s *SpotifySession) Pause(ctx context.Context) error {
	return s.transport(ctx, "pause", func(c *spotify.Client) error { return c.Pause(ctx) })
}

// SkipNext skips to the next track.
func (s *SpotifySession) SkipNext(ctx context.Context) error {
	return s.transport(ctx, "skip next", func(c *spotify.Client) error { return c.Next(ctx) })
}

// SkipPrevious skips to the previous track.
func (s *SpotifySession) SkipPrevious(ctx context.Context) error {
	return s.transport(ctx, "skip previous", func(c *spotify.Client) error { return c.Previous(ctx) })
}

// SetVolume sets the active device volume and updates the cached value.
func (s *SpotifySession) SetVolume(ctx context.Context, percent int) error {
	err := s.transport(ctx, "set volume", func(c *spotify.Client) error { return c.Volume(ctx, percent) })
	if err != nil {
		return err
	}

	s.mu.Lock()
	if percent > 0 {
		s.premute = percent
	}
	s.volume = percent
	s.mu.Unlock()

	return nil
}

// ToggleMute drops the active device volume to zero, or restores the
// pre-mute volume when already muted.
func (s *SpotifySession) ToggleMute(ctx context.Context) error {
	client, err := s.clientOrErr()
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	state, err := client.PlayerState(ctx)
	if err != nil {
		return s.wrapAPI("player state", err)
	}
	if state.Device.ID == "" {
		return shared.ErrNoActiveDevice
	}

	if state.Device.Volume > 0 {
		s.mu.Lock()
		s.premute = int(state.Device.Volume)
		s.mu.Unlock()
		return s.SetVolume(ctx, 0)
	}

	s.mu.Lock()
	restore := s.premute
	s.mu.Unlock()
	if restore <= 0 {
		restore = 50
	}

	return s.SetVolume(ctx, restore)
}

// ToggleShuffle flips shuffle mode on the active device.
func (s *SpotifySession) ToggleShuffle(ctx context.Context) error {
	client, err := s.clientOrErr()
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	state, err := client.PlayerState(ctx)
	if err != nil {
		return s.wrapAPI("player state", err)
	}
	if state.Device.ID == "" {
		return shared.ErrNoActiveDevice
	}

	if err := client.Shuffle(ctx, !state.ShuffleState); err != nil {
		return s.wrapAPI("toggle shuffle", err)
	}

	return nil
}

// Devices lists the user's available playback devices.
func (s *SpotifySession) Devices(ctx context.Context) ([]Device, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	devices, err := client.PlayerDevices(ctx)
	if err != nil {
		return nil, s.wrapAPI("list devices", err)
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, fromPlayerDevice(d))
	}

	return out, nil
}

// SelectDevice transfers playback to the device with the given ID.
func (s *SpotifySession) SelectDevice(ctx context.Context, id string) error {
	return s.transport(ctx, "transfer playback", func(c *spotify.Client) error {
		return c.TransferPlayback(ctx, spotify.ID(id), true)
	})
}

// SearchArtists searches artists by name.
func (s *SpotifySession) SearchArtists(ctx context.Context, query string, limit int) ([]Item, error) {
	result, err := s.search(ctx, "artist search", query, spotify.SearchTypeArtist, limit)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if result.Artists != nil {
		for i := range result.Artists.Artists {
			items = append(items, fromFullArtist(&result.Artists.Artists[i]))
		}
	}

	return items, nil
}

// SearchAlbums searches albums by name.
func (s *SpotifySession) SearchAlbums(ctx context.Context, query string, limit int) ([]Item, error) {
	result, err := s.search(ctx, "album search", query, spotify.SearchTypeAlbum, limit)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if result.Albums != nil {
		for i := range result.Albums.Albums {
			items = append(items, fromSimpleAlbum(&result.Albums.Albums[i]))
		}
	}

	return items, nil
}

// SearchTracks searches tracks by name.
func (s *SpotifySession) SearchTracks(ctx context.Context, query string, limit int) ([]Item, error) {
	result, err := s.search(ctx, "track search", query, spotify.SearchTypeTrack, limit)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			items = append(items, fromFullTrack(&result.Tracks.Tracks[i]))
		}
	}

	return items, nil
}

// SearchPlaylists searches playlists by name. A blank query lists the
// user's own playlists instead, paging through the library up to limit.
func (s *SpotifySession) SearchPlaylists(ctx context.Context, query string, limit int) ([]Item, error) {
	if strings.TrimSpace(query) == "" {
		return s.userPlaylists(ctx, limit)
	}

	result, err := s.search(ctx, "playlist search", query, spotify.SearchTypePlaylist, limit)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if result.Playlists != nil {
		for i := range result.Playlists.Playlists {
			items = append(items, fromSimplePlaylist(&result.Playlists.Playlists[i]))
		}
	}

	return items, nil
}

// SearchAll searches every category with the same query. Results are merged
// as tracks, artists, albums, then playlists, with limit split evenly across
// the four categories.
func (s *SpotifySession) SearchAll(ctx context.Context, query string, limit int) ([]Item, error) {
	perKind := limit / 4
	if perKind < 1 {
		perKind = 1
	}

	kinds := spotify.SearchTypeTrack | spotify.SearchTypeArtist | spotify.SearchTypeAlbum | spotify.SearchTypePlaylist
	result, err := s.search(ctx, "global search", query, kinds, perKind)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			items = append(items, fromFullTrack(&result.Tracks.Tracks[i]))
		}
	}
	if result.Artists != nil {
		for i := range result.Artists.Artists {
			items = append(items, fromFullArtist(&result.Artists.Artists[i]))
		}
	}
	if result.Albums != nil {
		for i := range result.Albums.Albums {
			items = append(items, fromSimpleAlbum(&result.Albums.Albums[i]))
		}
	}
	if result.Playlists != nil {
		for i := range result.Playlists.Playlists {
			items = append(items, fromSimplePlaylist(&result.Playlists.Playlists[i]))
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// ResolveArtwork resolves an item's cover image to a local icon reference.
// Without an artwork store the remote URL is returned as the reference.
func (s *SpotifySession) ResolveArtwork(ctx context.Context, item Item) (string, error) {
	if item.ImageURL == "" {
		return "", nil
	}
	if s.art == nil {
		return item.ImageURL, nil
	}
	return s.art.Resolve(ctx, item.URI, item.ImageURL)
}

// PlayItem starts playback of the given URI on the active device. Track
// URIs play directly; artist, album, and playlist URIs play as a context.
func (s *SpotifySession) PlayItem(ctx context.Context, uri string) error {
	u := spotify.URI(uri)

	opts := &spotify.PlayOptions{}
	if strings.HasPrefix(uri, "spotify:track:") {
		opts.URIs = []spotify.URI{u}
	} else {
		opts.PlaybackContext = &u
	}

	return s.transport(ctx, "play item", func(c *spotify.Client) error { return c.PlayOpt(ctx, opts) })
}

// userPlaylists pages through the user's playlist library up to limit.
func (s *SpotifySession) userPlaylists(ctx context.Context, limit int) ([]Item, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pageSize := 50
	if limit < pageSize {
		pageSize = limit
	}

	page, err := client.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize))
	if err != nil {
		return nil, s.wrapAPI("list playlists", err)
	}

	items := []Item{}
	for {
		for i := range page.Playlists {
			if len(items) >= limit {
				return items, nil
			}
			items = append(items, fromSimplePlaylist(&page.Playlists[i]))
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				return items, nil
			}
			return nil, s.wrapAPI("list playlists", err)
		}
	}
}

// search runs one Web API search with the session limiter applied.
func (s *SpotifySession) search(ctx context.Context, op, query string, kinds spotify.SearchType, limit int) (*spotify.SearchResult, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := client.Search(ctx, query, kinds, spotify.Limit(limit))
	if err != nil {
		return nil, s.wrapAPI(op, err)
	}

	return result, nil
}

// transport runs one player operation with connectivity and rate limiting
// applied.
func (s *SpotifySession) transport(ctx context.Context, op string, fn func(*spotify.Client) error) error {
	client, err := s.clientOrErr()
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := fn(client); err != nil {
		return s.wrapAPI(op, err)
	}

	return nil
}

func (s *SpotifySession) clientOrErr() (*spotify.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, shared.ErrNotConnected
	}
	return s.client, nil
}

// wrapAPI maps Web API failures onto the shared error taxonomy. Player
// endpoints report 404 when no device is active.
func (s *SpotifySession) wrapAPI(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, op)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", shared.ErrNoActiveDevice, op)
		}
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}

func fromFullTrack(t *spotify.FullTrack) Item {
	byline := joinArtists(t.Artists)
	if t.Album.Name != "" {
		byline = fmt.Sprintf("%s • %s", byline, t.Album.Name)
	}

	return Item{
		Kind:     KindTrack,
		URI:      string(t.URI),
		Name:     t.Name,
		Byline:   byline,
		ImageURL: smallestImage(t.Album.Images),
	}
}

func fromFullArtist(a *spotify.FullArtist) Item {
	byline := "Artist"
	if len(a.Genres) > 0 {
		genres := a.Genres
		if len(genres) > 3 {
			genres = genres[:3]
		}
		byline = strings.Join(genres, ", ")
	}

	return Item{
		Kind:     KindArtist,
		URI:      string(a.URI),
		Name:     a.Name,
		Byline:   byline,
		ImageURL: smallestImage(a.Images),
	}
}

func fromSimpleAlbum(a *spotify.SimpleAlbum) Item {
	byline := joinArtists(a.Artists)
	if len(a.ReleaseDate) >= 4 {
		byline = fmt.Sprintf("%s • %s", byline, a.ReleaseDate[:4])
	}

	return Item{
		Kind:     KindAlbum,
		URI:      string(a.URI),
		Name:     a.Name,
		Byline:   byline,
		ImageURL: smallestImage(a.Images),
	}
}

func fromSimplePlaylist(p *spotify.SimplePlaylist) Item {
	byline := fmt.Sprintf("%d tracks", p.Tracks.Total)
	if p.Owner.DisplayName != "" {
		byline = fmt.Sprintf("%s • %s", p.Owner.DisplayName, byline)
	}

	return Item{
		Kind:     KindPlaylist,
		URI:      string(p.URI),
		Name:     p.Name,
		Byline:   byline,
		ImageURL: smallestImage(p.Images),
	}
}

func fromPlayerDevice(d spotify.PlayerDevice) Device {
	return Device{
		ID:     string(d.ID),
		Name:   d.Name,
		Type:   d.Type,
		Active: d.Active,
		Volume: int(d.Volume),
	}
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// smallestImage picks the smallest cover at least 64px wide. Spotify orders
// images largest first, so the last usable entry wins.
func smallestImage(images []spotify.Image) string {
	url := ""
	for _, img := range images {
		if img.Width >= 64 || img.Width == 0 {
			url = img.URL
		}
	}
	if url == "" && len(images) > 0 {
		url = images[len(images)-1].URL
	}
	return url
}
