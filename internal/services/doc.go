// Package services defines the [Session] interface for music playback
// providers and implements it for Spotify.
//
// # Session Interface
//
// A [Session] is a long-lived connection to a playback provider. It exposes
// connectivity checks, transport controls, device management, category
// searches, and artwork resolution behind one abstraction so the dispatch
// layer never touches provider SDKs directly.
//
// # Spotify Implementation
//
// [SpotifySession] wraps the zmb3/spotify client with OAuth2 authentication
// and automatic token refresh.
//
// The [oauth2.Client] transport refreshes expired access tokens using the
// refresh token; refreshed tokens are persisted back to the token file so
// later processes skip the browser flow.
//
// Cached session state (user ID, last observed volume, pre-mute volume) is
// guarded by a mutex because the dispatch layer invokes session methods from
// concurrent artwork workers.
//
// # Error Handling
//
// Sessions use typed errors from the shared package:
//   - [shared.ErrNotConnected] : no client, authorization never completed
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrNoActiveDevice] : playback endpoints need an active device
//   - [shared.ErrNoTrack] : a device is active but nothing is playing
//   - [shared.ErrAPIRequest] : any other Web API failure
//
// # API Mappings
//
// Provider responses are converted to the neutral [Item] type:
//   - tracks map artist names and album into the byline
//   - albums map artists and release year
//   - playlists map owner and track count
//
// Each Item carries the URL of the smallest usable cover image; resolution
// to a local icon reference is delegated to an [ArtworkStore].
package services
