package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session and authentication errors
	ErrNotConnected = fmt.Errorf("no connection to spotify")
	ErrTokenExpired = fmt.Errorf("access token expired")
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Playback errors
	ErrNoActiveDevice = fmt.Errorf("no active playback device")
	ErrNoTrack        = fmt.Errorf("no track playing")

	// API errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
