// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/tunebar/internal/services"
	"github.com/desertthunder/tunebar/internal/shared"
)

// MockSession is a configurable test double for [services.Session]. The
// zero value behaves as a connected session with a valid token and no
// current playback. Every method call is recorded so tests can assert how
// often, and with what, the session was hit; recording is safe under
// concurrent dispatch.
type MockSession struct {
	mu    sync.Mutex
	calls []string

	Disconnected bool
	TokenInvalid bool
	User         string
	VolumeValue  int

	Playback    *services.Playback
	PlaybackErr error

	Items     []services.Item
	SearchErr error
	SearchFn  func(kind, query string, limit int) ([]services.Item, error)

	IconRef    string
	ArtworkErr error
	ArtworkFn  func(item services.Item) (string, error)

	DeviceList []services.Device
	DeviceErr  error

	ActionErr    error
	ReconnectErr error
}

func (m *MockSession) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns every recorded call in order.
func (m *MockSession) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many recorded calls match pattern. A pattern
// ending in ":" counts every call of that operation regardless of
// argument; any other pattern must match a call exactly, so "play" does
// not count "playback" or "playitem:" calls.
func (m *MockSession) CallCount(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == pattern || (strings.HasSuffix(pattern, ":") && strings.HasPrefix(c, pattern)) {
			n++
		}
	}
	return n
}

// LastCall returns the most recent recorded call starting with prefix,
// or "" when none matched.
func (m *MockSession) LastCall(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(m.calls[i], prefix) {
			return m.calls[i]
		}
	}
	return ""
}

func (m *MockSession) Connected() bool  { return !m.Disconnected }
func (m *MockSession) TokenValid() bool { return !m.TokenInvalid }
func (m *MockSession) UserID() string   { return m.User }
func (m *MockSession) Volume() int      { return m.VolumeValue }

func (m *MockSession) Reconnect(ctx context.Context, keepToken bool) error {
	m.record(fmt.Sprintf("reconnect:%t", keepToken))
	return m.ReconnectErr
}

func (m *MockSession) CurrentPlayback(ctx context.Context) (*services.Playback, error) {
	m.record("playback")
	if m.PlaybackErr != nil {
		return nil, m.PlaybackErr
	}
	if m.Playback == nil {
		return nil, shared.ErrNoTrack
	}
	return m.Playback, nil
}

func (m *MockSession) Play(ctx context.Context) error {
	m.record("play")
	return m.ActionErr
}

func (m *MockSession) Pause(ctx context.Context) error {
	m.record("pause")
	return m.ActionErr
}

func (m *MockSession) SkipNext(ctx context.Context) error {
	m.record("next")
	return m.ActionErr
}

func (m *MockSession) SkipPrevious(ctx context.Context) error {
	m.record("previous")
	return m.ActionErr
}

func (m *MockSession) SetVolume(ctx context.Context, percent int) error {
	m.record("volume:" + strconv.Itoa(percent))
	return m.ActionErr
}

func (m *MockSession) ToggleMute(ctx context.Context) error {
	m.record("mute")
	return m.ActionErr
}

func (m *MockSession) ToggleShuffle(ctx context.Context) error {
	m.record("shuffle")
	return m.ActionErr
}

func (m *MockSession) Devices(ctx context.Context) ([]services.Device, error) {
	m.record("devices")
	return m.DeviceList, m.DeviceErr
}

func (m *MockSession) SelectDevice(ctx context.Context, id string) error {
	m.record("device:" + id)
	return m.ActionErr
}

func (m *MockSession) SearchArtists(ctx context.Context, query string, limit int) ([]services.Item, error) {
	return m.search(services.KindArtist, query, limit)
}

func (m *MockSession) SearchAlbums(ctx context.Context, query string, limit int) ([]services.Item, error) {
	return m.search(services.KindAlbum, query, limit)
}

func (m *MockSession) SearchTracks(ctx context.Context, query string, limit int) ([]services.Item, error) {
	return m.search(services.KindTrack, query, limit)
}

func (m *MockSession) SearchPlaylists(ctx context.Context, query string, limit int) ([]services.Item, error) {
	return m.search(services.KindPlaylist, query, limit)
}

func (m *MockSession) SearchAll(ctx context.Context, query string, limit int) ([]services.Item, error) {
	return m.search("all", query, limit)
}

func (m *MockSession) search(kind, query string, limit int) ([]services.Item, error) {
	m.record("search:" + kind + ":" + query)
	if m.SearchFn != nil {
		return m.SearchFn(kind, query, limit)
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Items, nil
}

func (m *MockSession) ResolveArtwork(ctx context.Context, item services.Item) (string, error) {
	m.record("artwork:" + item.URI)
	if m.ArtworkFn != nil {
		return m.ArtworkFn(item)
	}
	if m.ArtworkErr != nil {
		return "", m.ArtworkErr
	}
	return m.IconRef, nil
}

func (m *MockSession) PlayItem(ctx context.Context, uri string) error {
	m.record("playitem:" + uri)
	return m.ActionErr
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
