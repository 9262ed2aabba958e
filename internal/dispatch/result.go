package dispatch

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/services"
	"github.com/desertthunder/tunebar/internal/shared"
)

// Result is a single displayable, actionable entry. OnSelect runs the
// result's action and reports success; it is never nil. URI carries the
// playback identifier for hosts that cannot hold closures.
type Result struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Icon     string      `json:"icon,omitempty"`
	URI      string      `json:"uri,omitempty"`
	OnSelect func() bool `json:"-"`
}

// Builder constructs uniformly shaped results. Every handler funnels its
// terminal output through one of its helpers so icon defaulting and
// action wrapping stay in one place.
type Builder struct {
	session services.Session
	icon    string
	logger  *log.Logger
}

// NewBuilder creates a Builder. icon is the default icon reference used
// when a result has no artwork of its own.
func NewBuilder(session services.Session, icon string, logger *log.Logger) *Builder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Builder{session: session, icon: icon, logger: logger}
}

// Single builds a one-entry result. A nil action makes selection a no-op
// that reports success.
func (b *Builder) Single(title, subtitle string, action func() error) Result {
	return Result{
		Title:    title,
		Subtitle: subtitle,
		Icon:     b.icon,
		OnSelect: b.wrap(title, action),
	}
}

// Playable builds a result that starts playback of item on selection.
// icon overrides the default when the item's artwork resolved.
func (b *Builder) Playable(item services.Item, icon string) Result {
	if icon == "" {
		icon = b.icon
	}
	uri := item.URI
	return Result{
		Title:    item.Name,
		Subtitle: item.Byline,
		Icon:     icon,
		URI:      uri,
		OnSelect: b.wrap(item.Name, func() error {
			return b.session.PlayItem(context.Background(), uri)
		}),
	}
}

// AuthRequired builds the reconnection result returned whenever the
// session cannot serve a query. Selection retries with the stored token
// and reports whether it worked.
func (b *Builder) AuthRequired() []Result {
	return []Result{b.Single("Authentication Required", "Select to reconnect to Spotify", func() error {
		return b.session.Reconnect(context.Background(), true)
	})}
}

// NothingFound builds the canonical empty-search result.
func (b *Builder) NothingFound() []Result {
	return []Result{b.Single("Nothing Found", "No results matched your search", nil)}
}

// wrap converts an action into a selection callback. Selection happens
// after dispatch returns, so actions run under their own context; failures
// are logged rather than raised.
func (b *Builder) wrap(title string, action func() error) func() bool {
	return func() bool {
		if action == nil {
			return true
		}
		if err := action(); err != nil {
			b.logger.Error("selection failed", "result", title, "error", err)
			return false
		}
		return true
	}
}
