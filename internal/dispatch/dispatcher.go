package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/services"
	"github.com/desertthunder/tunebar/internal/shared"
)

// Dispatcher routes raw queries to command handlers. Safe for concurrent
// use; overlapping dispatches coordinate only through the debounce stamp.
type Dispatcher struct {
	session   services.Session
	builder   *Builder
	search    *Aggregator
	table     *Table
	debounce  *Debouncer
	metrics   *Metrics
	logger    *log.Logger
	throttled bool
	pluginDir string
}

// DispatcherOpts contains configuration options for creating a Dispatcher.
type DispatcherOpts struct {
	Session services.Session

	// Icon is the default icon reference for results without artwork.
	Icon string

	// PluginDir is surfaced by the diag command.
	PluginDir string

	// Quiet overrides the debounce window. Zero means DefaultQuietPeriod.
	Quiet time.Duration

	// DisableDebounce turns the quiet-window gate off entirely; search
	// commands then execute on every dispatch.
	DisableDebounce bool

	Logger *log.Logger
}

// NewDispatcher creates a Dispatcher and builds its command table.
func NewDispatcher(opts DispatcherOpts) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	d := &Dispatcher{
		session:   opts.Session,
		debounce:  NewDebouncer(opts.Quiet),
		metrics:   &Metrics{},
		logger:    opts.Logger,
		throttled: !opts.DisableDebounce,
		pluginDir: opts.PluginDir,
	}
	d.builder = NewBuilder(opts.Session, opts.Icon, opts.Logger)
	d.search = NewAggregator(opts.Session, d.builder, d.metrics, opts.Logger)
	d.table = newTable(d)

	return d
}

// Metrics returns the dispatcher's counters.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Commands returns the registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	return d.table.Commands()
}

// Dispatch routes raw input to a handler and returns displayable results.
// It never panics and never returns an error. A nil slice is the
// superseded-query sentinel: the host should keep whatever it last
// rendered. An empty non-nil slice means render nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) (results []Result) {
	start := time.Now()
	d.debounce.Touch(start)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", "query", raw, "panic", r)
			d.metrics.RecordError()
			results = d.builder.NothingFound()
		}
		d.metrics.RecordDispatch(time.Since(start))
	}()

	if !d.session.Connected() {
		return d.builder.AuthRequired()
	}
	if !d.session.TokenValid() {
		return d.builder.AuthRequired()
	}

	query := ParseQuery(raw)

	if query.Command == "" {
		return d.run(ctx, d.nowPlaying, "")
	}

	cmd, known := d.table.lookup(query.Command)

	if known && !cmd.expensive {
		return d.run(ctx, cmd.run, query.Argument)
	}

	if known && cmd.expensive && d.throttled && d.debounce.Superseded(ctx, start) {
		d.metrics.RecordSuppressed()
		return nil
	}

	if known {
		return d.run(ctx, cmd.run, query.Argument)
	}

	d.metrics.RecordFallback()
	return d.run(ctx, d.search.Global, strings.TrimSpace(raw))
}

// run executes a handler and maps its failure to a terminal result.
// Session-level connectivity faults become the reconnect result; anything
// else is logged and rendered as nothing-found.
func (d *Dispatcher) run(ctx context.Context, h Handler, arg string) []Result {
	results, err := h(ctx, arg)
	if err == nil {
		return results
	}

	if errors.Is(err, shared.ErrNotConnected) || errors.Is(err, shared.ErrTokenExpired) {
		return d.builder.AuthRequired()
	}

	d.logger.Error("dispatch failed", "error", err)
	d.metrics.RecordError()
	return d.builder.NothingFound()
}
