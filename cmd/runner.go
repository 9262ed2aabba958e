package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/artwork"
	"github.com/desertthunder/tunebar/internal/dispatch"
	"github.com/desertthunder/tunebar/internal/services"
	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    *services.SpotifySession
	dispatcher *dispatch.Dispatcher
	art        *artwork.Cache
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    *services.SpotifySession
	Dispatcher *dispatch.Dispatcher
	Artwork    *artwork.Cache
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    opts.Session,
		dispatcher: opts.Dispatcher,
		art:        opts.Artwork,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// connectSession builds the artwork cache, Spotify session, and dispatcher
// from the runner's configuration. A token saved by a previous authorization
// is loaded by the session; until one exists, queries resolve to a reconnect
// prompt and `tunebar auth login` mints the first token.
func (r *Runner) connectSession() error {
	dir, err := r.config.PluginDir()
	if err != nil {
		return err
	}

	dbPath, err := r.config.DatabasePath()
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open artwork database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	art, err := artwork.NewCache(artwork.CacheOpts{
		DB:     db,
		Dir:    filepath.Join(dir, "artwork"),
		Logger: r.logger,
	})
	if err != nil {
		db.Close()
		return err
	}

	session, err := services.NewSpotifySession(services.SessionOpts{
		ClientID:     r.config.Spotify.ClientID,
		ClientSecret: r.config.Spotify.ClientSecret,
		RedirectURI:  r.config.Spotify.RedirectURI,
		TokenPath:    filepath.Join(dir, "token.json"),
		Artwork:      art,
		Flow:         r.doOAuth,
		Logger:       r.logger,
	})
	if err != nil {
		art.Close()
		return err
	}

	r.art = art
	r.session = session
	r.dispatcher = dispatch.NewDispatcher(dispatch.DispatcherOpts{
		Session:         session,
		Icon:            r.config.Plugin.DefaultIcon,
		PluginDir:       dir,
		Quiet:           r.config.QuietPeriod(),
		DisableDebounce: !r.config.Dispatch.Debounce,
		Logger:          r.logger,
	})

	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, queryCommand, tuiCommand, mcpCommand, configCommand, cacheCommand, diagCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
