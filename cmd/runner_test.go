package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tunebar/internal/artwork"
	"github.com/desertthunder/tunebar/internal/dispatch"
	"github.com/desertthunder/tunebar/internal/services"
	"github.com/desertthunder/tunebar/internal/shared"
	tu "github.com/desertthunder/tunebar/internal/testing"
	"github.com/urfave/cli/v3"
)

// testRunner builds a Runner whose dispatcher routes to the given session,
// with debounce off so searches run immediately.
func testRunner(session services.Session) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	logger := shared.NewLogger(io.Discard)

	var dispatcher *dispatch.Dispatcher
	if session != nil {
		dispatcher = dispatch.NewDispatcher(dispatch.DispatcherOpts{
			Session:         session,
			Icon:            "icon.png",
			PluginDir:       "/tmp/tunebar-test",
			DisableDebounce: true,
			Logger:          logger,
		})
	}

	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		Dispatcher: dispatcher,
		Logger:     logger,
		Output:     output,
	})

	return runner, output
}

// runApp executes one CLI invocation against the runner's registered commands.
func runApp(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "tunebar",
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"tunebar"}, args...))
}

func sampleTracks() []services.Item {
	return []services.Item{
		{Kind: services.KindTrack, URI: "spotify:track:1", Name: "So What", Byline: "Miles Davis • Kind of Blue"},
		{Kind: services.KindTrack, URI: "spotify:track:2", Name: "Freddie Freeloader", Byline: "Miles Davis • Kind of Blue"},
		{Kind: services.KindTrack, URI: "spotify:track:3", Name: "Blue in Green", Byline: "Miles Davis • Kind of Blue"},
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(io.Discard)
			output := &bytes.Buffer{}
			dispatcher := dispatch.NewDispatcher(dispatch.DispatcherOpts{
				Session: &tu.MockSession{},
				Logger:  logger,
			})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "config.toml",
				Dispatcher: dispatcher,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.dispatcher != dispatcher {
				t.Error("expected dispatcher to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing, Logger: shared.NewLogger(io.Discard)})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter, Logger: shared.NewLogger(io.Discard)})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing, Logger: shared.NewLogger(io.Discard)})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runner.writePlainln("banner %d", 7); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if output.String() != "\nbanner 7\n" {
			t.Errorf("expected surrounded text, got %q", output.String())
		}
	})

	t.Run("writePlainHeader frames the title", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		runner.writePlainHeader("diagnostics")

		result := output.String()
		if !strings.Contains(result, "diagnostics\n") {
			t.Errorf("expected title line, got %q", result)
		}
		if strings.Count(result, "═") == 0 {
			t.Errorf("expected rule lines, got %q", result)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
		commands := runner.register()

		if len(commands) == 0 {
			t.Fatal("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"auth", "query", "tui", "mcp", "config", "cache", "diag"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestConnectSession(t *testing.T) {
	t.Run("builds the session, cache, and dispatcher", func(t *testing.T) {
		dir := t.TempDir()
		config := shared.DefaultConfig()
		config.Spotify.ClientID = "client-id"
		config.Spotify.ClientSecret = "client-secret"
		config.Plugin.Dir = dir

		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

		if err := runner.connectSession(); err != nil {
			t.Fatalf("connectSession() error = %v", err)
		}
		defer runner.art.Close()

		if runner.session == nil {
			t.Error("expected session to be built")
		}
		if runner.dispatcher == nil {
			t.Error("expected dispatcher to be built")
		}
		if runner.art == nil {
			t.Fatal("expected artwork cache to be built")
		}

		tu.AssertDirExists(t, filepath.Join(dir, "artwork"))
		tu.AssertFileExists(t, filepath.Join(dir, "artwork.db"))
	})

	t.Run("fails without credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Plugin.Dir = t.TempDir()

		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

		err := runner.connectSession()
		if err == nil {
			t.Fatal("expected error without credentials")
		}
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})
}

func TestQueryCommand(t *testing.T) {
	t.Run("renders results as numbered rows", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)

		if err := runApp(runner, "query", "track stella"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "1. So What") {
			t.Errorf("expected first row, got %q", result)
		}
		if !strings.Contains(result, "3. Blue in Green") {
			t.Errorf("expected third row, got %q", result)
		}
		if !strings.Contains(result, "   Miles Davis • Kind of Blue") {
			t.Errorf("expected subtitle line, got %q", result)
		}
		if !strings.Contains(result, "   spotify:track:1") {
			t.Errorf("expected uri line, got %q", result)
		}
	})

	t.Run("emits JSON when requested", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)

		if err := runApp(runner, "query", "--json", "track stella"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.HasPrefix(result, "[") {
			t.Errorf("expected JSON array, got %q", result)
		}
		if !strings.Contains(result, `"title": "So What"`) {
			t.Errorf("expected serialized title, got %q", result)
		}
		if strings.Contains(result, "OnSelect") {
			t.Errorf("actions must not serialize, got %q", result)
		}
	})

	t.Run("normalizes empty results to an empty JSON array", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)

		if err := runApp(runner, "query", "--json", "artist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if output.String() != "[]\n" {
			t.Errorf("expected empty array, got %q", output.String())
		}
	})

	t.Run("prints a notice when nothing renders", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)

		if err := runApp(runner, "query", "artist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "No results.") {
			t.Errorf("expected notice, got %q", output.String())
		}
	})

	t.Run("blank query renders the status view", func(t *testing.T) {
		track := sampleTracks()[0]
		session := &tu.MockSession{
			Playback: &services.Playback{
				Playing: true,
				Track:   &track,
				Device:  services.Device{Name: "Kitchen"},
			},
		}
		runner, output := testRunner(session)

		if err := runApp(runner, "query"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "1. So What") {
			t.Errorf("expected now-playing row, got %q", result)
		}
		if !strings.Contains(result, "2. Pause") {
			t.Errorf("expected pause toggle, got %q", result)
		}
		if !strings.Contains(result, "7. Volume") {
			t.Errorf("expected volume row, got %q", result)
		}
	})

	t.Run("runs the selected result action", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)

		if err := runApp(runner, "query", "--select", "2", "track stella"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if session.CallCount("playitem:spotify:track:2") != 1 {
			t.Errorf("expected second track to play, calls: %v", session.Calls())
		}
		if !strings.Contains(output.String(), "✓ Freddie Freeloader") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("select out of range errors", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, _ := testRunner(session)

		err := runApp(runner, "query", "--select", "9", "track stella")
		if err == nil {
			t.Fatal("expected error for out-of-range selection")
		}
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument error, got %v", err)
		}
	})

	t.Run("failed action surfaces an error", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks(), ActionErr: shared.ErrNoActiveDevice}
		runner, _ := testRunner(session)

		err := runApp(runner, "query", "--select", "1", "track stella")
		if err == nil {
			t.Fatal("expected error from failed action")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected API error, got %v", err)
		}
	})

	t.Run("reports missing session", func(t *testing.T) {
		runner, _ := testRunner(nil)

		err := runApp(runner, "query", "track stella")
		if err == nil {
			t.Fatal("expected error without a session")
		}
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status reports a missing token", func(t *testing.T) {
		session, err := services.NewSpotifySession(services.SessionOpts{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenPath:    filepath.Join(t.TempDir(), "token.json"),
			Logger:       shared.NewLogger(io.Discard),
		})
		if err != nil {
			t.Fatalf("failed to build session: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  shared.DefaultConfig(),
			Session: session,
			Logger:  shared.NewLogger(io.Discard),
			Output:  output,
		})

		if err := runApp(runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "✗ No usable token stored") {
			t.Errorf("expected missing token notice, got %q", output.String())
		}
	})

	t.Run("login without credentials errors", func(t *testing.T) {
		runner, _ := testRunner(nil)

		err := runApp(runner, "auth", "login")
		if err == nil {
			t.Fatal("expected error without a session")
		}
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})
}

func TestConfigCommands(t *testing.T) {
	t.Run("init writes the example file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, output := testRunner(nil)

		if err := runApp(runner, "config", "init", "--path", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "✓ Config written") {
			t.Errorf("expected confirmation, got %q", output.String())
		}

		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "[spotify]") {
			t.Errorf("expected spotify section in config, got %q", content)
		}
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatalf("failed to seed config: %v", err)
		}

		runner, _ := testRunner(nil)

		err := runApp(runner, "config", "init", "--path", path)
		if err == nil {
			t.Fatal("expected error for existing file")
		}
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument error, got %v", err)
		}
	})

	t.Run("show masks credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Spotify.ClientID = "abcdef123456"
		config.Spotify.ClientSecret = "secret987654"
		config.Plugin.Dir = t.TempDir()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		})

		if err := runApp(runner, "config", "show"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if strings.Contains(result, "abcdef123456") || strings.Contains(result, "secret987654") {
			t.Errorf("credentials must be masked, got %q", result)
		}
		if !strings.Contains(result, "****3456") {
			t.Errorf("expected masked client id, got %q", result)
		}
		if !strings.Contains(result, "Redirect URI: http://localhost:8080/callback") {
			t.Errorf("expected redirect uri, got %q", result)
		}
	})
}

func TestDiagCommand(t *testing.T) {
	t.Run("reports a disconnected process", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Plugin.Dir = t.TempDir()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		})

		if err := runApp(runner, "diag"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Account: not connected") {
			t.Errorf("expected disconnected account line, got %q", result)
		}
		if !strings.Contains(result, "Version: "+version) {
			t.Errorf("expected version line, got %q", result)
		}
	})

	t.Run("counts dispatches in JSON output", func(t *testing.T) {
		session := &tu.MockSession{Items: sampleTracks()}
		runner, output := testRunner(session)
		runner.config.Plugin.Dir = t.TempDir()

		if err := runApp(runner, "query", "track stella"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		output.Reset()

		if err := runApp(runner, "diag", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"dispatches": 1`) {
			t.Errorf("expected one counted dispatch, got %q", result)
		}
		if !strings.Contains(result, `"searches": 1`) {
			t.Errorf("expected one counted search, got %q", result)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	setupRunner := func(t *testing.T) (*Runner, *bytes.Buffer) {
		t.Helper()

		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}

		art, err := artwork.NewCache(artwork.CacheOpts{
			DB:     db,
			Dir:    t.TempDir(),
			Logger: shared.NewLogger(io.Discard),
		})
		if err != nil {
			t.Fatalf("failed to build cache: %v", err)
		}
		t.Cleanup(func() { art.Close() })

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:  shared.DefaultConfig(),
			Artwork: art,
			Logger:  shared.NewLogger(io.Discard),
			Output:  output,
		})

		return runner, output
	}

	t.Run("stats reports an empty cache", func(t *testing.T) {
		runner, output := setupRunner(t)

		if err := runApp(runner, "cache", "stats"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Artwork entries: 0") {
			t.Errorf("expected empty cache report, got %q", output.String())
		}
	})

	t.Run("prune reports removals", func(t *testing.T) {
		runner, output := setupRunner(t)

		if err := runApp(runner, "cache", "prune", "--max-age", "24h"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "✓ Removed 0 cached images") {
			t.Errorf("expected prune report, got %q", output.String())
		}
	})

	t.Run("stats without a cache errors", func(t *testing.T) {
		runner, _ := testRunner(nil)

		err := runApp(runner, "cache", "stats")
		if err == nil {
			t.Fatal("expected error without a cache")
		}
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})
}
