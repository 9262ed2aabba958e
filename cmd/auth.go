package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/tunebar/internal/server"
	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the full OAuth2 authorization flow and persists the minted
// token in the plugin directory.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	if err := r.session.Reconnect(ctx, false); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Connected as %s\n\n", r.session.UserID())
	r.writePlain("You can now use: tunebar query \"track so what\"\n")

	return nil
}

// AuthStatus verifies the stored token by reconnecting with it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	if !r.session.TokenValid() {
		r.writePlainln("✗ No usable token stored")
		r.writePlain("Run: tunebar auth login\n")
		return nil
	}

	if err := r.session.Reconnect(ctx, true); err != nil {
		r.writePlainln("✗ Stored token rejected: %v", err)
		r.writePlain("Run: tunebar auth login\n")
		return nil
	}

	r.writePlainln("✓ Connected as %s", r.session.UserID())

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
// Wired into the session as its interactive [services.AuthFlow], so an
// expired session can mint a fresh token from any command.
func (r *Runner) doOAuth(ctx context.Context) (*oauth2.Token, error) {
	state := shared.GenerateID()
	authURL := r.session.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.session.Authenticator(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
