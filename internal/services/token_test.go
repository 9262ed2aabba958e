package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStorage(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "auth", "token.json")
		token := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour).UTC(),
		}

		if err := SaveToken(path, token); err != nil {
			t.Fatalf("SaveToken() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("token file should exist: %v", err)
		}
		if info.Mode().Perm() != tokenFileMode {
			t.Errorf("expected mode %o, got %o", tokenFileMode, info.Mode().Perm())
		}

		loaded, err := LoadToken(path)
		if err != nil {
			t.Fatalf("LoadToken() error = %v", err)
		}

		if loaded.AccessToken != token.AccessToken {
			t.Errorf("expected access token %q, got %q", token.AccessToken, loaded.AccessToken)
		}
		if loaded.RefreshToken != token.RefreshToken {
			t.Errorf("expected refresh token %q, got %q", token.RefreshToken, loaded.RefreshToken)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadToken(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected error for missing token file")
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		if _, err := LoadToken(""); err == nil {
			t.Error("expected error for empty path")
		}
		if err := SaveToken("", &oauth2.Token{AccessToken: "a"}); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("Empty Credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := LoadToken(path); err == nil {
			t.Error("expected error for token without credentials")
		}
	})
}
