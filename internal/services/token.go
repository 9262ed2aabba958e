package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// tokenFileMode keeps stored credentials readable by the owner only.
const tokenFileMode = 0600

// LoadToken reads an OAuth2 token from the JSON file at path.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("token path not set")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token file contains no credentials")
	}

	return &token, nil
}

// SaveToken writes an OAuth2 token to path as JSON, creating parent
// directories as needed.
func SaveToken(path string, token *oauth2.Token) error {
	if path == "" {
		return fmt.Errorf("token path not set")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, tokenFileMode); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
