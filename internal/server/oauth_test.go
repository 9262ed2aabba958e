package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

type stubTransport struct {
	fn func(*http.Request) (*http.Response, error)
}

func (s stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return s.fn(req)
}

func testAuthenticator() *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID("client"),
		spotifyauth.WithClientSecret("secret"),
		spotifyauth.WithRedirectURL("http://localhost:8080/callback"),
	)
}

// tokenRequest builds a callback request whose token exchange is served by
// the stubbed transport instead of the real token endpoint.
func tokenRequest(target string, rt http.RoundTripper) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	client := &http.Client{Transport: rt}
	return req.WithContext(context.WithValue(req.Context(), oauth2.HTTPClient, client))
}

func TestOAuthHandler(t *testing.T) {
	t.Run("RejectsStateMismatch", func(t *testing.T) {
		h := NewOAuthHandler(testAuthenticator(), "expected-state")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=wrong", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected a state error on the result channel")
		}
	})

	t.Run("ReportsProviderDenial", func(t *testing.T) {
		h := NewOAuthHandler(testAuthenticator(), "s")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied&error_description=nope", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if err := result.Error(); err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected the provider error, got %v", err)
		}
	})

	t.Run("ExchangesCodeForToken", func(t *testing.T) {
		h := NewOAuthHandler(testAuthenticator(), "s")

		rt := stubTransport{fn: func(req *http.Request) (*http.Response, error) {
			body := `{"access_token":"tok","token_type":"Bearer","refresh_token":"ref","expires_in":3600}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, tokenRequest("/callback?code=abc&state=s", rt))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected the success page")
		}

		result := <-h.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Token == nil || result.Token.AccessToken != "tok" {
			t.Errorf("expected the exchanged token, got %+v", result.Token)
		}
	})

	t.Run("ProcessesOnlyOneCallback", func(t *testing.T) {
		h := NewOAuthHandler(testAuthenticator(), "s")

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", second.Code)
		}
		if !strings.Contains(second.Body.String(), "already processed") {
			t.Errorf("expected the replay message, got %q", second.Body.String())
		}
	})
}
