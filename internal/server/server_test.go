package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tagsync/internal/shared"
	"golang.org/x/oauth2"
)

func tokenEndpoint(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request: %v", err)
		}
		if r.Form.Get("code") != "good-code" {
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"access-123","token_type":"Bearer","refresh_token":"refresh-456","expires_in":3600}`)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://127.0.0.1:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/authorize", TokenURL: tokenURL},
	}
}

func TestCallbackPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://127.0.0.1:3000/callback", "/callback"},
		{"http://localhost:8888/auth/spotify", "/auth/spotify"},
		{"http://localhost:8888", "/callback"},
		{"http://localhost:8888/", "/callback"},
		{"", "/callback"},
		{"://bad", "/callback"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := CallbackPath(tt.uri); got != tt.want {
				t.Errorf("CallbackPath(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://127.0.0.1:3000/callback", "127.0.0.1:3000"},
		{"http://localhost:8888", "localhost:8888"},
		{"http://localhost/callback", "fallback:1"},
		{"", "fallback:1"},
		{"://bad", "fallback:1"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := CallbackAddr(tt.uri, "fallback:1"); got != tt.want {
				t.Errorf("CallbackAddr(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestBasicRouter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("get", "/ping", ok)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("GET: got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST: expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("unknown path: expected 404, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", ok)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("expected [first second], got %v", order)
		}
	})

	t.Run("request logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handle(http.MethodGet, "/callback", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "/callback") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("query string must not be logged")
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	serve := func(h *OAuthHandler, query string) *httptest.ResponseRecorder {
		router := NewBasicRouter()
		router.Handler(h)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
		return rec
	}

	t.Run("routes follow the redirect uri", func(t *testing.T) {
		cfg := testConfig("http://unused")
		cfg.RedirectURL = "http://127.0.0.1:8888/spotify/done"
		h := NewOAuthHandler(cfg, "state")
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/spotify/done" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("exchanges the code", func(t *testing.T) {
		ts := tokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(testConfig(ts.URL), "state-1")

		rec := serve(h, "state=state-1&code=good-code")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "access-123" || result.Token.RefreshToken != "refresh-456" {
			t.Errorf("unexpected token %+v", result.Token)
		}
	})

	t.Run("rejects a mismatched state", func(t *testing.T) {
		h := NewOAuthHandler(testConfig("http://unused"), "expected")

		rec := serve(h, "state=forged&code=good-code")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil || result.Token != nil {
			t.Error("expected an error result")
		}
	})

	t.Run("reports a denied authorization", func(t *testing.T) {
		h := NewOAuthHandler(testConfig("http://unused"), "s")

		rec := serve(h, "state=s&error=access_denied&error_description=user+said+no")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("reports a failed exchange", func(t *testing.T) {
		ts := tokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(testConfig(ts.URL), "s")

		rec := serve(h, "state=s&code=bad-code")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("only the first callback counts", func(t *testing.T) {
		h := NewOAuthHandler(testConfig("http://unused"), "s")
		serve(h, "state=wrong")

		rec := serve(h, "state=s&code=good-code")
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "already processed") {
			t.Errorf("expected replay rejection, got %d %q", rec.Code, rec.Body.String())
		}

		results := 0
		for range h.Result() {
			results++
		}
		if results != 1 {
			t.Errorf("expected exactly one result, got %d", results)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	quiet := shared.NewLogger(&bytes.Buffer{})

	t.Run("delivers the token", func(t *testing.T) {
		ts := tokenEndpoint(t, http.StatusOK)
		h := NewOAuthHandler(testConfig(ts.URL), "abc")
		srv := NewCallbackServer("127.0.0.1:0", h, quiet)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=abc&code=good-code")
			if err == nil {
				resp.Body.Close()
			}
		}()

		token, err := srv.Wait(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if token.AccessToken != "access-123" {
			t.Errorf("unexpected token %q", token.AccessToken)
		}
	})

	t.Run("wraps callback errors", func(t *testing.T) {
		h := NewOAuthHandler(testConfig("http://unused"), "abc")
		srv := NewCallbackServer("127.0.0.1:0", h, quiet)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=nope")
			if err == nil {
				resp.Body.Close()
			}
		}()

		if _, err := srv.Wait(context.Background(), 5*time.Second); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		srv := NewCallbackServer("127.0.0.1:0", NewOAuthHandler(testConfig("http://unused"), "abc"), quiet)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		if _, err := srv.Wait(context.Background(), 20*time.Millisecond); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		srv := NewCallbackServer("127.0.0.1:0", NewOAuthHandler(testConfig("http://unused"), "abc"), quiet)
		if err := srv.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := srv.Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("port in use", func(t *testing.T) {
		first := NewCallbackServer("127.0.0.1:0", NewOAuthHandler(testConfig("http://unused"), "a"), quiet)
		if err := first.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer first.shutdown()

		second := NewCallbackServer(first.Addr(), NewOAuthHandler(testConfig("http://unused"), "b"), quiet)
		if err := second.Start(); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
