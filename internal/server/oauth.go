package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

const defaultCallbackPath = "/callback"

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>tagsync: {{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

type resultView struct {
	Title   string
	Message string
	Color   string
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the OAuth2 authorization code callback.
type OAuthHandler struct {
	config      *oauth2.Config
	state       string
	path        string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler for config's redirect URL path that accepts only the given state token.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		path:       CallbackPath(config.RedirectURL),
		resultChan: make(chan OAuthResult, 1),
	}
}

// CallbackAddr returns the host:port of a redirect URI, or fallback when the URI names no port.
func CallbackAddr(redirectURI, fallback string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Port() == "" {
		return fallback
	}
	return u.Host
}

// CallbackPath returns the path component of a redirect URI, or "/callback" when it has none.
func CallbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return defaultCallbackPath
	}
	return u.Path
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates the state, exchanges the code and publishes the result. Only the first callback counts.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("invalid state parameter"))
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization failed: %s - %s", query.Get("error"), query.Get("error_description"))
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, fmt.Errorf("token exchange failed: %w", err))
		return
	}

	h.Send(OAuthResult{Token: token})
	render(w, http.StatusOK, resultView{
		Title:   "Authorization Successful",
		Message: "You can close this window and return to the terminal.",
		Color:   "#1DB954",
	})
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, err error) {
	h.Send(OAuthResult{err: err})
	render(w, status, resultView{Title: "Authorization Failed", Message: err.Error(), Color: "#E22134"})
}

func render(w http.ResponseWriter, status int, view resultView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = resultPage.Execute(w, view)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
