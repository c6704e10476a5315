package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Sync        SyncConfig        `toml:"sync"`
	Scan        ScanConfig        `toml:"scan"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the most recent OAuth2 token.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenType    string `toml:"token_type"`
	Expiry       string `toml:"expiry"` // RFC 3339
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SyncConfig tunes the library synchronization pass.
type SyncConfig struct {
	BatchSize       int      `toml:"batch_size"`
	AlbumLimit      int      `toml:"album_limit"`
	Pause           string   `toml:"pause"`
	RequestRate     float64  `toml:"request_rate"`
	LockFile        string   `toml:"lock_file"`
	Ignore          []string `toml:"ignore"`
	GeneratedOwners []string `toml:"generated_owners"`
}

// ScanConfig controls which local files are read for tags.
type ScanConfig struct {
	Extensions []string `toml:"extensions"`
}

// Map returns the credentials in the form expected by the Spotify service constructor.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
		"expiry":        s.Expiry,
	}
}

// HasToken reports whether an access or refresh token has been stored.
func (s SpotifyConfig) HasToken() bool {
	return s.AccessToken != "" || s.RefreshToken != ""
}

// Token rebuilds the stored [oauth2.Token]. A malformed expiry is treated as already expired so the refresh token is used.
func (s SpotifyConfig) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
	if s.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, s.Expiry); err == nil {
			token.Expiry = expiry
		} else {
			token.Expiry = time.Unix(1, 0)
		}
	}
	return token
}

// Update stores the fields of token, keeping the existing refresh token when the new one is empty.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidInput)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", ErrInvalidInput)
	}

	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = ""
	if !token.Expiry.IsZero() {
		s.Expiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	return nil
}

// PauseDuration parses the pause between artists. An empty value means no pause.
func (s SyncConfig) PauseDuration() (time.Duration, error) {
	if s.Pause == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Pause)
	if err != nil {
		return 0, fmt.Errorf("%w: sync.pause %q: %v", ErrInvalidConfig, s.Pause, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: sync.pause must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML. The file holds tokens, so it is written with owner-only permissions.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if path == "" {
		return fmt.Errorf("%w: config path is empty", ErrMissingArgument)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides Spotify credentials with environment values.
//
// Both SPOTIFY_* and the SPOTIPY_* spellings are honored; SPOTIFY_* wins when both are set.
func ApplyEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	lookup := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}

	creds := &config.Credentials.Spotify
	if v := lookup("SPOTIFY_CLIENT_ID", "SPOTIPY_CLIENT_ID"); v != "" {
		creds.ClientID = v
	}
	if v := lookup("SPOTIFY_CLIENT_SECRET", "SPOTIPY_CLIENT_SECRET"); v != "" {
		creds.ClientSecret = v
	}
	if v := lookup("SPOTIFY_REDIRECT_URI", "SPOTIPY_REDIRECT_URI"); v != "" {
		creds.RedirectURI = v
	}
}
