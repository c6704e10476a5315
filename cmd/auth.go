package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/tagsync/internal/server"
	"github.com/desertthunder/tagsync/internal/services"
	"github.com/desertthunder/tagsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.newSpotifyService(cmd.Bool("playlists"))
	if err != nil {
		return err
	}

	token, err := r.authorize(ctx, svc)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now run: tagsync sync DIR...\n")
	return nil
}

func (r *Runner) newSpotifyService(harvest bool) (*services.SpotifyService, error) {
	svc, err := services.NewSpotifyService(
		r.config.Credentials.Spotify.Map(),
		services.WithScopes(services.Scopes(harvest)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service (set client_id and client_secret in %s): %w", r.configPath, err)
	}
	return svc, nil
}

// authorize runs the authorization-code flow through the local callback server.
func (r *Runner) authorize(ctx context.Context, srv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	oauthConfig := srv.GetOAuthConfig()
	fallback := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	callback := server.NewCallbackServer(
		server.CallbackAddr(oauthConfig.RedirectURL, fallback),
		server.NewOAuthHandler(oauthConfig, state),
		r.logger,
	)
	if err := callback.Start(); err != nil {
		return nil, err
	}

	authURL := srv.GetAuthURL(state)
	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("If the browser does not open, visit:\n\n  %s\n\n", authURL)
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	token, err := callback.Wait(ctx, server.DefaultCallbackTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// connect returns the library to sync against, authorizing first when no token is stored.
// Refreshed tokens are written back to the config file.
func (r *Runner) connect(ctx context.Context, harvest bool) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	svc, err := r.newSpotifyService(harvest)
	if err != nil {
		return nil, err
	}

	if !r.config.Credentials.Spotify.HasToken() {
		r.writePlain("No Spotify token stored, starting authorization\n")
		token, err := r.authorize(ctx, svc)
		if err != nil {
			return nil, err
		}
		if err := r.saveTokens(token); err != nil {
			return nil, err
		}
	}

	svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveTokens(token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		}
	})

	if err := svc.OAuthenticate(ctx, r.config.Credentials.Spotify.Token()); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}
	return svc, nil
}

// authHint adds the remedy for token errors that a refresh cannot fix.
func authHint(err error) error {
	if errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w (run `tagsync auth` to authorize again)", err)
	}
	return err
}
