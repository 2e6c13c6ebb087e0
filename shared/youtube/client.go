// Package youtube searches the YouTube Data API for official trailers.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cinemai/shared/config"
	"cinemai/shared/logging"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNoTrailer is returned when a search yields no embeddable video.
var ErrNoTrailer = errors.New("no trailer found")

var scopes = []string{"https://www.googleapis.com/auth/youtube.readonly"}

type Client struct {
	service *youtube.Service
}

// NewClient prefers an API key; otherwise it authenticates with the OAuth
// token file, running the device flow when no usable token exists.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	var opt option.ClientOption

	switch {
	case cfg.APIKey != "":
		opt = option.WithAPIKey(cfg.APIKey)
	case cfg.ClientID != "" && cfg.ClientSecret != "":
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		}
		token, err := getToken(ctx, oauthConfig, cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get OAuth token: %w", err)
		}
		ts := &tokenSaver{config: oauthConfig, token: token, tokenFile: cfg.TokenFile}
		opt = option.WithHTTPClient(oauth2.NewClient(ctx, ts))
	default:
		return nil, fmt.Errorf("YouTube API key or OAuth client credentials are required")
	}

	service, err := youtube.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// SearchTrailer returns the video id of the best "<title> official trailer" match.
func (c *Client) SearchTrailer(ctx context.Context, title string) (string, error) {
	resp, err := c.service.Search.List([]string{"id"}).
		Q(title + " official trailer").
		Type("video").
		VideoEmbeddable("true").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("trailer search for %q: %w", title, err)
	}
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			return item.Id.VideoId, nil
		}
	}
	return "", ErrNoTrailer
}

// tokenSaver persists refreshed tokens so they survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}
	if newToken.AccessToken != ts.token.AccessToken {
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			logging.Warn().Err(err).Msg("failed to save refreshed YouTube token")
		}
	}
	return newToken, nil
}

// getToken loads the token file, keeping expired tokens that can refresh.
func getToken(ctx context.Context, cfg *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	if tok, err := tokenFromFile(tokenFile); err == nil {
		if tok.RefreshToken != "" || tok.Valid() {
			return tok, nil
		}
	}

	tok, err := deviceFlow(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokenFile, tok); err != nil {
		logging.Warn().Err(err).Msg("failed to save YouTube token")
	}
	return tok, nil
}

func deviceFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	resp, err := cfg.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Printf("YOUTUBE DEVICE AUTHORIZATION REQUIRED\n")
	fmt.Printf("1. Visit %s in your browser.\n", resp.VerificationURI)
	fmt.Printf("2. Enter this code when prompted: %s\n", resp.UserCode)
	fmt.Printf("%s\n", strings.Repeat("-", 80))

	tok, err := cfg.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	return nil
}
