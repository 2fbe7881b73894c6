package videosvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelnotes/reelnotes/auth"
	"github.com/reelnotes/reelnotes/constant"
	"github.com/reelnotes/reelnotes/internal/cache"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/log"
	"github.com/reelnotes/reelnotes/network"
	"github.com/reelnotes/reelnotes/util"
	"github.com/spf13/viper"
)

// HTTP is the Service implementation over the video-notes REST API.
type HTTP struct {
	baseURL string
	client  *http.Client
	token   func() (string, error)

	// offlineFeed enables a disk-cached copy of the feed as a fallback when
	// the service is unreachable.
	offlineFeed bool
}

// New returns a Service wired to the configured backend, authenticating with
// the keyring-stored token and sharing the application HTTP client.
func New() *HTTP {
	return &HTTP{
		baseURL:     strings.TrimRight(viper.GetString(key.ServiceBaseURL), "/"),
		client:      network.Client,
		token:       auth.GetToken,
		offlineFeed: true,
	}
}

// Feed retrieves the current feed of notes.
func (h *HTTP) Feed(ctx context.Context) ([]Note, error) {
	var payload struct {
		Notes []Note `json:"notes"`
	}

	cacheKey := cache.GenerateKey("feed", h.baseURL)

	if err := h.getJSON(ctx, "/v1/feed", &payload); err != nil {
		if h.offlineFeed && cache.Read(cacheKey, &payload.Notes) {
			log.Warnf("feed fetch failed, serving cached copy: %v", err)
			return hydrate(payload.Notes), nil
		}
		return nil, fmt.Errorf("feed: %w", err)
	}

	if h.offlineFeed {
		if err := cache.Write(cacheKey, payload.Notes); err != nil {
			log.Warn(err)
		}
	}

	return hydrate(payload.Notes), nil
}

func hydrate(notes []Note) []Note {
	for i := range notes {
		notes[i].Duration = time.Duration(notes[i].DurationSec * float64(time.Second))
	}
	return notes
}

// GetPlaybackURL resolves a signed playback URL for the given video.
func (h *HTTP) GetPlaybackURL(ctx context.Context, ref VideoRef) (PlaybackURL, error) {
	return h.playbackURL(ctx, ref, false)
}

// RefreshPlaybackURL forces the service to sign a fresh URL.
func (h *HTTP) RefreshPlaybackURL(ctx context.Context, ref VideoRef) (PlaybackURL, error) {
	return h.playbackURL(ctx, ref, true)
}

func (h *HTTP) playbackURL(ctx context.Context, ref VideoRef, refresh bool) (PlaybackURL, error) {
	if ref.ID == "" {
		return PlaybackURL{}, fmt.Errorf("playback url: empty video id")
	}

	endpoint := fmt.Sprintf("/v1/videos/%s/playback", url.PathEscape(ref.ID))
	if refresh {
		endpoint += "?refresh=1"
	}

	var payload struct {
		URL       string            `json:"url"`
		ExpiresAt time.Time         `json:"expires_at"`
		Headers   map[string]string `json:"headers"`
	}

	if err := h.getJSON(ctx, endpoint, &payload); err != nil {
		return PlaybackURL{}, fmt.Errorf("playback url: %w", err)
	}

	if payload.URL == "" {
		return PlaybackURL{}, fmt.Errorf("playback url: service returned no url")
	}

	return PlaybackURL{
		URL:       payload.URL,
		ExpiresAt: payload.ExpiresAt,
		Headers:   payload.Headers,
	}, nil
}

// getJSON performs an authenticated GET against the service and decodes the body.
func (h *HTTP) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	timeout := time.Duration(viper.GetInt(key.ServiceTimeout)) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)

	if token, err := h.token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("unauthorized, run `%s auth` to set a token", constant.Reelnotes)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
