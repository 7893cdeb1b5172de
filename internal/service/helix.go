package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	helixBaseURL  = "https://api.twitch.tv/helix"
	helixCacheTTL = 10 * time.Minute
)

// HelixUser is the subset of the Helix user payload the bot needs.
type HelixUser struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Helix resolves display names, current games, and follow dates through the
// Twitch Helix API using an app access token. Lookups are cached in Redis.
type Helix struct {
	clientID   string
	httpClient *http.Client
	cache      *Cache
	logger     *zap.Logger
}

type HelixConfig struct {
	ClientID     string
	ClientSecret string
}

func NewHelix(cfg HelixConfig, cache *Cache, logger *zap.Logger) *Helix {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     "https://id.twitch.tv/oauth2/token",
	}

	return &Helix{
		clientID:   cfg.ClientID,
		httpClient: creds.Client(context.Background()),
		cache:      cache,
		logger:     logger,
	}
}

// UserByName resolves a login name. ok=false means the user does not exist.
func (h *Helix) UserByName(ctx context.Context, login string) (HelixUser, bool, error) {
	if login == "" {
		return HelixUser{}, false, errors.NewAPIError("login empty", 400, nil)
	}

	cacheKey := "helix:user:" + login
	if h.cache != nil {
		var cached HelixUser
		if ok, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && ok {
			return cached, true, nil
		}
	}

	var body struct {
		Data []HelixUser `json:"data"`
	}
	if err := h.get(ctx, "/users", url.Values{"login": {login}}, &body); err != nil {
		return HelixUser{}, false, err
	}
	if len(body.Data) == 0 {
		return HelixUser{}, false, nil
	}

	user := body.Data[0]
	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, user, helixCacheTTL); err != nil {
			h.logger.Warn("failed to cache helix user", zap.String("login", login), zap.Error(err))
		}
	}
	return user, true, nil
}

// ChannelGame returns the game currently set on a channel.
func (h *Helix) ChannelGame(ctx context.Context, broadcasterID string) (string, error) {
	cacheKey := "helix:game:" + broadcasterID
	if h.cache != nil {
		var cached string
		if ok, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	var body struct {
		Data []struct {
			GameName string `json:"game_name"`
		} `json:"data"`
	}
	if err := h.get(ctx, "/channels", url.Values{"broadcaster_id": {broadcasterID}}, &body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", nil
	}

	game := body.Data[0].GameName
	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, game, time.Minute); err != nil {
			h.logger.Warn("failed to cache channel game", zap.Error(err))
		}
	}
	return game, nil
}

// FollowDate returns when fromID followed toID, ok=false if not following.
func (h *Helix) FollowDate(ctx context.Context, fromID, toID string) (time.Time, bool, error) {
	var body struct {
		Data []struct {
			FollowedAt time.Time `json:"followed_at"`
		} `json:"data"`
	}
	params := url.Values{"user_id": {fromID}, "broadcaster_id": {toID}}
	if err := h.get(ctx, "/channels/followers", params, &body); err != nil {
		return time.Time{}, false, err
	}
	if len(body.Data) == 0 {
		return time.Time{}, false, nil
	}
	return body.Data[0].FollowedAt, true, nil
}

// StreamLive reports whether the channel is currently broadcasting.
func (h *Helix) StreamLive(ctx context.Context, broadcasterID string) (bool, error) {
	var body struct {
		Data []struct {
			Type string `json:"type"`
		} `json:"data"`
	}
	if err := h.get(ctx, "/streams", url.Values{"user_id": {broadcasterID}}, &body); err != nil {
		return false, err
	}
	return len(body.Data) > 0, nil
}

func (h *Helix) get(ctx context.Context, path string, params url.Values, dest any) error {
	endpoint := helixBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{"url": endpoint}).WithCause(err)
	}
	req.Header.Set("Client-Id", h.clientID)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("helix request failed", 500, map[string]any{"url": endpoint}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewAPIError(fmt.Sprintf("helix returned %d", resp.StatusCode), resp.StatusCode, map[string]any{"url": endpoint})
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.NewAPIError("failed to decode helix response", 500, map[string]any{"url": endpoint}).WithCause(err)
	}
	return nil
}
