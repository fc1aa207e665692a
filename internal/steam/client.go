package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

const (
	defaultStoreBaseURL = "https://store.steampowered.com"
	defaultAPIBaseURL   = "https://api.steampowered.com"

	// Every upstream call gets its own deadline so one stalled fetch degrades
	// into the normal failure path instead of hanging the request.
	requestTimeout = 8 * time.Second
)

// AppMetadata is the static store-side view of a game.
type AppMetadata struct {
	AppID        int
	Name         string
	HeaderImage  string
	Developers   []string
	Publishers   []string
	Genres       []string
	ReleaseDate  string
	ReviewScore  int
	TotalReviews int
}

// Client talks to the public Steam Store and Web APIs.
type Client struct {
	storeBaseURL string
	apiBaseURL   string
	httpClient   *http.Client
	logger       *logger.Logger
}

// NewClient creates a client against the public Steam endpoints.
func NewClient(logger *logger.Logger) *Client {
	return &Client{
		storeBaseURL: defaultStoreBaseURL,
		apiBaseURL:   defaultAPIBaseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		logger:       logger,
	}
}

// NewClientWithBaseURLs creates a client against custom endpoints. Used in
// tests with httptest servers.
func NewClientWithBaseURLs(storeBaseURL, apiBaseURL string, logger *logger.Logger) *Client {
	c := NewClient(logger)
	c.storeBaseURL = storeBaseURL
	c.apiBaseURL = apiBaseURL
	return c
}

// appDetailsEnvelope is the appdetails response: a map keyed by the requested
// app id string.
type appDetailsEnvelope map[string]struct {
	Success bool           `json:"success"`
	Data    appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name        string   `json:"name"`
	HeaderImage string   `json:"header_image"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Genres      []struct {
		Description string `json:"description"`
	} `json:"genres"`
	ReleaseDate struct {
		Date string `json:"date"`
	} `json:"release_date"`
	Metacritic struct {
		Score int `json:"score"`
	} `json:"metacritic"`
	Recommendations struct {
		Total int `json:"total"`
	} `json:"recommendations"`
}

// GetAppDetails fetches store metadata for one app. A definitive "no such
// app" answer comes back as a not_found error; transport and decode problems
// come back as upstream errors.
func (c *Client) GetAppDetails(ctx context.Context, appID int) (*AppMetadata, error) {
	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%d&l=english", c.storeBaseURL, appID)

	var envelope appDetailsEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}

	result, ok := envelope[strconv.Itoa(appID)]
	if !ok || !result.Success {
		c.logger.WithField("app_id", appID).Debug("Steam reports app not found")
		return nil, errors.NewNotFoundError(fmt.Sprintf("Steam app %d not found", appID))
	}

	genres := make([]string, 0, len(result.Data.Genres))
	for _, g := range result.Data.Genres {
		genres = append(genres, g.Description)
	}

	return &AppMetadata{
		AppID:        appID,
		Name:         result.Data.Name,
		HeaderImage:  result.Data.HeaderImage,
		Developers:   result.Data.Developers,
		Publishers:   result.Data.Publishers,
		Genres:       genres,
		ReleaseDate:  result.Data.ReleaseDate.Date,
		ReviewScore:  result.Data.Metacritic.Score,
		TotalReviews: result.Data.Recommendations.Total,
	}, nil
}

type playerCountEnvelope struct {
	Response struct {
		PlayerCount int `json:"player_count"`
		Result      int `json:"result"`
	} `json:"response"`
}

// GetPlayerCount fetches the live concurrent-player count for one app.
func (c *Client) GetPlayerCount(ctx context.Context, appID int) (int, error) {
	endpoint := fmt.Sprintf(
		"%s/ISteamUserStats/GetNumberOfCurrentPlayers/v1/?appid=%d",
		c.apiBaseURL, appID,
	)

	var envelope playerCountEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return 0, err
	}

	// result 1 is success; anything else means Steam has no count for this id.
	if envelope.Response.Result != 1 {
		return 0, errors.NewUpstreamError(
			fmt.Sprintf("Steam returned no player count for app %d", appID), nil)
	}
	if envelope.Response.PlayerCount < 0 {
		return 0, errors.NewUpstreamError(
			fmt.Sprintf("Steam returned a negative player count for app %d", appID), nil)
	}

	return envelope.Response.PlayerCount, nil
}

type storeSearchEnvelope struct {
	Total int `json:"total"`
	Items []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		TinyImage string `json:"tiny_image"`
	} `json:"items"`
}

// SearchStore runs a free-text search against the store. Zero matches is a
// valid empty result, not an error.
func (c *Client) SearchStore(ctx context.Context, term string) ([]domain.GameSearchResult, error) {
	endpoint := fmt.Sprintf(
		"%s/api/storesearch/?term=%s&l=english&cc=US",
		c.storeBaseURL, url.QueryEscape(term),
	)

	var envelope storeSearchEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}

	results := make([]domain.GameSearchResult, 0, len(envelope.Items))
	for _, item := range envelope.Items {
		results = append(results, domain.GameSearchResult{
			AppID:    item.ID,
			Name:     item.Name,
			ImageURL: item.TinyImage,
		})
	}

	return results, nil
}

// getJSON performs a GET with the per-request deadline and decodes the body.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternalError("Failed to build Steam request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Steam request failed")
		return errors.NewUpstreamError("Steam is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status_code", resp.StatusCode).Warn("Steam returned non-OK status")
		return errors.NewUpstreamError(
			fmt.Sprintf("Steam returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.WithError(err).Warn("Failed to decode Steam response")
		return errors.NewUpstreamError("Steam returned a malformed response", err)
	}

	return nil
}
