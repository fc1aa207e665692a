package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURLs(srv.URL, srv.URL, logger.NewNop())
}

func TestClient_GetAppDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appdetails", r.URL.Path)
		assert.Equal(t, "730", r.URL.Query().Get("appids"))
		fmt.Fprint(w, `{
			"730": {
				"success": true,
				"data": {
					"name": "Counter-Strike 2",
					"header_image": "https://cdn.example/730.jpg",
					"developers": ["Valve"],
					"publishers": ["Valve"],
					"genres": [{"description": "Action"}, {"description": "Free To Play"}],
					"release_date": {"date": "21 Aug, 2012"},
					"metacritic": {"score": 83},
					"recommendations": {"total": 4500000}
				}
			}
		}`)
	}))

	meta, err := client.GetAppDetails(context.Background(), 730)
	require.NoError(t, err)
	assert.Equal(t, 730, meta.AppID)
	assert.Equal(t, "Counter-Strike 2", meta.Name)
	assert.Equal(t, []string{"Valve"}, meta.Developers)
	assert.Equal(t, []string{"Action", "Free To Play"}, meta.Genres)
	assert.Equal(t, "21 Aug, 2012", meta.ReleaseDate)
	assert.Equal(t, 83, meta.ReviewScore)
	assert.Equal(t, 4500000, meta.TotalReviews)
}

func TestClient_GetAppDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"999999": {"success": false}}`)
	}))

	_, err := client.GetAppDetails(context.Background(), 999999)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestClient_GetAppDetails_UpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"730": {`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GetAppDetails(context.Background(), 730)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeUpstream, appErr.Type)
		})
	}
}

func TestClient_GetPlayerCount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/", r.URL.Path)
		assert.Equal(t, "730", r.URL.Query().Get("appid"))
		fmt.Fprint(w, `{"response": {"player_count": 1234567, "result": 1}}`)
	}))

	count, err := client.GetPlayerCount(context.Background(), 730)
	require.NoError(t, err)
	assert.Equal(t, 1234567, count)
}

func TestClient_GetPlayerCount_NoResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": {"result": 42}}`)
	}))

	_, err := client.GetPlayerCount(context.Background(), 999999)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeUpstream, appErr.Type)
}

func TestClient_SearchStore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/storesearch/", r.URL.Path)
		assert.Equal(t, "half life", r.URL.Query().Get("term"))
		fmt.Fprint(w, `{
			"total": 2,
			"items": [
				{"id": 70, "name": "Half-Life", "tiny_image": "https://cdn.example/70.jpg"},
				{"id": 220, "name": "Half-Life 2", "tiny_image": "https://cdn.example/220.jpg"}
			]
		}`)
	}))

	results, err := client.SearchStore(context.Background(), "half life")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 70, results[0].AppID)
	assert.Equal(t, "Half-Life", results[0].Name)
	assert.Equal(t, "https://cdn.example/70.jpg", results[0].ImageURL)
}

func TestClient_SearchStore_Empty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0, "items": []}`)
	}))

	results, err := client.SearchStore(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}
