package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yurfit/steam-scout/internal/cache"
	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// Cache keys for the Steam proxy.
const (
	cacheKeyTopGames = "top-games"
	cacheKeySearch   = "search:%s"
	cacheKeyGame     = "game:%d"
)

// CacheTTL is how long aggregated Steam data stays fresh.
const CacheTTL = 5 * time.Minute

// steamService implements SteamService on top of the upstream client and a
// process-local TTL cache.
type steamService struct {
	api    SteamAPI
	cache  *cache.Store
	appIDs []int
	logger *logger.Logger
}

// NewSteamService creates the aggregation service for the given tracked apps.
func NewSteamService(api SteamAPI, store *cache.Store, appIDs []int, logger *logger.Logger) SteamService {
	return &steamService{
		api:    api,
		cache:  store,
		appIDs: appIDs,
		logger: logger,
	}
}

// GetTopGames serves the leaderboard from cache when fresh; otherwise it fans
// out one metadata and one player-count fetch per tracked app, tolerates
// partial failures, sorts by player count, derives studio rollups, and caches
// the result.
func (s *steamService) GetTopGames(ctx context.Context) (*domain.TopGamesResult, error) {
	if v, ok := s.cache.Get(cacheKeyTopGames); ok {
		s.logger.Debug("Top games cache hit")
		return v.(*domain.TopGamesResult), nil
	}

	s.logger.WithField("app_count", len(s.appIDs)).Debug("Top games cache miss, fetching from Steam")

	games := s.fetchTrackedGames(ctx)
	if len(games) == 0 && len(s.appIDs) > 0 {
		return nil, errors.NewUpstreamError("Steam data is unavailable for every tracked game", nil)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].PlayerCount > games[j].PlayerCount
	})

	result := &domain.TopGamesResult{
		Games:   games,
		Studios: domain.BuildStudioRollups(games),
	}

	s.cache.Set(cacheKeyTopGames, result)

	s.logger.WithFields(map[string]interface{}{
		"games":   len(result.Games),
		"studios": len(result.Studios),
	}).Info("Top games refreshed from Steam")

	return result, nil
}

// fetchTrackedGames runs the unordered fan-out: every tracked app is fetched
// without waiting on the others, and the barrier gathers whatever settled.
// Metadata failure drops the record; player-count failure degrades to zero.
func (s *steamService) fetchTrackedGames(ctx context.Context) []domain.GameRecord {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		games = make([]domain.GameRecord, 0, len(s.appIDs))
	)

	for _, appID := range s.appIDs {
		wg.Add(1)
		go func(appID int) {
			defer wg.Done()

			record, err := s.fetchGame(ctx, appID)
			if err != nil {
				s.logger.WithError(err).WithField("app_id", appID).Warn("Dropping game from leaderboard")
				return
			}

			mu.Lock()
			games = append(games, *record)
			mu.Unlock()
		}(appID)
	}

	wg.Wait()
	return games
}

// fetchGame merges the two independent lookups for one app. The player-count
// fetch runs while the metadata fetch is in flight; its failure is lower
// severity and only zeroes the count.
func (s *steamService) fetchGame(ctx context.Context, appID int) (*domain.GameRecord, error) {
	type countResult struct {
		count int
		err   error
	}
	countCh := make(chan countResult, 1)

	go func() {
		count, err := s.api.GetPlayerCount(ctx, appID)
		countCh <- countResult{count: count, err: err}
	}()

	meta, err := s.api.GetAppDetails(ctx, appID)
	if err != nil {
		<-countCh
		return nil, err
	}

	cr := <-countCh
	if cr.err != nil {
		s.logger.WithError(cr.err).WithField("app_id", appID).Debug("Player count unavailable, defaulting to zero")
		cr.count = 0
	}

	return &domain.GameRecord{
		AppID:        meta.AppID,
		Name:         meta.Name,
		HeaderImage:  meta.HeaderImage,
		Developers:   meta.Developers,
		Publishers:   meta.Publishers,
		PlayerCount:  cr.count,
		ReviewScore:  meta.ReviewScore,
		TotalReviews: meta.TotalReviews,
		ReleaseDate:  meta.ReleaseDate,
		Genres:       meta.Genres,
	}, nil
}

// SearchGames proxies a store search, caching per distinct term. An empty hit
// list is a valid cached value.
func (s *steamService) SearchGames(ctx context.Context, term string) ([]domain.GameSearchResult, error) {
	key := fmt.Sprintf(cacheKeySearch, term)

	if v, ok := s.cache.Get(key); ok {
		s.logger.WithField("term", term).Debug("Search cache hit")
		return v.([]domain.GameSearchResult), nil
	}

	results, err := s.api.SearchStore(ctx, term)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, results)
	return results, nil
}

// GetGameDetails is the single-item variant of the leaderboard merge. A
// missing app surfaces as not_found, a transient upstream failure as upstream.
func (s *steamService) GetGameDetails(ctx context.Context, appID int) (*domain.GameRecord, error) {
	key := fmt.Sprintf(cacheKeyGame, appID)

	if v, ok := s.cache.Get(key); ok {
		return v.(*domain.GameRecord), nil
	}

	record, err := s.fetchGame(ctx, appID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, record)
	return record, nil
}
