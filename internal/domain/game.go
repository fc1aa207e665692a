package domain

// GameRecord is the merged view of a tracked Steam game: store metadata joined
// with the live player count.
type GameRecord struct {
	AppID        int      `json:"app_id"`
	Name         string   `json:"name"`
	HeaderImage  string   `json:"header_image"`
	Developers   []string `json:"developers"`
	Publishers   []string `json:"publishers"`
	PlayerCount  int      `json:"player_count"`
	ReviewScore  int      `json:"review_score,omitempty"`
	TotalReviews int      `json:"total_reviews,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	Genres       []string `json:"genres,omitempty"`
}

// StudioRollup aggregates games by developer name.
type StudioRollup struct {
	Name         string `json:"name"`
	GamesCount   int    `json:"games_count"`
	TotalPlayers int    `json:"total_players"`
	TopGame      string `json:"top_game"`
}

// TopGamesResult is the leaderboard payload: games sorted by player count
// descending, plus the derived studio rollups.
type TopGamesResult struct {
	Games   []GameRecord   `json:"games"`
	Studios []StudioRollup `json:"studios"`
}

// GameSearchResult is a single hit from the Steam store search.
type GameSearchResult struct {
	AppID    int    `json:"app_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// BuildStudioRollups groups the given games by developer name. A game with
// multiple developers contributes to each one. TopGame is the game with the
// highest player count in the group; the first encountered wins ties.
func BuildStudioRollups(games []GameRecord) []StudioRollup {
	index := make(map[string]int)
	rollups := make([]StudioRollup, 0)
	topPlayers := make(map[string]int)

	for _, game := range games {
		for _, dev := range game.Developers {
			if dev == "" {
				continue
			}
			i, ok := index[dev]
			if !ok {
				index[dev] = len(rollups)
				rollups = append(rollups, StudioRollup{Name: dev, TopGame: game.Name})
				topPlayers[dev] = game.PlayerCount
				i = index[dev]
			}
			rollups[i].GamesCount++
			rollups[i].TotalPlayers += game.PlayerCount
			if game.PlayerCount > topPlayers[dev] {
				topPlayers[dev] = game.PlayerCount
				rollups[i].TopGame = game.Name
			}
		}
	}

	return rollups
}
