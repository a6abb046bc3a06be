package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const balldontlieSourceName = "balldontlie"

// season_averages accepts at most 25 player ids per request
const seasonAveragesBatchSize = 25

// BalldontlieClient implements SeasonSource for the balldontlie NBA stats API
type BalldontlieClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// balldontliePlayer represents a player from the /players endpoint
type balldontliePlayer struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// balldontlieSeasonAverage represents one row from /season_averages
type balldontlieSeasonAverage struct {
	PlayerID    int     `json:"player_id"`
	GamesPlayed int     `json:"games_played"`
	FG3A        float64 `json:"fg3a"`
	FG3M        float64 `json:"fg3m"`
	FG3Pct      float64 `json:"fg3_pct"`
}

type balldontliePlayersPage struct {
	Data []balldontliePlayer `json:"data"`
	Meta struct {
		NextCursor *int `json:"next_cursor"`
	} `json:"meta"`
}

type balldontlieAveragesPage struct {
	Data []balldontlieSeasonAverage `json:"data"`
}

// NewBalldontlieClient creates a new balldontlie API client
func NewBalldontlieClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *BalldontlieClient {
	if baseURL == "" {
		baseURL = "https://api.balldontlie.io/v1"
	}
	return &BalldontlieClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *BalldontlieClient) Name() string {
	return balldontlieSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *BalldontlieClient) IsEnabled() bool {
	return c.enabled
}

// FetchSeasonTotals retrieves three-point totals for every player in a season.
// The API reports per-game averages, so totals are reconstructed from
// games_played; that rounding is the provider's precision limit, not ours.
func (c *BalldontlieClient) FetchSeasonTotals(ctx context.Context, season string) ([]PlayerSeasonData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(balldontlieSourceName, ErrCodeUnknown, dataSourceDisabledMsg, nil)
	}

	players, err := c.fetchAllPlayers(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(players))
	ids := make([]int, 0, len(players))
	for _, p := range players {
		names[p.ID] = p.FirstName + " " + p.LastName
		ids = append(ids, p.ID)
	}

	var rows []PlayerSeasonData
	for start := 0; start < len(ids); start += seasonAveragesBatchSize {
		end := start + seasonAveragesBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		averages, err := c.fetchSeasonAverages(ctx, season, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, avg := range averages {
			rows = append(rows, convertSeasonAverage(avg, names[avg.PlayerID], season))
		}
	}

	c.logger.WithFields(logrus.Fields{
		"season":  season,
		"players": len(rows),
	}).Debug("Fetched season totals from balldontlie")

	return rows, nil
}

// fetchAllPlayers pages through the /players endpoint
func (c *BalldontlieClient) fetchAllPlayers(ctx context.Context) ([]balldontliePlayer, error) {
	var players []balldontliePlayer
	cursor := 0

	for {
		endpoint := fmt.Sprintf("%s/players?per_page=100", c.baseURL)
		if cursor > 0 {
			endpoint += "&cursor=" + strconv.Itoa(cursor)
		}

		var page balldontliePlayersPage
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		players = append(players, page.Data...)

		if page.Meta.NextCursor == nil {
			return players, nil
		}
		cursor = *page.Meta.NextCursor
	}
}

// fetchSeasonAverages retrieves one batch of per-player season averages
func (c *BalldontlieClient) fetchSeasonAverages(ctx context.Context, season string, playerIDs []int) ([]balldontlieSeasonAverage, error) {
	params := url.Values{}
	params.Set("season", season)
	for _, id := range playerIDs {
		params.Add("player_ids[]", strconv.Itoa(id))
	}

	var page balldontlieAveragesPage
	endpoint := fmt.Sprintf("%s/season_averages?%s", c.baseURL, params.Encode())
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// getJSON executes an authenticated GET and decodes the JSON response
func (c *BalldontlieClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewDataSourceError(balldontlieSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(balldontlieSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return NewDataSourceError(balldontlieSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case http.StatusTooManyRequests:
		return NewDataSourceError(balldontlieSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	default:
		body, _ := io.ReadAll(resp.Body)
		return NewDataSourceError(balldontlieSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), ErrServerError)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(balldontlieSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// convertSeasonAverage reconstructs season totals from per-game averages
func convertSeasonAverage(avg balldontlieSeasonAverage, name, season string) PlayerSeasonData {
	attempts := int(math.Round(avg.FG3A * float64(avg.GamesPlayed)))
	made := int(math.Round(avg.FG3M * float64(avg.GamesPlayed)))
	pct := decimal.NewFromFloat(avg.FG3Pct)

	return PlayerSeasonData{
		SourceID: strconv.Itoa(avg.PlayerID),
		Player:   name,
		Season:   season,
		Attempts: attempts,
		Made:     made,
		Pct:      &pct,
	}
}
