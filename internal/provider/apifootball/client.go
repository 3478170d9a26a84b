// Package apifootball fetches fixtures, team form and goal-line odds from API-Football
// and turns them into fixture snapshots.
package apifootball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

const (
	// DefaultBaseURL is the API-Football v3 base URL
	DefaultBaseURL = "https://v3.football.api-sports.io"

	goalsOverUnderBet = "Goals Over/Under"
	overLowValue      = "Over 0.5"
	overHighValue     = "Over 1.5"
)

var (
	// ErrBudgetExhausted is returned once the per-run request budget is spent
	ErrBudgetExhausted = errors.New("request budget exhausted")
	// ErrRateLimited is returned when the API answers 429
	ErrRateLimited = errors.New("rate limited by provider")
)

// Cache stores raw provider responses
type Cache interface {
	GetRaw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RequestRecorder observes provider calls
type RequestRecorder interface {
	RecordProviderRequest(endpoint, source string)
}

// Config holds client configuration
type Config struct {
	BaseURL           string
	APIKey            string
	BookmakerID       int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRequestsPerRun int // 0 means unlimited
	LastGames         int // games used for team averages
	FixturesTTL       time.Duration
	TeamStatsTTL      time.Duration
	OddsTTL           time.Duration
}

// Client is an API-Football client with pacing, a request budget and a response cache
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	recorder   RequestRecorder
	logger     zerolog.Logger
	now        func() time.Time

	requests atomic.Int64
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithCache sets the response cache
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithRecorder sets the request recorder
func WithRecorder(recorder RequestRecorder) ClientOption {
	return func(c *Client) {
		c.recorder = recorder
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithClock sets the time source used for dates and seasons
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new API-Football client
func NewClient(cfg Config, logger zerolog.Logger, opts ...ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LastGames <= 0 {
		cfg.LastGames = 4
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "apifootball").Logger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResetBudget starts a new run with a full request budget
func (c *Client) ResetBudget() {
	c.requests.Store(0)
}

// RequestsUsed returns the network requests made since the last reset
func (c *Client) RequestsUsed() int {
	return int(c.requests.Load())
}

// Season returns the season a league is currently playing. Leagues that run
// August to May are named after their starting year and roll over in July.
func (c *Client) Season(league models.League) int {
	now := c.now()
	if league.SeasonRollsOverMidYear() && now.Month() < time.July {
		return now.Year() - 1
	}
	return now.Year()
}

// FixturesToday returns the league's fixtures of the current local day that have not started
func (c *Client) FixturesToday(ctx context.Context, league models.League) ([]Fixture, error) {
	loc, err := time.LoadLocation(league.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", league.Timezone, err)
	}
	today := c.now().In(loc).Format("2006-01-02")

	params := url.Values{}
	params.Set("league", strconv.Itoa(league.APIID))
	params.Set("season", strconv.Itoa(c.Season(league)))
	params.Set("date", today)
	params.Set("timezone", league.Timezone)

	var fixtures []Fixture
	key := fmt.Sprintf("fixtures:%d:%s", league.APIID, today)
	if err := c.get(ctx, "/fixtures", params, key, c.cfg.FixturesTTL, &fixtures); err != nil {
		return nil, err
	}

	upcoming := fixtures[:0]
	for _, f := range fixtures {
		if f.IsUpcoming() {
			upcoming = append(upcoming, f)
		}
	}
	return upcoming, nil
}

// TeamHistory returns the team's last finished fixtures, most recent first
func (c *Client) TeamHistory(ctx context.Context, teamID, last int) ([]Fixture, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("last", strconv.Itoa(last))
	params.Set("status", "FT")

	var fixtures []Fixture
	key := fmt.Sprintf("team:%d:%d", teamID, last)
	if err := c.get(ctx, "/fixtures", params, key, c.cfg.TeamStatsTTL, &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// HeadToHead returns the last direct meetings between two teams
func (c *Client) HeadToHead(ctx context.Context, homeID, awayID, last int) ([]Fixture, error) {
	params := url.Values{}
	params.Set("h2h", fmt.Sprintf("%d-%d", homeID, awayID))
	params.Set("last", strconv.Itoa(last))

	var fixtures []Fixture
	key := fmt.Sprintf("h2h:%d-%d:%d", homeID, awayID, last)
	if err := c.get(ctx, "/fixtures/headtohead", params, key, c.cfg.TeamStatsTTL, &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// OverOdds returns the configured bookmaker's Over 0.5 and Over 1.5 prices.
// Markets that are not offered are left at zero.
func (c *Client) OverOdds(ctx context.Context, fixtureID int) (models.MarketOdds, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))
	if c.cfg.BookmakerID > 0 {
		params.Set("bookmaker", strconv.Itoa(c.cfg.BookmakerID))
	}

	var entries []OddsEntry
	key := fmt.Sprintf("odds:%d:%d", fixtureID, c.cfg.BookmakerID)
	if err := c.get(ctx, "/odds", params, key, c.cfg.OddsTTL, &entries); err != nil {
		return models.MarketOdds{}, err
	}
	return ExtractOverOdds(entries), nil
}

// ExtractOverOdds reads the Over 0.5 and Over 1.5 prices from the Goals Over/Under bet.
// Unparseable prices and prices of 1.00 or less are ignored.
func ExtractOverOdds(entries []OddsEntry) models.MarketOdds {
	var odds models.MarketOdds
	for _, entry := range entries {
		for _, bm := range entry.Bookmakers {
			for _, bet := range bm.Bets {
				if bet.Name != goalsOverUnderBet {
					continue
				}
				for _, v := range bet.Values {
					price, err := decimal.NewFromString(strings.TrimSpace(v.Odd))
					if err != nil || !price.GreaterThan(decimal.NewFromInt(1)) {
						continue
					}
					switch v.Value {
					case overLowValue:
						odds.OverLow = price.InexactFloat64()
					case overHighValue:
						odds.OverHigh = price.InexactFloat64()
					}
				}
			}
		}
	}
	return odds
}

// get performs a cached, budgeted and rate limited GET and decodes the response field into out
func (c *Client) get(ctx context.Context, path string, params url.Values, cacheKey string, ttl time.Duration, out interface{}) error {
	if c.cache != nil && ttl > 0 {
		data, err := c.cache.GetRaw(ctx, cacheKey)
		if err == nil {
			if err := json.Unmarshal(data, out); err == nil {
				c.record(path, "cache")
				return nil
			}
			c.logger.Warn().Str("key", cacheKey).Msg("discarding undecodable cached response")
		}
	}

	if budget := c.cfg.MaxRequestsPerRun; budget > 0 && c.requests.Load() >= int64(budget) {
		return fmt.Errorf("%s: %w (%d requests)", path, ErrBudgetExhausted, budget)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.cfg.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apisports-key", c.cfg.APIKey)

	c.requests.Add(1)
	c.record(path, "network")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", path, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if msg := env.apiErrors(); msg != "" {
		return fmt.Errorf("api error: %s", msg)
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		env.Response = json.RawMessage("[]")
	}

	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil && ttl > 0 {
		if err := c.cache.SetRaw(ctx, cacheKey, env.Response, ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
		}
	}

	c.logger.Debug().
		Str("path", path).
		Int("results", env.Results).
		Int("requests_used", c.RequestsUsed()).
		Msg("provider request completed")

	return nil
}

func (c *Client) record(path, source string) {
	if c.recorder != nil {
		c.recorder.RecordProviderRequest(path, source)
	}
}
