package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// Config holds all configuration for goals-ev-service
type Config struct {
	Server    ServerConfig            `mapstructure:"server"`
	Kafka     KafkaConfig             `mapstructure:"kafka"`
	Redis     RedisConfig             `mapstructure:"redis"`
	Engine    EngineConfig            `mapstructure:"engine"`
	Leagues   map[string]LeagueConfig `mapstructure:"leagues"`
	Provider  ProviderConfig          `mapstructure:"provider"`
	Telegram  TelegramConfig          `mapstructure:"telegram"`
	Scheduler SchedulerConfig         `mapstructure:"scheduler"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`          // fixture snapshots to consume
	ProducerTopic string   `mapstructure:"producer_topic"` // evaluations to publish
	GroupID       string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

// EngineConfig holds the decision engine parameters
type EngineConfig struct {
	Bankroll     float64            `mapstructure:"bankroll"`
	Weights      WeightsConfig      `mapstructure:"weights"`
	Thresholds   ThresholdsConfig   `mapstructure:"thresholds"`
	Model        ModelConfig        `mapstructure:"model"`
	TeamDefaults TeamDefaultsConfig `mapstructure:"team_defaults"`
}

// WeightsConfig holds the indicator weights; they must sum to 1
type WeightsConfig struct {
	Poisson           float64 `mapstructure:"poisson"`
	HistoricalRate    float64 `mapstructure:"historical_rate"`
	RecentTrend       float64 `mapstructure:"recent_trend"`
	HeadToHead        float64 `mapstructure:"h2h"`
	OffensiveStrength float64 `mapstructure:"offensive_strength"`
	OffensiveTrend    float64 `mapstructure:"offensive_trend"`
	SeasonPhase       float64 `mapstructure:"season_phase"`
	Motivation        float64 `mapstructure:"motivation"`
	MatchImportance   float64 `mapstructure:"match_importance"`
}

// ThresholdsConfig holds value detection and staking limits
type ThresholdsConfig struct {
	MinEVPercent     float64 `mapstructure:"min_ev_percent"`
	MinProbOverLow   float64 `mapstructure:"min_prob_over_low"`
	MinProbOverHigh  float64 `mapstructure:"min_prob_over_high"`
	MinOdds          float64 `mapstructure:"min_odds"`
	MaxOdds          float64 `mapstructure:"max_odds"`
	KellyFraction    float64 `mapstructure:"kelly_fraction"`
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction"`
	HTBoostLow       float64 `mapstructure:"ht_boost_low"`
	HTBoostHigh      float64 `mapstructure:"ht_boost_high"`
	HTCeilingLow     float64 `mapstructure:"ht_ceiling_low"`
	HTCeilingHigh    float64 `mapstructure:"ht_ceiling_high"`
}

// ModelConfig holds the tunable priors and cut points of the probability model.
// Indicator bands not listed here keep their built-in values.
type ModelConfig struct {
	H2HPriorLow       float64 `mapstructure:"h2h_prior_low"`
	H2HPriorHigh      float64 `mapstructure:"h2h_prior_high"`
	MinH2HGames       int     `mapstructure:"min_h2h_games"`
	EarlySeasonBefore float64 `mapstructure:"early_season_before"`
	MidSeasonBefore   float64 `mapstructure:"mid_season_before"`
	TopTableMax       float64 `mapstructure:"top_table_max"`
	BottomTableMin    float64 `mapstructure:"bottom_table_min"`
	CloseRankGap      int     `mapstructure:"close_rank_gap"`
	MinConfidence     float64 `mapstructure:"min_confidence"`
	DispersionScale   float64 `mapstructure:"dispersion_scale"`
}

// TeamDefaultsConfig holds the values used for statistics a provider omits
type TeamDefaultsConfig struct {
	OverLowRate     float64 `mapstructure:"over_low_rate"`
	OverHighRate    float64 `mapstructure:"over_high_rate"`
	OffensiveRating float64 `mapstructure:"offensive_rating"`
	TablePosition   int     `mapstructure:"table_position"`
	GamesPlayedAvg  float64 `mapstructure:"games_played_avg"`
}

// LeagueConfig holds one league entry
type LeagueConfig struct {
	APIID             int     `mapstructure:"api_id"`
	Name              string  `mapstructure:"name"`
	Timezone          string  `mapstructure:"timezone"`
	MinTeamAvgGoals   float64 `mapstructure:"min_team_avg_goals"`
	MinTeamAvgGoalsHT float64 `mapstructure:"min_team_avg_goals_ht"`
	MinSampleGames    int     `mapstructure:"min_sample_games"`
	MinHTSampleGames  int     `mapstructure:"min_ht_sample_games"`
}

// ProviderConfig holds the football statistics API configuration
type ProviderConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	BookmakerID       int           `mapstructure:"bookmaker_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRequestsPerRun int           `mapstructure:"max_requests_per_run"`
	LastGames         int           `mapstructure:"last_games"`
	FixturesTTL       time.Duration `mapstructure:"fixtures_ttl"`
	TeamStatsTTL      time.Duration `mapstructure:"team_stats_ttl"`
	OddsTTL           time.Duration `mapstructure:"odds_ttl"`
}

// TelegramConfig holds chat notification configuration
type TelegramConfig struct {
	Enabled      bool             `mapstructure:"enabled"`
	BotToken     string           `mapstructure:"bot_token"`
	ChatID       int64            `mapstructure:"chat_id"`
	AdminChatID  int64            `mapstructure:"admin_chat_id"`
	ChatMap      map[string]int64 `mapstructure:"chat_map"` // lower-cased league code -> chat
	SendNegative bool             `mapstructure:"send_negative"`
	SendInterval time.Duration    `mapstructure:"send_interval"`
	APIEndpoint  string           `mapstructure:"api_endpoint"`
}

// SchedulerConfig holds analysis cycle scheduling
type SchedulerConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables the scheduler
	DryRun   bool          `mapstructure:"dry_run"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "fixture_snapshots")
	v.SetDefault("kafka.producer_topic", "goal_opportunities")
	v.SetDefault("kafka.group_id", "goals-ev")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.dedup_ttl", 48*time.Hour)

	setEngineDefaults(v)

	v.SetDefault("provider.base_url", "https://v3.football.api-sports.io")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.bookmaker_id", 8)
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.requests_per_second", 1.4)
	v.SetDefault("provider.burst", 1)
	v.SetDefault("provider.max_requests_per_run", 200)
	v.SetDefault("provider.last_games", 4)
	v.SetDefault("provider.fixtures_ttl", 5*time.Minute)
	v.SetDefault("provider.team_stats_ttl", 2*time.Hour)
	v.SetDefault("provider.odds_ttl", 5*time.Minute)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.send_negative", false)
	v.SetDefault("telegram.send_interval", time.Second)

	v.SetDefault("scheduler.interval", 0)
	v.SetDefault("scheduler.dry_run", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("GOALS_EV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Leagues) == 0 {
		config.Leagues = DefaultLeagues()
	}

	return &config, nil
}

func setEngineDefaults(v *viper.Viper) {
	p := models.DefaultEngineParams()
	w, t, m := p.Weights, p.Thresholds, p.Model
	d := models.DefaultTeamDefaults()

	v.SetDefault("engine.bankroll", p.Bankroll.InexactFloat64())

	v.SetDefault("engine.weights.poisson", w.Poisson)
	v.SetDefault("engine.weights.historical_rate", w.HistoricalRate)
	v.SetDefault("engine.weights.recent_trend", w.RecentTrend)
	v.SetDefault("engine.weights.h2h", w.HeadToHead)
	v.SetDefault("engine.weights.offensive_strength", w.OffensiveStrength)
	v.SetDefault("engine.weights.offensive_trend", w.OffensiveTrend)
	v.SetDefault("engine.weights.season_phase", w.SeasonPhase)
	v.SetDefault("engine.weights.motivation", w.Motivation)
	v.SetDefault("engine.weights.match_importance", w.MatchImportance)

	v.SetDefault("engine.thresholds.min_ev_percent", t.MinEVPercent)
	v.SetDefault("engine.thresholds.min_prob_over_low", t.MinProbOverLow)
	v.SetDefault("engine.thresholds.min_prob_over_high", t.MinProbOverHigh)
	v.SetDefault("engine.thresholds.min_odds", t.MinOdds)
	v.SetDefault("engine.thresholds.max_odds", t.MaxOdds)
	v.SetDefault("engine.thresholds.kelly_fraction", t.KellyFraction)
	v.SetDefault("engine.thresholds.max_stake_fraction", t.MaxStakeFraction)
	v.SetDefault("engine.thresholds.ht_boost_low", t.HTBoostLow)
	v.SetDefault("engine.thresholds.ht_boost_high", t.HTBoostHigh)
	v.SetDefault("engine.thresholds.ht_ceiling_low", t.HTCeilingLow)
	v.SetDefault("engine.thresholds.ht_ceiling_high", t.HTCeilingHigh)

	v.SetDefault("engine.model.h2h_prior_low", m.HeadToHeadPrior.Low)
	v.SetDefault("engine.model.h2h_prior_high", m.HeadToHeadPrior.High)
	v.SetDefault("engine.model.min_h2h_games", m.MinHeadToHeadGames)
	v.SetDefault("engine.model.early_season_before", m.EarlySeasonBefore)
	v.SetDefault("engine.model.mid_season_before", m.MidSeasonBefore)
	v.SetDefault("engine.model.top_table_max", m.TopTableMax)
	v.SetDefault("engine.model.bottom_table_min", m.BottomTableMin)
	v.SetDefault("engine.model.close_rank_gap", m.CloseRankGap)
	v.SetDefault("engine.model.min_confidence", m.MinConfidence)
	v.SetDefault("engine.model.dispersion_scale", m.DispersionScale)

	v.SetDefault("engine.team_defaults.over_low_rate", d.OverLowRate)
	v.SetDefault("engine.team_defaults.over_high_rate", d.OverHighRate)
	v.SetDefault("engine.team_defaults.offensive_rating", d.OffensiveRating)
	v.SetDefault("engine.team_defaults.table_position", d.TablePosition)
	v.SetDefault("engine.team_defaults.games_played_avg", d.GamesPlayedAvg)
}

// ToEngineParams converts config to engine parameters
func (c *EngineConfig) ToEngineParams() models.EngineParams {
	model := models.DefaultModelParams()
	model.HeadToHeadPrior = models.ProbabilityPair{Low: c.Model.H2HPriorLow, High: c.Model.H2HPriorHigh}
	model.MinHeadToHeadGames = c.Model.MinH2HGames
	model.EarlySeasonBefore = c.Model.EarlySeasonBefore
	model.MidSeasonBefore = c.Model.MidSeasonBefore
	model.TopTableMax = c.Model.TopTableMax
	model.BottomTableMin = c.Model.BottomTableMin
	model.CloseRankGap = c.Model.CloseRankGap
	model.MinConfidence = c.Model.MinConfidence
	model.DispersionScale = c.Model.DispersionScale

	return models.EngineParams{
		Weights: models.IndicatorWeights{
			Poisson:           c.Weights.Poisson,
			HistoricalRate:    c.Weights.HistoricalRate,
			RecentTrend:       c.Weights.RecentTrend,
			HeadToHead:        c.Weights.HeadToHead,
			OffensiveStrength: c.Weights.OffensiveStrength,
			OffensiveTrend:    c.Weights.OffensiveTrend,
			SeasonPhase:       c.Weights.SeasonPhase,
			Motivation:        c.Weights.Motivation,
			MatchImportance:   c.Weights.MatchImportance,
		},
		Thresholds: models.Thresholds{
			MinEVPercent:     c.Thresholds.MinEVPercent,
			MinProbOverLow:   c.Thresholds.MinProbOverLow,
			MinProbOverHigh:  c.Thresholds.MinProbOverHigh,
			MinOdds:          c.Thresholds.MinOdds,
			MaxOdds:          c.Thresholds.MaxOdds,
			KellyFraction:    c.Thresholds.KellyFraction,
			MaxStakeFraction: c.Thresholds.MaxStakeFraction,
			HTBoostLow:       c.Thresholds.HTBoostLow,
			HTBoostHigh:      c.Thresholds.HTBoostHigh,
			HTCeilingLow:     c.Thresholds.HTCeilingLow,
			HTCeilingHigh:    c.Thresholds.HTCeilingHigh,
		},
		Model:    model,
		Bankroll: decimal.NewFromFloat(c.Bankroll),
	}
}

// ToTeamDefaults converts config to team defaults
func (c *EngineConfig) ToTeamDefaults() models.TeamDefaults {
	return models.TeamDefaults{
		OverLowRate:     c.TeamDefaults.OverLowRate,
		OverHighRate:    c.TeamDefaults.OverHighRate,
		OffensiveRating: c.TeamDefaults.OffensiveRating,
		TablePosition:   c.TeamDefaults.TablePosition,
		GamesPlayedAvg:  c.TeamDefaults.GamesPlayedAvg,
	}
}

// ToLeague converts a league entry into its model form
func (c LeagueConfig) ToLeague(code string) models.League {
	criteria := models.LeagueCriteria{
		MinTeamAvgGoals:   c.MinTeamAvgGoals,
		MinTeamAvgGoalsHT: c.MinTeamAvgGoalsHT,
		MinSampleGames:    c.MinSampleGames,
		MinHTSampleGames:  c.MinHTSampleGames,
	}
	if criteria.MinHTSampleGames == 0 {
		criteria.MinHTSampleGames = models.DefaultLeagueCriteria().MinHTSampleGames
	}
	return models.League{
		Code:     code,
		APIID:    c.APIID,
		Name:     c.Name,
		Timezone: c.Timezone,
		Criteria: criteria,
	}
}

// LeagueList returns the configured leagues ordered by code
func (c *Config) LeagueList() []models.League {
	codes := make([]string, 0, len(c.Leagues))
	for code := range c.Leagues {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	leagues := make([]models.League, 0, len(codes))
	for _, code := range codes {
		leagues = append(leagues, c.Leagues[code].ToLeague(strings.ToUpper(code)))
	}
	return leagues
}

// DefaultLeagues returns the ten leagues covered out of the box
func DefaultLeagues() map[string]LeagueConfig {
	league := func(id int, name, tz string, ft, ht float64) LeagueConfig {
		return LeagueConfig{
			APIID:             id,
			Name:              name,
			Timezone:          tz,
			MinTeamAvgGoals:   ft,
			MinTeamAvgGoalsHT: ht,
			MinSampleGames:    4,
			MinHTSampleGames:  3,
		}
	}
	return map[string]LeagueConfig{
		"ENG1": league(39, "Premier League", "Europe/London", 2.30, 1.20),
		"ESP1": league(140, "LaLiga", "Europe/Madrid", 2.20, 1.10),
		"ITA1": league(135, "Serie A", "Europe/Rome", 2.15, 1.05),
		"GER1": league(78, "Bundesliga", "Europe/Berlin", 2.40, 1.25),
		"FRA1": league(61, "Ligue 1", "Europe/Paris", 2.10, 1.00),
		"POR1": league(94, "Primeira Liga", "Europe/Lisbon", 2.25, 1.15),
		"BRA1": league(71, "Brasileirão Série A", "America/Sao_Paulo", 2.00, 0.90),
		"ARG1": league(128, "Liga Profesional", "America/Argentina/Buenos_Aires", 1.90, 0.85),
		"BEL1": league(144, "Jupiler Pro League", "Europe/Brussels", 2.35, 1.20),
		"TUR1": league(203, "Süper Lig", "Europe/Istanbul", 2.20, 1.10),
	}
}
