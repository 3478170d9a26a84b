package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/goals-ev-service/internal/metrics"
	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/notify"
	"github.com/cypherlabdev/goals-ev-service/pkg/engine"
)

// Notification kinds used for metrics and logs
const (
	kindOpportunity = "opportunity"
	kindExplain     = "explain"
	kindSummary     = "summary"
)

var (
	// ErrNoValidFixtures is returned when every snapshot of a batch was rejected
	ErrNoValidFixtures = errors.New("no valid fixtures in batch")
	// ErrBatchNotStored is returned when evaluations could not be cached or published
	ErrBatchNotStored = errors.New("evaluations not stored")
)

// Config holds service configuration
type Config struct {
	Leagues      []models.League
	TeamDefaults models.TeamDefaults
	DryRun       bool // evaluate and log, never notify
	SendNegative bool // send explain-only messages for priced markets without value
	ChatID       int64
	AdminChatID  int64
	ChatMap      map[string]int64 // lowercase league code -> chat
}

// AnalyzerService orchestrates fixture evaluation, caching, notification and publication
type AnalyzerService struct {
	engine    *engine.Engine
	criteria  map[string]*engine.CriteriaEvaluator
	fallback  *engine.CriteriaEvaluator
	leagues   map[string]models.League
	cfg       Config
	cache     Cache
	composer  *notify.Composer
	metrics   *metrics.Metrics
	provider  StatsProvider
	notifier  Notifier
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	lastRun *models.CycleSummary
	history []models.CycleSummary
}

// Option configures optional collaborators
type Option func(*AnalyzerService)

// WithProvider enables analysis cycles
func WithProvider(p StatsProvider) Option {
	return func(s *AnalyzerService) {
		s.provider = p
	}
}

// WithNotifier enables chat notifications
func WithNotifier(n Notifier) Option {
	return func(s *AnalyzerService) {
		s.notifier = n
	}
}

// WithPublisher enables downstream publication
func WithPublisher(p Publisher) Option {
	return func(s *AnalyzerService) {
		s.publisher = p
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *AnalyzerService) {
		s.now = now
	}
}

// NewAnalyzerService creates a new analyzer service. It fails when a league's
// criteria are invalid.
func NewAnalyzerService(
	eng *engine.Engine,
	cache Cache,
	m *metrics.Metrics,
	cfg Config,
	logger zerolog.Logger,
	opts ...Option,
) (*AnalyzerService, error) {
	fallback, err := engine.NewCriteriaEvaluator(models.DefaultLeagueCriteria())
	if err != nil {
		return nil, err
	}

	s := &AnalyzerService{
		engine:   eng,
		criteria: make(map[string]*engine.CriteriaEvaluator, len(cfg.Leagues)),
		fallback: fallback,
		leagues:  make(map[string]models.League, len(cfg.Leagues)),
		cfg:      cfg,
		cache:    cache,
		composer: notify.NewComposer(eng.Params().Bankroll, eng.Params().Thresholds, cfg.Leagues...),
		metrics:  m,
		logger:   logger.With().Str("component", "analyzer_service").Logger(),
		now:      time.Now,
	}

	for _, league := range cfg.Leagues {
		evaluator, err := engine.NewCriteriaEvaluator(league.Criteria)
		if err != nil {
			return nil, fmt.Errorf("league %s: %w", league.Code, err)
		}
		s.criteria[league.Code] = evaluator
		s.leagues[league.Code] = league
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// EvaluateFixture scores one snapshot and caches the evaluation. It does not notify.
func (s *AnalyzerService) EvaluateFixture(ctx context.Context, snap *models.FixtureSnapshot) (*models.Evaluation, error) {
	eval, err := s.evaluate(snap)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, eval); err != nil {
		s.logger.Warn().
			Err(err).
			Str("fixture_id", eval.FixtureID).
			Msg("failed to cache evaluation")
		// Don't fail the evaluation on cache errors
	}

	return eval, nil
}

// EvaluateBatch scores a batch of snapshots, notifies, caches and publishes the results.
// Invalid snapshots are skipped; the batch fails with ErrNoValidFixtures only when none
// could be evaluated. Cache or publication failures return the evaluations together
// with an error wrapping ErrBatchNotStored.
func (s *AnalyzerService) EvaluateBatch(ctx context.Context, snapshots []models.FixtureSnapshot) ([]*models.Evaluation, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}

	evals := make([]*models.Evaluation, 0, len(snapshots))
	var firstErr error
	for i := range snapshots {
		eval, err := s.evaluate(&snapshots[i])
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("fixture_id", snapshots[i].FixtureID).
				Msg("skipping invalid snapshot")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.dispatch(ctx, eval)
		evals = append(evals, eval)
	}

	if len(evals) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoValidFixtures, firstErr)
	}

	storeErr := errors.Join(s.store(ctx, evals), s.publish(ctx, evals))

	s.logger.Info().
		Int("input_count", len(snapshots)).
		Int("output_count", len(evals)).
		Bool("stored", storeErr == nil).
		Msg("evaluated batch")

	if storeErr != nil {
		return evals, fmt.Errorf("%w: %w", ErrBatchNotStored, storeErr)
	}
	return evals, nil
}

// GetEvaluation retrieves a cached evaluation
func (s *AnalyzerService) GetEvaluation(ctx context.Context, fixtureID string) (*models.Evaluation, error) {
	eval, err := s.cache.Get(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve evaluation: %w", err)
	}
	return eval, nil
}

// GetLeagueEvaluations retrieves every cached evaluation of a league
func (s *AnalyzerService) GetLeagueEvaluations(ctx context.Context, league string) ([]*models.Evaluation, error) {
	evals, err := s.cache.GetByLeague(ctx, strings.ToUpper(league))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve evaluations for league: %w", err)
	}

	s.logger.Debug().
		Str("league", league).
		Int("count", len(evals)).
		Msg("retrieved evaluations by league")

	return evals, nil
}

// evaluate validates a snapshot and runs the engine on it
func (s *AnalyzerService) evaluate(snap *models.FixtureSnapshot) (*models.Evaluation, error) {
	start := time.Now()

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	home, err := snap.Home.Resolve(s.cfg.TeamDefaults)
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	away, err := snap.Away.Resolve(s.cfg.TeamDefaults)
	if err != nil {
		return nil, fmt.Errorf("away: %w", err)
	}

	var h2h models.HeadToHeadRecord
	if snap.HeadToHead != nil {
		h2h = *snap.HeadToHead
	}

	code := strings.ToUpper(snap.LeagueCode)
	decision := s.engine.Decide(s.criteriaFor(code), engine.FixtureInput{
		Home:          home,
		Away:          away,
		HomeHT:        snap.HomeHT,
		AwayHT:        snap.AwayHT,
		HeadToHead:    h2h,
		Context:       snap.Context.Resolve(home, away, s.cfg.TeamDefaults),
		IsHTScoreless: snap.IsHTScoreless,
		Odds:          snap.Odds,
	})

	eval := &models.Evaluation{
		ID:          uuid.New(),
		FixtureID:   snap.FixtureID,
		LeagueCode:  code,
		LeagueName:  s.leagues[code].Name,
		HomeTeam:    snap.HomeTeam,
		AwayTeam:    snap.AwayTeam,
		Kickoff:     snap.Kickoff,
		Criteria:    decision.Criteria,
		Probability: decision.Probability,
		Comparison:  decision.Comparison,
		DryRun:      s.cfg.DryRun,
		EvaluatedAt: s.now().UTC(),
	}

	label := metrics.OtherLeague
	if _, ok := s.leagues[code]; ok {
		label = code
	}
	s.metrics.RecordEvaluation(eval, label, time.Since(start).Seconds())
	s.logEvaluation(eval)

	return eval, nil
}

func (s *AnalyzerService) criteriaFor(code string) *engine.CriteriaEvaluator {
	if c, ok := s.criteria[code]; ok {
		return c
	}
	return s.fallback
}

func (s *AnalyzerService) chatFor(code string) int64 {
	if chat := s.cfg.ChatMap[strings.ToLower(code)]; chat != 0 {
		return chat
	}
	return s.cfg.ChatID
}

// dispatch sends the opportunity, or an explain-only message when enabled, and
// returns the number of messages sent
func (s *AnalyzerService) dispatch(ctx context.Context, eval *models.Evaluation) int {
	if s.notifier == nil || eval.Comparison == nil {
		return 0
	}

	kind, market, text := kindOpportunity, models.Market(""), ""
	if best := eval.Comparison.Best; best != nil {
		market, text = best.Market, s.composer.Opportunity(eval)
	} else {
		exp, ok := explainable(eval.Comparison.Explanations)
		if !ok || !s.cfg.SendNegative {
			return 0
		}
		kind, market, text = kindExplain, exp.Market, s.composer.ExplainOnly(eval, exp)
	}

	if s.cfg.DryRun {
		s.metrics.RecordNotification(kind, "dry_run")
		s.logger.Info().
			Str("fixture_id", eval.FixtureID).
			Str("market", string(market)).
			Str("kind", kind).
			Msg("dry run, notification suppressed")
		return 0
	}

	first, err := s.cache.MarkNotified(ctx, eval.FixtureID, market)
	if err != nil {
		s.metrics.RecordNotification(kind, "error")
		s.logger.Error().Err(err).Str("fixture_id", eval.FixtureID).Msg("failed to check notification marker")
		return 0
	}
	if !first {
		s.metrics.RecordNotification(kind, "duplicate")
		s.logger.Debug().Str("fixture_id", eval.FixtureID).Str("market", string(market)).Msg("already notified")
		return 0
	}

	if err := s.notifier.Notify(ctx, s.chatFor(eval.LeagueCode), text); err != nil {
		s.metrics.RecordNotification(kind, "error")
		s.logger.Error().Err(err).Str("fixture_id", eval.FixtureID).Msg("failed to send notification")
		if err := s.cache.ClearNotified(ctx, eval.FixtureID, market); err != nil {
			s.logger.Warn().Err(err).Str("fixture_id", eval.FixtureID).Msg("failed to clear notification marker")
		}
		return 0
	}

	s.metrics.RecordNotification(kind, "sent")
	return 1
}

// explainable picks the priced market with the highest EV
func explainable(explanations []models.MarketExplanation) (models.MarketExplanation, bool) {
	var best models.MarketExplanation
	found := false
	for _, exp := range explanations {
		if exp.Odds <= 0 || exp.Rejected == models.RejectOddsUnavailable {
			continue
		}
		if !found || exp.EVPercent > best.EVPercent {
			best, found = exp, true
		}
	}
	return best, found
}

// store caches evaluations in one pipeline
func (s *AnalyzerService) store(ctx context.Context, evals []*models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}
	if err := s.cache.SetBatch(ctx, evals); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(evals)).
			Msg("failed to cache evaluations")
		return fmt.Errorf("failed to cache evaluations: %w", err)
	}
	return nil
}

func (s *AnalyzerService) publish(ctx context.Context, evals []*models.Evaluation) error {
	if s.publisher == nil || len(evals) == 0 {
		return nil
	}
	if err := s.publisher.Publish(ctx, evals); err != nil {
		s.logger.Error().
			Err(err).
			Int("count", len(evals)).
			Msg("failed to publish evaluations")
		return fmt.Errorf("failed to publish evaluations: %w", err)
	}
	return nil
}

func (s *AnalyzerService) logEvaluation(eval *models.Evaluation) {
	event := s.logger.Debug()
	if eval.Comparison != nil && eval.Comparison.HasOpportunity {
		event = s.logger.Info()
	}

	event = event.
		Str("fixture_id", eval.FixtureID).
		Str("league", eval.LeagueCode).
		Str("match", eval.HomeTeam+" vs "+eval.AwayTeam).
		Str("criteria", string(eval.Criteria.Reason))

	if p := eval.Probability; p != nil {
		event = event.
			Float64("p_low", p.PLow).
			Float64("p_high", p.PHigh).
			Float64("confidence", p.Confidence)
	}
	if eval.Comparison != nil && eval.Comparison.Best != nil {
		best := eval.Comparison.Best
		event = event.
			Str("market", string(best.Market)).
			Float64("ev_percent", best.EVPercent).
			Str("stake", best.StakeAmount.StringFixed(2))
	}

	event.Msg("evaluated fixture")
}
