package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/provider/apifootball"
)

const historySize = 10

var (
	// ErrCycleRunning is returned when an analysis cycle is already in progress
	ErrCycleRunning = errors.New("analysis cycle already running")
	// ErrNoProvider is returned when cycles are requested without a stats provider
	ErrNoProvider = errors.New("no stats provider configured")
)

// CycleStatus reports the scheduler state and recent runs
type CycleStatus struct {
	Running bool                  `json:"running"`
	DryRun  bool                  `json:"dry_run"`
	Leagues []string              `json:"leagues"`
	LastRun *models.CycleSummary  `json:"last_run,omitempty"`
	History []models.CycleSummary `json:"history"`
}

// RunCycle analyzes today's fixtures of every configured league and blocks until done.
// A cycle cut short by the request budget returns its partial summary with the error.
func (s *AnalyzerService) RunCycle(ctx context.Context) (models.CycleSummary, error) {
	if s.provider == nil {
		return models.CycleSummary{}, ErrNoProvider
	}
	if !s.running.CompareAndSwap(false, true) {
		return models.CycleSummary{}, ErrCycleRunning
	}
	defer s.running.Store(false)

	return s.runCycle(ctx)
}

// StartCycle launches a cycle in the background. It returns false when one is
// already running.
func (s *AnalyzerService) StartCycle(ctx context.Context) (bool, error) {
	if s.provider == nil {
		return false, ErrNoProvider
	}
	if !s.running.CompareAndSwap(false, true) {
		return false, nil
	}

	go func() {
		defer s.running.Store(false)
		if _, err := s.runCycle(ctx); err != nil {
			s.logger.Error().Err(err).Msg("analysis cycle failed")
		}
	}()
	return true, nil
}

// IsRunning reports whether a cycle is in progress
func (s *AnalyzerService) IsRunning() bool {
	return s.running.Load()
}

// Status returns the current state and the last runs, most recent first
func (s *AnalyzerService) Status() CycleStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := CycleStatus{
		Running: s.running.Load(),
		DryRun:  s.cfg.DryRun,
		Leagues: make([]string, 0, len(s.cfg.Leagues)),
		History: make([]models.CycleSummary, len(s.history)),
	}
	for _, l := range s.cfg.Leagues {
		status.Leagues = append(status.Leagues, l.Code)
	}
	copy(status.History, s.history)
	if s.lastRun != nil {
		last := *s.lastRun
		status.LastRun = &last
	}
	return status
}

func (s *AnalyzerService) runCycle(ctx context.Context) (models.CycleSummary, error) {
	start := s.now()
	s.metrics.SetCycleRunning(true)
	defer s.metrics.SetCycleRunning(false)

	s.provider.ResetBudget()
	summary := models.CycleSummary{StartedAt: start, DryRun: s.cfg.DryRun}

	s.logger.Info().
		Int("leagues", len(s.cfg.Leagues)).
		Bool("dry_run", s.cfg.DryRun).
		Msg("analysis cycle started")

	var evals []*models.Evaluation
	cycleErr := s.scanLeagues(ctx, &summary, func(eval *models.Evaluation) {
		evals = append(evals, eval)
	})

	summary.APIRequests = s.provider.RequestsUsed()
	summary.Duration = s.now().Sub(start)

	// failures are logged by store and publish; a cycle is never replayed
	_ = s.store(ctx, evals)
	_ = s.publish(ctx, evals)
	s.recordRun(summary)

	status := "success"
	if cycleErr != nil {
		status = "partial"
	}
	s.metrics.RecordCycle(status, summary.Duration.Seconds())
	s.sendSummary(ctx, summary)

	s.logger.Info().
		Int("leagues", summary.LeaguesProcessed).
		Int("fixtures", summary.FixturesAnalyzed).
		Int("highlighted", summary.Highlighted).
		Int("opportunities", summary.Opportunities).
		Int("notifications", summary.Notifications).
		Int("api_requests", summary.APIRequests).
		Dur("duration", summary.Duration).
		Str("status", status).
		Msg("analysis cycle completed")

	return summary, cycleErr
}

// scanLeagues evaluates every upcoming fixture. Provider failures skip the league or
// fixture; an exhausted budget or a canceled context stops the scan.
func (s *AnalyzerService) scanLeagues(ctx context.Context, summary *models.CycleSummary, collect func(*models.Evaluation)) error {
	for _, league := range s.cfg.Leagues {
		fixtures, err := s.provider.FixturesToday(ctx, league)
		if err != nil {
			if fatal := stopCycle(ctx, err); fatal != nil {
				return fatal
			}
			s.logger.Warn().Err(err).Str("league", league.Code).Msg("failed to fetch fixtures, skipping league")
			continue
		}
		summary.LeaguesProcessed++

		s.logger.Debug().
			Str("league", league.Code).
			Int("fixtures", len(fixtures)).
			Msg("fetched fixtures")

		for _, fx := range fixtures {
			snap, err := s.provider.Snapshot(ctx, league, fx)
			if err != nil {
				if fatal := stopCycle(ctx, err); fatal != nil {
					return fatal
				}
				s.logger.Warn().Err(err).Int("fixture_id", fx.Fixture.ID).Msg("failed to build snapshot, skipping fixture")
				continue
			}

			eval, err := s.evaluate(snap)
			if err != nil {
				s.logger.Warn().Err(err).Str("fixture_id", snap.FixtureID).Msg("failed to evaluate fixture")
				continue
			}

			summary.FixturesAnalyzed++
			if eval.Criteria.Meets {
				summary.Highlighted++
			}
			if eval.Comparison != nil && eval.Comparison.HasOpportunity {
				summary.Opportunities++
			}
			summary.Notifications += s.dispatch(ctx, eval)
			collect(eval)
		}
	}
	return nil
}

func stopCycle(ctx context.Context, err error) error {
	if errors.Is(err, apifootball.ErrBudgetExhausted) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("cycle interrupted: %w", ctx.Err())
	}
	return nil
}

func (s *AnalyzerService) recordRun(summary models.CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRun = &summary
	s.history = append([]models.CycleSummary{summary}, s.history...)
	if len(s.history) > historySize {
		s.history = s.history[:historySize]
	}
}

func (s *AnalyzerService) sendSummary(ctx context.Context, summary models.CycleSummary) {
	if s.notifier == nil || s.cfg.DryRun || s.cfg.AdminChatID == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, s.cfg.AdminChatID, s.composer.CycleSummary(summary)); err != nil {
		s.metrics.RecordNotification(kindSummary, "error")
		s.logger.Warn().Err(err).Msg("failed to send cycle summary")
		return
	}
	s.metrics.RecordNotification(kindSummary, "sent")
}
