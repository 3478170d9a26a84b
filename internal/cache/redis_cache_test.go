package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// testRedisCacheSetup is a helper struct to hold test dependencies
type testRedisCacheSetup struct {
	cache     *RedisCache
	miniRedis *miniredis.Miniredis
	ctx       context.Context
}

// setupTestRedisCache creates a test cache with miniredis
func setupTestRedisCache(t *testing.T) *testRedisCacheSetup {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := RedisCacheConfig{
		Addr:     mr.Addr(),
		TTL:      15 * time.Minute,
		DedupTTL: time.Hour,
	}

	return &testRedisCacheSetup{
		cache:     NewRedisCache(config, zerolog.Nop()),
		miniRedis: mr,
		ctx:       context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRedisCacheSetup) cleanup() {
	s.cache.Close()
	s.miniRedis.Close()
}

func testEvaluation(fixtureID, league string) *models.Evaluation {
	return &models.Evaluation{
		ID:         uuid.New(),
		FixtureID:  fixtureID,
		LeagueCode: league,
		HomeTeam:   "Arsenal",
		AwayTeam:   "Brighton",
		Kickoff:    time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		Criteria:   models.CriteriaResult{Meets: true, Reason: models.ReasonFulltimeCriteria},
		Probability: &models.ProbabilityResult{
			PLow:       0.91,
			PHigh:      0.74,
			Confidence: 0.82,
		},
		Comparison: &models.MarketComparison{
			HasOpportunity: true,
			Best: &models.Opportunity{
				Market:        models.MarketOverHigh,
				Probability:   0.74,
				Odds:          1.50,
				EVPercent:     11,
				StakeFraction: 0.04,
				StakeAmount:   decimal.NewFromFloat(40.25),
				Confidence:    0.82,
				IsPositive:    true,
			},
		},
		EvaluatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// TestNewRedisCache tests cache creation
func TestNewRedisCache(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.cache.client)
	assert.Equal(t, 15*time.Minute, setup.cache.ttl)
	assert.Equal(t, time.Hour, setup.cache.dedupTTL)
}

// TestNewRedisCache_DefaultDedupTTL tests the dedup TTL fallback
func TestNewRedisCache_DefaultDedupTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := NewRedisCache(RedisCacheConfig{Addr: mr.Addr(), TTL: 10 * time.Minute}, zerolog.Nop())
	defer c.Close()

	assert.Equal(t, 20*time.Minute, c.dedupTTL)
}

// TestSetGet_RoundTrip tests that an evaluation survives caching
func TestSetGet_RoundTrip(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	original := testEvaluation("fx-1", "ENG1")
	require.NoError(t, setup.cache.Set(setup.ctx, original))

	retrieved, err := setup.cache.Get(setup.ctx, "fx-1")

	require.NoError(t, err)
	assert.Equal(t, original.ID, retrieved.ID)
	assert.Equal(t, original.Criteria, retrieved.Criteria)
	assert.True(t, original.Kickoff.Equal(retrieved.Kickoff))
	require.NotNil(t, retrieved.Comparison)
	require.NotNil(t, retrieved.Comparison.Best)
	assert.Equal(t, models.MarketOverHigh, retrieved.Comparison.Best.Market)
	assert.True(t, original.Comparison.Best.StakeAmount.Equal(retrieved.Comparison.Best.StakeAmount))
}

// TestSet_ContextCanceled tests set operation with canceled context
func TestSet_ContextCanceled(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := setup.cache.Set(ctx, testEvaluation("fx-1", "ENG1"))

	assert.Error(t, err)
}

// TestGet_NotFound tests retrieval when the evaluation doesn't exist
func TestGet_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	eval, err := setup.cache.Get(setup.ctx, "nonexistent")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, eval)
}

// TestGet_ExpiredKey tests retrieval of expired key
func TestGet_ExpiredKey(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testEvaluation("fx-1", "ENG1")))

	setup.miniRedis.FastForward(20 * time.Minute)

	eval, err := setup.cache.Get(setup.ctx, "fx-1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, eval)
}

// TestGet_CorruptedData tests retrieval of a value that is not an evaluation
func TestGet_CorruptedData(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.miniRedis.Set("evaluation:fx-1", "{not json"))

	eval, err := setup.cache.Get(setup.ctx, "fx-1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, eval)
}

// TestSetBatch_AndGetByLeague tests batch caching and the league index
func TestSetBatch_AndGetByLeague(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	evals := []*models.Evaluation{
		testEvaluation("fx-1", "ENG1"),
		testEvaluation("fx-2", "ENG1"),
		testEvaluation("fx-3", "ESP1"),
	}
	require.NoError(t, setup.cache.SetBatch(setup.ctx, evals))

	eng, err := setup.cache.GetByLeague(setup.ctx, "ENG1")
	require.NoError(t, err)
	assert.Len(t, eng, 2)

	esp, err := setup.cache.GetByLeague(setup.ctx, "ESP1")
	require.NoError(t, err)
	require.Len(t, esp, 1)
	assert.Equal(t, "fx-3", esp[0].FixtureID)

	none, err := setup.cache.GetByLeague(setup.ctx, "GER1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestSetBatch_EmptyList tests batch caching with no evaluations
func TestSetBatch_EmptyList(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NoError(t, setup.cache.SetBatch(setup.ctx, nil))
	assert.NoError(t, setup.cache.SetBatch(setup.ctx, []*models.Evaluation{}))
}

// TestGetByLeague_PrunesMissing tests that vanished evaluations leave the index
func TestGetByLeague_PrunesMissing(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testEvaluation("fx-1", "ENG1")))
	require.NoError(t, setup.cache.Set(setup.ctx, testEvaluation("fx-2", "ENG1")))
	setup.miniRedis.Del("evaluation:fx-1")

	evals, err := setup.cache.GetByLeague(setup.ctx, "ENG1")

	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, "fx-2", evals[0].FixtureID)

	members, err := setup.miniRedis.SMembers("league:ENG1:evaluations")
	require.NoError(t, err)
	assert.Equal(t, []string{"fx-2"}, members)
}

// TestMarkNotified_Dedup tests that a marker can only be taken once per market
func TestMarkNotified_Dedup(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	first, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverLow)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverLow)
	require.NoError(t, err)
	assert.False(t, second)

	other, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverHigh)
	require.NoError(t, err)
	assert.True(t, other)

	ttl := setup.miniRedis.TTL("notified:fx-1:over_0_5")
	assert.True(t, ttl > 0 && ttl <= time.Hour)
}

// TestClearNotified tests that a cleared marker can be taken again
func TestClearNotified(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	_, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverLow)
	require.NoError(t, err)
	require.NoError(t, setup.cache.ClearNotified(setup.ctx, "fx-1", models.MarketOverLow))

	again, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverLow)
	require.NoError(t, err)
	assert.True(t, again)
}

// TestMarkNotified_ConcurrentSingleWinner tests that exactly one caller wins the marker
func TestMarkNotified_ConcurrentSingleWinner(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := setup.cache.MarkNotified(setup.ctx, "fx-1", models.MarketOverHigh)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

// TestRaw_RoundTripAndExpiry tests the provider response cache
func TestRaw_RoundTripAndExpiry(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	_, err := setup.cache.GetRaw(setup.ctx, "fixtures:39:2025-03-01")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, setup.cache.SetRaw(setup.ctx, "fixtures:39:2025-03-01", []byte(`[1,2]`), 5*time.Minute))

	data, err := setup.cache.GetRaw(setup.ctx, "fixtures:39:2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))
	assert.True(t, setup.miniRedis.Exists("provider:fixtures:39:2025-03-01"))

	setup.miniRedis.FastForward(6 * time.Minute)

	_, err = setup.cache.GetRaw(setup.ctx, "fixtures:39:2025-03-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestCache_TTLRespected tests that TTL is properly set
func TestCache_TTLRespected(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testEvaluation("fx-1", "ENG1")))

	ttl := setup.miniRedis.TTL("evaluation:fx-1")
	assert.True(t, ttl > 0)
	assert.True(t, ttl <= 15*time.Minute)
}

// TestPing_Success tests successful ping
func TestPing_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NoError(t, setup.cache.Ping(setup.ctx))
}

// TestPing_RedisDown tests ping when Redis is down
func TestPing_RedisDown(t *testing.T) {
	setup := setupTestRedisCache(t)

	setup.miniRedis.Close()

	assert.Error(t, setup.cache.Ping(setup.ctx))

	setup.cache.Close()
}
