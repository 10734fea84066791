package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

func trade(id, arenaID string, side domain.Side, stake, coverage float64) domain.Trade {
	return domain.Trade{
		ID:        id,
		ArenaID:   arenaID,
		Trader:    "0xabc",
		Side:      side,
		Action:    domain.ActionBuy,
		Stake:     stake,
		Price:     0.5,
		Coverage:  coverage,
		Total:     stake * 0.5,
		CreatedAt: now.Add(-time.Hour),
		Status:    domain.TradeOpen,
	}
}

func prediction(id, arenaID string, choice bool, amount float64) domain.Prediction {
	return domain.Prediction{ID: id, UserID: "0xabc", ArenaID: arenaID, Choice: choice, Amount: amount, Timestamp: now.Add(-time.Hour)}
}

// failingKV falla los Set de failKey mientras fail está activo.
type failingKV struct {
	*storage.MemoryKV
	failKey string
	fail    bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail && key == f.failKey {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func setup(t *testing.T) (*Engine, *storage.Repository) {
	t.Helper()
	return setupKV(t, storage.NewMemoryKV())
}

func setupKV(t *testing.T, kv ports.KVStore) (*Engine, *storage.Repository) {
	t.Helper()
	ctx := context.Background()
	repo := storage.NewRepository(kv)

	require.NoError(t, repo.SaveArenas(ctx, []domain.Arena{
		{ID: "a", Title: "A", Description: "d", Category: domain.CategoryCrypto, Deadline: now, PoolSize: 1000, YesVotes: 100, NoVotes: 150},
		{ID: "b", Title: "B", Description: "d", Category: domain.CategorySports, Deadline: now, PoolSize: 1000},
	}))

	settledAt := now.Add(-30 * time.Minute)
	old := trade("t-old", "a", domain.SideYes, 10, 0)
	old.Status = domain.TradeWon
	old.Payout = 15
	old.SettledAt = &settledAt

	require.NoError(t, repo.SaveTrades(ctx, "a", []domain.Trade{
		trade("t-yes", "a", domain.SideYes, 100, 0),
		trade("t-no-insured", "a", domain.SideNo, 100, 0.4),
		trade("t-no-bare", "a", domain.SideNo, 50, 0),
		old,
	}))
	require.NoError(t, repo.SaveTrades(ctx, "b", []domain.Trade{trade("t-b", "b", domain.SideYes, 20, 0)}))
	require.NoError(t, repo.SavePredictions(ctx, []domain.Prediction{
		prediction("t-yes", "a", true, 100),
		prediction("t-no-insured", "a", false, 100),
		prediction("t-no-bare", "a", false, 50),
		prediction("t-b", "b", true, 20),
	}))

	e := NewEngine(repo)
	e.now = func() time.Time { return now }
	return e, repo
}

func byID(trades []domain.Trade) map[string]domain.Trade {
	m := make(map[string]domain.Trade, len(trades))
	for _, t := range trades {
		m[t.ID] = t
	}
	return m
}

func TestResolve_SettlesOpenTrades(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()

	res, err := e.Resolve(ctx, "a", true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Settled)
	assert.Equal(t, 1, res.Winners)
	assert.Equal(t, 2, res.Losers)
	assert.Equal(t, 190.0, res.TotalPayout)
	assert.Equal(t, 3, res.Predictions)

	trades, err := repo.Trades(ctx, "a")
	require.NoError(t, err)
	got := byID(trades)

	assert.Equal(t, domain.TradeWon, got["t-yes"].Status)
	assert.Equal(t, 150.0, got["t-yes"].Payout)
	assert.Equal(t, domain.TradeLost, got["t-no-insured"].Status)
	assert.Equal(t, 40.0, got["t-no-insured"].Payout)
	assert.Equal(t, domain.TradeLost, got["t-no-bare"].Status)
	assert.Zero(t, got["t-no-bare"].Payout)
	assert.Equal(t, 15.0, got["t-old"].Payout, "already settled trades keep their payout")
	require.NotNil(t, got["t-yes"].SettledAt)
	assert.Equal(t, now, *got["t-yes"].SettledAt)

	arena, err := repo.Arena(ctx, "a")
	require.NoError(t, err)
	assert.True(t, arena.IsResolved)
	require.NotNil(t, arena.CorrectAnswer)
	assert.True(t, *arena.CorrectAnswer)

	other, err := repo.Trades(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeOpen, other[0].Status, "other arenas untouched")
}

func TestResolve_WritesLogEntries(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveTransactionLog(ctx, "a", []domain.TransactionLogEntry{
		{ID: "prev", User: "0x1234...5678", Action: domain.LogBought, Shares: 5, Price: 0.5, Time: domain.LabelJustNow, At: now.Add(-time.Hour)},
	}))

	_, err := e.Resolve(ctx, "a", true)
	require.NoError(t, err)

	log, err := repo.TransactionLog(ctx, "a")
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, domain.LogInsurancePayout, log[0].Action)
	assert.Equal(t, 40.0, log[0].Price)
	assert.Equal(t, domain.LogPayout, log[1].Action)
	assert.Equal(t, 150.0, log[1].Price)
	assert.Equal(t, domain.SystemActor, log[1].User)
	assert.Equal(t, domain.LabelSettled, log[1].Time)
	assert.Equal(t, "prev", log[2].ID)
}

func TestResolve_LogCappedAt50(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()
	prev := make([]domain.TransactionLogEntry, 49)
	for i := range prev {
		prev[i] = domain.TransactionLogEntry{ID: fmt.Sprintf("p%d", i), User: "x", Action: domain.LogSold, Shares: 1, Price: 0.5, Time: domain.LabelMoments, At: now}
	}
	require.NoError(t, repo.SaveTransactionLog(ctx, "a", prev))

	_, err := e.Resolve(ctx, "a", true)
	require.NoError(t, err)

	log, err := repo.TransactionLog(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, log, domain.SettlementLogCap)
	assert.Equal(t, "p47", log[len(log)-1].ID)
}

func TestResolve_MarksPredictions(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()

	_, err := e.Resolve(ctx, "a", false)
	require.NoError(t, err)

	preds, err := repo.Predictions(ctx)
	require.NoError(t, err)
	byPred := make(map[string]domain.Prediction)
	for _, p := range preds {
		byPred[p.ID] = p
	}

	require.True(t, byPred["t-yes"].Settled())
	assert.False(t, *byPred["t-yes"].IsCorrect)
	assert.Zero(t, byPred["t-yes"].Reward)

	require.True(t, byPred["t-no-insured"].Settled())
	assert.True(t, *byPred["t-no-insured"].IsCorrect)
	assert.Equal(t, 150.0, byPred["t-no-insured"].Reward)
	assert.Equal(t, 75.0, byPred["t-no-bare"].Reward)

	assert.False(t, byPred["t-b"].Settled(), "other arena predictions stay pending")
}

func TestResolve_OnlyOnce(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()

	_, err := e.Resolve(ctx, "a", true)
	require.NoError(t, err)
	first, err := repo.Trades(ctx, "a")
	require.NoError(t, err)

	_, err = e.Resolve(ctx, "a", false)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	second, err := repo.Trades(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, second, "second resolution must not re-settle")

	arena, err := repo.Arena(ctx, "a")
	require.NoError(t, err)
	assert.True(t, *arena.CorrectAnswer, "answer is immutable")
}

func TestResolve_ConcurrentCallsSettleOnce(t *testing.T) {
	e, repo := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Resolve(ctx, "a", i%2 == 0)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
		}
	}
	assert.Equal(t, 1, ok)

	log, err := repo.TransactionLog(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, log, 2, "payout entries written once")
}

func TestResolve_UnknownArena(t *testing.T) {
	e, _ := setup(t)
	_, err := e.Resolve(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepair_SettlesTradesLeftOpenByFailedResolve(t *testing.T) {
	kv := &failingKV{MemoryKV: storage.NewMemoryKV(), failKey: "polyhedx_arena_a_trades"}
	e, repo := setupKV(t, kv)
	ctx := context.Background()

	kv.fail = true
	_, err := e.Resolve(ctx, "a", true)
	require.Error(t, err)

	arena, err := repo.Arena(ctx, "a")
	require.NoError(t, err)
	assert.True(t, arena.IsResolved, "flag is persisted before trades")
	trades, err := repo.Trades(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.TradeOpen, byID(trades)["t-yes"].Status)

	_, err = e.Resolve(ctx, "a", false)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	kv.fail = false
	res, err := e.Repair(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Settled)
	assert.Equal(t, 190.0, res.TotalPayout)
	assert.True(t, res.Outcome, "uses the stored answer")

	got := byID(mustTrades(t, repo, "a"))
	assert.Equal(t, domain.TradeWon, got["t-yes"].Status)
	assert.Equal(t, 40.0, got["t-no-insured"].Payout)
	assert.Equal(t, 15.0, got["t-old"].Payout, "settled trades are not re-credited")

	again, err := e.Repair(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, again.Settled)

	log, err := repo.TransactionLog(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, log, 2, "payout entries written once")
}

func TestRepair_RequiresResolvedArena(t *testing.T) {
	e, _ := setup(t)
	_, err := e.Repair(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func mustTrades(t *testing.T, repo *storage.Repository, arenaID string) []domain.Trade {
	t.Helper()
	trades, err := repo.Trades(context.Background(), arenaID)
	require.NoError(t, err)
	return trades
}
