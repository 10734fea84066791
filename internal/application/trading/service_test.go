package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedx/internal/adapters/wallet"
	"github.com/alejandrodnm/polyhedx/internal/application/feed"
	"github.com/alejandrodnm/polyhedx/internal/application/session"
	"github.com/alejandrodnm/polyhedx/internal/application/settlement"
	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixedPricer struct {
	md domain.MarketData
}

func (f fixedPricer) MarketData(context.Context, string) (domain.MarketData, feed.Source) {
	return f.md, feed.SourceRemote
}

type fixture struct {
	svc     *Service
	repo    *storage.Repository
	session *session.Session
}

func newFixture(t *testing.T, prices Pricer, connect bool) fixture {
	t.Helper()
	return newFixtureKV(t, storage.NewMemoryKV(), prices, connect)
}

func newFixtureKV(t *testing.T, kv ports.KVStore, prices Pricer, connect bool) fixture {
	t.Helper()
	repo := storage.NewRepository(kv)
	w, err := wallet.NewLocal(wallet.Config{
		PrivateKeyHex:  testKey,
		InitialBalance: decimal.NewFromInt(2500),
	}, kv)
	require.NoError(t, err)
	sess := session.New(w)
	if connect {
		_, err := sess.Connect(context.Background())
		require.NoError(t, err)
	}

	require.NoError(t, repo.SaveArenas(context.Background(), []domain.Arena{
		{ID: "open", Title: "Open", Description: "d", Category: domain.CategoryCrypto, Deadline: now.Add(24 * time.Hour), PoolSize: 1000},
		{ID: "late", Title: "Late", Description: "d", Category: domain.CategorySports, Deadline: now.Add(-time.Minute), PoolSize: 1000},
	}))

	svc := New(repo, sess, prices)
	svc.now = func() time.Time { return now }
	return fixture{svc: svc, repo: repo, session: sess}
}

func TestQuote_UsesVoteProbabilityWithoutFeed(t *testing.T) {
	f := newFixture(t, nil, false)

	q, err := f.svc.Quote(context.Background(), "open", QuoteInput{Side: domain.SideYes, Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, 0.5, q.Price)
	assert.InDelta(t, 50.0, q.Total, 1e-9)
}

func TestQuote_UsesFeedPrice(t *testing.T) {
	f := newFixture(t, fixedPricer{md: domain.MarketData{CurrentYesPrice: 0.72, CurrentNoPrice: 0.28}}, false)

	q, err := f.svc.Quote(context.Background(), "open", QuoteInput{
		Side:             domain.SideNo,
		Quantity:         100,
		InsuranceEnabled: true,
		CoveragePercent:  50,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.28, q.Price)
	assert.InDelta(t, 0.072, q.PremiumRate, 1e-9)
	assert.InDelta(t, 3.6, q.Premium, 1e-9)
	assert.InDelta(t, 31.6, q.Total, 1e-9)
}

func TestQuote_UnknownArena(t *testing.T) {
	f := newFixture(t, nil, false)
	_, err := f.svc.Quote(context.Background(), "ghost", QuoteInput{Side: domain.SideYes, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecute_BuyRecordsEverything(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	r, err := f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideYes, Action: domain.ActionBuy, Quantity: 100})
	require.NoError(t, err)

	assert.True(t, r.Balance.Equal(decimal.NewFromInt(2450)), "balance %s", r.Balance)
	assert.True(t, f.session.Balance().Equal(decimal.NewFromInt(2450)))
	assert.Equal(t, domain.TradeOpen, r.Trade.Status)

	trades, err := f.repo.Trades(ctx, "open")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, r.Trade.ID, trades[0].ID)
	assert.Equal(t, 100.0, trades[0].Stake)

	log, err := f.repo.TransactionLog(ctx, "open")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, domain.LogBought, log[0].Action)
	assert.Equal(t, "0x2c75...5c23", log[0].User)
	assert.Equal(t, domain.LabelJustNow, log[0].Time)

	arena, err := f.repo.Arena(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, 100.0, arena.YesVotes)
	assert.Equal(t, 1.0, arena.YesProbability())
	assert.Len(t, arena.Participants, 1)

	preds, err := f.repo.Predictions(ctx)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, r.Trade.ID, preds[0].ID)
	assert.True(t, preds[0].Choice)
	assert.False(t, preds[0].Settled())
}

func TestExecute_SellDoesNotMoveVotes(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideNo, Action: domain.ActionBuy, Quantity: 30})
	require.NoError(t, err)
	_, err = f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideNo, Action: domain.ActionSell, Quantity: 10})
	require.NoError(t, err)

	arena, err := f.repo.Arena(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, 30.0, arena.NoVotes)
	assert.Len(t, arena.Participants, 1, "same trader counted once")

	log, err := f.repo.TransactionLog(ctx, "open")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, domain.LogSold, log[0].Action, "newest first")
}

func TestExecute_LogCapped(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	for i := 0; i < domain.TradeLogCap+5; i++ {
		_, err := f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideYes, Quantity: 1})
		require.NoError(t, err)
	}
	log, err := f.repo.TransactionLog(ctx, "open")
	require.NoError(t, err)
	assert.Len(t, log, domain.TradeLogCap)

	trades, err := f.repo.Trades(ctx, "open")
	require.NoError(t, err)
	assert.Len(t, trades, domain.TradeLogCap+5, "trades are not capped")
}

func TestExecute_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		connect bool
		arena   string
		in      QuoteInput
		want    error
	}{
		{"no wallet", false, "open", QuoteInput{Side: domain.SideYes, Quantity: 10}, domain.ErrWalletNotConnected},
		{"unknown arena", true, "ghost", QuoteInput{Side: domain.SideYes, Quantity: 10}, domain.ErrNotFound},
		{"expired arena", true, "late", QuoteInput{Side: domain.SideYes, Quantity: 10}, domain.ErrArenaExpired},
		{"zero quantity", true, "open", QuoteInput{Side: domain.SideYes, Quantity: 0}, domain.ErrInvalidQuantity},
		{"negative quantity", true, "open", QuoteInput{Side: domain.SideYes, Quantity: -5}, domain.ErrInvalidQuantity},
		{"insufficient balance", true, "open", QuoteInput{Side: domain.SideYes, Quantity: 10000}, domain.ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil, tc.connect)
			ctx := context.Background()

			_, err := f.svc.Execute(ctx, tc.arena, tc.in)
			require.ErrorIs(t, err, tc.want)

			trades, err := f.repo.Trades(ctx, "open")
			require.NoError(t, err)
			assert.Empty(t, trades)
			preds, err := f.repo.Predictions(ctx)
			require.NoError(t, err)
			assert.Empty(t, preds)
			if tc.connect {
				assert.True(t, f.session.Balance().Equal(decimal.NewFromInt(2500)))
			}
		})
	}
}

func TestExecute_ResolvedArena(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	arena, err := f.repo.Arena(ctx, "open")
	require.NoError(t, err)
	require.NoError(t, arena.Resolve(true))
	require.NoError(t, f.repo.UpdateArena(ctx, arena))

	_, err = f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideYes, Quantity: 10})
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

// failingKV falla los Set de failKey.
type failingKV struct {
	*storage.MemoryKV
	failKey string
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestExecute_StorageFailureLeavesNoPartialState(t *testing.T) {
	for _, key := range []string{"polyhedx_arena_open_trades", "polyhedx_predictions"} {
		t.Run(key, func(t *testing.T) {
			kv := &failingKV{MemoryKV: storage.NewMemoryKV()}
			f := newFixtureKV(t, kv, nil, true)
			ctx := context.Background()
			kv.failKey = key

			_, err := f.svc.Execute(ctx, "open", QuoteInput{Side: domain.SideYes, Quantity: 100})
			require.Error(t, err)

			assert.True(t, f.session.Balance().Equal(decimal.NewFromInt(2500)), "balance %s", f.session.Balance())
			acct, _ := f.session.Account()
			persisted, _, err := kv.Get(ctx, storage.WalletBalanceKey(acct.Address))
			require.NoError(t, err)
			assert.Equal(t, "2500", string(persisted))

			trades, err := f.repo.Trades(ctx, "open")
			require.NoError(t, err)
			assert.Empty(t, trades)
			log, err := f.repo.TransactionLog(ctx, "open")
			require.NoError(t, err)
			assert.Empty(t, log)
			arena, err := f.repo.Arena(ctx, "open")
			require.NoError(t, err)
			assert.Zero(t, arena.YesVotes)
			assert.Empty(t, arena.Participants)
			preds, err := f.repo.Predictions(ctx)
			require.NoError(t, err)
			assert.Empty(t, preds)
		})
	}
}

// resolvingWallet resuelve el arena mientras se cobra el trade, como haría
// otro proceso con -resolve sobre la misma base de datos.
type resolvingWallet struct {
	*session.Session
	engine  *settlement.Engine
	arenaID string
}

func (w resolvingWallet) Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := w.engine.Resolve(ctx, w.arenaID, true); err != nil {
		return decimal.Zero, err
	}
	return w.Session.Debit(ctx, amount)
}

func TestExecute_ResolutionDuringTradeKeepsArenaResolved(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	engine := settlement.NewEngine(f.repo)
	svc := New(f.repo, resolvingWallet{Session: f.session, engine: engine, arenaID: "open"}, nil)
	svc.now = func() time.Time { return now }

	_, err := svc.Execute(ctx, "open", QuoteInput{Side: domain.SideNo, Quantity: 50})
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	arena, err := f.repo.Arena(ctx, "open")
	require.NoError(t, err)
	assert.True(t, arena.IsResolved)
	require.NotNil(t, arena.CorrectAnswer)
	assert.True(t, *arena.CorrectAnswer)

	trades, err := f.repo.Trades(ctx, "open")
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.True(t, f.session.Balance().Equal(decimal.NewFromInt(2500)), "charge refunded")

	_, err = engine.Resolve(ctx, "open", false)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}
