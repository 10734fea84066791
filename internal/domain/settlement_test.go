package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTrade(id string, side Side, stake, coverage float64) Trade {
	return Trade{
		ID:        id,
		ArenaID:   "arena-1",
		Side:      side,
		Action:    ActionBuy,
		Stake:     stake,
		Price:     0.5,
		Coverage:  coverage,
		Status:    TradeOpen,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSettleTrade_WinPaysOneAndHalf(t *testing.T) {
	settled, ok := SettleTrade(openTrade("t1", SideYes, 100, 0), true, time.Now())
	require.True(t, ok)
	assert.Equal(t, TradeWon, settled.Status)
	assert.Equal(t, 150.0, settled.Payout)
	require.NotNil(t, settled.SettledAt)
}

func TestSettleTrade_LossWithInsuranceRefundsCoverage(t *testing.T) {
	settled, ok := SettleTrade(openTrade("t1", SideNo, 100, 0.4), true, time.Now())
	require.True(t, ok)
	assert.Equal(t, TradeLost, settled.Status)
	assert.Equal(t, 40.0, settled.Payout)
}

func TestSettleTrade_LossWithoutInsurance(t *testing.T) {
	settled, ok := SettleTrade(openTrade("t1", SideYes, 50, 0), false, time.Now())
	require.True(t, ok)
	assert.Equal(t, TradeLost, settled.Status)
	assert.Equal(t, 0.0, settled.Payout)
}

func TestSettleTrade_NoSideWinsOnFalseOutcome(t *testing.T) {
	settled, _ := SettleTrade(openTrade("t1", SideNo, 33, 0), false, time.Now())
	assert.Equal(t, TradeWon, settled.Status)
	// round(33 × 1.5) = round(49.5) = 50
	assert.Equal(t, 50.0, settled.Payout)
}

func TestSettleTrade_AlreadySettledIsUntouched(t *testing.T) {
	first, _ := SettleTrade(openTrade("t1", SideYes, 100, 0), true, time.Now())
	second, ok := SettleTrade(first, false, time.Now().Add(time.Hour))

	assert.False(t, ok)
	assert.Equal(t, first, second)
}

func TestSettleTrades_LogEntries(t *testing.T) {
	trades := []Trade{
		openTrade("win", SideYes, 100, 0),
		openTrade("insured", SideNo, 100, 0.4),
		openTrade("bare", SideNo, 50, 0),
	}

	settled, entries := SettleTrades(trades, true, time.Now())

	require.Len(t, settled, 3)
	assert.Equal(t, TradeWon, settled[0].Status)
	assert.Equal(t, TradeLost, settled[1].Status)
	assert.Equal(t, TradeLost, settled[2].Status)

	// 1 Payout + 1 Insurance Payout; la pérdida sin seguro no genera entrada
	require.Len(t, entries, 2)
	assert.Equal(t, LogPayout, entries[0].Action)
	assert.Equal(t, 150.0, entries[0].Price)
	assert.Equal(t, LogInsurancePayout, entries[1].Action)
	assert.Equal(t, 40.0, entries[1].Price)
	for _, e := range entries {
		assert.Equal(t, SystemActor, e.User)
		assert.Equal(t, LabelSettled, e.Time)
		assert.NotEmpty(t, e.ID)
	}
}

func TestSettleTrades_Idempotent(t *testing.T) {
	trades := []Trade{openTrade("a", SideYes, 100, 0), openTrade("b", SideNo, 100, 0.4)}

	once, entries1 := SettleTrades(trades, true, time.Now())
	twice, entries2 := SettleTrades(once, true, time.Now())

	assert.Len(t, entries1, 2)
	assert.Empty(t, entries2, "second settlement must not re-credit")
	assert.Equal(t, once, twice)
}
