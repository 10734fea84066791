package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	rows := []ResultRow{
		{Trade: Trade{Status: TradeWon, Payout: 150}},
		{Trade: Trade{Status: TradeLost, Payout: 40}},
		{Trade: Trade{Status: TradeLost}},
		{Trade: Trade{Status: TradeOpen}},
	}
	sum := Summarize(rows)

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 150.0, sum.TotalRewards, "insurance payouts are not rewards")
	assert.InDelta(t, 100.0/3, sum.WinRate, 1e-9)

	assert.Equal(t, ResultSummary{}, Summarize(nil))
}
