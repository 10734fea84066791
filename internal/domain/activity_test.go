package domain

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) TransactionLogEntry {
	return TransactionLogEntry{ID: id, Action: LogBought}
}

func TestPrependCapped_NewestFirst(t *testing.T) {
	log := []TransactionLogEntry{entry("old")}
	log = PrependCapped(log, TradeLogCap, entry("a"), entry("b"))

	require.Len(t, log, 3)
	assert.Equal(t, "b", log[0].ID)
	assert.Equal(t, "a", log[1].ID)
	assert.Equal(t, "old", log[2].ID)
}

func TestPrependCapped_EvictsOldest(t *testing.T) {
	var log []TransactionLogEntry
	for i := 0; i < 40; i++ {
		log = PrependCapped(log, TradeLogCap, entry(fmt.Sprintf("e%02d", i)))
	}

	require.Len(t, log, TradeLogCap)
	assert.Equal(t, "e39", log[0].ID)
	assert.Equal(t, "e10", log[TradeLogCap-1].ID)
}

func TestBuildLeaderboard(t *testing.T) {
	yes, no := true, false
	preds := []Prediction{
		{ID: "1", UserID: "alice", IsCorrect: &yes, Reward: 150},
		{ID: "2", UserID: "alice", IsCorrect: &no},
		{ID: "3", UserID: "bob", IsCorrect: &yes, Reward: 300},
		{ID: "4", UserID: "carol"},
	}

	board := BuildLeaderboard(preds)
	require.Len(t, board, 3)

	assert.Equal(t, "bob", board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 100.0, board[0].WinRate)

	assert.Equal(t, "alice", board[1].UserID)
	assert.Equal(t, 2, board[1].TotalPredictions)
	assert.Equal(t, 1, board[1].CorrectPredictions)
	assert.Equal(t, 50.0, board[1].WinRate)

	assert.Equal(t, "carol", board[2].UserID)
	assert.Equal(t, 0.0, board[2].WinRate)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2,500 HBAR", FormatHBAR(2500))
	assert.Equal(t, "1,234,567.5 HBAR", FormatHBAR(1234567.5))
	assert.Equal(t, "72.8 HBAR", FormatHBAR(72.8))
	assert.Equal(t, "0x1234...5678", FormatAddress("0x1234abcdef5678"))
	assert.Equal(t, "short", FormatAddress("short"))
	assert.Equal(t, "Will...", Truncate("Will BTC hit 100k?", 7))
}

func TestTruncate_MultibyteTitles(t *testing.T) {
	got := Truncate("¿Ganará Perú la Copa América?", 10)
	assert.Equal(t, "¿Ganará...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "¿Perú?", Truncate("¿Perú?", 6), "fits in runes even if not in bytes")
}
