package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// WinMultiplier es el múltiplo fijo que cobra un trade ganador sobre su stake.
const WinMultiplier = 1.5

// SettleTrade calcula el estado terminal y el payout de un trade.
//
//   - gana  (lado == outcome): payout = round(stake × 1.5), status won
//   - pierde:                  payout = round(stake × coverage), status lost
//
// ok es false si el trade ya estaba liquidado: se devuelve sin cambios.
func SettleTrade(t Trade, outcome bool, now time.Time) (settled Trade, ok bool) {
	if !t.IsOpen() {
		return t, false
	}
	settledAt := now
	t.SettledAt = &settledAt
	if t.Side.Wins(outcome) {
		t.Status = TradeWon
		t.Payout = math.Round(t.Stake * WinMultiplier)
	} else {
		t.Status = TradeLost
		t.Payout = math.Round(t.Stake * t.Coverage)
	}
	return t, true
}

// SettleTrades liquida todos los trades abiertos con el outcome dado y devuelve
// los trades actualizados (mismo orden) y las entradas de log generadas:
// un "Payout" por ganador y un "Insurance Payout" por perdedor con payout > 0.
// Los trades ya liquidados no se tocan ni generan entradas.
func SettleTrades(trades []Trade, outcome bool, now time.Time) ([]Trade, []TransactionLogEntry) {
	out := make([]Trade, len(trades))
	var entries []TransactionLogEntry
	for i, t := range trades {
		settled, ok := SettleTrade(t, outcome, now)
		out[i] = settled
		if !ok {
			continue
		}
		switch {
		case settled.Status == TradeWon:
			entries = append(entries, settlementEntry(LogPayout, settled.Payout, now))
		case settled.Payout > 0:
			entries = append(entries, settlementEntry(LogInsurancePayout, settled.Payout, now))
		}
	}
	return out, entries
}

func settlementEntry(action LogAction, payout float64, now time.Time) TransactionLogEntry {
	return TransactionLogEntry{
		ID:     uuid.New().String(),
		User:   SystemActor,
		Action: action,
		Shares: 0,
		Price:  payout,
		Time:   LabelSettled,
		At:     now,
	}
}
