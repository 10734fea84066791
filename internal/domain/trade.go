package domain

import (
	"fmt"
	"strings"
	"time"
)

// Side es la posición que toma un trade sobre el resultado del arena.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// ParseSide acepta "yes"/"no" en cualquier capitalización.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y":
		return SideYes, nil
	case "NO", "N":
		return SideNo, nil
	}
	return "", fmt.Errorf("%w: side %q", ErrInvalidInput, s)
}

// Wins devuelve true si este lado gana con el outcome dado (true = YES correcto).
func (s Side) Wins(outcome bool) bool {
	return (outcome && s == SideYes) || (!outcome && s == SideNo)
}

// TradeAction distingue compras de ventas.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// LogAction devuelve la etiqueta del feed de actividad para esta acción.
func (a TradeAction) LogAction() LogAction {
	if a == ActionSell {
		return LogSold
	}
	return LogBought
}

// TradeStatus es el ciclo de vida de un trade: open → won | lost.
type TradeStatus string

const (
	TradeOpen TradeStatus = "open"
	TradeWon  TradeStatus = "won"
	TradeLost TradeStatus = "lost"
)

// Valid devuelve true para los tres estados conocidos.
func (s TradeStatus) Valid() bool {
	return s == TradeOpen || s == TradeWon || s == TradeLost
}

// Trade es un trade simulado confirmado por el usuario.
// Se crea en estado open y se muta exactamente una vez, al liquidar.
type Trade struct {
	ID        string
	ArenaID   string
	Trader    string
	Side      Side
	Action    TradeAction
	Stake     float64 // cantidad de shares
	Price     float64 // probabilidad de ejecución en [0,1]
	Coverage  float64 // fracción asegurada, 0..0.8
	Premium   float64
	Total     float64
	CreatedAt time.Time
	Status    TradeStatus
	Payout    float64 // 0 hasta liquidar
	SettledAt *time.Time
}

// IsOpen devuelve true si el trade todavía no se ha liquidado.
func (t Trade) IsOpen() bool {
	return t.Status == TradeOpen
}

// NetResult devuelve el resultado mostrado en el feed de resultados:
// +payout si ganó, -(stake-payout) si perdió, 0 si sigue abierto.
func (t Trade) NetResult() float64 {
	switch t.Status {
	case TradeWon:
		return t.Payout
	case TradeLost:
		loss := t.Stake - t.Payout
		if loss < 0 {
			loss = 0
		}
		return -loss
	}
	return 0
}
