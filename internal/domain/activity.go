package domain

import "time"

// LogAction es la acción registrada en el feed de actividad de un arena.
type LogAction string

const (
	LogBought          LogAction = "Bought"
	LogSold            LogAction = "Sold"
	LogPayout          LogAction = "Payout"
	LogInsurancePayout LogAction = "Insurance Payout"
)

// Valid devuelve true para las cuatro acciones conocidas.
func (a LogAction) Valid() bool {
	switch a {
	case LogBought, LogSold, LogPayout, LogInsurancePayout:
		return true
	}
	return false
}

const (
	// TradeLogCap limita el feed cuando se añaden trades o actividad sintética.
	TradeLogCap = 30
	// SettlementLogCap limita el feed al escribir los payouts de liquidación.
	SettlementLogCap = 50

	// SystemActor es el actor de las entradas generadas por la liquidación.
	SystemActor = "system"
)

// Relative time labels used by the activity feed.
const (
	LabelJustNow = "just now"
	LabelMoments = "moments ago"
	LabelSettled = "settled"
)

// TransactionLogEntry es una entrada del feed de actividad (append-only, acotado).
type TransactionLogEntry struct {
	ID     string
	User   string
	Action LogAction
	Shares float64
	Price  float64
	Time   string // etiqueta relativa: "just now", "moments ago", "settled"
	At     time.Time
}

// PrependCapped inserta entries al principio del log (el más nuevo primero)
// y descarta las entradas más antiguas por encima de maxLen.
// entries se espera en orden cronológico: el último queda primero.
func PrependCapped(log []TransactionLogEntry, maxLen int, entries ...TransactionLogEntry) []TransactionLogEntry {
	out := make([]TransactionLogEntry, 0, len(log)+len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	out = append(out, log...)
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
