package domain

// ResultRow es un trade del usuario con el contexto de su arena.
type ResultRow struct {
	Trade         Trade
	ArenaTitle    string
	ArenaResolved bool
	Outcome       string // "YES", "NO" o "" si sigue abierto
}

// ResultSummary son los totales de la vista de resultados.
type ResultSummary struct {
	TotalRewards float64 // suma de payouts ganados
	Wins         int
	Total        int
	WinRate      float64 // porcentaje sobre trades liquidados
}

// Summarize calcula los totales de un listado de resultados.
func Summarize(rows []ResultRow) ResultSummary {
	var sum ResultSummary
	settled := 0
	for _, r := range rows {
		sum.Total++
		switch r.Trade.Status {
		case TradeWon:
			sum.Wins++
			sum.TotalRewards += r.Trade.Payout
			settled++
		case TradeLost:
			settled++
		}
	}
	if settled > 0 {
		sum.WinRate = float64(sum.Wins) / float64(settled) * 100
	}
	return sum
}
