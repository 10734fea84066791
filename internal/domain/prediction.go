package domain

import (
	"sort"
	"time"
)

// Prediction es una entrada del historial global de predicciones del usuario.
// Se crea una por trade ejecutado (mismo ID) y se marca al resolver el arena.
type Prediction struct {
	ID        string
	UserID    string
	ArenaID   string
	Choice    bool // true = YES
	Amount    float64
	Timestamp time.Time
	IsCorrect *bool
	Reward    float64
}

// Settled devuelve true si la predicción ya tiene resultado.
func (p Prediction) Settled() bool {
	return p.IsCorrect != nil
}

// LeaderboardEntry es una fila del ranking.
type LeaderboardEntry struct {
	Rank               int
	UserID             string
	TotalPredictions   int
	CorrectPredictions int
	TotalRewards       float64
	WinRate            float64 // porcentaje 0–100 sobre predicciones resueltas
}

// BuildLeaderboard agrega el historial por usuario y lo ordena por
// rewards desc, aciertos desc y userID asc. Rank empieza en 1.
func BuildLeaderboard(preds []Prediction) []LeaderboardEntry {
	type agg struct {
		total, settled, correct int
		rewards                 float64
	}
	byUser := make(map[string]*agg)
	for _, p := range preds {
		if p.UserID == "" {
			continue
		}
		a, ok := byUser[p.UserID]
		if !ok {
			a = &agg{}
			byUser[p.UserID] = a
		}
		a.total++
		if p.Settled() {
			a.settled++
			if *p.IsCorrect {
				a.correct++
			}
		}
		a.rewards += p.Reward
	}

	entries := make([]LeaderboardEntry, 0, len(byUser))
	for user, a := range byUser {
		e := LeaderboardEntry{
			UserID:             user,
			TotalPredictions:   a.total,
			CorrectPredictions: a.correct,
			TotalRewards:       a.rewards,
		}
		if a.settled > 0 {
			e.WinRate = float64(a.correct) / float64(a.settled) * 100
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalRewards != entries[j].TotalRewards {
			return entries[i].TotalRewards > entries[j].TotalRewards
		}
		if entries[i].CorrectPredictions != entries[j].CorrectPredictions {
			return entries[i].CorrectPredictions > entries[j].CorrectPredictions
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
