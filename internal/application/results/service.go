// Package results agrega trades y predicciones para las vistas de resultados
// y ranking.
package results

import (
	"context"
	"fmt"
	"sort"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
)

// Service lee el estado persistido; no escribe nada.
type Service struct {
	arenas ports.ArenaRepository
	trades ports.TradeRepository
	preds  ports.PredictionRepository
}

// New crea el servicio.
func New(repo ports.Repository) *Service {
	return &Service{arenas: repo, trades: repo, preds: repo}
}

// Activity devuelve los trades de todos los arenas, el más reciente primero.
// Si trader no está vacío filtra por ese trader.
func (s *Service) Activity(ctx context.Context, trader string) ([]domain.ResultRow, error) {
	arenas, err := s.arenas.Arenas(ctx)
	if err != nil {
		return nil, fmt.Errorf("results.Activity: %w", err)
	}

	var rows []domain.ResultRow
	for _, a := range arenas {
		trades, err := s.trades.Trades(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("results.Activity: arena %s: %w", a.ID, err)
		}
		for _, t := range trades {
			if trader != "" && t.Trader != trader {
				continue
			}
			rows = append(rows, domain.ResultRow{
				Trade:         t,
				ArenaTitle:    a.Title,
				ArenaResolved: a.IsResolved,
				Outcome:       a.OutcomeLabel(),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Trade.CreatedAt.After(rows[j].Trade.CreatedAt)
	})
	return rows, nil
}

// Summary calcula los totales de Activity(ctx, trader).
func (s *Service) Summary(ctx context.Context, trader string) (domain.ResultSummary, error) {
	rows, err := s.Activity(ctx, trader)
	if err != nil {
		return domain.ResultSummary{}, fmt.Errorf("results.Summary: %w", err)
	}
	return domain.Summarize(rows), nil
}

// Leaderboard construye el ranking a partir del historial de predicciones.
func (s *Service) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	preds, err := s.preds.Predictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("results.Leaderboard: %w", err)
	}
	return domain.BuildLeaderboard(preds), nil
}
