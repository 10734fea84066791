package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// ArenaRepository persiste los arenas y el flag de guardado.
type ArenaRepository interface {
	Arenas(ctx context.Context) ([]domain.Arena, error)
	Arena(ctx context.Context, id string) (domain.Arena, error)
	SaveArenas(ctx context.Context, arenas []domain.Arena) error
	UpdateArena(ctx context.Context, arena domain.Arena) error

	Saved(ctx context.Context, arenaID string) (bool, error)
	SetSaved(ctx context.Context, arenaID string, saved bool) error
}

// TradeRepository persiste trades y feed de actividad por arena.
type TradeRepository interface {
	Trades(ctx context.Context, arenaID string) ([]domain.Trade, error)
	SaveTrades(ctx context.Context, arenaID string, trades []domain.Trade) error

	TransactionLog(ctx context.Context, arenaID string) ([]domain.TransactionLogEntry, error)
	SaveTransactionLog(ctx context.Context, arenaID string, log []domain.TransactionLogEntry) error
}

// PredictionRepository persiste el historial global de predicciones.
type PredictionRepository interface {
	Predictions(ctx context.Context) ([]domain.Prediction, error)
	SavePredictions(ctx context.Context, preds []domain.Prediction) error
}

// Repository agrupa todo el estado persistido.
type Repository interface {
	ArenaRepository
	TradeRepository
	PredictionRepository
}
