package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// MarketDataSource es un backend remoto de precios por arena.
// Cualquier error se trata como "no disponible" y el feed cae al generador sintético.
type MarketDataSource interface {
	// MarketData devuelve la foto actual del mercado del arena.
	MarketData(ctx context.Context, arenaID string) (domain.MarketData, error)

	// PriceHistory devuelve la serie histórica para la ventana dada.
	PriceHistory(ctx context.Context, arenaID string, tf domain.Timeframe) ([]domain.PriceSample, error)
}

// PriceStream entrega muestras de precio en vivo para un arena.
type PriceStream interface {
	// Stream bloquea publicando muestras en out hasta que ctx se cancela (nil)
	// o la conexión no se puede abrir o se cae (error).
	Stream(ctx context.Context, arenaID string, out chan<- domain.PriceSample) error
}
