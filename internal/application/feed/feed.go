package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
)

// DefaultCadence es el intervalo del stream sintético.
const DefaultCadence = 5 * time.Second

// Source indica de dónde salió un dato.
type Source string

const (
	SourceRemote    Source = "remote"
	SourceSynthetic Source = "synthetic"
)

// Config configura el feed. Source y Stream son opcionales: nil = solo sintético.
type Config struct {
	Source  ports.MarketDataSource
	Stream  ports.PriceStream
	Cadence time.Duration
}

// Feed sirve market data con la misma interfaz venga del backend o del generador.
// Cualquier fallo remoto se registra en Debug y se sirve la versión sintética.
type Feed struct {
	cfg Config
	gen *Generator
	now func() time.Time
}

// New crea un Feed sobre el generador dado.
func New(gen *Generator, cfg Config) *Feed {
	if cfg.Cadence <= 0 {
		cfg.Cadence = DefaultCadence
	}
	return &Feed{cfg: cfg, gen: gen, now: time.Now}
}

// MarketData devuelve la foto actual del mercado y su origen.
func (f *Feed) MarketData(ctx context.Context, arenaID string) (domain.MarketData, Source) {
	if f.cfg.Source != nil {
		md, err := f.cfg.Source.MarketData(ctx, arenaID)
		switch {
		case err != nil:
			slog.Debug("feed: remote market data unavailable, using synthetic", "arena", arenaID, "err", err)
		case !validPrice(md.CurrentYesPrice) || !validPrice(md.CurrentNoPrice):
			slog.Debug("feed: remote market data out of range, using synthetic", "arena", arenaID,
				"yes", md.CurrentYesPrice, "no", md.CurrentNoPrice)
		default:
			return md, SourceRemote
		}
	}
	return f.gen.MarketData(arenaID, f.now()), SourceSynthetic
}

// PriceHistory devuelve la serie de la ventana tf. Un histórico remoto vacío
// o con algún precio fuera de (0,1) cuenta como no disponible.
func (f *Feed) PriceHistory(ctx context.Context, arenaID string, tf domain.Timeframe) ([]domain.PriceSample, Source) {
	if f.cfg.Source != nil {
		points, err := f.cfg.Source.PriceHistory(ctx, arenaID, tf)
		switch {
		case err != nil:
			slog.Debug("feed: remote history unavailable, using synthetic", "arena", arenaID, "timeframe", tf, "err", err)
		case len(points) == 0:
			slog.Debug("feed: remote history empty, using synthetic", "arena", arenaID, "timeframe", tf)
		case !validHistory(points):
			slog.Debug("feed: remote history out of range, using synthetic", "arena", arenaID, "timeframe", tf)
		default:
			return points, SourceRemote
		}
	}
	return f.gen.History(arenaID, tf, f.now()), SourceSynthetic
}

func validPrice(p float64) bool {
	return p > 0 && p < 1
}

func validSample(s domain.PriceSample) bool {
	return validPrice(s.YesPrice) && validPrice(s.NoPrice)
}

func validHistory(points []domain.PriceSample) bool {
	for _, p := range points {
		if !validSample(p) {
			return false
		}
	}
	return true
}
