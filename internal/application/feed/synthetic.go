// Package feed produce series de precio por arena: remotas cuando el backend
// responde, sintéticas (random walk acotado) cuando no.
package feed

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

const (
	startPrice     = 0.65
	walkStep       = 0.02 // randomWalk = (r − 0.5) × walkStep
	trendAmplitude = 0.01 // trendComponent = sin(i/10) × trendAmplitude

	mockVolatility = 0.15
	mockPeriodMs   = 1e6

	streamBaseVolume = 500.0
)

// Generator es la estrategia sintética: determinista por (seed, arena) para History,
// y con su propio RNG para los pasos en vivo de Next.
type Generator struct {
	seed uint64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator crea un generador con la seed dada. Misma seed, mismas series.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Generator) arenaRand(arenaID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(arenaID))
	return rand.New(rand.NewPCG(g.seed, h.Sum64()))
}

// History genera tf.Points() muestras separadas tf.Interval(); la última cae en now.
//
//	trend += (r − 0.5)·0.02 + sin(i/10)·0.01
//	base  = clamp(base + trend, 0.1, 0.9)
//	no    = 1 − yes
//	vol   = baseVolume·(1 + |trend|·10)·(0.8 + r·0.4)
func (g *Generator) History(arenaID string, tf domain.Timeframe, now time.Time) []domain.PriceSample {
	rng := g.arenaRand(arenaID)
	points, interval, baseVolume := tf.Points(), tf.Interval(), tf.BaseVolume()

	out := make([]domain.PriceSample, 0, points)
	base, trend := startPrice, 0.0
	for i := 0; i < points; i++ {
		ts := now.Add(-time.Duration(points-1-i) * interval)

		randomWalk := (rng.Float64() - 0.5) * walkStep
		trendComponent := math.Sin(float64(i)/10) * trendAmplitude
		trend += randomWalk + trendComponent
		base = domain.ClampPrice(base + trend)

		volume := baseVolume * (1 + math.Abs(trend)*10) * (0.8 + rng.Float64()*0.4)

		out = append(out, domain.PriceSample{
			Timestamp: ts,
			YesPrice:  base,
			NoPrice:   1 - base,
			Volume:    volume,
			Label:     ts.Format("15:04"),
		})
	}
	return out
}

// Next da un paso de random walk desde prev. Se usa en el stream sintético.
func (g *Generator) Next(prev domain.PriceSample, now time.Time) domain.PriceSample {
	g.mu.Lock()
	step := (g.rng.Float64() - 0.5) * walkStep
	volFactor := 0.8 + g.rng.Float64()*0.4
	g.mu.Unlock()

	yes := prev.YesPrice
	if yes <= 0 {
		yes = startPrice
	}
	yes = domain.ClampPrice(yes + step)
	return domain.PriceSample{
		Timestamp: now,
		YesPrice:  yes,
		NoPrice:   1 - yes,
		Volume:    streamBaseVolume * volFactor,
		Label:     now.Format("15:04"),
	}
}

// MarketData es la foto sintética del mercado:
//
//	yes = clamp(0.65 + (sin(nowMs/1e6) + sin(seed/10))·0.15)
//
// seed es el primer byte del arenaID módulo 100.
func (g *Generator) MarketData(arenaID string, now time.Time) domain.MarketData {
	var seed float64
	if arenaID != "" {
		seed = float64(int(arenaID[0]) % 100)
	}
	variation := (math.Sin(float64(now.UnixMilli())/mockPeriodMs) + math.Sin(seed/10)) * mockVolatility
	yes := domain.ClampPrice(startPrice + variation)

	g.mu.Lock()
	volume := 15000 + g.rng.Float64()*10000
	openInterest := 8500 + g.rng.Float64()*5000
	liquidity := 25000 + g.rng.Float64()*15000
	g.mu.Unlock()

	return domain.MarketData{
		CurrentYesPrice: yes,
		CurrentNoPrice:  1 - yes,
		PriceHistory:    g.History(arenaID, domain.DefaultTimeframe, now),
		TotalVolume:     math.Round(volume),
		OpenInterest:    math.Round(openInterest),
		Liquidity:       math.Round(liquidity),
	}
}
