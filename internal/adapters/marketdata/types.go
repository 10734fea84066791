package marketdata

import (
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// pricePointDTO es un punto de precio tal como lo sirve el backend
// (timestamp en milisegundos Unix, etiqueta "HH:MM").
type pricePointDTO struct {
	Timestamp int64   `json:"timestamp"`
	YesPrice  float64 `json:"yesPrice"`
	NoPrice   float64 `json:"noPrice"`
	Volume    float64 `json:"volume"`
	Time      string  `json:"time"`
}

type marketDataDTO struct {
	CurrentYesPrice float64         `json:"currentYesPrice"`
	CurrentNoPrice  float64         `json:"currentNoPrice"`
	PriceHistory    []pricePointDTO `json:"priceHistory"`
	TotalVolume     float64         `json:"totalVolume"`
	OpenInterest    float64         `json:"openInterest"`
	Liquidity       float64         `json:"liquidity"`
}

func (p pricePointDTO) toDomain() domain.PriceSample {
	return domain.PriceSample{
		Timestamp: time.UnixMilli(p.Timestamp).UTC(),
		YesPrice:  p.YesPrice,
		NoPrice:   p.NoPrice,
		Volume:    p.Volume,
		Label:     p.Time,
	}
}

func (m marketDataDTO) toDomain() domain.MarketData {
	return domain.MarketData{
		CurrentYesPrice: m.CurrentYesPrice,
		CurrentNoPrice:  m.CurrentNoPrice,
		PriceHistory:    mapPoints(m.PriceHistory),
		TotalVolume:     m.TotalVolume,
		OpenInterest:    m.OpenInterest,
		Liquidity:       m.Liquidity,
	}
}

func mapPoints(points []pricePointDTO) []domain.PriceSample {
	out := make([]domain.PriceSample, 0, len(points))
	for _, p := range points {
		out = append(out, p.toDomain())
	}
	return out
}
