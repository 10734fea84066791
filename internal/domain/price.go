package domain

import (
	"fmt"
	"time"
)

const (
	// MinPrice y MaxPrice acotan las probabilidades generadas por el feed sintético.
	MinPrice = 0.1
	MaxPrice = 0.9
)

// PriceSample es un punto de la serie yes/no de un arena.
// yes + no = 1 y ambos en [MinPrice, MaxPrice] por construcción.
type PriceSample struct {
	Timestamp time.Time
	YesPrice  float64
	NoPrice   float64
	Volume    float64
	Label     string // "15:04", solo para gráficas
}

// Timeframe es el token de ventana de la serie histórica.
type Timeframe string

const (
	Timeframe1H  Timeframe = "1h"
	Timeframe24H Timeframe = "24h"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
)

// DefaultTimeframe es la ventana usada cuando no se especifica ninguna.
const DefaultTimeframe = Timeframe24H

type timeframeSpec struct {
	interval   time.Duration
	points     int
	baseVolume float64
}

var timeframes = map[Timeframe]timeframeSpec{
	Timeframe1H:  {interval: 5 * time.Minute, points: 12, baseVolume: 500},
	Timeframe24H: {interval: 30 * time.Minute, points: 48, baseVolume: 1000},
	Timeframe7D:  {interval: 2 * time.Hour, points: 84, baseVolume: 2000},
	Timeframe30D: {interval: 6 * time.Hour, points: 120, baseVolume: 2000},
}

// ParseTimeframe valida el token contra el conjunto cerrado de ventanas.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframes[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return tf, nil
}

// Interval devuelve la separación entre muestras de la ventana.
func (tf Timeframe) Interval() time.Duration {
	return tf.spec().interval
}

// Points devuelve el número de muestras de la ventana.
func (tf Timeframe) Points() int {
	return tf.spec().points
}

// BaseVolume devuelve el volumen base por muestra de la ventana.
func (tf Timeframe) BaseVolume() float64 {
	return tf.spec().baseVolume
}

func (tf Timeframe) spec() timeframeSpec {
	if s, ok := timeframes[tf]; ok {
		return s
	}
	return timeframes[DefaultTimeframe]
}

// MarketData es la foto actual del mercado de un arena.
type MarketData struct {
	CurrentYesPrice float64
	CurrentNoPrice  float64
	PriceHistory    []PriceSample
	TotalVolume     float64
	OpenInterest    float64
	Liquidity       float64
}

// PriceFor devuelve el precio actual del lado dado.
func (m MarketData) PriceFor(side Side) float64 {
	if side == SideNo {
		return m.CurrentNoPrice
	}
	return m.CurrentYesPrice
}

// ClampPrice acota p a [MinPrice, MaxPrice].
func ClampPrice(p float64) float64 {
	if p < MinPrice {
		return MinPrice
	}
	if p > MaxPrice {
		return MaxPrice
	}
	return p
}
