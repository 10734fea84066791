package domain

import (
	"fmt"
	"math"
)

const (
	// MaxCoverage limita la exposición del asegurador al 80% del stake.
	MaxCoverage = 0.8

	premiumFloor = 0.05
	premiumSlope = 0.10

	// neutralPrice es el prior usado cuando el precio de mercado no está disponible.
	neutralPrice = 0.5
)

// PremiumRate calcula la tasa de prima del seguro para una probabilidad de mercado.
//
// Fórmula: rate = 0.05 + 0.10 × |p − 0.5|
// Cuanto más desequilibrado el mercado, más cara la cobertura; suelo del 5%.
func PremiumRate(marketProbability float64) float64 {
	return premiumFloor + premiumSlope*math.Abs(marketProbability-neutralPrice)
}

// CoverageFraction convierte un porcentaje de cobertura en fracción, acotada a [0, 0.8].
func CoverageFraction(coveragePercent float64) float64 {
	return math.Min(MaxCoverage, math.Max(0, coveragePercent/100))
}

// QuoteRequest son los parámetros de una orden todavía no confirmada.
type QuoteRequest struct {
	Side              Side
	Action            TradeAction
	Quantity          float64
	InsuranceEnabled  bool
	CoveragePercent   float64 // 0–80, en pasos de 5 por convención de UI
	MarketProbability float64 // precio actual del lado elegido
}

// TradeQuote es el desglose económico de un trade antes de confirmarlo.
type TradeQuote struct {
	Side        Side
	Action      TradeAction
	Quantity    float64
	Price       float64
	Coverage    float64
	PremiumRate float64
	Premium     float64
	Total       float64
	MaxLoss     float64
}

// Quote calcula precio, prima, total y pérdida máxima de una orden.
// Es pura: se recalcula con cada cambio de input, sin cache.
//
//	price    = round(p, 2)            (p = 0 → 0.5)
//	premium  = insured ? stake × coverage × rate : 0
//	total    = qty × price + premium
//	maxLoss  = insured ? stake × (1 − coverage) : stake
func Quote(req QuoteRequest) (TradeQuote, error) {
	if req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		return TradeQuote{}, fmt.Errorf("domain.Quote: %w: %v", ErrInvalidQuantity, req.Quantity)
	}
	if req.Side != SideYes && req.Side != SideNo {
		return TradeQuote{}, fmt.Errorf("domain.Quote: %w: side %q", ErrInvalidInput, req.Side)
	}
	action := req.Action
	if action == "" {
		action = ActionBuy
	}

	prob := req.MarketProbability
	if prob <= 0 || math.IsNaN(prob) {
		prob = neutralPrice
	}
	price := RoundCents(prob)

	stake := req.Quantity
	rate := PremiumRate(prob)

	q := TradeQuote{
		Side:        req.Side,
		Action:      action,
		Quantity:    req.Quantity,
		Price:       price,
		PremiumRate: rate,
		MaxLoss:     stake,
	}
	if req.InsuranceEnabled {
		q.Coverage = CoverageFraction(req.CoveragePercent)
		q.Premium = stake * q.Coverage * rate
		q.MaxLoss = stake * (1 - q.Coverage)
	}
	q.Total = req.Quantity*price + q.Premium
	return q, nil
}

// RoundCents redondea a 2 decimales.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
