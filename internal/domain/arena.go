package domain

import (
	"fmt"
	"time"
)

// Category es la temática de un arena.
type Category string

const (
	CategoryCrypto  Category = "crypto"
	CategorySports  Category = "sports"
	CategoryCulture Category = "culture"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{CategoryCrypto, CategorySports, CategoryCulture}

// ParseCategory valida un string contra el conjunto cerrado de categorías.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Arena es una pregunta binaria (yes/no) con deadline y pool.
// Es la raíz del agregado: trades, log y predicciones referencian Arena.ID.
type Arena struct {
	ID            string
	Title         string
	Description   string
	Category      Category
	Deadline      time.Time
	PoolSize      float64
	YesVotes      float64
	NoVotes       float64
	IsResolved    bool
	CorrectAnswer *bool // nil hasta que se resuelve
	Participants  []string
	CreatedAt     time.Time
}

// YesProbability devuelve yesVotes / (yesVotes + noVotes).
// Sin votos devuelve 0.5 (prior sin información).
func (a Arena) YesProbability() float64 {
	total := a.YesVotes + a.NoVotes
	if total <= 0 {
		return 0.5
	}
	return a.YesVotes / total
}

// NoProbability es el complemento de YesProbability con el mismo prior.
func (a Arena) NoProbability() float64 {
	total := a.YesVotes + a.NoVotes
	if total <= 0 {
		return 0.5
	}
	return a.NoVotes / total
}

// Probability devuelve la probabilidad implícita del lado dado.
func (a Arena) Probability(side Side) float64 {
	if side == SideNo {
		return a.NoProbability()
	}
	return a.YesProbability()
}

// ApplyTrade actualiza el estado de mercado tras un trade confirmado.
// Solo las compras mueven los votos, ponderados por cantidad de shares;
// las ventas no retiran sentimiento de mercado.
func (a *Arena) ApplyTrade(action TradeAction, side Side, qty float64, trader string) {
	if action == ActionBuy && qty > 0 {
		if side == SideYes {
			a.YesVotes += qty
		} else {
			a.NoVotes += qty
		}
	}
	a.AddParticipant(trader)
}

// AddParticipant registra al trader una sola vez.
func (a *Arena) AddParticipant(trader string) {
	if trader == "" {
		return
	}
	for _, p := range a.Participants {
		if p == trader {
			return
		}
	}
	a.Participants = append(a.Participants, trader)
}

// Resolve fija el resultado. Solo puede ocurrir una vez.
func (a *Arena) Resolve(outcome bool) error {
	if a.IsResolved {
		return fmt.Errorf("arena %s: %w", a.ID, ErrAlreadyResolved)
	}
	answer := outcome
	a.IsResolved = true
	a.CorrectAnswer = &answer
	return nil
}

// Expired devuelve true si el deadline ya pasó.
func (a Arena) Expired(now time.Time) bool {
	return !a.Deadline.After(now)
}

// TimeRemaining formatea el tiempo restante como "2d 3h", "3h 5m" o "5m".
func (a Arena) TimeRemaining(now time.Time) string {
	diff := a.Deadline.Sub(now)
	if diff <= 0 {
		return "Expired"
	}
	days, hours, minutes, _ := splitDuration(diff)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// Countdown es el formato del panel de admin, con segundos.
func (a Arena) Countdown(now time.Time) string {
	diff := a.Deadline.Sub(now)
	if diff <= 0 {
		return "EXPIRED"
	}
	days, hours, minutes, seconds := splitDuration(diff)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// OutcomeLabel devuelve "YES"/"NO" para arenas resueltos y "" si no.
func (a Arena) OutcomeLabel() string {
	if !a.IsResolved || a.CorrectAnswer == nil {
		return ""
	}
	if *a.CorrectAnswer {
		return string(SideYes)
	}
	return string(SideNo)
}

func splitDuration(d time.Duration) (days, hours, minutes, seconds int) {
	total := int(d / time.Second)
	days = total / 86400
	hours = (total % 86400) / 3600
	minutes = (total % 3600) / 60
	seconds = total % 60
	return
}
