package storage

// records.go: formato persistido de cada entidad.
//
// Todos los registros llevan "v". Los registros sin "v" (v0) son los escritos por
// la versión web original: se migran al leer (status vacío → open, coverage/payout
// ausentes → 0). Un registro que no valida se descarta con un warning; nunca
// tumba la carga de la lista completa.

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

const recordVersion = 1

// recordID acepta ids string o numéricos: la app web guardaba Date.now() tal cual.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

type arenaRecord struct {
	V             int       `json:"v"`
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Deadline      time.Time `json:"deadline"`
	PoolSize      float64   `json:"poolSize"`
	YesVotes      float64   `json:"yesVotes"`
	NoVotes       float64   `json:"noVotes"`
	IsResolved    bool      `json:"isResolved"`
	CorrectAnswer *bool     `json:"correctAnswer,omitempty"`
	Participants  []string  `json:"participants"`
	CreatedAt     time.Time `json:"createdAt"`
}

func arenaToRecord(a domain.Arena) arenaRecord {
	return arenaRecord{
		V:             recordVersion,
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Category:      string(a.Category),
		Deadline:      a.Deadline.UTC(),
		PoolSize:      a.PoolSize,
		YesVotes:      a.YesVotes,
		NoVotes:       a.NoVotes,
		IsResolved:    a.IsResolved,
		CorrectAnswer: a.CorrectAnswer,
		Participants:  a.Participants,
		CreatedAt:     a.CreatedAt.UTC(),
	}
}

func (r arenaRecord) toDomain() (domain.Arena, error) {
	if r.ID == "" {
		return domain.Arena{}, fmt.Errorf("arena record: missing id")
	}
	cat, err := domain.ParseCategory(r.Category)
	if err != nil {
		return domain.Arena{}, fmt.Errorf("arena record %s: %w", r.ID, err)
	}
	if r.YesVotes < 0 || r.NoVotes < 0 {
		return domain.Arena{}, fmt.Errorf("arena record %s: negative votes", r.ID)
	}
	if r.IsResolved && r.CorrectAnswer == nil {
		return domain.Arena{}, fmt.Errorf("arena record %s: resolved without answer", r.ID)
	}
	return domain.Arena{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      cat,
		Deadline:      r.Deadline,
		PoolSize:      r.PoolSize,
		YesVotes:      r.YesVotes,
		NoVotes:       r.NoVotes,
		IsResolved:    r.IsResolved,
		CorrectAnswer: r.CorrectAnswer,
		Participants:  r.Participants,
		CreatedAt:     r.CreatedAt,
	}, nil
}

// tradeRecord conserva los nombres de campo del formato v0 (side, stake, timestamp...).
type tradeRecord struct {
	V         int        `json:"v"`
	ID        recordID   `json:"id"`
	ArenaID   string     `json:"arenaId,omitempty"`
	Trader    string     `json:"trader,omitempty"`
	Side      string     `json:"side"`
	Action    string     `json:"action,omitempty"`
	Stake     float64    `json:"stake"`
	Price     float64    `json:"price"`
	Coverage  float64    `json:"coverage"`
	Premium   float64    `json:"premium"`
	Total     float64    `json:"total,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Status    string     `json:"status"`
	Payout    float64    `json:"payout"`
	SettledAt *time.Time `json:"settledAt,omitempty"`
}

func tradeToRecord(t domain.Trade) tradeRecord {
	return tradeRecord{
		V:         recordVersion,
		ID:        recordID(t.ID),
		ArenaID:   t.ArenaID,
		Trader:    t.Trader,
		Side:      string(t.Side),
		Action:    string(t.Action),
		Stake:     t.Stake,
		Price:     t.Price,
		Coverage:  t.Coverage,
		Premium:   t.Premium,
		Total:     t.Total,
		Timestamp: t.CreatedAt.UTC(),
		Status:    string(t.Status),
		Payout:    t.Payout,
		SettledAt: t.SettledAt,
	}
}

// migrate lleva un registro v0 al formato actual.
func (r *tradeRecord) migrate(arenaID string) {
	if r.V >= recordVersion {
		return
	}
	if r.Status == "" {
		r.Status = string(domain.TradeOpen)
	}
	if r.Action == "" {
		r.Action = string(domain.ActionBuy)
	}
	if r.ArenaID == "" {
		r.ArenaID = arenaID
	}
	if r.Total == 0 {
		r.Total = r.Stake*r.Price + r.Premium
	}
	r.V = recordVersion
}

func (r tradeRecord) toDomain() (domain.Trade, error) {
	if r.ID == "" {
		return domain.Trade{}, fmt.Errorf("trade record: missing id")
	}
	side, err := domain.ParseSide(r.Side)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("trade record %s: %w", r.ID, err)
	}
	status := domain.TradeStatus(r.Status)
	if !status.Valid() {
		return domain.Trade{}, fmt.Errorf("trade record %s: unknown status %q", r.ID, r.Status)
	}
	action := domain.TradeAction(r.Action)
	if action != domain.ActionBuy && action != domain.ActionSell {
		return domain.Trade{}, fmt.Errorf("trade record %s: unknown action %q", r.ID, r.Action)
	}
	if r.Stake <= 0 {
		return domain.Trade{}, fmt.Errorf("trade record %s: non-positive stake", r.ID)
	}
	return domain.Trade{
		ID:        string(r.ID),
		ArenaID:   r.ArenaID,
		Trader:    r.Trader,
		Side:      side,
		Action:    action,
		Stake:     r.Stake,
		Price:     r.Price,
		Coverage:  domain.CoverageFraction(r.Coverage * 100),
		Premium:   r.Premium,
		Total:     r.Total,
		CreatedAt: r.Timestamp,
		Status:    status,
		Payout:    r.Payout,
		SettledAt: r.SettledAt,
	}, nil
}

// txRecord es una entrada del feed de actividad.
type txRecord struct {
	V      int       `json:"v"`
	ID     recordID  `json:"id"`
	User   string    `json:"user"`
	Action string    `json:"action"`
	Shares float64   `json:"shares"`
	Price  float64   `json:"price"`
	Time   string    `json:"time"`
	At     time.Time `json:"at,omitempty"`
}

func txToRecord(e domain.TransactionLogEntry) txRecord {
	return txRecord{
		V:      recordVersion,
		ID:     recordID(e.ID),
		User:   e.User,
		Action: string(e.Action),
		Shares: e.Shares,
		Price:  e.Price,
		Time:   e.Time,
		At:     e.At.UTC(),
	}
}

func (r txRecord) toDomain() (domain.TransactionLogEntry, error) {
	action := domain.LogAction(r.Action)
	if !action.Valid() {
		return domain.TransactionLogEntry{}, fmt.Errorf("tx record %s: unknown action %q", r.ID, r.Action)
	}
	return domain.TransactionLogEntry{
		ID:     string(r.ID),
		User:   r.User,
		Action: action,
		Shares: r.Shares,
		Price:  r.Price,
		Time:   r.Time,
		At:     r.At,
	}, nil
}

type predictionRecord struct {
	V         int       `json:"v"`
	ID        recordID  `json:"id"`
	UserID    string    `json:"userId"`
	ArenaID   string    `json:"arenaId"`
	Choice    bool      `json:"choice"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	IsCorrect *bool     `json:"isCorrect,omitempty"`
	Reward    float64   `json:"reward,omitempty"`
}

func predictionToRecord(p domain.Prediction) predictionRecord {
	return predictionRecord{
		V:         recordVersion,
		ID:        recordID(p.ID),
		UserID:    p.UserID,
		ArenaID:   p.ArenaID,
		Choice:    p.Choice,
		Amount:    p.Amount,
		Timestamp: p.Timestamp.UTC(),
		IsCorrect: p.IsCorrect,
		Reward:    p.Reward,
	}
}

func (r predictionRecord) toDomain() (domain.Prediction, error) {
	if r.ID == "" || r.ArenaID == "" {
		return domain.Prediction{}, fmt.Errorf("prediction record %q: missing id or arena", r.ID)
	}
	return domain.Prediction{
		ID:        string(r.ID),
		UserID:    r.UserID,
		ArenaID:   r.ArenaID,
		Choice:    r.Choice,
		Amount:    r.Amount,
		Timestamp: r.Timestamp,
		IsCorrect: r.IsCorrect,
		Reward:    r.Reward,
	}, nil
}
