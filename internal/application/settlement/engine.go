// Package settlement resuelve arenas y liquida sus trades.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
)

// Result resume una resolución.
type Result struct {
	Arena       domain.Arena
	Outcome     bool
	Settled     int // trades liquidados en esta llamada
	Winners     int
	Losers      int
	TotalPayout float64
	Entries     []domain.TransactionLogEntry
	Predictions int
}

// Engine aplica el resultado de un arena. Las resoluciones se serializan
// para que dos llamadas concurrentes no liquiden dos veces.
type Engine struct {
	repo ports.Repository

	mu  sync.Mutex
	now func() time.Time
}

// NewEngine crea el motor de liquidación.
func NewEngine(repo ports.Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// Resolve fija el resultado del arena y liquida sus trades abiertos.
// Devuelve domain.ErrAlreadyResolved si el arena ya estaba resuelto.
func (e *Engine) Resolve(ctx context.Context, arenaID string, outcome bool) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	arena, err := e.repo.Arena(ctx, arenaID)
	if err != nil {
		return Result{}, fmt.Errorf("settlement.Resolve: %w", err)
	}
	if err := arena.Resolve(outcome); err != nil {
		return Result{}, fmt.Errorf("settlement.Resolve: %w", err)
	}

	// El flag se persiste primero: si algo falla después, un reintento no vuelve a liquidar.
	if err := e.repo.UpdateArena(ctx, arena); err != nil {
		return Result{}, fmt.Errorf("settlement.Resolve: update arena: %w", err)
	}

	res, err := e.settle(ctx, arena, outcome)
	if err != nil {
		return Result{}, fmt.Errorf("settlement.Resolve: %w", err)
	}

	slog.Info("arena resolved",
		"arena", arenaID,
		"outcome", arena.OutcomeLabel(),
		"settled", res.Settled,
		"winners", res.Winners,
		"losers", res.Losers,
		"payout", res.TotalPayout,
	)
	return res, nil
}

// Repair liquida los trades que siguen abiertos en un arena ya resuelto, con
// el resultado guardado. Es el camino de recuperación cuando Resolve persistió
// el flag pero falló al guardar los trades. Los trades ya liquidados no se tocan.
func (e *Engine) Repair(ctx context.Context, arenaID string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	arena, err := e.repo.Arena(ctx, arenaID)
	if err != nil {
		return Result{}, fmt.Errorf("settlement.Repair: %w", err)
	}
	if !arena.IsResolved || arena.CorrectAnswer == nil {
		return Result{}, fmt.Errorf("settlement.Repair: arena %s: %w: not resolved", arenaID, domain.ErrInvalidInput)
	}

	res, err := e.settle(ctx, arena, *arena.CorrectAnswer)
	if err != nil {
		return Result{}, fmt.Errorf("settlement.Repair: %w", err)
	}
	if res.Settled > 0 {
		slog.Warn("settled leftover open trades of resolved arena",
			"arena", arenaID,
			"outcome", arena.OutcomeLabel(),
			"settled", res.Settled,
			"payout", res.TotalPayout,
		)
	}
	return res, nil
}

// settle liquida los trades abiertos de un arena ya marcado como resuelto,
// escribe las entradas del feed y marca las predicciones.
func (e *Engine) settle(ctx context.Context, arena domain.Arena, outcome bool) (Result, error) {
	now := e.now().UTC()

	trades, err := e.repo.Trades(ctx, arena.ID)
	if err != nil {
		return Result{}, fmt.Errorf("load trades: %w", err)
	}
	settled, entries := domain.SettleTrades(trades, outcome, now)

	res := Result{Arena: arena, Outcome: outcome, Entries: entries}
	payouts := make(map[string]float64, len(settled))
	for i, t := range settled {
		if trades[i].IsOpen() {
			res.Settled++
			if t.Status == domain.TradeWon {
				res.Winners++
			} else {
				res.Losers++
			}
			res.TotalPayout += t.Payout
		}
		payouts[t.ID] = t.Payout
	}
	if res.Settled == 0 {
		res.Entries = nil
		n, err := e.markPredictions(ctx, arena.ID, outcome, payouts)
		res.Predictions = n
		return res, err
	}

	if err := e.repo.SaveTrades(ctx, arena.ID, settled); err != nil {
		slog.Error("arena resolved but trades left open, run resolve again to repair",
			"arena", arena.ID,
			"unsettled", res.Settled,
			"err", err,
		)
		return Result{}, fmt.Errorf("save trades: %w", err)
	}

	if len(entries) > 0 {
		log, err := e.repo.TransactionLog(ctx, arena.ID)
		if err != nil {
			return Result{}, fmt.Errorf("load log: %w", err)
		}
		log = domain.PrependCapped(log, domain.SettlementLogCap, entries...)
		if err := e.repo.SaveTransactionLog(ctx, arena.ID, log); err != nil {
			return Result{}, fmt.Errorf("save log: %w", err)
		}
	}

	n, err := e.markPredictions(ctx, arena.ID, outcome, payouts)
	if err != nil {
		return Result{}, err
	}
	res.Predictions = n
	return res, nil
}

// markPredictions marca las predicciones pendientes del arena. Reward es el
// payout del trade con el mismo ID si acertó, 0 si no.
func (e *Engine) markPredictions(ctx context.Context, arenaID string, outcome bool, payouts map[string]float64) (int, error) {
	preds, err := e.repo.Predictions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load predictions: %w", err)
	}
	marked := 0
	for i, p := range preds {
		if p.ArenaID != arenaID || p.Settled() {
			continue
		}
		correct := p.Choice == outcome
		preds[i].IsCorrect = &correct
		preds[i].Reward = 0
		if correct {
			preds[i].Reward = payouts[p.ID]
		}
		marked++
	}
	if marked == 0 {
		return 0, nil
	}
	if err := e.repo.SavePredictions(ctx, preds); err != nil {
		return 0, fmt.Errorf("save predictions: %w", err)
	}
	return marked, nil
}
