// Package trading cotiza y ejecuta trades simulados sobre un arena.
package trading

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/application/feed"
	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteInput es lo que elige el usuario antes de confirmar.
type QuoteInput struct {
	Side             domain.Side
	Action           domain.TradeAction
	Quantity         float64
	InsuranceEnabled bool
	CoveragePercent  float64
}

// Pricer da el precio de mercado actual. *feed.Feed lo implementa.
type Pricer interface {
	MarketData(ctx context.Context, arenaID string) (domain.MarketData, feed.Source)
}

// Wallet es la parte de la sesión que necesita el trading. *session.Session lo implementa.
type Wallet interface {
	Account() (domain.Account, bool)
	Balance() decimal.Decimal
	Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}

// Receipt es el resultado de un trade ejecutado.
type Receipt struct {
	Trade   domain.Trade
	Quote   domain.TradeQuote
	Balance decimal.Decimal
}

// Service ejecuta trades. Las ejecuciones se serializan.
type Service struct {
	repo   ports.Repository
	wallet Wallet
	prices Pricer // nil = probabilidad por votos

	mu  sync.Mutex
	now func() time.Time
}

// New crea el servicio. prices puede ser nil.
func New(repo ports.Repository, wallet Wallet, prices Pricer) *Service {
	return &Service{repo: repo, wallet: wallet, prices: prices, now: time.Now}
}

// Quote calcula el desglose de una orden sin ejecutarla.
func (s *Service) Quote(ctx context.Context, arenaID string, in QuoteInput) (domain.TradeQuote, error) {
	arena, err := s.repo.Arena(ctx, arenaID)
	if err != nil {
		return domain.TradeQuote{}, fmt.Errorf("trading.Quote: %w", err)
	}
	q, err := s.quote(ctx, arena, in)
	if err != nil {
		return domain.TradeQuote{}, fmt.Errorf("trading.Quote: %w", err)
	}
	return q, nil
}

func (s *Service) quote(ctx context.Context, arena domain.Arena, in QuoteInput) (domain.TradeQuote, error) {
	return domain.Quote(domain.QuoteRequest{
		Side:              in.Side,
		Action:            in.Action,
		Quantity:          in.Quantity,
		InsuranceEnabled:  in.InsuranceEnabled,
		CoveragePercent:   in.CoveragePercent,
		MarketProbability: s.marketPrice(ctx, arena, in.Side),
	})
}

func (s *Service) marketPrice(ctx context.Context, arena domain.Arena, side domain.Side) float64 {
	if s.prices != nil {
		md, _ := s.prices.MarketData(ctx, arena.ID)
		if p := md.PriceFor(side); p > 0 {
			return p
		}
	}
	return arena.Probability(side)
}

// Execute valida y ejecuta un trade: cobra el total, registra el trade abierto,
// añade la entrada al feed, mueve votos y apunta la predicción.
// Ninguna validación fallida deja estado modificado. Si la persistencia falla
// después de cobrar, se deshacen las escrituras y se reembolsa el cobro.
func (s *Service) Execute(ctx context.Context, arenaID string, in QuoteInput) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.wallet.Account()
	if !ok {
		return Receipt{}, fmt.Errorf("trading.Execute: %w", domain.ErrWalletNotConnected)
	}
	arena, err := s.repo.Arena(ctx, arenaID)
	if err != nil {
		return Receipt{}, fmt.Errorf("trading.Execute: %w", err)
	}
	now := s.now()
	switch {
	case arena.IsResolved:
		return Receipt{}, fmt.Errorf("trading.Execute: arena %s: %w", arena.ID, domain.ErrAlreadyResolved)
	case arena.Expired(now):
		return Receipt{}, fmt.Errorf("trading.Execute: arena %s: %w", arena.ID, domain.ErrArenaExpired)
	}

	q, err := s.quote(ctx, arena, in)
	if err != nil {
		return Receipt{}, fmt.Errorf("trading.Execute: %w", err)
	}
	total := decimal.NewFromFloat(q.Total).Round(2)
	if total.GreaterThan(s.wallet.Balance()) {
		return Receipt{}, fmt.Errorf("trading.Execute: %w: need %s, have %s",
			domain.ErrInsufficientBalance, total.StringFixed(2), s.wallet.Balance().StringFixed(2))
	}

	balance, err := s.wallet.Debit(ctx, total)
	if err != nil {
		return Receipt{}, fmt.Errorf("trading.Execute: debit: %w", err)
	}

	trade := domain.Trade{
		ID:        uuid.NewString(),
		ArenaID:   arena.ID,
		Trader:    acct.Address,
		Side:      q.Side,
		Action:    q.Action,
		Stake:     q.Quantity,
		Price:     q.Price,
		Coverage:  q.Coverage,
		Premium:   q.Premium,
		Total:     q.Total,
		CreatedAt: now.UTC(),
		Status:    domain.TradeOpen,
	}
	if err := s.record(ctx, arena.ID, trade); err != nil {
		if _, rerr := s.wallet.Credit(ctx, total); rerr != nil {
			slog.Error("trade refund failed",
				"arena", arena.ID,
				"amount", total.StringFixed(2),
				"err", rerr,
			)
			return Receipt{}, fmt.Errorf("trading.Execute: %w (refund: %v)", err, rerr)
		}
		return Receipt{}, fmt.Errorf("trading.Execute: %w", err)
	}

	slog.Info("trade executed",
		"arena", arena.ID,
		"id", trade.ID,
		"side", trade.Side,
		"action", trade.Action,
		"qty", trade.Stake,
		"price", trade.Price,
		"total", total.StringFixed(2),
		"balance", balance.StringFixed(2),
	)
	return Receipt{Trade: trade, Quote: q, Balance: balance}, nil
}

// record persiste el trade y sus efectos. Se llama después de cobrar.
// Si un paso falla, los anteriores se deshacen en orden inverso.
func (s *Service) record(ctx context.Context, arenaID string, trade domain.Trade) (err error) {
	var undo []func(context.Context) error
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			if uerr := undo[i](ctx); uerr != nil {
				slog.Error("trade rollback step failed", "arena", arenaID, "trade", trade.ID, "err", uerr)
			}
		}
	}()

	// 1. Releer el arena: otra resolución pudo entrar mientras se cobraba.
	arena, err := s.repo.Arena(ctx, arenaID)
	if err != nil {
		return fmt.Errorf("reload arena: %w", err)
	}
	if arena.IsResolved {
		return fmt.Errorf("arena %s: %w", arenaID, domain.ErrAlreadyResolved)
	}
	prevArena := arena
	prevArena.Participants = append([]string(nil), arena.Participants...)

	// 2. Trade
	trades, err := s.repo.Trades(ctx, arenaID)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	if err := s.repo.SaveTrades(ctx, arenaID, append([]domain.Trade{trade}, trades...)); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.repo.SaveTrades(ctx, arenaID, trades) })

	// 3. Feed de actividad
	log, err := s.repo.TransactionLog(ctx, arenaID)
	if err != nil {
		return fmt.Errorf("load log: %w", err)
	}
	entry := domain.TransactionLogEntry{
		ID:     trade.ID,
		User:   domain.FormatAddress(trade.Trader),
		Action: trade.Action.LogAction(),
		Shares: trade.Stake,
		Price:  trade.Price,
		Time:   domain.LabelJustNow,
		At:     trade.CreatedAt,
	}
	if err := s.repo.SaveTransactionLog(ctx, arenaID, domain.PrependCapped(log, domain.TradeLogCap, entry)); err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.repo.SaveTransactionLog(ctx, arenaID, log) })

	// 4. Votos y participantes
	arena.ApplyTrade(trade.Action, trade.Side, trade.Stake, trade.Trader)
	if err := s.repo.UpdateArena(ctx, arena); err != nil {
		return fmt.Errorf("update arena: %w", err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.repo.UpdateArena(ctx, prevArena) })

	// 5. Predicción
	preds, err := s.repo.Predictions(ctx)
	if err != nil {
		return fmt.Errorf("load predictions: %w", err)
	}
	preds = append(preds, domain.Prediction{
		ID:        trade.ID,
		UserID:    trade.Trader,
		ArenaID:   arenaID,
		Choice:    trade.Side == domain.SideYes,
		Amount:    trade.Stake,
		Timestamp: trade.CreatedAt,
	})
	if err := s.repo.SavePredictions(ctx, preds); err != nil {
		return fmt.Errorf("save predictions: %w", err)
	}
	return nil
}
