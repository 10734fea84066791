package main

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/polyhedx/internal/application/trading"
	"github.com/alejandrodnm/polyhedx/internal/domain"
)

func quoteInput(f flags) (trading.QuoteInput, error) {
	side, err := domain.ParseSide(f.side)
	if err != nil {
		return trading.QuoteInput{}, err
	}
	action := domain.ActionBuy
	if f.sell {
		action = domain.ActionSell
	}
	return trading.QuoteInput{
		Side:             side,
		Action:           action,
		Quantity:         f.qty,
		InsuranceEnabled: f.insure,
		CoveragePercent:  f.coverage,
	}, nil
}

func runQuote(ctx context.Context, a *app, arenaID string, f flags) error {
	in, err := quoteInput(f)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	q, err := a.trading.Quote(ctx, arenaID, in)
	if err != nil {
		return err
	}
	a.console.PrintQuote(q)
	return nil
}

func runTrade(ctx context.Context, a *app, arenaID string, f flags) error {
	in, err := quoteInput(f)
	if err != nil {
		return fmt.Errorf("trade: %w", err)
	}
	if err := a.connect(ctx); err != nil {
		return err
	}

	r, err := a.trading.Execute(ctx, arenaID, in)
	if err != nil {
		return err
	}
	a.console.PrintQuote(r.Quote)
	a.console.PrintTrade(r.Trade, r.Balance)
	return nil
}
