package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/application/arenas"
	"github.com/alejandrodnm/polyhedx/internal/domain"
)

func runList(ctx context.Context, a *app, f flags) error {
	filter := arenas.Filter{
		OpenOnly: f.openOnly,
		Search:   f.search,
		Sort:     arenas.SortBy(f.sortBy),
	}
	if f.category != "" {
		cat, err := domain.ParseCategory(f.category)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		filter.Category = cat
	}
	switch filter.Sort {
	case arenas.SortNone, arenas.SortDeadline, arenas.SortPool, arenas.SortParticipants:
	default:
		return fmt.Errorf("list: %w: sort %q", domain.ErrInvalidInput, f.sortBy)
	}

	list, err := a.arenas.List(ctx, filter)
	if err != nil {
		return err
	}
	saved := make(map[string]bool, len(list))
	for _, ar := range list {
		ok, err := a.arenas.IsSaved(ctx, ar.ID)
		if err != nil {
			return err
		}
		saved[ar.ID] = ok
	}
	a.console.PrintArenas(list, saved, time.Now())
	return nil
}

func runShow(ctx context.Context, a *app, arenaID string) error {
	arena, err := a.arenas.Get(ctx, arenaID)
	if err != nil {
		return err
	}
	md, source := a.feed.MarketData(ctx, arena.ID)
	a.console.PrintArena(arena, md, string(source), time.Now())
	return nil
}

func runHistory(ctx context.Context, a *app, arenaID, timeframe string) error {
	tf, err := domain.ParseTimeframe(timeframe)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if _, err := a.arenas.Get(ctx, arenaID); err != nil {
		return err
	}
	samples, _ := a.feed.PriceHistory(ctx, arenaID, tf)
	a.console.PrintPriceHistory(samples, tf)
	return nil
}

func runActivity(ctx context.Context, a *app, arenaID string) error {
	if _, err := a.arenas.Get(ctx, arenaID); err != nil {
		return err
	}
	log, err := a.repo.TransactionLog(ctx, arenaID)
	if err != nil {
		return err
	}
	a.console.PrintActivity(log)
	return nil
}

func runResults(ctx context.Context, a *app, mine bool) error {
	trader := ""
	if mine {
		if err := a.connect(ctx); err != nil {
			return err
		}
		acct, _ := a.session.Account()
		trader = acct.Address
	}
	rows, err := a.results.Activity(ctx, trader)
	if err != nil {
		return err
	}
	sum, err := a.results.Summary(ctx, trader)
	if err != nil {
		return err
	}
	a.console.PrintResults(rows, sum)
	return nil
}

func runLeaderboard(ctx context.Context, a *app) error {
	board, err := a.results.Leaderboard(ctx)
	if err != nil {
		return err
	}
	a.console.PrintLeaderboard(board)
	return nil
}
