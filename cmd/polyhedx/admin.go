package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedx/internal/application/arenas"
	"github.com/alejandrodnm/polyhedx/internal/domain"
)

func runCreate(ctx context.Context, a *app, f flags) error {
	cat, err := domain.ParseCategory(f.category)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	deadline, err := parseDeadline(f.deadline, time.Now())
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	arena, err := a.arenas.Create(ctx, arenas.NewArena{
		Title:       f.title,
		Description: f.description,
		Category:    cat,
		Deadline:    deadline,
		PoolSize:    f.pool,
	})
	if err != nil {
		return err
	}
	a.console.PrintArenas([]domain.Arena{arena}, nil, time.Now())
	fmt.Printf("created arena %s\n", arena.ID)
	return nil
}

// parseDeadline acepta RFC3339, "2006-01-02" o una duración relativa ("72h").
func parseDeadline(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: -deadline is required", domain.ErrInvalidInput)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: deadline %q (use RFC3339, YYYY-MM-DD or a duration)", domain.ErrInvalidInput, s)
}

func runSeed(ctx context.Context, a *app) error {
	n, err := a.arenas.SeedIfEmpty(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("arenas already present, nothing seeded")
		return nil
	}
	fmt.Printf("seeded %d demo arenas\n", n)
	return nil
}

func runResolve(ctx context.Context, a *app, arenaID, outcome string) error {
	side, err := domain.ParseSide(outcome)
	if err != nil {
		return fmt.Errorf("resolve: -outcome must be yes or no: %w", err)
	}

	res, err := a.settlement.Resolve(ctx, arenaID, side == domain.SideYes)
	if errors.Is(err, domain.ErrAlreadyResolved) {
		// un resolve anterior pudo dejar trades abiertos
		repaired, rerr := a.settlement.Repair(ctx, arenaID)
		if rerr != nil || repaired.Settled == 0 {
			return err
		}
		res, err = repaired, nil
	}
	if err != nil {
		return err
	}
	a.console.PrintSettlement(notify.SettlementInput{
		Arena:       res.Arena,
		Settled:     res.Settled,
		Winners:     res.Winners,
		Losers:      res.Losers,
		TotalPayout: res.TotalPayout,
		Entries:     res.Entries,
	})
	slog.Debug("predictions marked", "arena", arenaID, "count", res.Predictions)
	return nil
}

func runToggleSaved(ctx context.Context, a *app, arenaID string) error {
	saved, err := a.arenas.ToggleSaved(ctx, arenaID)
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("arena %s saved\n", arenaID)
	} else {
		fmt.Printf("arena %s removed from saved\n", arenaID)
	}
	return nil
}
