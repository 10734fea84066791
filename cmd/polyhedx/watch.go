package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedx/internal/application/activity"
	"github.com/alejandrodnm/polyhedx/internal/application/feed"
	"github.com/alejandrodnm/polyhedx/internal/application/task"
	"golang.org/x/sync/errgroup"
)

const (
	stopFile       = "STOP"
	watchLogRows   = 5
	countdownEvery = time.Second
)

var errStopFile = errors.New("STOP file detected")

// runWatch sigue un arena en vivo: precios, actividad y cuenta atrás.
// Termina con Ctrl+C o al crear el archivo STOP.
func runWatch(ctx context.Context, a *app, arenaID string, inject bool) error {
	arena, err := a.arenas.Get(ctx, arenaID)
	if err != nil {
		return err
	}
	md, source := a.feed.MarketData(ctx, arena.ID)
	a.console.PrintArena(arena, md, string(source), time.Now())

	window := feed.NewWindow(a.cfg.Feed.WindowSize)
	g, gctx := errgroup.WithContext(ctx)

	sub := a.feed.Subscribe(gctx, arena.ID, window)
	defer sub.Stop()

	if inject && !arena.IsResolved {
		inj := activity.NewInjector(a.repo, arena.ID, window, activity.Config{
			Interval: a.cfg.ActivityInterval(),
			Seed:     a.cfg.Feed.Seed,
		})
		if err := inj.Start(gctx); err != nil {
			return err
		}
		defer inj.Stop()
	}

	var mu sync.Mutex
	current := arena

	refresh := task.NewPeriodic(task.Config{
		Name:     "refresh:" + arena.ID,
		Interval: a.cfg.RefreshInterval(),
	}, func(ctx context.Context) error {
		ar, err := a.arenas.Get(ctx, arena.ID)
		if err != nil {
			return err
		}
		mu.Lock()
		current = ar
		mu.Unlock()

		log, err := a.repo.TransactionLog(ctx, arena.ID)
		if err != nil {
			return err
		}
		if len(log) > watchLogRows {
			log = log[:watchLogRows]
		}
		a.console.PrintActivity(log)
		return nil
	})
	g.Go(func() error { return refresh.Run(gctx) })

	g.Go(func() error {
		ticker := time.NewTicker(countdownEvery)
		defer ticker.Stop()

		var lastSample time.Time
		expired := false
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if _, err := os.Stat(stopFile); err == nil {
					slog.Info("STOP file detected, leaving watch mode")
					os.Remove(stopFile)
					return errStopFile
				}

				mu.Lock()
				ar := current
				mu.Unlock()

				latest, ok := window.Latest()
				if !ok {
					continue
				}
				justExpired := !expired && ar.Expired(now)
				if latest.Timestamp.Equal(lastSample) && !justExpired {
					continue
				}
				lastSample = latest.Timestamp
				expired = ar.Expired(now)
				a.console.PrintWatchStatus(notify.WatchStatus{
					Arena:  ar,
					Latest: latest,
					Remote: sub.Remote(),
					Now:    now,
				})
			}
		}
	})

	slog.Info("watching arena: press Ctrl+C or create STOP file to exit",
		"arena", arena.ID,
		"cadence", a.cfg.FeedCadence(),
		"activity", inject,
	)

	err = g.Wait()
	if errors.Is(err, errStopFile) {
		return nil
	}
	return err
}
