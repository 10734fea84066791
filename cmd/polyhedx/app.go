package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polyhedx/config"
	"github.com/alejandrodnm/polyhedx/internal/adapters/marketdata"
	"github.com/alejandrodnm/polyhedx/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedx/internal/adapters/redisstore"
	"github.com/alejandrodnm/polyhedx/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedx/internal/adapters/wallet"
	"github.com/alejandrodnm/polyhedx/internal/application/arenas"
	"github.com/alejandrodnm/polyhedx/internal/application/feed"
	"github.com/alejandrodnm/polyhedx/internal/application/results"
	"github.com/alejandrodnm/polyhedx/internal/application/session"
	"github.com/alejandrodnm/polyhedx/internal/application/settlement"
	"github.com/alejandrodnm/polyhedx/internal/application/trading"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/shopspring/decimal"
)

// app agrupa las dependencias ya construidas de un comando.
type app struct {
	cfg *config.Config

	kv      ports.KVStore
	repo    *storage.Repository
	feed    *feed.Feed
	session *session.Session

	arenas     *arenas.Service
	trading    *trading.Service
	settlement *settlement.Engine
	results    *results.Service
	console    *notify.Console

	closeOnce sync.Once
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	kv, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	repo := storage.NewRepository(kv)

	w, err := wallet.NewLocal(wallet.Config{
		PrivateKeyHex:  cfg.Wallet.PrivateKey,
		KeyFile:        cfg.Wallet.KeyFile,
		InitialBalance: decimal.NewFromFloat(cfg.Wallet.InitialBalance),
	}, kv)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("newApp: %w", err)
	}
	sess := session.New(w)

	feedCfg := feed.Config{Cadence: cfg.FeedCadence()}
	if cfg.API.Enabled {
		feedCfg.Source = marketdata.NewClient(cfg.API.BaseURL)
		feedCfg.Stream = marketdata.NewStream(cfg.API.WSURL)
	}
	fd := feed.New(feed.NewGenerator(cfg.Feed.Seed), feedCfg)

	a := &app{
		cfg:        cfg,
		kv:         kv,
		repo:       repo,
		feed:       fd,
		session:    sess,
		arenas:     arenas.New(repo),
		trading:    trading.New(repo, sess, fd),
		settlement: settlement.NewEngine(repo),
		results:    results.New(repo),
		console:    notify.NewConsole(),
	}

	if _, err := a.arenas.SeedIfEmpty(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("newApp: %w", err)
	}

	slog.Debug("polyhedx ready",
		"storage", cfg.Storage.Driver,
		"api", cfg.API.Enabled,
		"wallet", w.Address(),
	)
	return a, nil
}

func openKV(ctx context.Context, cfg *config.Config) (ports.KVStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryKV(), nil
	case "redis":
		kv, err := redisstore.New(ctx, redisstore.Config{
			Addr:      cfg.Storage.Redis.Addr,
			Password:  cfg.Storage.Redis.Password,
			DB:        cfg.Storage.Redis.DB,
			Namespace: cfg.Storage.Redis.Namespace,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return kv, nil
	default:
		kv, err := storage.NewSQLiteKV(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.Storage.DSN, err)
		}
		return kv, nil
	}
}

// connect conecta la wallet local; los comandos que mueven saldo lo necesitan.
func (a *app) connect(ctx context.Context) error {
	if a.session.Connected() {
		return nil
	}
	if _, err := a.session.Connect(ctx); err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}
	return nil
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		if err := a.kv.Close(); err != nil {
			slog.Warn("closing storage", "err", err)
		}
	})
}
