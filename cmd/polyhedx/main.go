package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyhedx/config"
)

type flags struct {
	configPath string
	dryRun     bool
	verbose    bool
	logFormat  string

	// modos
	list        bool
	show        string
	history     string
	create      bool
	seed        bool
	resolve     string
	save        string
	quote       string
	trade       string
	activity    string
	results     bool
	leaderboard bool
	watch       string

	// parámetros
	timeframe string
	category  string
	search    string
	sortBy    string
	openOnly  bool
	mine      bool

	title       string
	description string
	deadline    string
	pool        float64
	outcome     string

	side     string
	qty      float64
	sell     bool
	insure   bool
	coverage float64
	noInject bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "config/config.yaml", "path to config file")
	flag.BoolVar(&f.dryRun, "dry-run", false, "in-memory storage and synthetic feed only")
	flag.BoolVar(&f.verbose, "verbose", false, "set log level to debug")
	flag.StringVar(&f.logFormat, "format", "", "log format: text|json (overrides config)")

	flag.BoolVar(&f.list, "list", false, "list arenas")
	flag.StringVar(&f.show, "show", "", "show arena `id` with current market data")
	flag.StringVar(&f.history, "history", "", "print price history of arena `id`")
	flag.BoolVar(&f.create, "create", false, "create an arena (-title -desc -category -deadline -pool)")
	flag.BoolVar(&f.seed, "seed", false, "load demo arenas if there are none")
	flag.StringVar(&f.resolve, "resolve", "", "resolve arena `id` with -outcome yes|no and settle its trades")
	flag.StringVar(&f.save, "save", "", "toggle saved flag of arena `id`")
	flag.StringVar(&f.quote, "quote", "", "quote a trade on arena `id` (-side -qty -sell -insure -coverage)")
	flag.StringVar(&f.trade, "trade", "", "execute a trade on arena `id` (same flags as -quote)")
	flag.StringVar(&f.activity, "activity", "", "print activity feed of arena `id`")
	flag.BoolVar(&f.results, "results", false, "print your trades and results")
	flag.BoolVar(&f.leaderboard, "leaderboard", false, "print the leaderboard")
	flag.StringVar(&f.watch, "watch", "", "follow arena `id` live until Ctrl+C or STOP file")

	flag.StringVar(&f.timeframe, "timeframe", "24h", "price history window: 1h|24h|7d|30d")
	flag.StringVar(&f.category, "category", "", "filter by category: crypto|sports|culture")
	flag.StringVar(&f.search, "search", "", "filter by text in title or description")
	flag.StringVar(&f.sortBy, "sort", "", "sort by: deadline|pool|participants")
	flag.BoolVar(&f.openOnly, "open", false, "only unresolved arenas")
	flag.BoolVar(&f.mine, "mine", true, "with -results, only trades of the connected wallet")

	flag.StringVar(&f.title, "title", "", "arena title")
	flag.StringVar(&f.description, "desc", "", "arena description")
	flag.StringVar(&f.deadline, "deadline", "", "arena deadline, RFC3339 or a duration like 72h")
	flag.Float64Var(&f.pool, "pool", 1000, "arena pool size in HBAR")
	flag.StringVar(&f.outcome, "outcome", "", "resolution outcome: yes|no")

	flag.StringVar(&f.side, "side", "yes", "trade side: yes|no")
	flag.Float64Var(&f.qty, "qty", 0, "number of shares")
	flag.BoolVar(&f.sell, "sell", false, "sell instead of buy")
	flag.BoolVar(&f.insure, "insure", false, "add loss insurance")
	flag.Float64Var(&f.coverage, "coverage", 40, "insurance coverage percent (0-80)")
	flag.BoolVar(&f.noInject, "no-activity", false, "with -watch, do not inject synthetic activity")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		if !f.dryRun {
			slog.Error("failed to load config", "err", err, "path", f.configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	setupLogger(cfg.Log)

	if f.dryRun {
		cfg.Storage.Driver = "memory"
		cfg.API.Enabled = false
		cfg.Wallet.KeyFile = "" // clave efímera
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer a.close()

	if err := run(ctx, a, f); err != nil {
		slog.Error("command failed", "err", err)
		a.close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app, f flags) error {
	switch {
	case f.create:
		return runCreate(ctx, a, f)
	case f.seed:
		return runSeed(ctx, a)
	case f.resolve != "":
		return runResolve(ctx, a, f.resolve, f.outcome)
	case f.save != "":
		return runToggleSaved(ctx, a, f.save)
	case f.show != "":
		return runShow(ctx, a, f.show)
	case f.history != "":
		return runHistory(ctx, a, f.history, f.timeframe)
	case f.quote != "":
		return runQuote(ctx, a, f.quote, f)
	case f.trade != "":
		return runTrade(ctx, a, f.trade, f)
	case f.activity != "":
		return runActivity(ctx, a, f.activity)
	case f.results:
		return runResults(ctx, a, f.mine)
	case f.leaderboard:
		return runLeaderboard(ctx, a)
	case f.watch != "":
		return runWatch(ctx, a, f.watch, !f.noInject && a.cfg.Activity.Enabled)
	case f.list:
		return runList(ctx, a, f)
	}
	flag.Usage()
	return fmt.Errorf("no mode selected")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
