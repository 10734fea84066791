// Package activity genera actividad sintética en el feed de un arena para que
// el modo watch no se vea vacío.
package activity

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/application/task"
	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/google/uuid"
)

// DefaultInterval es la cadencia de inyección.
const DefaultInterval = 7 * time.Second

const (
	minShares   = 10
	shareSpread = 90   // qty en [10, 99]
	priceJitter = 0.02 // ±0.01 sobre el precio actual
	hexDigits   = "0123456789abcdef"
)

// PriceSource da el último precio conocido. *feed.Window lo implementa.
type PriceSource interface {
	Latest() (domain.PriceSample, bool)
}

// Config configura el inyector.
type Config struct {
	Interval time.Duration
	Seed     uint64 // 0 = aleatorio
}

// Injector añade una entrada Bought/Sold aleatoria al log del arena en cada tick.
type Injector struct {
	repo    ports.TradeRepository
	arenaID string
	prices  PriceSource
	task    *task.Periodic

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewInjector crea un inyector parado para arenaID.
func NewInjector(repo ports.TradeRepository, arenaID string, prices PriceSource, cfg Config) *Injector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	inj := &Injector{
		repo:    repo,
		arenaID: arenaID,
		prices:  prices,
		rng:     rand.New(rand.NewPCG(seed, seed>>1|1)),
		now:     time.Now,
	}
	inj.task = task.NewPeriodic(task.Config{
		Name:     "activity:" + arenaID,
		Interval: cfg.Interval,
	}, func(ctx context.Context) error {
		_, err := inj.Inject(ctx)
		return err
	})
	return inj
}

// Start arranca la inyección periódica.
func (i *Injector) Start(ctx context.Context) error {
	return i.task.Start(ctx)
}

// Stop para la inyección y espera al tick en curso.
func (i *Injector) Stop() {
	i.task.Stop()
}

// Inject añade una entrada sintética y la devuelve.
func (i *Injector) Inject(ctx context.Context) (domain.TransactionLogEntry, error) {
	entry := i.next()

	log, err := i.repo.TransactionLog(ctx, i.arenaID)
	if err != nil {
		return domain.TransactionLogEntry{}, fmt.Errorf("activity.Inject: %w", err)
	}
	log = domain.PrependCapped(log, domain.TradeLogCap, entry)
	if err := i.repo.SaveTransactionLog(ctx, i.arenaID, log); err != nil {
		return domain.TransactionLogEntry{}, fmt.Errorf("activity.Inject: %w", err)
	}
	return entry, nil
}

func (i *Injector) next() domain.TransactionLogEntry {
	yes, no := 0.5, 0.5
	if i.prices != nil {
		if s, ok := i.prices.Latest(); ok {
			yes, no = s.YesPrice, s.NoPrice
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	// compras sobre el precio YES, ventas sobre el NO
	action, base := domain.LogSold, no
	if i.rng.Float64() > 0.5 {
		action, base = domain.LogBought, yes
	}
	qty := float64(minShares + i.rng.IntN(shareSpread))
	price := domain.RoundCents(base + (i.rng.Float64()-0.5)*priceJitter)

	return domain.TransactionLogEntry{
		ID:     uuid.NewString(),
		User:   "0x" + i.hex(4) + "..." + i.hex(4),
		Action: action,
		Shares: qty,
		Price:  price,
		Time:   domain.LabelMoments,
		At:     i.now().UTC(),
	}
}

func (i *Injector) hex(n int) string {
	b := make([]byte, n)
	for k := range b {
		b[k] = hexDigits[i.rng.IntN(len(hexDigits))]
	}
	return string(b)
}
