package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alejandrodnm/polyhedx/internal/application/task"
	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// Subscription alimenta una Window con precios en vivo hasta que se llama Stop.
type Subscription struct {
	arenaID string
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	remote  atomic.Bool
}

// Subscribe empieza a empujar muestras de arenaID en w. Si w está vacía se
// siembra con el histórico por defecto. Prefiere el stream remoto; si no hay
// o se cae, sigue con pasos sintéticos cada Cadence.
func (f *Feed) Subscribe(ctx context.Context, arenaID string, w *Window) *Subscription {
	if w.Len() == 0 {
		history, _ := f.PriceHistory(ctx, arenaID, domain.DefaultTimeframe)
		w.Seed(history)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		arenaID: arenaID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go f.run(ctx, sub, w)
	return sub
}

// Stop corta la suscripción y espera a que su goroutine termine. Es idempotente.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Remote indica si alguna muestra llegó por el stream remoto.
func (s *Subscription) Remote() bool {
	return s.remote.Load()
}

func (f *Feed) run(ctx context.Context, sub *Subscription, w *Window) {
	defer close(sub.done)

	if f.cfg.Stream != nil && f.streamRemote(ctx, sub, w) {
		return
	}

	synthetic := task.NewPeriodic(task.Config{
		Name:     "feed:" + sub.arenaID,
		Interval: f.cfg.Cadence,
	}, func(context.Context) error {
		prev, _ := w.Latest()
		w.Push(f.gen.Next(prev, f.now()))
		return nil
	})
	_ = synthetic.Run(ctx)
}

// streamRemote consume el stream remoto. Devuelve true si terminó por cancelación
// y false si el stream falló y hay que caer al sintético.
func (f *Feed) streamRemote(ctx context.Context, sub *Subscription, w *Window) bool {
	ch := make(chan domain.PriceSample, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- f.cfg.Stream.Stream(ctx, sub.arenaID, ch) }()

	for {
		select {
		case s := <-ch:
			if !validSample(s) {
				slog.Debug("feed: dropping out of range streamed sample", "arena", sub.arenaID,
					"yes", s.YesPrice, "no", s.NoPrice)
				continue
			}
			sub.remote.Store(true)
			w.Push(s)
		case err := <-errCh:
			if ctx.Err() != nil {
				return true
			}
			slog.Debug("feed: remote stream unavailable, using synthetic", "arena", sub.arenaID, "err", err)
			return false
		}
	}
}
