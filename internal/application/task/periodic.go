// Package task contiene el runner de tareas periódicas con ciclo de vida explícito.
package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning se devuelve al llamar Start dos veces sin Stop.
var ErrAlreadyRunning = errors.New("task already running")

// Func es el trabajo de cada tick. Un error se loguea y el loop sigue.
type Func func(ctx context.Context) error

// Config configura una tarea periódica.
type Config struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool // ejecuta un tick al arrancar, antes del primer intervalo
}

// Periodic ejecuta Func cada Interval hasta que se cancela el contexto o se llama Stop.
// Es el reemplazo de los setInterval sueltos: quien la arranca es dueño de pararla.
type Periodic struct {
	cfg Config
	fn  Func

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPeriodic crea una tarea parada.
func NewPeriodic(cfg Config, fn Func) *Periodic {
	return &Periodic{cfg: cfg, fn: fn}
}

// Run bloquea ejecutando el loop hasta que ctx se cancele.
func (p *Periodic) Run(ctx context.Context) error {
	slog.Debug("task starting", "task", p.cfg.Name, "interval", p.cfg.Interval)

	if p.cfg.RunImmediately {
		p.tick(ctx)
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("task stopped", "task", p.cfg.Name)
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Start lanza Run en una goroutine propia.
func (p *Periodic) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()
	return nil
}

// Stop cancela la tarea y espera a que el tick en curso termine. Es idempotente.
func (p *Periodic) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Periodic) tick(ctx context.Context) {
	if err := p.fn(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("task tick failed", "task", p.cfg.Name, "err", err)
	}
}
