package feed

import (
	"sort"
	"sync"

	"github.com/alejandrodnm/polyhedx/internal/domain"
)

// DefaultWindowSize es el máximo de muestras que conserva la gráfica en vivo.
const DefaultWindowSize = 100

// Window es el buffer rodante de muestras de un arena: acotado, ordenado por
// timestamp, y seguro para un escritor (la suscripción) y varios lectores.
type Window struct {
	mu      sync.RWMutex
	size    int
	samples []domain.PriceSample
}

// NewWindow crea una ventana de hasta size muestras (<= 0 usa DefaultWindowSize).
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{size: size}
}

// Seed reemplaza el contenido con samples (p.ej. el histórico inicial).
func (w *Window) Seed(samples []domain.PriceSample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = w.samples[:0]
	for _, s := range samples {
		w.insert(s)
	}
}

// Push añade una muestra y descarta las más antiguas por encima del máximo.
func (w *Window) Push(s domain.PriceSample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.insert(s)
}

func (w *Window) insert(s domain.PriceSample) {
	n := len(w.samples)
	if n == 0 || !s.Timestamp.Before(w.samples[n-1].Timestamp) {
		w.samples = append(w.samples, s)
	} else {
		// llegó desordenada: insertar en su posición
		i := sort.Search(n, func(i int) bool { return w.samples[i].Timestamp.After(s.Timestamp) })
		w.samples = append(w.samples, domain.PriceSample{})
		copy(w.samples[i+1:], w.samples[i:])
		w.samples[i] = s
	}
	if over := len(w.samples) - w.size; over > 0 {
		w.samples = append(w.samples[:0], w.samples[over:]...)
	}
}

// Samples devuelve una copia de las muestras, la más antigua primero.
func (w *Window) Samples() []domain.PriceSample {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.PriceSample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Latest devuelve la muestra más reciente.
func (w *Window) Latest() (domain.PriceSample, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.samples) == 0 {
		return domain.PriceSample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Len devuelve el número de muestras.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.samples)
}
