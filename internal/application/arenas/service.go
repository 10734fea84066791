// Package arenas gestiona el ciclo de vida administrativo de los arenas:
// alta, listado, guardado y semilla de demo.
package arenas

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/google/uuid"
)

const (
	// DefaultPoolSize es el pool que propone el formulario de alta.
	DefaultPoolSize = 1000

	maxTitleLen = 200
)

// NewArena son los campos que rellena el admin.
type NewArena struct {
	Title       string
	Description string
	Category    domain.Category
	Deadline    time.Time
	PoolSize    float64
}

// SortBy es el criterio de orden del listado.
type SortBy string

const (
	SortNone         SortBy = ""
	SortDeadline     SortBy = "deadline"
	SortPool         SortBy = "pool"
	SortParticipants SortBy = "participants"
)

// Filter filtra el listado. El zero value lista todo en orden de creación.
type Filter struct {
	OpenOnly bool
	Category domain.Category // "" = todas
	Search   string          // case-insensitive sobre título y descripción
	Sort     SortBy
}

// Service es el caso de uso de administración de arenas.
type Service struct {
	repo ports.ArenaRepository
	now  func() time.Time
}

// New crea el servicio.
func New(repo ports.ArenaRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create valida y da de alta un arena. El nuevo queda el primero de la lista.
func (s *Service) Create(ctx context.Context, in NewArena) (domain.Arena, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	now := s.now()

	switch {
	case title == "":
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: title is required", domain.ErrInvalidInput)
	case len(title) > maxTitleLen:
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: title longer than %d", domain.ErrInvalidInput, maxTitleLen)
	case desc == "":
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: description is required", domain.ErrInvalidInput)
	case in.Deadline.IsZero():
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: deadline is required", domain.ErrInvalidInput)
	case !in.Deadline.After(now):
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: deadline must be in the future", domain.ErrInvalidInput)
	case in.PoolSize < 0:
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w: negative pool size", domain.ErrInvalidInput)
	}
	cat, err := domain.ParseCategory(string(in.Category))
	if err != nil {
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w", err)
	}

	arena := domain.Arena{
		ID:          uuid.NewString(),
		Title:       title,
		Description: desc,
		Category:    cat,
		Deadline:    in.Deadline.UTC(),
		PoolSize:    in.PoolSize,
		CreatedAt:   now.UTC(),
	}

	existing, err := s.repo.Arenas(ctx)
	if err != nil {
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w", err)
	}
	if err := s.repo.SaveArenas(ctx, append([]domain.Arena{arena}, existing...)); err != nil {
		return domain.Arena{}, fmt.Errorf("arenas.Create: %w", err)
	}

	slog.Info("arena created", "id", arena.ID, "category", arena.Category, "deadline", arena.Deadline)
	return arena, nil
}

// List devuelve los arenas que pasan el filtro.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Arena, error) {
	all, err := s.repo.Arenas(ctx)
	if err != nil {
		return nil, fmt.Errorf("arenas.List: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Arena, 0, len(all))
	for _, a := range all {
		if f.OpenOnly && a.IsResolved {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		out = append(out, a)
	}

	switch f.Sort {
	case SortDeadline:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	case SortPool:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PoolSize > out[j].PoolSize })
	case SortParticipants:
		sort.SliceStable(out, func(i, j int) bool { return len(out[i].Participants) > len(out[j].Participants) })
	}
	return out, nil
}

// Get devuelve un arena o domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.Arena, error) {
	a, err := s.repo.Arena(ctx, id)
	if err != nil {
		return domain.Arena{}, fmt.Errorf("arenas.Get: %w", err)
	}
	return a, nil
}

// ToggleSaved invierte el flag de guardado y devuelve el nuevo valor.
func (s *Service) ToggleSaved(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.Arena(ctx, id); err != nil {
		return false, fmt.Errorf("arenas.ToggleSaved: %w", err)
	}
	saved, err := s.repo.Saved(ctx, id)
	if err != nil {
		return false, fmt.Errorf("arenas.ToggleSaved: %w", err)
	}
	if err := s.repo.SetSaved(ctx, id, !saved); err != nil {
		return false, fmt.Errorf("arenas.ToggleSaved: %w", err)
	}
	return !saved, nil
}

// IsSaved indica si el arena está guardado.
func (s *Service) IsSaved(ctx context.Context, id string) (bool, error) {
	saved, err := s.repo.Saved(ctx, id)
	if err != nil {
		return false, fmt.Errorf("arenas.IsSaved: %w", err)
	}
	return saved, nil
}

// SeedIfEmpty carga los arenas de demo si no hay ninguno. Devuelve cuántos creó.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	existing, err := s.repo.Arenas(ctx)
	if err != nil {
		return 0, fmt.Errorf("arenas.SeedIfEmpty: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	demo := demoArenas(s.now().UTC())
	if err := s.repo.SaveArenas(ctx, demo); err != nil {
		return 0, fmt.Errorf("arenas.SeedIfEmpty: %w", err)
	}
	slog.Info("seeded demo arenas", "count", len(demo))
	return len(demo), nil
}

func demoArenas(now time.Time) []domain.Arena {
	day := 24 * time.Hour
	return []domain.Arena{
		{
			ID:          "1",
			Title:       "Will HBAR close above $0.50 by the end of the quarter?",
			Description: "Resolves YES if the HBAR/USD daily close on the deadline is above 0.50 on major exchanges.",
			Category:    domain.CategoryCrypto,
			Deadline:    now.Add(30 * day),
			PoolSize:    25000,
			YesVotes:    156,
			NoVotes:     89,
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Will the home team win the championship final?",
			Description: "Resolves YES if the home team lifts the trophy in regulation or extra time.",
			Category:    domain.CategorySports,
			Deadline:    now.Add(14 * day),
			PoolSize:    18000,
			YesVotes:    203,
			NoVotes:     178,
			CreatedAt:   now,
		},
		{
			ID:          "3",
			Title:       "Will the most-streamed album of the year be a debut?",
			Description: "Resolves YES if the year's most-streamed album on the main platforms is the artist's first studio album.",
			Category:    domain.CategoryCulture,
			Deadline:    now.Add(60 * day),
			PoolSize:    12000,
			YesVotes:    67,
			NoVotes:     112,
			CreatedAt:   now,
		},
	}
}
