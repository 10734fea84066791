package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
)

// Claves compatibles con las que usaba la app web.
const (
	keyArenas      = "polyhedx_arenas"
	keyPredictions = "polyhedx_predictions"
)

func arenaKey(arenaID, suffix string) string {
	return "polyhedx_arena_" + arenaID + "_" + suffix
}

// WalletBalanceKey es la clave del saldo simulado de una dirección.
func WalletBalanceKey(address string) string {
	return "polyhedx_wallet_" + address + "_balance"
}

// Repository traduce entidades de dominio a registros versionados sobre un KVStore.
// Una clave corrupta se lee como vacía; un registro inválido se descarta.
type Repository struct {
	kv ports.KVStore
}

// NewRepository crea un repositorio sobre kv.
func NewRepository(kv ports.KVStore) *Repository {
	return &Repository{kv: kv}
}

// --- Arenas ---

// Arenas devuelve todos los arenas, el más reciente primero.
func (r *Repository) Arenas(ctx context.Context) ([]domain.Arena, error) {
	out, err := decodeList(ctx, r, keyArenas, arenaRecord.toDomain)
	if err != nil {
		return nil, fmt.Errorf("storage.Arenas: %w", err)
	}
	return out, nil
}

// SaveArenas reemplaza la lista completa de arenas.
func (r *Repository) SaveArenas(ctx context.Context, arenas []domain.Arena) error {
	recs := make([]arenaRecord, len(arenas))
	for i, a := range arenas {
		recs[i] = arenaToRecord(a)
	}
	if err := r.store(ctx, keyArenas, recs); err != nil {
		return fmt.Errorf("storage.SaveArenas: %w", err)
	}
	return nil
}

// Arena busca un arena por ID. Devuelve domain.ErrNotFound si no existe.
func (r *Repository) Arena(ctx context.Context, id string) (domain.Arena, error) {
	arenas, err := r.Arenas(ctx)
	if err != nil {
		return domain.Arena{}, err
	}
	for _, a := range arenas {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Arena{}, fmt.Errorf("storage.Arena: %s: %w", id, domain.ErrNotFound)
}

// UpdateArena reemplaza el arena con el mismo ID. Un arena resuelto no vuelve
// a abierto: una copia vieja sin el flag se rechaza con domain.ErrAlreadyResolved.
func (r *Repository) UpdateArena(ctx context.Context, arena domain.Arena) error {
	arenas, err := r.Arenas(ctx)
	if err != nil {
		return err
	}
	for i := range arenas {
		if arenas[i].ID == arena.ID {
			if arenas[i].IsResolved && !arena.IsResolved {
				return fmt.Errorf("storage.UpdateArena: %s: %w", arena.ID, domain.ErrAlreadyResolved)
			}
			arenas[i] = arena
			return r.SaveArenas(ctx, arenas)
		}
	}
	return fmt.Errorf("storage.UpdateArena: %s: %w", arena.ID, domain.ErrNotFound)
}

// --- Trades ---

// Trades devuelve los trades del arena, el más reciente primero.
func (r *Repository) Trades(ctx context.Context, arenaID string) ([]domain.Trade, error) {
	out, err := decodeList(ctx, r, arenaKey(arenaID, "trades"), func(rec tradeRecord) (domain.Trade, error) {
		rec.migrate(arenaID)
		return rec.toDomain()
	})
	if err != nil {
		return nil, fmt.Errorf("storage.Trades: %w", err)
	}
	return out, nil
}

// SaveTrades reemplaza los trades del arena.
func (r *Repository) SaveTrades(ctx context.Context, arenaID string, trades []domain.Trade) error {
	recs := make([]tradeRecord, len(trades))
	for i, t := range trades {
		recs[i] = tradeToRecord(t)
	}
	if err := r.store(ctx, arenaKey(arenaID, "trades"), recs); err != nil {
		return fmt.Errorf("storage.SaveTrades: %w", err)
	}
	return nil
}

// --- Transaction log ---

// TransactionLog devuelve el feed de actividad del arena, el más reciente primero.
func (r *Repository) TransactionLog(ctx context.Context, arenaID string) ([]domain.TransactionLogEntry, error) {
	out, err := decodeList(ctx, r, arenaKey(arenaID, "txs"), txRecord.toDomain)
	if err != nil {
		return nil, fmt.Errorf("storage.TransactionLog: %w", err)
	}
	return out, nil
}

// SaveTransactionLog reemplaza el feed de actividad del arena.
func (r *Repository) SaveTransactionLog(ctx context.Context, arenaID string, log []domain.TransactionLogEntry) error {
	recs := make([]txRecord, len(log))
	for i, e := range log {
		recs[i] = txToRecord(e)
	}
	if err := r.store(ctx, arenaKey(arenaID, "txs"), recs); err != nil {
		return fmt.Errorf("storage.SaveTransactionLog: %w", err)
	}
	return nil
}

// --- Saved flag ---

// Saved indica si el usuario marcó el arena como guardado.
func (r *Repository) Saved(ctx context.Context, arenaID string) (bool, error) {
	var saved bool
	if err := r.load(ctx, arenaKey(arenaID, "saved"), &saved); err != nil {
		return false, fmt.Errorf("storage.Saved: %w", err)
	}
	return saved, nil
}

// SetSaved persiste el flag de guardado del arena.
func (r *Repository) SetSaved(ctx context.Context, arenaID string, saved bool) error {
	if err := r.store(ctx, arenaKey(arenaID, "saved"), saved); err != nil {
		return fmt.Errorf("storage.SetSaved: %w", err)
	}
	return nil
}

// --- Predictions ---

// Predictions devuelve el historial global de predicciones.
func (r *Repository) Predictions(ctx context.Context) ([]domain.Prediction, error) {
	out, err := decodeList(ctx, r, keyPredictions, predictionRecord.toDomain)
	if err != nil {
		return nil, fmt.Errorf("storage.Predictions: %w", err)
	}
	return out, nil
}

// SavePredictions reemplaza el historial de predicciones.
func (r *Repository) SavePredictions(ctx context.Context, preds []domain.Prediction) error {
	recs := make([]predictionRecord, len(preds))
	for i, p := range preds {
		recs[i] = predictionToRecord(p)
	}
	if err := r.store(ctx, keyPredictions, recs); err != nil {
		return fmt.Errorf("storage.SavePredictions: %w", err)
	}
	return nil
}

// --- helpers ---

// decodeList lee key como un array JSON y decodifica cada elemento con decode.
// Los elementos que no decodifican o no validan se descartan con un warning.
func decodeList[R any, T any](ctx context.Context, r *Repository, key string, decode func(R) (T, error)) ([]T, error) {
	var raws []json.RawMessage
	if err := r.load(ctx, key, &raws); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("storage: dropping undecodable record", "key", key, "err", err)
			continue
		}
		v, err := decode(rec)
		if err != nil {
			slog.Warn("storage: dropping invalid record", "key", key, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// load decodifica key en dst. Clave ausente o JSON corrupto dejan dst vacío.
// Solo los errores del backend se propagan.
func (r *Repository) load(ctx context.Context, key string, dst any) error {
	raw, found, err := r.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("storage: corrupted value, treating as empty", "key", key, "err", err)
	}
	return nil
}

func (r *Repository) store(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
