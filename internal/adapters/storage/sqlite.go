package storage

// sqlite.go: backend clave/valor sobre SQLite.
//
// Estrategia:
//   - Una única tabla `kv` (key TEXT PK, value BLOB, updated_at). Los valores son
//     documentos JSON versionados que codifica Repository; aquí son opacos.
//   - UPSERT por clave: last-write-wins, igual que el almacenamiento del navegador.
//   - Sin cache de lectura: varios procesos (-watch, -trade, -resolve) comparten
//     el fichero y cada Get tiene que ver lo último que escribió cualquiera.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      BLOB     NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// SQLiteKV implementa ports.KVStore usando SQLite (pure Go, sin CGo).
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV abre (o crea) la base de datos en la ruta dada y aplica el schema.
// ":memory:" es válido y es lo que usan los tests.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteKV: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteKV: apply schema: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Get devuelve el valor guardado bajo key. Siempre lee de la base de datos.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage.Get: %q: %w", key, err)
	}
	return value, true, nil
}

// Set hace upsert de key.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.Set: %q: %w", key, err)
	}
	return nil
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
