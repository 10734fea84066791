// Package redisstore implementa ports.KVStore sobre Redis con go-redis/v9.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config son los parámetros de conexión.
type Config struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	// Namespace se antepone a todas las claves ("polyhedx:" si vacío).
	Namespace string
}

// KV guarda cada clave como un string de Redis sin TTL.
//
// Key schema:
//
//	{namespace}{key} - valor JSON opaco codificado por storage.Repository
type KV struct {
	rdb *redis.Client
	ns  string
}

// New crea el cliente y hace ping para verificar la conexión.
func New(ctx context.Context, cfg Config) (*KV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore.New: ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(rdb, cfg.Namespace), nil
}

// NewWithClient envuelve un cliente ya configurado.
func NewWithClient(rdb *redis.Client, namespace string) *KV {
	if namespace == "" {
		namespace = "polyhedx:"
	}
	return &KV{rdb: rdb, ns: namespace}
}

func (k *KV) key(key string) string { return k.ns + key }

// Get devuelve found=false cuando la clave no existe (redis.Nil).
func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := k.rdb.Get(ctx, k.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore.Get: %q: %w", key, err)
	}
	return v, true, nil
}

// Set escribe el valor sin expiración.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.rdb.Set(ctx, k.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore.Set: %q: %w", key, err)
	}
	return nil
}

// Close cierra la conexión.
func (k *KV) Close() error {
	return k.rdb.Close()
}
