package ports

import "context"

// KVStore es el almacén clave/valor sobre el que se persiste todo el estado.
// Las escrituras son last-write-wins; no hay transacciones entre claves.
type KVStore interface {
	// Get devuelve el valor de key. found es false si la clave no existe.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set guarda value bajo key, reemplazando el valor anterior.
	Set(ctx context.Context, key string, value []byte) error

	// Close libera la conexión subyacente.
	Close() error
}
