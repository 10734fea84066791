// Package wallet implementa ports.WalletProvider con una clave EVM local.
//
// No hay wallet de navegador: la identidad del usuario es la dirección derivada
// de una clave secp256k1 (go-ethereum) y el saldo es simulado, persistido en el
// KVStore bajo polyhedx_wallet_{address}_balance.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/polyhedx/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const providerName = "local"

// Config configura la wallet local.
type Config struct {
	// PrivateKeyHex tiene prioridad sobre KeyFile. Con o sin prefijo 0x.
	PrivateKeyHex string
	// KeyFile se crea con una clave nueva si no existe.
	KeyFile string
	// InitialBalance es el saldo con el que arranca una dirección nueva.
	InitialBalance decimal.Decimal
}

// Local es una wallet con clave en disco o en config.
type Local struct {
	key            *ecdsa.PrivateKey
	address        common.Address
	kv             ports.KVStore
	initialBalance decimal.Decimal
}

// NewLocal carga (o genera) la clave y devuelve la wallet lista para Connect.
func NewLocal(cfg Config, kv ports.KVStore) (*Local, error) {
	key, err := loadKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("wallet.NewLocal: %w", err)
	}
	return &Local{
		key:            key,
		address:        crypto.PubkeyToAddress(key.PublicKey),
		kv:             kv,
		initialBalance: cfg.InitialBalance,
	}, nil
}

func loadKey(cfg Config) (*ecdsa.PrivateKey, error) {
	if cfg.PrivateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		return key, nil
	}
	if cfg.KeyFile == "" {
		return crypto.GenerateKey()
	}

	key, err := crypto.LoadECDSA(cfg.KeyFile)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load key file %q: %w", cfg.KeyFile, err)
	}

	key, err = crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if dir := filepath.Dir(cfg.KeyFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key dir: %w", err)
		}
	}
	if err := crypto.SaveECDSA(cfg.KeyFile, key); err != nil {
		return nil, fmt.Errorf("save key file %q: %w", cfg.KeyFile, err)
	}
	slog.Info("wallet: generated new local key", "file", cfg.KeyFile, "address", crypto.PubkeyToAddress(key.PublicKey).Hex())
	return key, nil
}

// Address devuelve la dirección EVM checksummed.
func (l *Local) Address() string {
	return l.address.Hex()
}

// Connect devuelve la cuenta y siembra el saldo inicial la primera vez.
func (l *Local) Connect(ctx context.Context) (domain.Account, error) {
	addr := l.address.Hex()
	if _, found, err := l.kv.Get(ctx, storage.WalletBalanceKey(addr)); err != nil {
		return domain.Account{}, fmt.Errorf("wallet.Connect: %w", err)
	} else if !found {
		if err := l.SetBalance(ctx, addr, l.initialBalance); err != nil {
			return domain.Account{}, fmt.Errorf("wallet.Connect: seed balance: %w", err)
		}
	}
	return domain.Account{
		Address:   addr,
		PublicKey: hexutil.Encode(crypto.CompressPubkey(&l.key.PublicKey)),
		Provider:  providerName,
	}, nil
}

// Balance lee el saldo simulado de address. Una dirección sin saldo guardado tiene 0.
func (l *Local) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	raw, found, err := l.kv.Get(ctx, storage.WalletBalanceKey(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet.Balance: %w", err)
	}
	if !found {
		return decimal.Zero, nil
	}
	bal, err := decimal.NewFromString(string(raw))
	if err != nil {
		slog.Warn("wallet: corrupted balance, treating as zero", "address", address, "err", err)
		return decimal.Zero, nil
	}
	return bal, nil
}

// SetBalance persiste el saldo de address.
func (l *Local) SetBalance(ctx context.Context, address string, balance decimal.Decimal) error {
	if err := l.kv.Set(ctx, storage.WalletBalanceKey(address), []byte(balance.String())); err != nil {
		return fmt.Errorf("wallet.SetBalance: %w", err)
	}
	return nil
}
