package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/shopspring/decimal"
)

// WalletProvider conecta con la wallet del usuario y gestiona su saldo simulado.
type WalletProvider interface {
	Connect(ctx context.Context) (domain.Account, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, address string, balance decimal.Decimal) error
}
