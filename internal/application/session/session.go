// Package session mantiene la wallet conectada y su saldo durante la ejecución.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/alejandrodnm/polyhedx/internal/ports"
	"github.com/shopspring/decimal"
)

// Session es el estado de conexión del usuario. Se pasa explícitamente a los
// servicios que lo necesitan; no hay estado global.
type Session struct {
	wallet ports.WalletProvider

	mu      sync.RWMutex
	account *domain.Account
	balance decimal.Decimal
}

// New crea una sesión desconectada.
func New(wallet ports.WalletProvider) *Session {
	return &Session{wallet: wallet}
}

// Connect conecta la wallet y carga su saldo.
func (s *Session) Connect(ctx context.Context) (domain.Account, error) {
	acct, err := s.wallet.Connect(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("session.Connect: %w", err)
	}
	bal, err := s.wallet.Balance(ctx, acct.Address)
	if err != nil {
		return domain.Account{}, fmt.Errorf("session.Connect: balance: %w", err)
	}

	s.mu.Lock()
	s.account = &acct
	s.balance = bal
	s.mu.Unlock()

	slog.Info("wallet connected", "address", acct.Address, "provider", acct.Provider, "balance", bal.String())
	return acct, nil
}

// Disconnect olvida la cuenta. El saldo persistido no cambia.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.account = nil
	s.balance = decimal.Zero
	s.mu.Unlock()
}

// Account devuelve la cuenta conectada.
func (s *Session) Account() (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return domain.Account{}, false
	}
	return *s.account, true
}

// Connected indica si hay una wallet conectada.
func (s *Session) Connected() bool {
	_, ok := s.Account()
	return ok
}

// Balance devuelve el saldo en memoria (0 si no hay wallet).
func (s *Session) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Debit descuenta amount del saldo y lo persiste. Rechaza saldo insuficiente
// sin tocar nada.
func (s *Session) Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return decimal.Zero, fmt.Errorf("session.Debit: %w", domain.ErrWalletNotConnected)
	}
	if amount.IsNegative() {
		return s.balance, fmt.Errorf("session.Debit: %w: negative amount %s", domain.ErrInvalidInput, amount)
	}
	if amount.GreaterThan(s.balance) {
		return s.balance, fmt.Errorf("session.Debit: %w: need %s, have %s",
			domain.ErrInsufficientBalance, amount.StringFixed(2), s.balance.StringFixed(2))
	}

	next := s.balance.Sub(amount)
	if err := s.wallet.SetBalance(ctx, s.account.Address, next); err != nil {
		return s.balance, fmt.Errorf("session.Debit: %w", err)
	}
	s.balance = next
	return next, nil
}

// Credit devuelve amount al saldo y lo persiste. Se usa para reembolsar un
// cobro cuyo trade no llegó a guardarse.
func (s *Session) Credit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return decimal.Zero, fmt.Errorf("session.Credit: %w", domain.ErrWalletNotConnected)
	}
	if amount.IsNegative() {
		return s.balance, fmt.Errorf("session.Credit: %w: negative amount %s", domain.ErrInvalidInput, amount)
	}

	next := s.balance.Add(amount)
	if err := s.wallet.SetBalance(ctx, s.account.Address, next); err != nil {
		return s.balance, fmt.Errorf("session.Credit: %w", err)
	}
	s.balance = next
	return next, nil
}
