package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrArenaExpired        = errors.New("arena expired")
	ErrAlreadyResolved     = errors.New("arena already resolved")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownTimeframe    = errors.New("unknown timeframe")
)
