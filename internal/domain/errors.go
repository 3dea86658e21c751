package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownStrategy  = errors.New("unknown parsing strategy")
	ErrUnknownProvider  = errors.New("unknown parsing provider")
	ErrNoUsableProvider = errors.New("no enabled provider with credentials in strategy chain")
)
