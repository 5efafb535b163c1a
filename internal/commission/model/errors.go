package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredColumn  = errors.New("missing required column")
	ErrUnknownMarketplace     = errors.New("unknown marketplace")
	ErrMarketplaceUnavailable = errors.New("marketplace data unavailable")
	ErrInvalidSalePrice       = errors.New("sale price must be greater than zero")
	ErrUnsupportedFile        = errors.New("unsupported file")
)

// MissingColumnError: таблица не содержит обязательной колонки ни под одним из алиасов.
type MissingColumnError struct {
	Marketplace string
	Field       Field
	Candidates  []string
	Available   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: no column for %s (candidates=%q, columns=%q)",
		e.Marketplace, e.Field, e.Candidates, e.Available)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingRequiredColumn }
