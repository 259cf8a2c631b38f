package currency

import "errors"

// Service errors
var (
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrRatesUnavailable = errors.New("exchange rates unavailable")
)
