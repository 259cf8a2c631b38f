package models

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ClientType is the kind of client a transaction belongs to.
type ClientType int

const (
	ClientTypeUnknown ClientType = iota
	ClientTypePrivate
	ClientTypeBusiness
)

// OperationType is the kind of ledger operation.
type OperationType int

const (
	OperationUnknown OperationType = iota
	OperationDeposit
	OperationWithdraw
)

// Currency codes
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyJPY = "JPY"
)

// ParseClientType maps the ledger text onto a ClientType. Unrecognised text
// yields ClientTypeUnknown so the record still reaches the engine.
func ParseClientType(s string) ClientType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private":
		return ClientTypePrivate
	case "business":
		return ClientTypeBusiness
	default:
		return ClientTypeUnknown
	}
}

func (c ClientType) String() string {
	switch c {
	case ClientTypePrivate:
		return "private"
	case ClientTypeBusiness:
		return "business"
	default:
		return "unknown"
	}
}

// ParseOperationType maps the ledger text onto an OperationType.
func ParseOperationType(s string) OperationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return OperationDeposit
	case "withdraw":
		return OperationWithdraw
	default:
		return OperationUnknown
	}
}

func (o OperationType) String() string {
	switch o {
	case OperationDeposit:
		return "deposit"
	case OperationWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// TransactionRecord is one row of the input ledger.
type TransactionRecord struct {
	Date       civil.Date
	ClientID   string
	ClientType ClientType
	Operation  OperationType
	Amount     decimal.Decimal
	Currency   string
}
