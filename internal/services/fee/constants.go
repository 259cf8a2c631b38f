package fee

import "github.com/shopspring/decimal"

// Default configuration values
var (
	DefaultFreeCredit = decimal.NewFromInt(1000)
)

const (
	DefaultFreeWithdraw = 3
)

// Fee kinds reported to metrics
const (
	KindDeposit          = "deposit"
	KindBusinessWithdraw = "business_withdraw"
	KindPrivateWithdraw  = "private_withdraw"
)

// Skip reasons reported to metrics
const (
	SkipUnknownOperation  = "unknown_operation"
	SkipUnknownClientType = "unknown_client_type"
)

var percent = decimal.New(1, -2)
