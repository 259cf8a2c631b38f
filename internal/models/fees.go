package models

import "github.com/shopspring/decimal"

// Percent rates applied by the fee engine. A rate of 0.5 means 0.5%.
var (
	DepositRate          = decimal.RequireFromString("0.03")
	BusinessWithdrawRate = decimal.RequireFromString("0.5")
	PrivateWithdrawRate  = decimal.RequireFromString("0.3")
)

// FeeScale is the number of fraction digits on every fee.
const FeeScale = 2

// BaseCurrency is the currency private credit limits are kept in.
const BaseCurrency = CurrencyEUR

// FeeStructure groups the rates that apply to one client type.
type FeeStructure struct {
	DepositRate  decimal.Decimal `json:"deposit_rate"`
	WithdrawRate decimal.Decimal `json:"withdraw_rate"`
	// FreeAllowance marks client types that get the weekly free credit.
	FreeAllowance bool `json:"free_allowance"`
}

var FeeStructures = map[ClientType]FeeStructure{
	ClientTypePrivate: {
		DepositRate:   DepositRate,
		WithdrawRate:  PrivateWithdrawRate, // 0.3% beyond the weekly allowance
		FreeAllowance: true,
	},
	ClientTypeBusiness: {
		DepositRate:  DepositRate,
		WithdrawRate: BusinessWithdrawRate, // 0.5% per withdrawal
	},
}
