/*
Package fee computes commission fees over an ordered ledger of transactions.

An Engine evaluates one run. Deposits and business withdrawals are charged a
flat percentage. Private withdrawals draw on a weekly free allowance: each
client gets FreeCredit (in the base currency) and FreeWithdraw withdrawals
per Monday–Sunday week before every withdrawal is charged in full.

Usage:

	engine := fee.NewEngine(fee.Config{
	    FreeCredit:   decimal.NewFromInt(1000),
	    FreeWithdraw: 3,
	}, converter, metrics, logger)

	// One record at a time
	amount, ok, err := engine.Calculate(ctx, record)

	// Or fold a whole source into a sink
	summary, err := engine.Run(ctx, source, sink)

Ordering:

Ledger state is kept per client and depends on processing order. Records must
be fed in chronological order and an Engine must not be shared between
goroutines. Independent ledgers get their own Engine.

Rounding:

Fees are formatted by CeilingRound, which biases the value by half a unit of
the last digit and then rounds half-down, so whole cents stay put and
anything above them goes up to the next cent.

Skipped records:

Unknown operation types and withdrawals with an unknown client type produce
no fee and no error. Calculate reports them with ok == false.
*/
package fee
