package fee

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ClientState is the weekly allowance bookkeeping of one private client.
type ClientState struct {
	CreditRemaining     decimal.Decimal
	WithdrawalsInWeek   int
	LastTransactionDate civil.Date

	seen bool
}

// openWindow counts a new withdrawal on date and returns the credit limit it
// may draw on. A withdrawal outside the week of the previous one starts a
// fresh allowance.
func (s *ClientState) openWindow(date civil.Date, freeCredit decimal.Decimal) decimal.Decimal {
	if !s.seen || !SameWeek(s.LastTransactionDate, date) {
		s.WithdrawalsInWeek = 1
		s.CreditRemaining = freeCredit
		return freeCredit
	}

	s.WithdrawalsInWeek++
	return s.CreditRemaining
}

func (s *ClientState) touch(date civil.Date) {
	s.LastTransactionDate = date
	s.seen = true
}

// ledger maps client ids to their state for the lifetime of one Engine.
type ledger struct {
	freeCredit decimal.Decimal
	clients    map[string]*ClientState
}

func newLedger(freeCredit decimal.Decimal) *ledger {
	return &ledger{
		freeCredit: freeCredit,
		clients:    make(map[string]*ClientState),
	}
}

// client returns the state for id, creating it on first sight.
func (l *ledger) client(id string) *ClientState {
	state, ok := l.clients[id]
	if !ok {
		state = &ClientState{
			CreditRemaining:   l.freeCredit,
			WithdrawalsInWeek: 1,
		}
		l.clients[id] = state
	}
	return state
}

func (l *ledger) lookup(id string) (*ClientState, bool) {
	state, ok := l.clients[id]
	return state, ok
}

// WeekStart returns the Monday on or before d.
func WeekStart(d civil.Date) civil.Date {
	// time.Weekday counts from Sunday
	offset := (int(d.In(time.UTC).Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// SameWeek reports whether a falls in the Monday–Sunday week containing b.
func SameWeek(a, b civil.Date) bool {
	start := WeekStart(b)
	end := start.AddDays(6)
	return !a.Before(start) && !a.After(end)
}
