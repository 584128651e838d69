package telemetry

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// TurnLedger accumulates per-turn elapsed wall time as exact decimal
// seconds. It follows the same "takes a measurement, returns a derived
// accounting value" shape as the teacher's token-cost tracker, adapted
// from dollar cost to wall-clock cost: this spec has no billing
// concept, but a run's turn-by-turn timing still benefits from
// decimal's exactness over repeated float addition across a long run.
type TurnLedger struct {
	mu    sync.Mutex
	total decimal.Decimal
	turns int
}

// NewTurnLedger returns an empty ledger.
func NewTurnLedger() *TurnLedger {
	return &TurnLedger{total: decimal.Zero}
}

// RecordTurn adds one turn's elapsed wall time to the running total.
func (l *TurnLedger) RecordTurn(elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = l.total.Add(decimal.NewFromFloat(elapsed.Seconds()))
	l.turns++
}

// TotalSeconds returns the cumulative elapsed time across every
// recorded turn.
func (l *TurnLedger) TotalSeconds() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// TurnCount returns how many turns have been recorded.
func (l *TurnLedger) TurnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.turns
}

// AverageSeconds returns the mean per-turn elapsed time, or zero if no
// turn has been recorded yet.
func (l *TurnLedger) AverageSeconds() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.turns == 0 {
		return decimal.Zero
	}
	return l.total.Div(decimal.NewFromInt(int64(l.turns)))
}
