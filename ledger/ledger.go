package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientFunds      = errors.New("insufficient available funds")
	ErrInsufficientAllocation = errors.New("insufficient bot allocation")
	ErrImbalance              = errors.New("ledger out of balance")
)

type Kind string

const (
	KindOpen     Kind = "open"
	KindDeposit  Kind = "deposit"
	KindTransfer Kind = "transfer"
	KindWithdraw Kind = "withdraw"
	KindRelease  Kind = "release"
)

// Entry is one applied mutation with the balances it left behind.
type Entry struct {
	Seq       int             `json:"seq" yaml:"seq"`
	Time      time.Time       `json:"time" yaml:"time"`
	Kind      Kind            `json:"kind" yaml:"kind"`
	BotID     string          `json:"bot_id,omitempty" yaml:"bot_id,omitempty"`
	Amount    decimal.Decimal `json:"amount" yaml:"amount"`
	Main      decimal.Decimal `json:"main" yaml:"main"`
	Available decimal.Decimal `json:"available" yaml:"available"`
}

// Balances is a point-in-time copy of the ledger.
type Balances struct {
	Main        decimal.Decimal            `json:"main" yaml:"main"`
	Available   decimal.Decimal            `json:"available" yaml:"available"`
	Allocated   decimal.Decimal            `json:"allocated" yaml:"allocated"`
	Allocations map[string]decimal.Decimal `json:"allocations" yaml:"allocations"`
}

// Recorder is told about every applied entry.
type Recorder interface {
	RecordEntry(Entry)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Entry)

func (f RecorderFunc) RecordEntry(e Entry) { f(e) }

// Ledger tracks the main balance, the unallocated funds and the amount
// allocated to each bot. After every mutation
//
//	main == available + sum(allocations)
//
// Failed operations change nothing. Not safe for concurrent use.
type Ledger struct {
	now         func() time.Time
	main        decimal.Decimal
	available   decimal.Decimal
	allocations map[string]decimal.Decimal
	entries     []Entry
	recorder    Recorder
}

// New opens a ledger with initial funds, all of them available. A nil now
// uses time.Now.
func New(initial decimal.Decimal, now func() time.Time) (*Ledger, error) {
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance %s", ErrInvalidAmount, initial)
	}
	if now == nil {
		now = time.Now
	}
	l := &Ledger{
		now:         now,
		main:        initial,
		available:   initial,
		allocations: make(map[string]decimal.Decimal),
	}
	l.append(KindOpen, "", initial)
	return l, nil
}

// SetRecorder installs r. Entries applied before the call are not replayed.
func (l *Ledger) SetRecorder(r Recorder) {
	l.recorder = r
}

// Deposit adds amount to both the main balance and available funds.
func (l *Ledger) Deposit(amount decimal.Decimal) (Entry, error) {
	if err := positive(amount); err != nil {
		return Entry{}, err
	}
	l.main = l.main.Add(amount)
	l.available = l.available.Add(amount)
	return l.append(KindDeposit, "", amount), nil
}

// TransferToBot moves amount from available funds into botID's allocation.
func (l *Ledger) TransferToBot(botID string, amount decimal.Decimal) (Entry, error) {
	if err := positive(amount); err != nil {
		return Entry{}, err
	}
	if botID == "" {
		return Entry{}, fmt.Errorf("transfer: bot id is required")
	}
	if amount.GreaterThan(l.available) {
		return Entry{}, fmt.Errorf("transfer %s to %s: %w (available %s)", amount, botID, ErrInsufficientFunds, l.available)
	}
	l.available = l.available.Sub(amount)
	l.allocations[botID] = l.allocations[botID].Add(amount)
	return l.append(KindTransfer, botID, amount), nil
}

// WithdrawFromBot moves amount from botID's allocation back to available
// funds. A fully drained allocation is removed.
func (l *Ledger) WithdrawFromBot(botID string, amount decimal.Decimal) (Entry, error) {
	if err := positive(amount); err != nil {
		return Entry{}, err
	}
	have := l.allocations[botID]
	if amount.GreaterThan(have) {
		return Entry{}, fmt.Errorf("withdraw %s from %s: %w (allocated %s)", amount, botID, ErrInsufficientAllocation, have)
	}
	rest := have.Sub(amount)
	if rest.IsZero() {
		delete(l.allocations, botID)
	} else {
		l.allocations[botID] = rest
	}
	l.available = l.available.Add(amount)
	return l.append(KindWithdraw, botID, amount), nil
}

// DeleteBotAllocation returns botID's whole allocation to available funds
// and reports the amount released. A bot without an allocation is a no-op.
func (l *Ledger) DeleteBotAllocation(botID string) decimal.Decimal {
	have, ok := l.allocations[botID]
	if !ok {
		return decimal.Zero
	}
	delete(l.allocations, botID)
	l.available = l.available.Add(have)
	l.append(KindRelease, botID, have)
	return have
}

// OnBotDeleted implements bots.DeleteListener.
func (l *Ledger) OnBotDeleted(botID string) { l.DeleteBotAllocation(botID) }

func (l *Ledger) Allocation(botID string) decimal.Decimal {
	return l.allocations[botID]
}

func (l *Ledger) Main() decimal.Decimal { return l.main }

func (l *Ledger) Available() decimal.Decimal { return l.available }

// Allocated is the sum of every bot allocation.
func (l *Ledger) Allocated() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range l.allocations {
		sum = sum.Add(a)
	}
	return sum
}

func (l *Ledger) Balances() Balances {
	allocs := make(map[string]decimal.Decimal, len(l.allocations))
	for k, v := range l.allocations {
		allocs[k] = v
	}
	return Balances{
		Main:        l.main,
		Available:   l.available,
		Allocated:   l.Allocated(),
		Allocations: allocs,
	}
}

// BotIDs lists bots holding an allocation, sorted.
func (l *Ledger) BotIDs() []string {
	ids := make([]string, 0, len(l.allocations))
	for k := range l.allocations {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a copy of the mutation log, oldest first.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Check verifies the conservation and sign invariants.
func (l *Ledger) Check() error {
	if l.available.IsNegative() {
		return fmt.Errorf("%w: available %s is negative", ErrImbalance, l.available)
	}
	for id, a := range l.allocations {
		if !a.IsPositive() {
			return fmt.Errorf("%w: allocation of %s is %s", ErrImbalance, id, a)
		}
	}
	if sum := l.available.Add(l.Allocated()); !sum.Equal(l.main) {
		return fmt.Errorf("%w: main %s != available+allocated %s", ErrImbalance, l.main, sum)
	}
	return nil
}

func (l *Ledger) append(kind Kind, botID string, amount decimal.Decimal) Entry {
	e := Entry{
		Seq:       len(l.entries) + 1,
		Time:      l.now(),
		Kind:      kind,
		BotID:     botID,
		Amount:    amount,
		Main:      l.main,
		Available: l.available,
	}
	l.entries = append(l.entries, e)
	if l.recorder != nil {
		l.recorder.RecordEntry(e)
	}
	return e
}

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}
