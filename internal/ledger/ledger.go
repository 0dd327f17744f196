package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAmount occurs when an operation receives a non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds occurs when an expense exceeds the current wallet
	// balance. It is checked both at submission and again at finalization,
	// since the balance may drift while an expense awaits approval.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Type tags a transaction as an inflow or an outflow.
type Type string

const (
	// TypeContribution is a member paying into the group wallet.
	TypeContribution Type = "contribution"
	// TypeExpense is an approved group expense paid out of the wallet.
	TypeExpense Type = "expense"
)

// StatusCompleted is the only transaction status: the log is append-only and
// entries are never retried or rolled back.
const StatusCompleted = "completed"

// Transaction is one entry in the group's append-only log. Amounts are stored
// as positive magnitudes in currency minor units (paise); Type distinguishes
// inflow from outflow.
type Transaction struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Amount     int64     `json:"amount"`
	Type       Type      `json:"type"`
	MemberID   string    `json:"member_id"`
	MemberName string    `json:"member_name"`
	Category   string    `json:"category,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}

// Ledger owns the group wallet balance, per-member contribution totals and the
// transaction log. Invariant: Balance() always equals the sum of contribution
// transactions minus the sum of expense transactions.
type Ledger struct {
	mu            sync.RWMutex
	balance       int64
	contributions map[string]int64
	transactions  []Transaction // newest first
}

// New creates an empty ledger for a fresh group.
func New() *Ledger {
	return &Ledger{contributions: make(map[string]int64)}
}

// RecordContribution credits the wallet and the member's contribution total.
// Title is optional; when empty a "<name> contributed" title is generated.
func (l *Ledger) RecordContribution(memberID, memberName, title string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if title == "" {
		title = fmt.Sprintf("%s contributed", memberName)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	l.contributions[memberID] += amount

	tx := Transaction{
		ID:         uuid.NewString(),
		Title:      title,
		Amount:     amount,
		Type:       TypeContribution,
		MemberID:   memberID,
		MemberName: memberName,
		Timestamp:  time.Now().UTC(),
		Status:     StatusCompleted,
	}
	l.transactions = append([]Transaction{tx}, l.transactions...)
	return tx, nil
}

// RecordExpense debits the wallet and appends an expense transaction. The
// balance check here is authoritative: callers re-verify through this method
// at finalization time regardless of earlier submission-time checks.
func (l *Ledger) RecordExpense(payerID, payerName, category, title string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.balance {
		return Transaction{}, ErrInsufficientFunds
	}

	l.balance -= amount

	tx := Transaction{
		ID:         uuid.NewString(),
		Title:      title,
		Amount:     amount,
		Type:       TypeExpense,
		MemberID:   payerID,
		MemberName: payerName,
		Category:   category,
		Timestamp:  time.Now().UTC(),
		Status:     StatusCompleted,
	}
	l.transactions = append([]Transaction{tx}, l.transactions...)
	return tx, nil
}

// Balance returns the current wallet balance in minor units.
func (l *Ledger) Balance() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Contribution returns the lifetime contribution total for one member.
func (l *Ledger) Contribution(memberID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.contributions[memberID]
}

// TotalContributions sums all recorded contributions.
func (l *Ledger) TotalContributions() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total int64
	for _, amount := range l.contributions {
		total += amount
	}
	return total
}

// TotalExpenses sums all recorded expense transactions.
func (l *Ledger) TotalExpenses() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total int64
	for _, tx := range l.transactions {
		if tx.Type == TypeExpense {
			total += tx.Amount
		}
	}
	return total
}

// History returns the transaction log, newest first.
func (l *Ledger) History() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Snapshot is the serializable form of a ledger, used by the session
// persistence layer.
type Snapshot struct {
	Balance       int64            `json:"balance"`
	Contributions map[string]int64 `json:"contributions"`
	Transactions  []Transaction    `json:"transactions"`
}

// Snapshot exports the ledger state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	contribs := make(map[string]int64, len(l.contributions))
	for id, amount := range l.contributions {
		contribs[id] = amount
	}
	txs := make([]Transaction, len(l.transactions))
	copy(txs, l.transactions)

	return Snapshot{Balance: l.balance, Contributions: contribs, Transactions: txs}
}

// FromSnapshot rebuilds a ledger from a previously exported snapshot.
func FromSnapshot(s Snapshot) *Ledger {
	l := New()
	l.balance = s.Balance
	for id, amount := range s.Contributions {
		l.contributions[id] = amount
	}
	l.transactions = append(l.transactions, s.Transactions...)
	return l
}
