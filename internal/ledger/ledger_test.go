package ledger

import (
	"errors"
	"testing"
)

func TestRecordContributionCreditsBalance(t *testing.T) {
	l := New()

	tx, err := l.RecordContribution("m1", "Asha", "", 50_000)
	if err != nil {
		t.Fatalf("record contribution: %v", err)
	}
	if tx.Type != TypeContribution || tx.Amount != 50_000 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Title != "Asha contributed" {
		t.Fatalf("expected generated title, got %q", tx.Title)
	}

	if l.Balance() != 50_000 {
		t.Fatalf("expected balance 50000, got %d", l.Balance())
	}
	if l.Contribution("m1") != 50_000 {
		t.Fatalf("expected contribution total 50000, got %d", l.Contribution("m1"))
	}
}

func TestRecordContributionRejectsNonPositive(t *testing.T) {
	l := New()

	for _, amount := range []int64{0, -100} {
		if _, err := l.RecordContribution("m1", "Asha", "", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if l.Balance() != 0 {
		t.Fatalf("balance mutated by rejected contribution: %d", l.Balance())
	}
}

func TestRecordExpenseBoundary(t *testing.T) {
	l := New()
	if _, err := l.RecordContribution("m1", "Asha", "", 100_000); err != nil {
		t.Fatalf("seed contribution: %v", err)
	}

	// One minor unit over the balance must fail.
	if _, err := l.RecordExpense("m1", "Asha", "food", "Dinner", 100_001); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if l.Balance() != 100_000 {
		t.Fatalf("failed expense mutated balance: %d", l.Balance())
	}

	// Exactly the balance must succeed and leave zero.
	if _, err := l.RecordExpense("m1", "Asha", "food", "Dinner", 100_000); err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if l.Balance() != 0 {
		t.Fatalf("expected balance 0, got %d", l.Balance())
	}
}

func TestBalanceInvariant(t *testing.T) {
	l := New()
	l.RecordContribution("m1", "Asha", "", 60_000)
	l.RecordContribution("m2", "Ravi", "", 40_000)
	l.RecordExpense("m1", "Asha", "transport", "Taxi", 30_000)
	l.RecordExpense("m2", "Ravi", "food", "Lunch", 20_000)

	if got, want := l.Balance(), l.TotalContributions()-l.TotalExpenses(); got != want {
		t.Fatalf("balance invariant broken: balance=%d contributions-expenses=%d", got, want)
	}
	if l.Balance() != 50_000 {
		t.Fatalf("expected balance 50000, got %d", l.Balance())
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	l := New()
	l.RecordContribution("m1", "Asha", "first", 10_000)
	l.RecordContribution("m1", "Asha", "second", 10_000)
	l.RecordExpense("m1", "Asha", "food", "third", 5_000)

	history := l.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(history))
	}
	if history[0].Title != "third" || history[2].Title != "first" {
		t.Fatalf("history not newest first: %q, %q, %q", history[0].Title, history[1].Title, history[2].Title)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New()
	l.RecordContribution("m1", "Asha", "", 60_000)
	l.RecordContribution("m2", "Ravi", "", 40_000)
	l.RecordExpense("m1", "Asha", "stay", "Hotel", 25_000)

	restored := FromSnapshot(l.Snapshot())

	if restored.Balance() != l.Balance() {
		t.Fatalf("balance mismatch after restore: %d vs %d", restored.Balance(), l.Balance())
	}
	if restored.Contribution("m2") != 40_000 {
		t.Fatalf("contribution lost in restore: %d", restored.Contribution("m2"))
	}
	if len(restored.History()) != 3 {
		t.Fatalf("expected 3 transactions after restore, got %d", len(restored.History()))
	}
}
