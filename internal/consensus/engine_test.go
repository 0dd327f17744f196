package consensus

import (
	"errors"
	"testing"

	"github.com/travel-pay/travel_pay/internal/ledger"
	"github.com/travel-pay/travel_pay/internal/roster"
)

// threeMemberGroup builds a host plus two members with a 1000.00 wallet.
func threeMemberGroup(t *testing.T) (*Engine, *roster.Roster, *ledger.Ledger, []roster.Member) {
	t.Helper()

	r := roster.New("host-1", "Asha", "")
	inv1, _ := r.Invite("Ravi", "", "host-1")
	inv2, _ := r.Invite("Meera", "", "host-1")
	m1, err := r.AcceptInvite(inv1.ID, 0)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	m2, err := r.AcceptInvite(inv2.ID, 0)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}

	l := ledger.New()
	if _, err := l.RecordContribution("host-1", "Asha", "", 100_000); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}

	return NewEngine(r, l), r, l, []roster.Member{m1, m2}
}

func TestUnanimousApprovalDebitsWallet(t *testing.T) {
	e, _, l, members := threeMemberGroup(t)

	req, err := e.Submit("host-1", "food", "Team dinner", 30_000, "host-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}

	if req, err = e.Approve(req.ID, members[0].ID); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("approved early with 1 of 2 approvals: %s", req.Status)
	}
	if l.Balance() != 100_000 {
		t.Fatalf("wallet touched before unanimity: %d", l.Balance())
	}

	if req, err = e.Approve(req.ID, members[1].ID); err != nil {
		t.Fatalf("second approval: %v", err)
	}
	if req.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", req.Status)
	}
	if l.Balance() != 70_000 {
		t.Fatalf("expected balance 70000, got %d", l.Balance())
	}
	if len(e.Approved()) != 1 {
		t.Fatalf("expected 1 approved expense, got %d", len(e.Approved()))
	}
	if e.HasPending() {
		t.Fatal("request still pending after approval")
	}
}

func TestPartialApprovalLeavesWalletUntouched(t *testing.T) {
	e, _, l, members := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Team dinner", 30_000, "host-1")
	if _, err := e.Approve(req.ID, members[0].ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	status, err := e.Status(req.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusPending || len(status.Approvals) != 1 {
		t.Fatalf("expected pending with 1 approval, got %s with %d", status.Status, len(status.Approvals))
	}
	if l.Balance() != 100_000 {
		t.Fatalf("expected balance 100000, got %d", l.Balance())
	}
}

func TestSubmitInsufficientFunds(t *testing.T) {
	e, _, _, _ := threeMemberGroup(t)

	if _, err := e.Submit("host-1", "stay", "Resort", 150_000, "host-1"); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if e.HasPending() {
		t.Fatal("failed submission created a pending request")
	}
}

func TestSubmitRequiresHost(t *testing.T) {
	e, _, _, members := threeMemberGroup(t)

	if _, err := e.Submit("host-1", "food", "Dinner", 10_000, members[0].ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	e, _, _, _ := threeMemberGroup(t)

	if _, err := e.Submit("host-1", "food", "Dinner", 0, "host-1"); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestApproveIdempotentPerMember(t *testing.T) {
	e, _, _, members := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")
	e.Approve(req.ID, members[0].ID)
	status, err := e.Approve(req.ID, members[0].ID)
	if err != nil {
		t.Fatalf("repeat approval: %v", err)
	}
	if len(status.Approvals) != 1 {
		t.Fatalf("duplicate approval double-counted: %d", len(status.Approvals))
	}
	if status.Status != StatusPending {
		t.Fatalf("expected pending, got %s", status.Status)
	}
}

func TestApproveOutsideRequiredSet(t *testing.T) {
	e, _, _, _ := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")

	// The payer is excluded from their own approver set.
	if _, err := e.Approve(req.ID, "host-1"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for payer, got %v", err)
	}
	if _, err := e.Approve(req.ID, "stranger"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
}

func TestSingleMemberGroupAutoApproves(t *testing.T) {
	r := roster.New("host-1", "Asha", "")
	l := ledger.New()
	l.RecordContribution("host-1", "Asha", "", 50_000)
	e := NewEngine(r, l)

	req, err := e.Submit("host-1", "food", "Solo lunch", 5_000, "host-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != StatusApproved {
		t.Fatalf("expected auto-approval with empty approver set, got %s", req.Status)
	}
	if l.Balance() != 45_000 {
		t.Fatalf("expected balance 45000, got %d", l.Balance())
	}
}

func TestApproverSetGrowsWithRoster(t *testing.T) {
	e, r, _, members := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")
	e.Approve(req.ID, members[0].ID)

	// A new member joins while the request is still pending: the required
	// set is recomputed, so the bar rises from 2 to 3 approvals.
	inv, _ := r.Invite("Kiran", "", "host-1")
	m3, _ := r.AcceptInvite(inv.ID, 0)

	status, _ := e.Approve(req.ID, members[1].ID)
	if status.Status != StatusPending {
		t.Fatalf("unanimity reached without the new member: %s", status.Status)
	}
	status, _ = e.Approve(req.ID, m3.ID)
	if status.Status != StatusApproved {
		t.Fatalf("expected approved after all three, got %s", status.Status)
	}

}

func TestFinalizationRecheckRevertsToRejected(t *testing.T) {
	e, _, l, members := threeMemberGroup(t)

	// Two requests that individually fit the wallet but not together.
	req1, _ := e.Submit("host-1", "food", "Dinner", 60_000, "host-1")
	req2, _ := e.Submit("host-1", "stay", "Hotel", 60_000, "host-1")

	e.Approve(req1.ID, members[0].ID)
	if _, err := e.Approve(req1.ID, members[1].ID); err != nil {
		t.Fatalf("finalize first request: %v", err)
	}
	if l.Balance() != 40_000 {
		t.Fatalf("expected balance 40000, got %d", l.Balance())
	}

	// The wallet drifted below the second request's amount while it pended.
	e.Approve(req2.ID, members[0].ID)
	if _, err := e.Approve(req2.ID, members[1].ID); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds at finalization, got %v", err)
	}

	status, err := e.Status(req2.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StatusRejected || status.Reason != ReasonInsufficientFunds {
		t.Fatalf("expected rejected/insufficient funds, got %s/%q", status.Status, status.Reason)
	}
	if l.Balance() != 40_000 {
		t.Fatalf("rejected finalization touched the wallet: %d", l.Balance())
	}
}

func TestSingleRejectionKillsRequest(t *testing.T) {
	e, _, l, members := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")
	e.Approve(req.ID, members[0].ID)

	status, err := e.Reject(req.ID, members[1].ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if status.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", status.Status)
	}
	if l.Balance() != 100_000 {
		t.Fatalf("rejection touched the wallet: %d", l.Balance())
	}
	if e.HasPending() {
		t.Fatal("request still pending after rejection")
	}

	// Terminal states are final.
	if _, err := e.Approve(req.ID, members[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on finalized request, got %v", err)
	}
}

func TestCancelIsHostOnly(t *testing.T) {
	e, _, _, members := threeMemberGroup(t)

	req, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")

	if _, err := e.Cancel(req.ID, members[0].ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	status, err := e.Cancel(req.ID, "host-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if status.Status != StatusRejected || status.Reason != ReasonCancelled {
		t.Fatalf("expected cancelled rejection, got %s/%q", status.Status, status.Reason)
	}
}

func TestEngineSnapshotRoundTrip(t *testing.T) {
	e, r, l, members := threeMemberGroup(t)

	req1, _ := e.Submit("host-1", "food", "Dinner", 10_000, "host-1")
	e.Approve(req1.ID, members[0].ID)
	req2, _ := e.Submit("host-1", "stay", "Hotel", 20_000, "host-1")
	e.Approve(req2.ID, members[0].ID)
	e.Approve(req2.ID, members[1].ID)

	restored := FromSnapshot(e.Snapshot(), r, l)

	pending := restored.Pending()
	if len(pending) != 1 || pending[0].ID != req1.ID || len(pending[0].Approvals) != 1 {
		t.Fatalf("pending set mismatch after restore: %+v", pending)
	}
	if len(restored.Approved()) != 1 {
		t.Fatalf("approved history lost: %d", len(restored.Approved()))
	}
	if status, err := restored.Status(req2.ID); err != nil || status.Status != StatusApproved {
		t.Fatalf("finalized lookup after restore: %+v, %v", status, err)
	}

	// The restored engine still drives transitions against live collaborators.
	if status, err := restored.Approve(req1.ID, members[1].ID); err != nil || status.Status != StatusApproved {
		t.Fatalf("approve after restore: %+v, %v", status, err)
	}
}
