// Package trip owns the session context for one travel group: the group
// record plus its ledger, roster and consensus engine. All group state is
// reached through a Trip; nothing lives in package-level singletons.
package trip

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/travel-pay/travel_pay/internal/consensus"
	"github.com/travel-pay/travel_pay/internal/ledger"
	"github.com/travel-pay/travel_pay/internal/report"
	"github.com/travel-pay/travel_pay/internal/roster"
	"github.com/travel-pay/travel_pay/internal/settlement"
)

var (
	// ErrNoGroup occurs when an operation runs before a group exists.
	ErrNoGroup = errors.New("no active group")

	// ErrTripEnded occurs when a mutating operation hits an ended group.
	ErrTripEnded = errors.New("trip has ended")

	// ErrNotHost occurs when a non-host calls a host-only trip operation.
	ErrNotHost = errors.New("only the host may do this")

	// ErrPendingApprovals occurs when settlement or trip end is attempted
	// while expense requests are still awaiting approval.
	ErrPendingApprovals = errors.New("pending approvals remain")
)

// Group lifecycle states.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Group is the trip group record. The wallet balance lives in the ledger.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberView joins a roster member with their ledger contribution total.
type MemberView struct {
	roster.Member
	Contribution int64 `json:"contribution"`
}

// Trip is the aggregate for one group session. Component locks guard their
// own state; the trip mutex serializes whole commands so a snapshot taken
// after a command observes a consistent aggregate.
type Trip struct {
	mu     sync.Mutex
	group  Group
	ledger *ledger.Ledger
	roster *roster.Roster
	engine *consensus.Engine
}

// New creates an active group hosted by the given user, with the host as the
// sole founding member.
func New(hostID, hostName, hostPhone, groupName string) *Trip {
	t := &Trip{
		group: Group{
			ID:        uuid.NewString(),
			Name:      groupName,
			HostID:    hostID,
			HostName:  hostName,
			Status:    StatusActive,
			CreatedAt: time.Now().UTC(),
		},
		ledger: ledger.New(),
		roster: roster.New(hostID, hostName, hostPhone),
	}
	t.engine = consensus.NewEngine(t.roster, t.ledger)
	return t
}

// Group returns the group record.
func (t *Trip) Group() Group {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.group
}

// Balance returns the wallet balance.
func (t *Trip) Balance() int64 {
	return t.ledger.Balance()
}

// Members returns the roster with contribution totals, join order.
func (t *Trip) Members() []MemberView {
	members := t.roster.Members()
	out := make([]MemberView, len(members))
	for i, m := range members {
		out[i] = MemberView{Member: m, Contribution: t.ledger.Contribution(m.ID)}
	}
	return out
}

// PendingInvites returns the pending invitation set.
func (t *Trip) PendingInvites() []roster.Invitation {
	return t.roster.PendingInvites()
}

// Transactions returns the ledger history, newest first.
func (t *Trip) Transactions() []ledger.Transaction {
	return t.ledger.History()
}

// Invite creates a pending invitation.
func (t *Trip) Invite(name, phone, inviterID string) (roster.Invitation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return roster.Invitation{}, err
	}
	return t.roster.Invite(name, phone, inviterID)
}

// AcceptInvite converts an invitation into a member, forwarding any positive
// initial contribution to the ledger.
func (t *Trip) AcceptInvite(inviteID string, initialContribution int64) (roster.Member, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return roster.Member{}, err
	}

	member, err := t.roster.AcceptInvite(inviteID, initialContribution)
	if err != nil {
		return roster.Member{}, err
	}
	if initialContribution > 0 {
		title := fmt.Sprintf("%s joined & contributed", member.Name)
		if _, err := t.ledger.RecordContribution(member.ID, member.Name, title, initialContribution); err != nil {
			return roster.Member{}, err
		}
	}
	return member, nil
}

// RejectInvite removes a pending invitation.
func (t *Trip) RejectInvite(inviteID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}
	return t.roster.RejectInvite(inviteID)
}

// Contribute credits a member's contribution to the wallet.
func (t *Trip) Contribute(memberID string, amount int64) (ledger.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return ledger.Transaction{}, err
	}

	member, err := t.roster.Member(memberID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return t.ledger.RecordContribution(member.ID, member.Name, "", amount)
}

// SubmitExpense enters an expense into the approval flow.
func (t *Trip) SubmitExpense(payerID, category, title string, amount int64, submitterID string) (consensus.Request, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return consensus.Request{}, err
	}
	return t.engine.Submit(payerID, category, title, amount, submitterID)
}

// ApproveExpense records one member's approval.
func (t *Trip) ApproveExpense(requestID, approverID string) (consensus.Request, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return consensus.Request{}, err
	}
	return t.engine.Approve(requestID, approverID)
}

// RejectExpense kills a pending request with a single rejection.
func (t *Trip) RejectExpense(requestID, rejecterID string) (consensus.Request, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return consensus.Request{}, err
	}
	return t.engine.Reject(requestID, rejecterID)
}

// CancelExpense lets the host discard a pending request.
func (t *Trip) CancelExpense(requestID, callerID string) (consensus.Request, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return consensus.Request{}, err
	}
	return t.engine.Cancel(requestID, callerID)
}

// ExpenseStatus answers for pending and finalized requests.
func (t *Trip) ExpenseStatus(requestID string) (consensus.Request, error) {
	return t.engine.Status(requestID)
}

// PendingExpenses returns unresolved requests in submission order.
func (t *Trip) PendingExpenses() []consensus.Request {
	return t.engine.Pending()
}

// ApprovedExpenses returns the expense history.
func (t *Trip) ApprovedExpenses() []consensus.Request {
	return t.engine.Approved()
}

// Report builds the group spending summary.
func (t *Trip) Report() report.Summary {
	t.mu.Lock()
	name := t.group.Name
	t.mu.Unlock()

	members := t.roster.Members()
	lines := make([]report.MemberLine, len(members))
	for i, m := range members {
		lines[i] = report.MemberLine{
			MemberID:     m.ID,
			Name:         m.Name,
			Role:         m.Role,
			Contribution: t.ledger.Contribution(m.ID),
		}
	}
	return report.Build(name, t.ledger.Balance(), lines, t.ledger.History())
}

// Settle computes the end-of-trip reconciliation report. Host only; fails
// while any expense request is still pending. The report mutates nothing.
func (t *Trip) Settle(callerID string) (settlement.Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.roster.IsHost(callerID) {
		return settlement.Report{}, ErrNotHost
	}
	if t.engine.HasPending() {
		return settlement.Report{}, ErrPendingApprovals
	}

	members := t.roster.Members()
	contributions := make([]settlement.MemberContribution, len(members))
	for i, m := range members {
		contributions[i] = settlement.MemberContribution{
			MemberID: m.ID,
			Name:     m.Name,
			Amount:   t.ledger.Contribution(m.ID),
		}
	}
	return settlement.Compute(contributions, t.ledger.TotalExpenses()), nil
}

// End flips the group to ended, blocking further contributions and expenses.
// Host only; fails while approvals are pending. Returns the settlement report.
func (t *Trip) End(callerID string) (settlement.Report, error) {
	report, err := t.Settle(callerID)
	if err != nil {
		return settlement.Report{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.group.Status == StatusEnded {
		return settlement.Report{}, ErrTripEnded
	}
	t.group.Status = StatusEnded
	return report, nil
}

// ensureActive rejects mutations on ended groups. Callers hold t.mu.
func (t *Trip) ensureActive() error {
	if t.group.Status != StatusActive {
		return ErrTripEnded
	}
	return nil
}
