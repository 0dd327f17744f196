package consensus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/travel-pay/travel_pay/internal/ledger"
)

var (
	// ErrNotAuthorized occurs when a non-host submits or cancels, or when an
	// approval comes from outside the required approver set.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound occurs when a request id is unknown.
	ErrNotFound = errors.New("request not found")
)

// Status of an expense request. Approved and Rejected are terminal: a
// finalized request is never reopened, a fresh submission gets a new id.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Rejection reasons recorded on terminal requests.
const (
	ReasonRejected          = "rejected by member"
	ReasonCancelled         = "cancelled by host"
	ReasonInsufficientFunds = "insufficient funds at finalization"
)

// Request is an expense awaiting unanimous approval.
type Request struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Amount     int64      `json:"amount"`
	PayerID    string     `json:"payer_id"`
	PayerName  string     `json:"payer_name"`
	Category   string     `json:"category"`
	CreatedBy  string     `json:"created_by"`
	Status     Status     `json:"status"`
	Approvals  []string   `json:"approvals"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
}

func (r Request) approvedBy(memberID string) bool {
	for _, id := range r.Approvals {
		if id == memberID {
			return true
		}
	}
	return false
}

// Membership is the roster view the engine needs: the required approver set
// is recomputed through it at every check, never snapshotted at submission.
type Membership interface {
	ApproverIDs(payerID string) []string
	MemberName(id string) (string, error)
	IsHost(id string) bool
}

// Wallet is the ledger view the engine needs. RecordExpense re-verifies the
// balance at finalization time.
type Wallet interface {
	Balance() int64
	RecordExpense(payerID, payerName, category, title string, amount int64) (ledger.Transaction, error)
}

// Engine drives the expense approval state machine:
// pending -> pending (partial approvals) -> approved | rejected.
type Engine struct {
	mu        sync.Mutex
	members   Membership
	wallet    Wallet
	pending   map[string]*Request
	order     []string // pending ids in submission order
	finalized map[string]Request
	approved  []Request // expense history in approval order
}

// NewEngine wires the engine to its roster and ledger collaborators.
func NewEngine(members Membership, wallet Wallet) *Engine {
	return &Engine{
		members:   members,
		wallet:    wallet,
		pending:   make(map[string]*Request),
		finalized: make(map[string]Request),
	}
}

// Submit creates a pending expense request. Only the group host may submit,
// and the amount must not exceed the wallet balance at submission time. In a
// single-member group the required approver set is empty and the request
// finalizes immediately.
func (e *Engine) Submit(payerID, category, title string, amount int64, submitterID string) (Request, error) {
	if !e.members.IsHost(submitterID) {
		return Request{}, ErrNotAuthorized
	}
	if amount <= 0 {
		return Request{}, ledger.ErrInvalidAmount
	}
	if amount > e.wallet.Balance() {
		return Request{}, ledger.ErrInsufficientFunds
	}

	payerName, err := e.members.MemberName(payerID)
	if err != nil {
		return Request{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	req := &Request{
		ID:        uuid.NewString(),
		Title:     title,
		Amount:    amount,
		PayerID:   payerID,
		PayerName: payerName,
		Category:  category,
		CreatedBy: submitterID,
		Status:    StatusPending,
		Approvals: []string{},
		CreatedAt: time.Now().UTC(),
	}
	e.pending[req.ID] = req
	e.order = append(e.order, req.ID)

	if len(e.members.ApproverIDs(payerID)) == 0 {
		if err := e.finalizeLocked(req); err != nil {
			return *req, err
		}
	}
	return *req, nil
}

// Approve records one member's approval. Approvals are idempotent per member.
// When the approval count reaches the size of the current required approver
// set, the request finalizes: the balance is re-verified and the wallet
// debited, or the request reverts to Rejected if funds drifted away during
// the approval window.
func (e *Engine) Approve(requestID, approverID string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.pending[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}

	required := e.members.ApproverIDs(req.PayerID)
	if !contains(required, approverID) {
		return Request{}, ErrNotAuthorized
	}

	if !req.approvedBy(approverID) {
		req.Approvals = append(req.Approvals, approverID)
	}

	if len(req.Approvals) >= len(required) {
		if err := e.finalizeLocked(req); err != nil {
			return *req, err
		}
	}
	return *req, nil
}

// Reject kills a pending request. One rejection from any member of the
// required set (or the host) is sufficient; rejection is not subject to
// unanimity and never touches the wallet.
func (e *Engine) Reject(requestID, rejecterID string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.pending[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}

	if !e.members.IsHost(rejecterID) && !contains(e.members.ApproverIDs(req.PayerID), rejecterID) {
		return Request{}, ErrNotAuthorized
	}

	e.rejectLocked(req, ReasonRejected)
	return e.finalized[requestID], nil
}

// Cancel lets the host discard a pending request before it resolves.
func (e *Engine) Cancel(requestID, callerID string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.pending[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	if !e.members.IsHost(callerID) {
		return Request{}, ErrNotAuthorized
	}

	e.rejectLocked(req, ReasonCancelled)
	return e.finalized[requestID], nil
}

// Status answers for pending and finalized requests alike.
func (e *Engine) Status(requestID string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req, ok := e.pending[requestID]; ok {
		return *req, nil
	}
	if req, ok := e.finalized[requestID]; ok {
		return req, nil
	}
	return Request{}, ErrNotFound
}

// Pending returns unresolved requests in submission order.
func (e *Engine) Pending() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Request, 0, len(e.pending))
	for _, id := range e.order {
		if req, ok := e.pending[id]; ok {
			out = append(out, *req)
		}
	}
	return out
}

// Approved returns the expense history in approval order.
func (e *Engine) Approved() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Request, len(e.approved))
	copy(out, e.approved)
	return out
}

// HasPending reports whether any request is still awaiting approvals.
func (e *Engine) HasPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending) > 0
}

// finalizeLocked moves a request to Approved, debiting the wallet after the
// finalization-time balance re-check. A failed re-check reverts the request
// to Rejected and surfaces the ledger error.
func (e *Engine) finalizeLocked(req *Request) error {
	if _, err := e.wallet.RecordExpense(req.PayerID, req.PayerName, req.Category, req.Title, req.Amount); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			e.rejectLocked(req, ReasonInsufficientFunds)
		}
		return err
	}

	now := time.Now().UTC()
	req.Status = StatusApproved
	req.ApprovedAt = &now

	e.removePendingLocked(req.ID)
	e.finalized[req.ID] = *req
	e.approved = append(e.approved, *req)
	return nil
}

func (e *Engine) rejectLocked(req *Request, reason string) {
	now := time.Now().UTC()
	req.Status = StatusRejected
	req.Reason = reason
	req.RejectedAt = &now

	e.removePendingLocked(req.ID)
	e.finalized[req.ID] = *req
}

func (e *Engine) removePendingLocked(id string) {
	delete(e.pending, id)
	for i, pid := range e.order {
		if pid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Snapshot is the serializable form of the engine state.
type Snapshot struct {
	Pending   []Request `json:"pending"`
	Finalized []Request `json:"finalized,omitempty"`
	Approved  []Request `json:"approved,omitempty"`
}

// Snapshot exports pending and finalized requests.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := make([]Request, 0, len(e.pending))
	for _, id := range e.order {
		if req, ok := e.pending[id]; ok {
			pending = append(pending, *req)
		}
	}
	finalized := make([]Request, 0, len(e.finalized))
	for _, req := range e.finalized {
		finalized = append(finalized, req)
	}
	approved := make([]Request, len(e.approved))
	copy(approved, e.approved)

	return Snapshot{Pending: pending, Finalized: finalized, Approved: approved}
}

// FromSnapshot rebuilds an engine from a snapshot, rewiring it to live
// roster and ledger collaborators.
func FromSnapshot(s Snapshot, members Membership, wallet Wallet) *Engine {
	e := NewEngine(members, wallet)
	for i := range s.Pending {
		req := s.Pending[i]
		e.pending[req.ID] = &req
		e.order = append(e.order, req.ID)
	}
	for _, req := range s.Finalized {
		e.finalized[req.ID] = req
	}
	e.approved = append(e.approved, s.Approved...)
	return e
}
