package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/travel-pay/travel_pay/internal/consensus"
	"github.com/travel-pay/travel_pay/internal/identity"
	"github.com/travel-pay/travel_pay/internal/ledger"
	"github.com/travel-pay/travel_pay/internal/metrics"
	"github.com/travel-pay/travel_pay/internal/notification"
	"github.com/travel-pay/travel_pay/internal/roster"
	"github.com/travel-pay/travel_pay/internal/session"
	"github.com/travel-pay/travel_pay/internal/settlement"
)

// Users is the slice of the account store the trip service needs: resolving
// hosts and keeping their lifetime stats current.
type Users interface {
	FindByID(ctx context.Context, id string) (identity.User, error)
	IncrementGroupsCreated(ctx context.Context, id string) error
	AddSpent(ctx context.Context, id string, amount int64) error
}

// Invitee names a friend to invite while creating a group.
type Invitee struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Service manages one trip per account. Trips live in memory while in use and
// are written through to the session store after every mutation, so a later
// login restores the exact group state.
type Service struct {
	store    session.Store
	users    Users
	notifier notification.Notifier
	logger   *slog.Logger

	mu   sync.Mutex
	live map[string]*Trip
}

// NewService wires the trip service.
func NewService(store session.Store, users Users, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		users:    users,
		notifier: notifier,
		logger:   logger,
		live:     make(map[string]*Trip),
	}
}

// CreateGroup starts a new trip group hosted by the user, replacing any
// previous group, and sends invitations to the named friends.
func (s *Service) CreateGroup(ctx context.Context, userID, name string, invitees []Invitee) (Group, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Group{}, err
	}

	t := New(user.ID, user.Name, user.Phone, name)
	for _, inv := range invitees {
		if _, err := t.Invite(inv.Name, inv.Phone, user.ID); err != nil {
			if errors.Is(err, roster.ErrDuplicateMember) || errors.Is(err, roster.ErrDuplicateInvite) {
				continue
			}
			return Group{}, err
		}
	}

	s.mu.Lock()
	s.live[userID] = t
	s.mu.Unlock()

	if err := s.persist(ctx, userID, t); err != nil {
		return Group{}, err
	}
	if err := s.users.IncrementGroupsCreated(ctx, userID); err != nil {
		return Group{}, err
	}

	metrics.GroupsCreated.Inc()
	s.notify(ctx, notification.KindGroupCreated, user.Phone, fmt.Sprintf("group %q created", name))
	return t.Group(), nil
}

// Current returns the user's trip, restoring it from the session store if it
// is not already live.
func (s *Service) Current(ctx context.Context, userID string) (*Trip, error) {
	s.mu.Lock()
	if t, ok := s.live[userID]; ok {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	data, err := s.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoGroup
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode trip snapshot: %w", err)
	}
	t := FromSnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[userID]; ok {
		return existing, nil
	}
	s.live[userID] = t
	return t, nil
}

// Invite adds a pending invitation to the user's group.
func (s *Service) Invite(ctx context.Context, userID, name, phone string) (roster.Invitation, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return roster.Invitation{}, err
	}

	inv, err := t.Invite(name, phone, userID)
	if err != nil {
		return roster.Invitation{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return roster.Invitation{}, err
	}

	s.notify(ctx, notification.KindInviteSent, inv.Phone, fmt.Sprintf("%s invited to %s", inv.Name, t.Group().Name))
	return inv, nil
}

// AcceptInvite joins an invited friend, crediting any initial contribution.
func (s *Service) AcceptInvite(ctx context.Context, userID, inviteID string, contribution int64) (roster.Member, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return roster.Member{}, err
	}

	member, err := t.AcceptInvite(inviteID, contribution)
	if err != nil {
		return roster.Member{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return roster.Member{}, err
	}

	if contribution > 0 {
		metrics.ContributionsRecorded.Inc()
	}
	s.notify(ctx, notification.KindMemberJoined, member.Phone, fmt.Sprintf("%s joined %s", member.Name, t.Group().Name))
	return member, nil
}

// RejectInvite discards a pending invitation.
func (s *Service) RejectInvite(ctx context.Context, userID, inviteID string) error {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return err
	}
	if err := t.RejectInvite(inviteID); err != nil {
		return err
	}
	return s.persist(ctx, userID, t)
}

// Contribute credits a member's contribution to the group wallet.
func (s *Service) Contribute(ctx context.Context, userID, memberID string, amount int64) (ledger.Transaction, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx, err := t.Contribute(memberID, amount)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return ledger.Transaction{}, err
	}

	metrics.ContributionsRecorded.Inc()
	s.notify(ctx, notification.KindContribution, t.Group().Name, fmt.Sprintf("%s contributed", tx.MemberName))
	return tx, nil
}

// SubmitExpense enters an expense into the unanimous approval flow.
func (s *Service) SubmitExpense(ctx context.Context, userID, payerID, category, title string, amount int64) (consensus.Request, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return consensus.Request{}, err
	}

	req, err := t.SubmitExpense(payerID, category, title, amount, userID)
	if err != nil {
		return consensus.Request{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return consensus.Request{}, err
	}

	metrics.ExpensesSubmitted.Inc()
	if req.Status == consensus.StatusApproved {
		s.recordApproval(ctx, userID, t, req)
	}
	return req, nil
}

// ApproveExpense records one member's approval, finalizing the expense when
// every required approval is in.
func (s *Service) ApproveExpense(ctx context.Context, userID, requestID, approverID string) (consensus.Request, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return consensus.Request{}, err
	}

	req, finalizeErr := t.ApproveExpense(requestID, approverID)
	if finalizeErr != nil && !errors.Is(finalizeErr, ledger.ErrInsufficientFunds) {
		return consensus.Request{}, finalizeErr
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return consensus.Request{}, err
	}

	switch req.Status {
	case consensus.StatusApproved:
		s.recordApproval(ctx, userID, t, req)
	case consensus.StatusRejected:
		metrics.ExpensesRejected.Inc()
		s.notify(ctx, notification.KindExpenseRejected, t.Group().Name, fmt.Sprintf("%s could not be funded", req.Title))
	default:
		s.notify(ctx, notification.KindApprovalRecorded, t.Group().Name, fmt.Sprintf("approval recorded for %s", req.Title))
	}
	return req, finalizeErr
}

// RejectExpense kills a pending expense with a single rejection.
func (s *Service) RejectExpense(ctx context.Context, userID, requestID, rejecterID string) (consensus.Request, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return consensus.Request{}, err
	}

	req, err := t.RejectExpense(requestID, rejecterID)
	if err != nil {
		return consensus.Request{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return consensus.Request{}, err
	}

	metrics.ExpensesRejected.Inc()
	s.notify(ctx, notification.KindExpenseRejected, t.Group().Name, fmt.Sprintf("%s rejected", req.Title))
	return req, nil
}

// CancelExpense lets the host withdraw a pending expense.
func (s *Service) CancelExpense(ctx context.Context, userID, requestID string) (consensus.Request, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return consensus.Request{}, err
	}

	req, err := t.CancelExpense(requestID, userID)
	if err != nil {
		return consensus.Request{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return consensus.Request{}, err
	}

	metrics.ExpensesRejected.Inc()
	return req, nil
}

// Settle computes the current reconciliation report without ending the trip.
func (s *Service) Settle(ctx context.Context, userID string) (settlement.Report, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return settlement.Report{}, err
	}
	return t.Settle(userID)
}

// EndTrip settles and closes the user's group.
func (s *Service) EndTrip(ctx context.Context, userID string) (settlement.Report, error) {
	t, err := s.Current(ctx, userID)
	if err != nil {
		return settlement.Report{}, err
	}

	report, err := t.End(userID)
	if err != nil {
		return settlement.Report{}, err
	}
	if err := s.persist(ctx, userID, t); err != nil {
		return settlement.Report{}, err
	}

	s.notify(ctx, notification.KindTripEnded, t.Group().Name, "trip ended and settled")
	return report, nil
}

// Logout drops the user's live trip. The persisted snapshot stays, so the
// next login picks the group back up.
func (s *Service) Logout(ctx context.Context, userID string) error {
	s.mu.Lock()
	t, ok := s.live[userID]
	delete(s.live, userID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.persist(ctx, userID, t)
}

// recordApproval handles the side effects of a finalized expense: metrics,
// host spend stats, and the activity notification. Only registered accounts
// carry lifetime stats; invited members without an account are skipped.
func (s *Service) recordApproval(ctx context.Context, userID string, t *Trip, req consensus.Request) {
	metrics.ExpensesApproved.Inc()
	if err := s.users.AddSpent(ctx, req.PayerID, req.Amount); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		s.logger.Error("record payer spend", "user_id", userID, "request_id", req.ID, "error", err)
	}
	s.notify(ctx, notification.KindExpenseApproved, t.Group().Name, fmt.Sprintf("%s approved", req.Title))
}

func (s *Service) persist(ctx context.Context, userID string, t *Trip) error {
	data, err := json.Marshal(t.Snapshot())
	if err != nil {
		return fmt.Errorf("encode trip snapshot: %w", err)
	}
	if err := s.store.Save(ctx, userID, data); err != nil {
		return fmt.Errorf("persist trip: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, kind, destination, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: destination, Body: body}); err != nil {
		s.logger.Warn("notification failed", "kind", kind, "error", err)
	}
}
