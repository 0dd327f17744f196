package roster

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateMember occurs when an invited name already belongs to a member.
	ErrDuplicateMember = errors.New("member already in group")

	// ErrDuplicateInvite occurs when an invitation for the same name is pending.
	ErrDuplicateInvite = errors.New("invitation already sent")

	// ErrInviteNotFound occurs when an invitation id is unknown.
	ErrInviteNotFound = errors.New("invitation not found")

	// ErrMemberNotFound occurs when a member id is unknown.
	ErrMemberNotFound = errors.New("member not found")

	// ErrInvalidContribution occurs when an initial contribution is negative.
	ErrInvalidContribution = errors.New("initial contribution cannot be negative")
)

// Roles a member can hold. Exactly one host exists per group, fixed at creation.
const (
	RoleHost   = "host"
	RoleMember = "member"
)

// InviteStatusPending is the only stored invitation status; accepted and
// rejected invitations leave the pending set immediately.
const InviteStatusPending = "pending"

// Member is one person on the group roster.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invitation is a pending request for someone to join the group.
type Invitation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	InvitedBy string    `json:"invited_by"`
	Status    string    `json:"status"`
	InvitedAt time.Time `json:"invited_at"`
}

// Roster owns the group member list and the pending invitation set.
type Roster struct {
	mu      sync.RWMutex
	hostID  string
	members []Member
	invites []Invitation
}

// New creates a roster whose sole member is the group host.
func New(hostID, hostName, hostPhone string) *Roster {
	return &Roster{
		hostID: hostID,
		members: []Member{{
			ID:       hostID,
			Name:     hostName,
			Phone:    hostPhone,
			Role:     RoleHost,
			JoinedAt: time.Now().UTC(),
		}},
	}
}

// Invite creates a pending invitation. Name collisions against members and
// pending invitations are rejected case-insensitively.
func (r *Roster) Invite(name, phone, inviterID string) (Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if strings.EqualFold(m.Name, name) {
			return Invitation{}, ErrDuplicateMember
		}
	}
	for _, inv := range r.invites {
		if strings.EqualFold(inv.Name, name) {
			return Invitation{}, ErrDuplicateInvite
		}
	}

	invite := Invitation{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		InvitedBy: inviterID,
		Status:    InviteStatusPending,
		InvitedAt: time.Now().UTC(),
	}
	r.invites = append(r.invites, invite)
	return invite, nil
}

// AcceptInvite converts a pending invitation into a member. The invitation
// leaves the pending set unconditionally. The caller forwards any positive
// initial contribution to the ledger.
func (r *Roster) AcceptInvite(inviteID string, initialContribution int64) (Member, error) {
	if initialContribution < 0 {
		return Member{}, ErrInvalidContribution
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, inv := range r.invites {
		if inv.ID == inviteID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Member{}, ErrInviteNotFound
	}

	invite := r.invites[idx]
	r.invites = append(r.invites[:idx], r.invites[idx+1:]...)

	member := Member{
		ID:       uuid.NewString(),
		Name:     invite.Name,
		Phone:    invite.Phone,
		Role:     RoleMember,
		JoinedAt: time.Now().UTC(),
	}
	r.members = append(r.members, member)
	return member, nil
}

// RejectInvite removes a pending invitation with no other side effect.
func (r *Roster) RejectInvite(inviteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, inv := range r.invites {
		if inv.ID == inviteID {
			r.invites = append(r.invites[:i], r.invites[i+1:]...)
			return nil
		}
	}
	return ErrInviteNotFound
}

// ApproversFor returns every current member except the payer: the required
// approver set for an expense. It is recomputed on each call, so roster
// changes between submission and finalization change the requirement.
func (r *Roster) ApproversFor(payerID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	approvers := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		if m.ID != payerID {
			approvers = append(approvers, m)
		}
	}
	return approvers
}

// ApproverIDs returns the ids of the required approver set for a payer.
func (r *Roster) ApproverIDs(payerID string) []string {
	approvers := r.ApproversFor(payerID)
	ids := make([]string, len(approvers))
	for i, m := range approvers {
		ids[i] = m.ID
	}
	return ids
}

// Members returns the roster in join order.
func (r *Roster) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// PendingInvites returns all pending invitations.
func (r *Roster) PendingInvites() []Invitation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Invitation, len(r.invites))
	copy(out, r.invites)
	return out
}

// Member looks up one member by id.
func (r *Roster) Member(id string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.ID == id {
			return m, nil
		}
	}
	return Member{}, ErrMemberNotFound
}

// MemberName resolves a member id to a display name.
func (r *Roster) MemberName(id string) (string, error) {
	m, err := r.Member(id)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

// IsHost reports whether the id belongs to the group host.
func (r *Roster) IsHost(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return id == r.hostID
}

// HostID returns the id of the group host.
func (r *Roster) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

// Snapshot is the serializable form of a roster.
type Snapshot struct {
	HostID  string       `json:"host_id"`
	Members []Member     `json:"members"`
	Invites []Invitation `json:"invites,omitempty"`
}

// Snapshot exports the roster state.
func (r *Roster) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]Member, len(r.members))
	copy(members, r.members)
	invites := make([]Invitation, len(r.invites))
	copy(invites, r.invites)

	return Snapshot{HostID: r.hostID, Members: members, Invites: invites}
}

// FromSnapshot rebuilds a roster from a previously exported snapshot.
func FromSnapshot(s Snapshot) *Roster {
	r := &Roster{hostID: s.HostID}
	r.members = append(r.members, s.Members...)
	r.invites = append(r.invites, s.Invites...)
	return r
}
