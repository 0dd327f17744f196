package trip

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/travel-pay/travel_pay/internal/consensus"
	"github.com/travel-pay/travel_pay/internal/ledger"
	"github.com/travel-pay/travel_pay/internal/roster"
)

// Handler exposes the group, contribution, expense and settlement endpoints.
// Every route runs behind JWTAuth, so user_id is always present in locals.
type Handler struct {
	service *Service
}

// NewHandler constructs the trip HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// httpError maps domain errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoGroup):
		return fiber.NewError(http.StatusNotFound, "no active group")
	case errors.Is(err, ErrTripEnded):
		return fiber.NewError(http.StatusConflict, "trip has ended")
	case errors.Is(err, ErrNotHost), errors.Is(err, consensus.ErrNotAuthorized):
		return fiber.NewError(http.StatusForbidden, "not authorized")
	case errors.Is(err, ErrPendingApprovals):
		return fiber.NewError(http.StatusConflict, "pending approvals remain")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, roster.ErrDuplicateMember), errors.Is(err, roster.ErrDuplicateInvite):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, roster.ErrInvalidContribution):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrInviteNotFound), errors.Is(err, roster.ErrMemberNotFound),
		errors.Is(err, consensus.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

type createGroupRequest struct {
	Name    string    `json:"name"`
	Invites []Invitee `json:"invites"`
}

// CreateGroup starts a new trip group for the caller.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "group name is required")
	}

	group, err := h.service.CreateGroup(c.UserContext(), callerID(c), req.Name, req.Invites)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(group)
}

// GetGroup returns the caller's group with members, balance and pending state.
func (h *Handler) GetGroup(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"group":           t.Group(),
		"balance":         t.Balance(),
		"members":         t.Members(),
		"pending_invites": t.PendingInvites(),
		"pending":         t.PendingExpenses(),
	})
}

// Members returns the roster with contribution totals.
func (h *Handler) Members(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"members": t.Members()})
}

// ListInvites returns the pending invitations.
func (h *Handler) ListInvites(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"invites": t.PendingInvites()})
}

type inviteRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Invite adds a pending invitation.
func (h *Handler) Invite(c *fiber.Ctx) error {
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name is required")
	}

	inv, err := h.service.Invite(c.UserContext(), callerID(c), req.Name, req.Phone)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(inv)
}

type acceptInviteRequest struct {
	Contribution int64 `json:"contribution"`
}

// AcceptInvite joins an invited friend to the group.
func (h *Handler) AcceptInvite(c *fiber.Ctx) error {
	var req acceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	member, err := h.service.AcceptInvite(c.UserContext(), callerID(c), c.Params("id"), req.Contribution)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(member)
}

// RejectInvite discards a pending invitation.
func (h *Handler) RejectInvite(c *fiber.Ctx) error {
	if err := h.service.RejectInvite(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "rejected"})
}

type contributionRequest struct {
	MemberID string `json:"member_id"`
	Amount   int64  `json:"amount"`
}

// Contribute credits a member's contribution to the wallet.
func (h *Handler) Contribute(c *fiber.Ctx) error {
	var req contributionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	memberID := req.MemberID
	if memberID == "" {
		memberID = callerID(c)
	}

	tx, err := h.service.Contribute(c.UserContext(), callerID(c), memberID, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(tx)
}

// Transactions returns the wallet history, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": t.Transactions()})
}

type expenseRequest struct {
	PayerID  string `json:"payer_id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
}

// SubmitExpense enters an expense into the approval flow.
func (h *Handler) SubmitExpense(c *fiber.Ctx) error {
	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	payerID := req.PayerID
	if payerID == "" {
		payerID = callerID(c)
	}

	request, err := h.service.SubmitExpense(c.UserContext(), callerID(c), payerID, req.Category, req.Title, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(request)
}

// ListExpenses returns pending requests and the approved history.
func (h *Handler) ListExpenses(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"pending":  t.PendingExpenses(),
		"approved": t.ApprovedExpenses(),
	})
}

// GetExpense returns one request, pending or finalized.
func (h *Handler) GetExpense(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	request, err := t.ExpenseStatus(c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(request)
}

type approvalRequest struct {
	MemberID string `json:"member_id"`
}

// ApproveExpense records one member's approval.
func (h *Handler) ApproveExpense(c *fiber.Ctx) error {
	var req approvalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	memberID := req.MemberID
	if memberID == "" {
		memberID = callerID(c)
	}

	request, err := h.service.ApproveExpense(c.UserContext(), callerID(c), c.Params("id"), memberID)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			// finalization failed; the request flipped to rejected
			return c.Status(http.StatusOK).JSON(request)
		}
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(request)
}

// RejectExpense kills a pending request.
func (h *Handler) RejectExpense(c *fiber.Ctx) error {
	var req approvalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	memberID := req.MemberID
	if memberID == "" {
		memberID = callerID(c)
	}

	request, err := h.service.RejectExpense(c.UserContext(), callerID(c), c.Params("id"), memberID)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(request)
}

// CancelExpense lets the host withdraw a pending request.
func (h *Handler) CancelExpense(c *fiber.Ctx) error {
	request, err := h.service.CancelExpense(c.UserContext(), callerID(c), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(request)
}

// Report returns the group spending summary.
func (h *Handler) Report(c *fiber.Ctx) error {
	t, err := h.service.Current(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(t.Report())
}

// Settle returns the current reconciliation report without ending the trip.
func (h *Handler) Settle(c *fiber.Ctx) error {
	report, err := h.service.Settle(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// EndTrip settles and closes the group.
func (h *Handler) EndTrip(c *fiber.Ctx) error {
	report, err := h.service.EndTrip(c.UserContext(), callerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(report)
}
