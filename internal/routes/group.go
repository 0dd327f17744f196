package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/travel-pay/travel_pay/internal/trip"
)

// RegisterGroupRoutes wires the trip group endpoints. One group per user; the
// group in scope is always the caller's own.
func RegisterGroupRoutes(r fiber.Router, h *trip.Handler) {
	r.Post("/groups", h.CreateGroup)
	r.Get("/group", h.GetGroup)
	r.Get("/group/members", h.Members)

	r.Get("/group/invites", h.ListInvites)
	r.Post("/group/invites", h.Invite)
	r.Post("/group/invites/:id/accept", h.AcceptInvite)
	r.Post("/group/invites/:id/reject", h.RejectInvite)

	r.Post("/group/contributions", h.Contribute)
	r.Get("/group/transactions", h.Transactions)

	r.Post("/group/expenses", h.SubmitExpense)
	r.Get("/group/expenses", h.ListExpenses)
	r.Get("/group/expenses/:id", h.GetExpense)
	r.Post("/group/expenses/:id/approve", h.ApproveExpense)
	r.Post("/group/expenses/:id/reject", h.RejectExpense)
	r.Post("/group/expenses/:id/cancel", h.CancelExpense)

	r.Get("/group/report", h.Report)
	r.Get("/group/settlement", h.Settle)
	r.Post("/group/end", h.EndTrip)
}
