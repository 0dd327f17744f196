// Package metrics exposes Prometheus counters for the core wallet operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GroupsCreated counts trip groups created.
	GroupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelpay",
		Name:      "groups_created_total",
		Help:      "Number of trip groups created.",
	})

	// ContributionsRecorded counts contributions credited to group wallets.
	ContributionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelpay",
		Name:      "contributions_recorded_total",
		Help:      "Number of wallet contributions recorded.",
	})

	// ExpensesSubmitted counts expense requests entering the approval flow.
	ExpensesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelpay",
		Name:      "expenses_submitted_total",
		Help:      "Number of expense requests submitted for approval.",
	})

	// ExpensesApproved counts unanimously approved expenses.
	ExpensesApproved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelpay",
		Name:      "expenses_approved_total",
		Help:      "Number of expense requests approved and debited.",
	})

	// ExpensesRejected counts rejected, cancelled, and failed-finalization
	// expense requests.
	ExpensesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelpay",
		Name:      "expenses_rejected_total",
		Help:      "Number of expense requests rejected or cancelled.",
	})
)
