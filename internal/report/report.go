// Package report builds the spending summary a client renders for a trip
// group: wallet totals, who put in what, and where the money went by
// category. Like settlement, it is a pure calculation.
package report

import (
	"github.com/travel-pay/travel_pay/internal/ledger"
)

// MemberLine is one member's row in the summary.
type MemberLine struct {
	MemberID     string  `json:"member_id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Contribution int64   `json:"contribution"`
	Share        float64 `json:"share"`
}

// CategoryLine aggregates expenses under one category.
type CategoryLine struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
	Count    int    `json:"count"`
}

// Summary is the full group spending report.
type Summary struct {
	GroupName          string         `json:"group_name"`
	Balance            int64          `json:"balance"`
	TotalContributions int64          `json:"total_contributions"`
	TotalExpenses      int64          `json:"total_expenses"`
	Members            []MemberLine   `json:"members"`
	Categories         []CategoryLine `json:"categories"`
}

// Build assembles the summary. Member lines arrive with contributions filled
// in; shares and the category breakdown are computed here. Categories appear
// in the order the transaction log surfaces them.
func Build(groupName string, balance int64, members []MemberLine, transactions []ledger.Transaction) Summary {
	s := Summary{
		GroupName: groupName,
		Balance:   balance,
		Members:   members,
	}

	for i := range s.Members {
		s.TotalContributions += s.Members[i].Contribution
	}
	if s.TotalContributions > 0 {
		for i := range s.Members {
			s.Members[i].Share = float64(s.Members[i].Contribution) / float64(s.TotalContributions)
		}
	}

	index := make(map[string]int)
	for _, tx := range transactions {
		if tx.Type != ledger.TypeExpense {
			continue
		}
		s.TotalExpenses += tx.Amount

		category := tx.Category
		if category == "" {
			category = "other"
		}
		i, ok := index[category]
		if !ok {
			i = len(s.Categories)
			index[category] = i
			s.Categories = append(s.Categories, CategoryLine{Category: category})
		}
		s.Categories[i].Amount += tx.Amount
		s.Categories[i].Count++
	}
	return s
}
