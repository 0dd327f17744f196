// Package settlement computes the end-of-trip reconciliation: leftover wallet
// balance and its pro-rata distribution back to contributors. It is a pure
// calculation over ledger and roster state; ending a trip mutates nothing here.
package settlement

// MemberContribution is the input row for one member.
type MemberContribution struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
}

// Refund is one member's share of the remaining balance.
type Refund struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
}

// Report is the settlement outcome. Exactly one of three shapes holds:
// refunds (remaining > 0), a deficit (remaining < 0), or a perfect settlement.
type Report struct {
	TotalContributions int64    `json:"total_contributions"`
	TotalExpenses      int64    `json:"total_expenses"`
	Remaining          int64    `json:"remaining"`
	Refunds            []Refund `json:"refunds,omitempty"`
	Deficit            int64    `json:"deficit,omitempty"`
	Settled            bool     `json:"settled"`
}

// Compute builds the settlement report. Refunds are proportional to each
// member's contribution share, allocated in integer minor units with a
// largest-remainder pass so they sum exactly to the remaining balance.
// Members with zero contribution get no refund line.
func Compute(contributions []MemberContribution, totalExpenses int64) Report {
	var totalContributions int64
	for _, c := range contributions {
		totalContributions += c.Amount
	}

	remaining := totalContributions - totalExpenses
	report := Report{
		TotalContributions: totalContributions,
		TotalExpenses:      totalExpenses,
		Remaining:          remaining,
	}

	switch {
	case remaining < 0:
		report.Deficit = -remaining
	case remaining == 0:
		report.Settled = true
	default:
		if totalContributions > 0 {
			report.Refunds = allocate(contributions, totalContributions, remaining)
		}
	}
	return report
}

// allocate splits remaining across contributors by contribution share. Each
// member gets the floor of their exact share; the leftover units go one each
// to the largest fractional remainders, in input order on ties.
func allocate(contributions []MemberContribution, total, remaining int64) []Refund {
	refunds := make([]Refund, 0, len(contributions))
	remainders := make([]int64, 0, len(contributions))
	var allocated int64

	for _, c := range contributions {
		if c.Amount <= 0 {
			continue
		}
		share := c.Amount * remaining / total
		refunds = append(refunds, Refund{MemberID: c.MemberID, Name: c.Name, Amount: share})
		remainders = append(remainders, c.Amount*remaining%total)
		allocated += share
	}

	for leftover := remaining - allocated; leftover > 0; leftover-- {
		best := 0
		for i, rem := range remainders {
			if rem > remainders[best] {
				best = i
			}
		}
		refunds[best].Amount++
		remainders[best] = -1
	}
	return refunds
}
