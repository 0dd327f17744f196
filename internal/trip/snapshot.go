package trip

import (
	"github.com/travel-pay/travel_pay/internal/consensus"
	"github.com/travel-pay/travel_pay/internal/ledger"
	"github.com/travel-pay/travel_pay/internal/roster"
)

// Snapshot captures a whole trip for persistence.
type Snapshot struct {
	Group  Group              `json:"group"`
	Ledger ledger.Snapshot    `json:"ledger"`
	Roster roster.Snapshot    `json:"roster"`
	Engine consensus.Snapshot `json:"engine"`
}

// Snapshot captures the aggregate while holding the trip lock, so the
// component snapshots are mutually consistent.
func (t *Trip) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Group:  t.group,
		Ledger: t.ledger.Snapshot(),
		Roster: t.roster.Snapshot(),
		Engine: t.engine.Snapshot(),
	}
}

// FromSnapshot rebuilds a trip, rewiring the consensus engine to the
// restored roster and ledger.
func FromSnapshot(s Snapshot) *Trip {
	t := &Trip{
		group:  s.Group,
		ledger: ledger.FromSnapshot(s.Ledger),
		roster: roster.FromSnapshot(s.Roster),
	}
	t.engine = consensus.FromSnapshot(s.Engine, t.roster, t.ledger)
	return t
}
