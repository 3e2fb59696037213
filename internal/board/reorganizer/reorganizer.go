// Package reorganizer reseats the whole roster in one randomized greedy pass.
//
// The pass does not backtrack. A roster that could be packed completely may
// still end with employees unassigned when an early pick takes the only seat
// a later employee was eligible for.
package reorganizer

import (
	"fmt"

	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/board/policy"
	"github.com/google/uuid"
)

// Rand is the randomness the pass draws from. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// Board is the state the pass reorganizes. Assign must commit before it
// returns so later occupancy reads see it.
type Board interface {
	VacateAll() error
	Unassigned() []uuid.UUID
	RoleOf(id uuid.UUID) (models.Role, bool)
	Occupancy(zone models.ZoneID) int
	Assign(id uuid.UUID, zone models.ZoneID) error
}

// Reorganizer runs auto-reorganize passes.
type Reorganizer struct {
	policy *policy.Policy
	rand   Rand
}

// New creates a Reorganizer.
func New(p *policy.Policy, r Rand) *Reorganizer {
	return &Reorganizer{policy: p, rand: r}
}

// Reorganize empties every zone, shuffles the unassigned pool and seats each
// employee in a zone picked uniformly among those that admit its role and
// still have room. Employees with no such zone stay unassigned.
func (r *Reorganizer) Reorganize(b Board) (models.ReorganizeReport, error) {
	report := models.ReorganizeReport{Placed: make(map[uuid.UUID]models.ZoneID)}

	if err := b.VacateAll(); err != nil {
		return report, fmt.Errorf("vacate zones: %w", err)
	}

	pool := b.Unassigned()
	r.rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	for _, id := range pool {
		role, ok := b.RoleOf(id)
		if !ok {
			continue
		}
		candidates := r.candidates(b, role)
		if len(candidates) == 0 {
			report.Unplaced = append(report.Unplaced, id)
			continue
		}
		zone := candidates[r.rand.IntN(len(candidates))]
		if err := b.Assign(id, zone); err != nil {
			return report, fmt.Errorf("assign %s to %s: %w", id, zone, err)
		}
		report.Placed[id] = zone
	}
	return report, nil
}

func (r *Reorganizer) candidates(b Board, role models.Role) []models.ZoneID {
	var out []models.ZoneID
	for _, zone := range r.policy.Zones() {
		if r.policy.IsEligible(role, zone) && b.Occupancy(zone) < r.policy.CapacityOf(zone) {
			out = append(out, zone)
		}
	}
	return out
}
