// Package assignment owns the partition of employees into the unassigned
// pool and one bucket per zone. Every mutation keeps the bucket holding an
// employee and the employee's CurrentZone in agreement.
package assignment

import (
	"fmt"
	"slices"
	"sort"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/board/policy"
	"github.com/google/uuid"
)

// Roster resolves employee ids to their live records.
type Roster interface {
	Find(id uuid.UUID) (*models.Employee, bool)
	All() []*models.Employee
}

// Store is the assignment partition. It is not safe for concurrent use;
// callers serialise access.
type Store struct {
	policy     *policy.Policy
	roster     Roster
	unassigned []uuid.UUID
	zones      map[models.ZoneID][]uuid.UUID
}

// New creates an empty Store for the zones of p.
func New(p *policy.Policy, roster Roster) *Store {
	s := &Store{policy: p, roster: roster}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.unassigned = []uuid.UUID{}
	s.zones = make(map[models.ZoneID][]uuid.UUID, len(s.policy.Zones()))
	for _, z := range s.policy.Zones() {
		s.zones[z] = []uuid.UUID{}
	}
}

// Enroll puts a freshly registered employee into the unassigned pool.
func (s *Store) Enroll(id uuid.UUID) error {
	emp, ok := s.roster.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id)
	}
	if emp.CurrentZone != nil || slices.Contains(s.unassigned, id) {
		return nil
	}
	s.unassigned = append(s.unassigned, id)
	return nil
}

// Assign places the employee in zone. Preconditions are checked in order:
// the employee exists, the zone has a free seat, and the policy admits the
// employee's role. An employee already sitting in another zone is moved in
// one step and never passes through the unassigned pool. Assigning an
// employee to the zone it already occupies changes nothing, even when that
// zone is full.
//
// The returned views are the buckets that changed; nil means no change.
func (s *Store) Assign(id uuid.UUID, zone models.ZoneID) ([]models.View, error) {
	emp, ok := s.roster.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id)
	}
	if !s.policy.Knows(zone) {
		return nil, fmt.Errorf("%w: %q", e.ErrUnknownZone, zone)
	}
	if emp.CurrentZone != nil && *emp.CurrentZone == zone {
		return nil, nil
	}
	if capacity := s.policy.CapacityOf(zone); len(s.zones[zone]) >= capacity {
		return nil, &e.CapacityError{Zone: zone, Capacity: capacity}
	}
	if !s.policy.IsEligible(emp.Role, zone) {
		return nil, &e.EligibilityError{Role: emp.Role, Zone: zone}
	}

	views := []models.View{models.ZoneView(zone)}
	if emp.CurrentZone != nil {
		src := *emp.CurrentZone
		s.vacate(emp, src, false)
		views = append(views, models.ZoneView(src))
	}
	if remaining, removed := without(s.unassigned, id); removed {
		s.unassigned = remaining
		views = append(views, models.UnassignedView)
	}
	s.zones[zone] = append(s.zones[zone], id)
	emp.CurrentZone = zone.Ptr()
	return views, nil
}

// Unassign returns the employee from zone to the unassigned pool. It is a
// no-op, returning nil views, when the employee is not in that zone.
func (s *Store) Unassign(id uuid.UUID, zone models.ZoneID) ([]models.View, error) {
	emp, ok := s.roster.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id)
	}
	if !s.policy.Knows(zone) {
		return nil, fmt.Errorf("%w: %q", e.ErrUnknownZone, zone)
	}
	if !slices.Contains(s.zones[zone], id) {
		return nil, nil
	}
	s.vacate(emp, zone, true)
	return []models.View{models.ZoneView(zone), models.UnassignedView}, nil
}

// VacateAll sends every occupant back to the unassigned pool.
func (s *Store) VacateAll() []models.View {
	var views []models.View
	for _, zone := range s.policy.Zones() {
		occupants := s.zones[zone]
		if len(occupants) == 0 {
			continue
		}
		for _, id := range occupants {
			if emp, ok := s.roster.Find(id); ok {
				emp.CurrentZone = nil
			}
			s.unassigned = append(s.unassigned, id)
		}
		s.zones[zone] = []uuid.UUID{}
		views = append(views, models.ZoneView(zone))
	}
	if len(views) > 0 {
		views = append(views, models.UnassignedView)
	}
	return views
}

// vacate removes emp from zone. With reinsert the employee lands in the
// unassigned pool; without it the caller is about to seat it elsewhere.
func (s *Store) vacate(emp *models.Employee, zone models.ZoneID, reinsert bool) {
	s.zones[zone], _ = without(s.zones[zone], emp.ID)
	emp.CurrentZone = nil
	if reinsert {
		s.unassigned = append(s.unassigned, emp.ID)
	}
}

// Occupancy returns how many employees sit in zone.
func (s *Store) Occupancy(zone models.ZoneID) int {
	return len(s.zones[zone])
}

// Occupants returns the ids in zone in arrival order.
func (s *Store) Occupants(zone models.ZoneID) []uuid.UUID {
	return slices.Clone(s.zones[zone])
}

// Unassigned returns the ids of the unassigned pool in arrival order.
func (s *Store) Unassigned() []uuid.UUID {
	return slices.Clone(s.unassigned)
}

// Snapshot copies the full board state.
func (s *Store) Snapshot() models.Snapshot {
	all := s.roster.All()
	snap := models.Snapshot{
		Employees:  make([]models.Employee, 0, len(all)),
		Unassigned: s.Unassigned(),
		Zones:      make(map[models.ZoneID][]uuid.UUID, len(s.zones)),
	}
	for _, emp := range all {
		snap.Employees = append(snap.Employees, *emp)
	}
	for zone, ids := range s.zones {
		snap.Zones[zone] = slices.Clone(ids)
	}
	return snap
}

// Restore rebuilds the partition from persisted buckets, which must refer to
// the employees already loaded into the roster. Persisted data that breaks an
// invariant is repaired rather than rejected: unknown or repeated ids are
// dropped, and employees that overflow a zone, are not eligible for it, sit
// in an unconfigured zone or appear in no bucket at all end up unassigned.
// CurrentZone is recomputed from the buckets. Each repair, including a
// CurrentZone that disagreed with its bucket, is described in the returned
// notes.
func (s *Store) Restore(snap models.Snapshot) (notes []string) {
	s.reset()
	placed := make(map[uuid.UUID]bool)
	var displaced []uuid.UUID
	moved := make(map[uuid.UUID]bool)

	for _, zone := range restoreOrder(s.policy, snap.Zones) {
		for _, id := range snap.Zones[zone] {
			emp, ok := s.roster.Find(id)
			switch {
			case !ok:
				notes = append(notes, fmt.Sprintf("dropped unknown employee %s from %s", id, zone))
				continue
			case placed[id]:
				notes = append(notes, fmt.Sprintf("dropped repeated employee %s from %s", id, zone))
				continue
			case !s.policy.Knows(zone):
				notes = append(notes, fmt.Sprintf("employee %s was in unknown zone %s", id, zone))
			case len(s.zones[zone]) >= s.policy.CapacityOf(zone):
				notes = append(notes, fmt.Sprintf("employee %s overflowed %s", id, zone))
			case !s.policy.IsEligible(emp.Role, zone):
				notes = append(notes, fmt.Sprintf("employee %s (%s) not eligible for %s", id, emp.Role, zone))
			default:
				if emp.CurrentZone == nil || *emp.CurrentZone != zone {
					notes = append(notes, fmt.Sprintf("employee %s recorded zone %s but sat in %s", id, recorded(emp.CurrentZone), zone))
				}
				s.zones[zone] = append(s.zones[zone], id)
				emp.CurrentZone = zone.Ptr()
				placed[id] = true
				continue
			}
			displaced = append(displaced, id)
			moved[id] = true
		}
	}

	for i, id := range append(slices.Clone(snap.Unassigned), displaced...) {
		if placed[id] {
			if i < len(snap.Unassigned) {
				notes = append(notes, fmt.Sprintf("dropped repeated employee %s from unassigned", id))
			}
			continue
		}
		if _, ok := s.roster.Find(id); !ok {
			notes = append(notes, fmt.Sprintf("dropped unknown employee %s from unassigned", id))
			continue
		}
		if claimed := s.park(id); claimed != nil && !moved[id] {
			notes = append(notes, fmt.Sprintf("unassigned employee %s recorded zone %s", id, *claimed))
		}
		placed[id] = true
	}

	for _, emp := range s.roster.All() {
		if !placed[emp.ID] {
			notes = append(notes, fmt.Sprintf("employee %s was in no bucket", emp.ID))
			s.park(emp.ID)
			placed[emp.ID] = true
		}
	}
	return notes
}

// park appends id to the unassigned pool and returns the zone the employee
// claimed before, if any.
func (s *Store) park(id uuid.UUID) (claimed *models.ZoneID) {
	if emp, ok := s.roster.Find(id); ok {
		claimed = emp.CurrentZone
		emp.CurrentZone = nil
	}
	s.unassigned = append(s.unassigned, id)
	return claimed
}

func recorded(zone *models.ZoneID) string {
	if zone == nil {
		return "none"
	}
	return string(*zone)
}

// Verify checks the partition invariants: each employee is in exactly one
// bucket matching its CurrentZone, no zone exceeds its capacity and every
// occupant is eligible for its zone.
func (s *Store) Verify() error {
	seen := make(map[uuid.UUID]string)
	note := func(id uuid.UUID, bucket string) error {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("employee %s is in both %s and %s", id, prev, bucket)
		}
		seen[id] = bucket
		return nil
	}

	for _, id := range s.unassigned {
		emp, ok := s.roster.Find(id)
		if !ok {
			return fmt.Errorf("unassigned pool holds unknown employee %s", id)
		}
		if emp.CurrentZone != nil {
			return fmt.Errorf("unassigned employee %s claims zone %s", id, *emp.CurrentZone)
		}
		if err := note(id, string(models.UnassignedView)); err != nil {
			return err
		}
	}
	for zone, ids := range s.zones {
		if capacity := s.policy.CapacityOf(zone); len(ids) > capacity {
			return fmt.Errorf("zone %s holds %d of %d", zone, len(ids), capacity)
		}
		for _, id := range ids {
			emp, ok := s.roster.Find(id)
			if !ok {
				return fmt.Errorf("zone %s holds unknown employee %s", zone, id)
			}
			if emp.CurrentZone == nil || *emp.CurrentZone != zone {
				return fmt.Errorf("employee %s in %s does not record that zone", id, zone)
			}
			if !s.policy.IsEligible(emp.Role, zone) {
				return fmt.Errorf("employee %s (%s) is not eligible for %s", id, emp.Role, zone)
			}
			if err := note(id, string(zone)); err != nil {
				return err
			}
		}
	}
	for _, emp := range s.roster.All() {
		if _, ok := seen[emp.ID]; !ok {
			return fmt.Errorf("employee %s is in no bucket", emp.ID)
		}
	}
	return nil
}

func without(ids []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids, false
	}
	return slices.Delete(ids, i, i+1), true
}

// restoreOrder lists configured zones first, then unconfigured ones sorted.
func restoreOrder(p *policy.Policy, persisted map[models.ZoneID][]uuid.UUID) []models.ZoneID {
	order := p.Zones()
	var extra []models.ZoneID
	for zone := range persisted {
		if !p.Knows(zone) {
			extra = append(extra, zone)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}
