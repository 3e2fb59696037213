// Package policy holds the static zone configuration: per-zone capacity and
// the role allowlist each zone enforces.
package policy

import (
	"fmt"

	"github.com/gartstein/staffboard/internal/board/models"
)

// ZoneRule configures a single zone. A nil Allowed means the zone accepts
// every role.
type ZoneRule struct {
	Zone     models.ZoneID
	Capacity int
	Allowed  []models.Role
}

// Policy evaluates capacity and eligibility for the configured zones.
type Policy struct {
	order    []models.ZoneID
	capacity map[models.ZoneID]int
	allowed  map[models.ZoneID]map[models.Role]bool
}

// DefaultRules returns the board's built-in zone table.
func DefaultRules() []ZoneRule {
	return []ZoneRule{
		{Zone: models.ZoneConference, Capacity: 10},
		{Zone: models.ZoneReception, Capacity: 2, Allowed: []models.Role{
			models.RoleReceptionist, models.RoleManager, models.RoleCleaner,
		}},
		{Zone: models.ZoneServer, Capacity: 3, Allowed: []models.Role{
			models.RoleTechnician, models.RoleManager,
		}},
		{Zone: models.ZoneSecurity, Capacity: 2, Allowed: []models.Role{
			models.RoleSecurity, models.RoleManager,
		}},
		{Zone: models.ZoneStaff, Capacity: 8},
		{Zone: models.ZoneArchives, Capacity: 2, Allowed: []models.Role{
			models.RoleManager, models.RoleDeveloper, models.RoleDesigner,
			models.RoleReceptionist, models.RoleTechnician, models.RoleSecurity,
		}},
	}
}

// Default returns the policy built from DefaultRules.
func Default() *Policy {
	p, _ := New(DefaultRules())
	return p
}

// New builds a policy from rules. Zones keep the order they are given in.
func New(rules []ZoneRule) (*Policy, error) {
	p := &Policy{
		capacity: make(map[models.ZoneID]int, len(rules)),
		allowed:  make(map[models.ZoneID]map[models.Role]bool),
	}
	for _, r := range rules {
		if r.Capacity <= 0 {
			return nil, fmt.Errorf("zone %s: capacity must be positive, got %d", r.Zone, r.Capacity)
		}
		if _, dup := p.capacity[r.Zone]; dup {
			return nil, fmt.Errorf("zone %s configured twice", r.Zone)
		}
		p.order = append(p.order, r.Zone)
		p.capacity[r.Zone] = r.Capacity
		if r.Allowed != nil {
			set := make(map[models.Role]bool, len(r.Allowed))
			for _, role := range r.Allowed {
				set[role] = true
			}
			p.allowed[r.Zone] = set
		}
	}
	return p, nil
}

// WithCapacities returns a copy of the default rules with the given
// capacities applied.
func WithCapacities(overrides map[models.ZoneID]int) (*Policy, error) {
	rules := DefaultRules()
	for zone, capacity := range overrides {
		found := false
		for i := range rules {
			if rules[i].Zone == zone {
				rules[i].Capacity = capacity
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("capacity override for unknown zone %q", zone)
		}
	}
	return New(rules)
}

// IsEligible reports whether role may occupy zone. Rules are evaluated in
// order and the first match wins:
//  1. managers are eligible everywhere
//  2. cleaners never enter the archives
//  3. a zone with an allowlist admits only listed roles
//  4. any other zone admits every role
func (p *Policy) IsEligible(role models.Role, zone models.ZoneID) bool {
	if _, known := p.capacity[zone]; !known {
		return false
	}
	if role == models.RoleManager {
		return true
	}
	if role == models.RoleCleaner && zone == models.ZoneArchives {
		return false
	}
	if allowed, ok := p.allowed[zone]; ok {
		return allowed[role]
	}
	return true
}

// CapacityOf returns the zone capacity, or 0 for an unknown zone.
func (p *Policy) CapacityOf(zone models.ZoneID) int {
	return p.capacity[zone]
}

// EligibilityOf returns the allowlist of the zone. ok is false when the zone
// has none.
func (p *Policy) EligibilityOf(zone models.ZoneID) (roles []models.Role, ok bool) {
	allowed, ok := p.allowed[zone]
	if !ok {
		return nil, false
	}
	for _, role := range models.AllRoles() {
		if allowed[role] {
			roles = append(roles, role)
		}
	}
	return roles, true
}

// Knows reports whether zone is configured.
func (p *Policy) Knows(zone models.ZoneID) bool {
	_, ok := p.capacity[zone]
	return ok
}

// Zones returns the configured zones in order.
func (p *Policy) Zones() []models.ZoneID {
	out := make([]models.ZoneID, len(p.order))
	copy(out, p.order)
	return out
}

// TotalCapacity sums the capacity of every zone.
func (p *Policy) TotalCapacity() int {
	total := 0
	for _, c := range p.capacity {
		total += c
	}
	return total
}
