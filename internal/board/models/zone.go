package models

import (
	"github.com/google/uuid"
)

// ZoneID identifies one of the fixed physical zones.
type ZoneID string

const (
	ZoneConference ZoneID = "conference"
	ZoneReception  ZoneID = "reception"
	ZoneServer     ZoneID = "server"
	ZoneSecurity   ZoneID = "security"
	ZoneStaff      ZoneID = "staff"
	ZoneArchives   ZoneID = "archives"
)

// AllZones returns the zones in display order.
func AllZones() []ZoneID {
	return []ZoneID{ZoneConference, ZoneReception, ZoneServer, ZoneSecurity, ZoneStaff, ZoneArchives}
}

// Valid reports whether z is a known zone.
func (z ZoneID) Valid() bool {
	for _, known := range AllZones() {
		if z == known {
			return true
		}
	}
	return false
}

// Ptr returns a pointer to a copy of z.
func (z ZoneID) Ptr() *ZoneID {
	return &z
}

// View names a part of the board a renderer must refresh.
type View string

// UnassignedView is the view of the unassigned pool.
const UnassignedView View = "unassigned"

// ZoneView returns the view of a zone.
func ZoneView(z ZoneID) View {
	return View(z)
}

// Snapshot is the complete persisted board state.
type Snapshot struct {
	Employees  []Employee
	Unassigned []uuid.UUID
	Zones      map[ZoneID][]uuid.UUID
}

// ZoneSummary describes a zone for renderers.
type ZoneSummary struct {
	Zone      ZoneID      `json:"zone"`
	Capacity  int         `json:"capacity"`
	Occupants []uuid.UUID `json:"occupants"`
	// Allowed is nil when the zone has no allowlist.
	Allowed []Role `json:"allowed,omitempty"`
}

// ReorganizeReport is the outcome of an auto-reorganize pass.
type ReorganizeReport struct {
	Placed   map[uuid.UUID]ZoneID `json:"placed"`
	Unplaced []uuid.UUID          `json:"unplaced"`
}

// ViewState is the content of a view after a change. Capacity is zero for
// the unassigned pool.
type ViewState struct {
	View     View        `json:"view"`
	Members  []uuid.UUID `json:"members"`
	Capacity int         `json:"capacity,omitempty"`
}
