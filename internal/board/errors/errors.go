package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gartstein/staffboard/internal/board/models"
)

var (
	ErrNotFound         = fmt.Errorf("not found")
	ErrValidation       = fmt.Errorf("invalid employee data")
	ErrUnknownEmployee  = fmt.Errorf("unknown employee")
	ErrUnknownZone      = fmt.Errorf("unknown zone")
	ErrCapacityExceeded = fmt.Errorf("zone capacity exceeded")
	ErrRoleIneligible   = fmt.Errorf("role not allowed in zone")
)

// CapacityError reports a rejected assignment into a full zone.
type CapacityError struct {
	Zone     models.ZoneID
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %s holds at most %d", ErrCapacityExceeded, e.Zone, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// EligibilityError reports a role that the zone policy rejects.
type EligibilityError struct {
	Role models.Role
	Zone models.ZoneID
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%v: %s cannot be placed in %s", ErrRoleIneligible, e.Role, e.Zone)
}

func (e *EligibilityError) Unwrap() error { return ErrRoleIneligible }

// ValidationError lists the rejected fields of an employee submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
