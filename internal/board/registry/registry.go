// Package registry owns the canonical roster of employees and validates
// new registrations.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PhotoPlaceholder is the photo reference used when none is supplied.
const PhotoPlaceholder = "/assets/placeholders/%s.png"

var phonePattern = regexp.MustCompile(`^[0-9+()\- ]{6,20}$`)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Registry holds employees in creation order with O(1) lookup by id.
type Registry struct {
	validate *validator.Validate
	clock    Clock
	order    []uuid.UUID
	byID     map[uuid.UUID]*models.Employee
}

// New creates an empty Registry. A nil clock uses the wall clock.
func New(clock Clock) *Registry {
	if clock == nil {
		clock = realClock{}
	}
	return &Registry{
		validate: newValidator(),
		clock:    clock,
		byID:     make(map[uuid.UUID]*models.Employee),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Create validates in and appends a new employee to the roster. The
// employee starts without a zone; enrolling it into the unassigned pool is
// the caller's job.
func (r *Registry) Create(in models.NewEmployee) (*models.Employee, error) {
	in.Experiences = append([]models.WorkExperience{}, in.Experiences...)
	normalize(&in)
	if err := r.Validate(&in); err != nil {
		return nil, err
	}

	photo := in.Photo
	if photo == "" {
		photo = fmt.Sprintf(PhotoPlaceholder, in.Role)
	}
	emp := &models.Employee{
		ID:          uuid.New(),
		Name:        in.Name,
		Role:        in.Role,
		Email:       in.Email,
		Phone:       in.Phone,
		Photo:       photo,
		Experiences: in.Experiences,
		CreatedAt:   r.clock.Now(),
	}
	r.order = append(r.order, emp.ID)
	r.byID[emp.ID] = emp
	return emp, nil
}

// Validate checks a registration without storing it.
func (r *Registry) Validate(in *models.NewEmployee) error {
	fields := make(map[string]string)

	if err := r.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", e.ErrValidation, err)
		}
		for _, fe := range verrs {
			fields[fieldKey(fe)] = message(fe)
		}
	}

	month := monthOf(r.clock.Now())
	for i, exp := range in.Experiences {
		prefix := fmt.Sprintf("Experiences[%d].", i)
		if exp.Start.IsZero() {
			fields[prefix+"Start"] = "is required"
			continue
		}
		start := monthOf(exp.Start)
		if start.After(month) {
			fields[prefix+"Start"] = "must not be in the future"
		}
		if exp.End == nil {
			continue
		}
		end := monthOf(*exp.End)
		switch {
		case exp.Ongoing:
			fields[prefix+"End"] = "must be empty for an ongoing position"
		case end.Before(start):
			fields[prefix+"End"] = "must not precede the start"
		case end.After(month):
			fields[prefix+"End"] = "must not be in the future"
		}
	}

	if len(fields) > 0 {
		return &e.ValidationError{Fields: fields}
	}
	return nil
}

// Find returns the employee with the given id.
func (r *Registry) Find(id uuid.UUID) (*models.Employee, bool) {
	emp, ok := r.byID[id]
	return emp, ok
}

// All returns the roster in creation order.
func (r *Registry) All() []*models.Employee {
	out := make([]*models.Employee, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered employees.
func (r *Registry) Len() int {
	return len(r.order)
}

// Restore replaces the roster with persisted employees. Records with a nil
// or repeated id, or a role outside the known set, are skipped and counted
// in dropped.
func (r *Registry) Restore(employees []models.Employee) (dropped int) {
	r.order = r.order[:0]
	r.byID = make(map[uuid.UUID]*models.Employee, len(employees))
	for i := range employees {
		emp := employees[i]
		if emp.ID == uuid.Nil {
			dropped++
			continue
		}
		if _, dup := r.byID[emp.ID]; dup {
			dropped++
			continue
		}
		if !emp.Role.Valid() {
			dropped++
			continue
		}
		if emp.Experiences == nil {
			emp.Experiences = []models.WorkExperience{}
		}
		r.order = append(r.order, emp.ID)
		r.byID[emp.ID] = &emp
	}
	return dropped
}

func normalize(in *models.NewEmployee) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Photo = strings.TrimSpace(in.Photo)
	for i := range in.Experiences {
		in.Experiences[i].Description = strings.TrimSpace(in.Experiences[i].Description)
	}
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "role":
		return fmt.Sprintf("unknown role %q", fe.Value())
	case "phone":
		return "must be a valid phone number"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
