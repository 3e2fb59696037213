package registry

import (
	"testing"
	"time"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var now = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func validInput() models.NewEmployee {
	return models.NewEmployee{
		Name:  "Ada Lovelace",
		Role:  models.RoleDeveloper,
		Email: "ada@example.com",
	}
}

func TestRegistry_CreateDefaults(t *testing.T) {
	reg := New(fixedClock{now})

	emp, err := reg.Create(validInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, emp.ID)
	assert.Equal(t, "", emp.Phone)
	assert.Equal(t, "/assets/placeholders/developer.png", emp.Photo)
	assert.NotNil(t, emp.Experiences)
	assert.Empty(t, emp.Experiences)
	assert.Nil(t, emp.CurrentZone)
	assert.Equal(t, now, emp.CreatedAt)

	found, ok := reg.Find(emp.ID)
	require.True(t, ok)
	assert.Same(t, emp, found)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_CreateKeepsSuppliedFields(t *testing.T) {
	reg := New(fixedClock{now})
	in := validInput()
	in.Name = "  Grace Hopper  "
	in.Phone = "+1 (555) 010-2030"
	in.Photo = "https://example.com/grace.png"
	in.Experiences = []models.WorkExperience{
		{Description: "Compiler work", Start: month(2020, time.January), End: utils.Ptr(month(2023, time.March))},
		{Description: "Navy", Start: month(2024, time.February), Ongoing: true},
	}

	emp, err := reg.Create(in)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", emp.Name)
	assert.Equal(t, in.Photo, emp.Photo)
	assert.Len(t, emp.Experiences, 2)
}

func TestRegistry_UniqueIDs(t *testing.T) {
	reg := New(nil)
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		emp, err := reg.Create(validInput())
		require.NoError(t, err)
		assert.False(t, seen[emp.ID])
		seen[emp.ID] = true
	}
	all := reg.All()
	require.Len(t, all, 50)
}

func TestRegistry_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.NewEmployee)
		field  string
	}{
		{"missing name", func(in *models.NewEmployee) { in.Name = "   " }, "Name"},
		{"unknown role", func(in *models.NewEmployee) { in.Role = "pilot" }, "Role"},
		{"missing role", func(in *models.NewEmployee) { in.Role = "" }, "Role"},
		{"bad email", func(in *models.NewEmployee) { in.Email = "not-an-email" }, "Email"},
		{"bad phone", func(in *models.NewEmployee) { in.Phone = "call me" }, "Phone"},
		{"bad photo", func(in *models.NewEmployee) { in.Photo = "::nope" }, "Photo"},
		{"empty experience description", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{Start: month(2020, time.January), Ongoing: true}}
		}, "Experiences[0].Description"},
		{"missing experience start", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{Description: "x", Ongoing: true}}
		}, "Experiences[0].Start"},
		{"start in the future", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{Description: "x", Start: month(2025, time.July), Ongoing: true}}
		}, "Experiences[0].Start"},
		{"ongoing with end", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{
				Description: "x", Start: month(2020, time.January), End: utils.Ptr(month(2021, time.January)), Ongoing: true,
			}}
		}, "Experiences[0].End"},
		{"end before start", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{
				Description: "x", Start: month(2022, time.May), End: utils.Ptr(month(2021, time.January)),
			}}
		}, "Experiences[0].End"},
		{"end in the future", func(in *models.NewEmployee) {
			in.Experiences = []models.WorkExperience{{
				Description: "x", Start: month(2022, time.May), End: utils.Ptr(month(2026, time.January)),
			}}
		}, "Experiences[0].End"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(fixedClock{now})
			in := validInput()
			tt.mutate(&in)

			emp, err := reg.Create(in)
			require.Error(t, err)
			assert.Nil(t, emp)
			assert.ErrorIs(t, err, e.ErrValidation)

			var verr *e.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Equal(t, 0, reg.Len(), "no partial record may be created")
		})
	}
}

func TestRegistry_CurrentMonthIsAllowed(t *testing.T) {
	reg := New(fixedClock{now})
	in := validInput()
	in.Experiences = []models.WorkExperience{{
		Description: "Started this month", Start: month(2025, time.June), End: utils.Ptr(month(2025, time.June)),
	}}
	_, err := reg.Create(in)
	assert.NoError(t, err)
}

func TestRegistry_Restore(t *testing.T) {
	reg := New(nil)
	_, err := reg.Create(validInput())
	require.NoError(t, err)

	a := models.Employee{ID: uuid.New(), Name: "A", Role: models.RoleCleaner}
	b := models.Employee{ID: uuid.New(), Name: "B", Role: models.RoleManager}
	janitor := models.Employee{ID: uuid.New(), Name: "J", Role: "janitor", CurrentZone: models.ZoneConference.Ptr()}
	dropped := reg.Restore([]models.Employee{a, b, a, {Name: "no id"}, janitor})

	assert.Equal(t, 3, dropped)
	_, ok := reg.Find(janitor.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, reg.Len())
	all := reg.All()
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
	assert.NotNil(t, all[0].Experiences)
}
