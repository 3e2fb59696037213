package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/board/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mockBoardController is a simple mock implementation of BoardController.
// Unset funcs fall back to an empty board under the default policy.
type mockBoardController struct {
	createEmployeeFunc func(ctx context.Context, in models.NewEmployee) (*models.Employee, error)
	findEmployeeFunc   func(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	employeesFunc      func(ctx context.Context) []models.Employee
	assignFunc         func(ctx context.Context, id uuid.UUID, zone models.ZoneID) error
	unassignFunc       func(ctx context.Context, id uuid.UUID, zone models.ZoneID) error
	autoReorganizeFunc func(ctx context.Context) (models.ReorganizeReport, error)
}

func (m *mockBoardController) CreateEmployee(ctx context.Context, in models.NewEmployee) (*models.Employee, error) {
	return m.createEmployeeFunc(ctx, in)
}

func (m *mockBoardController) FindEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	if m.findEmployeeFunc == nil {
		return &models.Employee{ID: id, Name: "Dummy", Role: models.RoleManager}, nil
	}
	return m.findEmployeeFunc(ctx, id)
}

func (m *mockBoardController) Employees(ctx context.Context) []models.Employee {
	if m.employeesFunc == nil {
		return []models.Employee{}
	}
	return m.employeesFunc(ctx)
}

func (m *mockBoardController) Assign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error {
	return m.assignFunc(ctx, id, zone)
}

func (m *mockBoardController) Unassign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error {
	return m.unassignFunc(ctx, id, zone)
}

func (m *mockBoardController) AutoReorganize(ctx context.Context) (models.ReorganizeReport, error) {
	return m.autoReorganizeFunc(ctx)
}

func (m *mockBoardController) IsEligible(role models.Role, zone models.ZoneID) bool {
	return policy.Default().IsEligible(role, zone)
}

func (m *mockBoardController) ZoneOccupancy(zone models.ZoneID) (int, error) {
	if !policy.Default().Knows(zone) {
		return 0, fmt.Errorf("%w: %q", e.ErrUnknownZone, zone)
	}
	return 1, nil
}

func (m *mockBoardController) Zones(_ context.Context) []models.ZoneSummary {
	p := policy.Default()
	var out []models.ZoneSummary
	for _, zone := range p.Zones() {
		allowed, _ := p.EligibilityOf(zone)
		out = append(out, models.ZoneSummary{Zone: zone, Capacity: p.CapacityOf(zone), Occupants: []uuid.UUID{}, Allowed: allowed})
	}
	return out
}

func (m *mockBoardController) Unassigned() []uuid.UUID {
	return []uuid.UUID{}
}

func TestBoardHandler_CreateEmployee(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("NilEmployee", func(t *testing.T) {
		handler := NewBoardHandler(&mockBoardController{}, logger)
		_, err := handler.CreateEmployee(context.Background(), &CreateEmployeeRequest{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("ValidationError", func(t *testing.T) {
		handler := NewBoardHandler(&mockBoardController{
			createEmployeeFunc: func(context.Context, models.NewEmployee) (*models.Employee, error) {
				return nil, &e.ValidationError{Fields: map[string]string{"Email": "must be a valid email"}}
			},
		}, logger)
		_, err := handler.CreateEmployee(context.Background(), &CreateEmployeeRequest{Employee: &models.NewEmployee{}})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "Email")
	})

	t.Run("Success", func(t *testing.T) {
		testID := uuid.New()
		handler := NewBoardHandler(&mockBoardController{
			createEmployeeFunc: func(_ context.Context, in models.NewEmployee) (*models.Employee, error) {
				return &models.Employee{ID: testID, Name: in.Name, Role: in.Role}, nil
			},
		}, logger)
		resp, err := handler.CreateEmployee(context.Background(), &CreateEmployeeRequest{
			Employee: &models.NewEmployee{Name: "Ada", Role: models.RoleDeveloper, Email: "ada@example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, testID, resp.Employee.ID)
		assert.Equal(t, "Ada", resp.Employee.Name)
	})
}

func TestBoardHandler_GetEmployee(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("InvalidID", func(t *testing.T) {
		handler := NewBoardHandler(&mockBoardController{}, logger)
		_, err := handler.GetEmployee(context.Background(), &GetEmployeeRequest{ID: "invalid-uuid"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		handler := NewBoardHandler(&mockBoardController{
			findEmployeeFunc: func(_ context.Context, id uuid.UUID) (*models.Employee, error) {
				return nil, fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id)
			},
		}, logger)
		_, err := handler.GetEmployee(context.Background(), &GetEmployeeRequest{ID: uuid.NewString()})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestBoardHandler_Assign(t *testing.T) {
	logger := zaptest.NewLogger(t)
	id := uuid.New()

	tests := []struct {
		name      string
		req       *AssignRequest
		assignErr error
		wantCode  codes.Code
	}{
		{name: "success", req: &AssignRequest{EmployeeID: id.String(), Zone: "server"}, wantCode: codes.OK},
		{name: "invalid id", req: &AssignRequest{EmployeeID: "x", Zone: "server"}, wantCode: codes.InvalidArgument},
		{name: "missing zone", req: &AssignRequest{EmployeeID: id.String()}, wantCode: codes.InvalidArgument},
		{
			name:      "unknown zone",
			req:       &AssignRequest{EmployeeID: id.String(), Zone: "roof"},
			assignErr: fmt.Errorf("%w: %q", e.ErrUnknownZone, "roof"),
			wantCode:  codes.InvalidArgument,
		},
		{
			name:      "capacity exceeded",
			req:       &AssignRequest{EmployeeID: id.String(), Zone: "reception"},
			assignErr: &e.CapacityError{Zone: models.ZoneReception, Capacity: 2},
			wantCode:  codes.FailedPrecondition,
		},
		{
			name:      "role ineligible",
			req:       &AssignRequest{EmployeeID: id.String(), Zone: "archives"},
			assignErr: &e.EligibilityError{Role: models.RoleCleaner, Zone: models.ZoneArchives},
			wantCode:  codes.FailedPrecondition,
		},
		{
			name:      "unknown employee",
			req:       &AssignRequest{EmployeeID: id.String(), Zone: "staff"},
			assignErr: fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id),
			wantCode:  codes.NotFound,
		},
		{
			name:      "persistence failure",
			req:       &AssignRequest{EmployeeID: id.String(), Zone: "staff"},
			assignErr: errors.New("failed to persist board: disk full"),
			wantCode:  codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotZone models.ZoneID
			handler := NewBoardHandler(&mockBoardController{
				assignFunc: func(_ context.Context, _ uuid.UUID, zone models.ZoneID) error {
					gotZone = zone
					return tt.assignErr
				},
				findEmployeeFunc: func(_ context.Context, id uuid.UUID) (*models.Employee, error) {
					return &models.Employee{ID: id, CurrentZone: gotZone.Ptr()}, nil
				},
			}, logger)

			resp, err := handler.Assign(context.Background(), tt.req)

			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				require.NotNil(t, resp.Employee.CurrentZone)
				assert.Equal(t, models.ZoneServer, *resp.Employee.CurrentZone)
			}
		})
	}
}

func TestBoardHandler_Unassign(t *testing.T) {
	id := uuid.New()
	called := 0
	handler := NewBoardHandler(&mockBoardController{
		unassignFunc: func(_ context.Context, got uuid.UUID, zone models.ZoneID) error {
			called++
			assert.Equal(t, id, got)
			assert.Equal(t, models.ZoneStaff, zone)
			return nil
		},
	}, zaptest.NewLogger(t))

	resp, err := handler.Unassign(context.Background(), &AssignRequest{EmployeeID: id.String(), Zone: "staff"})
	require.NoError(t, err)
	assert.Equal(t, id, resp.Employee.ID)
	assert.Equal(t, 1, called)
}

func TestBoardHandler_AutoReorganize(t *testing.T) {
	id := uuid.New()
	handler := NewBoardHandler(&mockBoardController{
		autoReorganizeFunc: func(context.Context) (models.ReorganizeReport, error) {
			return models.ReorganizeReport{Placed: map[uuid.UUID]models.ZoneID{id: models.ZoneStaff}}, nil
		},
	}, zaptest.NewLogger(t))

	resp, err := handler.AutoReorganize(context.Background(), &AutoReorganizeRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ZoneStaff, resp.Report.Placed[id])
}

func TestBoardHandler_CheckEligibility(t *testing.T) {
	handler := NewBoardHandler(&mockBoardController{}, zaptest.NewLogger(t))

	tests := []struct {
		name         string
		role         string
		zone         string
		wantCode     codes.Code
		wantEligible bool
		wantCapacity int
	}{
		{name: "manager anywhere", role: "manager", zone: "archives", wantEligible: true, wantCapacity: 2},
		{name: "cleaner not in archives", role: "cleaner", zone: "archives", wantCapacity: 2},
		{name: "technician in server room", role: "technician", zone: "server", wantEligible: true, wantCapacity: 3},
		{name: "open zone", role: "designer", zone: "conference", wantEligible: true, wantCapacity: 10},
		{name: "unknown role", role: "pilot", zone: "staff", wantCode: codes.InvalidArgument},
		{name: "unknown zone", role: "manager", zone: "roof", wantCode: codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := handler.CheckEligibility(context.Background(), &CheckEligibilityRequest{Role: tt.role, Zone: tt.zone})
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode != codes.OK {
				return
			}
			assert.Equal(t, tt.wantEligible, resp.Eligible)
			assert.Equal(t, tt.wantCapacity, resp.Capacity)
			assert.Equal(t, 1, resp.Occupancy)
		})
	}
}

func TestBoardHandler_ListZones(t *testing.T) {
	handler := NewBoardHandler(&mockBoardController{}, zaptest.NewLogger(t))
	resp, err := handler.ListZones(context.Background(), &ListZonesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Zones, 6)
	assert.Equal(t, models.ZoneConference, resp.Zones[0].Zone)
	assert.NotNil(t, resp.Unassigned)
}
