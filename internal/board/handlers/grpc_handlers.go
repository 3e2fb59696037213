package handlers

import (
	"context"

	"github.com/gartstein/staffboard/internal/board/auth"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BoardHandler serves the board service over gRPC and backs the HTTP routes,
// mapping requests to a BoardController.
type BoardHandler struct {
	service BoardController
	logger  *zap.Logger
}

// NewBoardHandler constructs a new BoardHandler with the given service and logger.
func NewBoardHandler(service BoardController, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// CreateEmployee registers a new employee in the unassigned pool.
func (h *BoardHandler) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*EmployeeResponse, error) {
	if req.Employee == nil {
		return nil, status.Error(codes.InvalidArgument, "employee data required")
	}

	created, err := h.service.CreateEmployee(ctx, *req.Employee)
	if err != nil {
		h.logger.Info("Create employee failed", operator(ctx), zap.Error(err))
		return nil, h.mapServiceError(err)
	}
	return &EmployeeResponse{Employee: created}, nil
}

// GetEmployee fetches an employee by ID.
func (h *BoardHandler) GetEmployee(ctx context.Context, req *GetEmployeeRequest) (*EmployeeResponse, error) {
	id, err := parseEmployeeID(req.ID)
	if err != nil {
		return nil, err
	}

	emp, err := h.service.FindEmployee(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &EmployeeResponse{Employee: emp}, nil
}

// ListEmployees returns the roster in creation order.
func (h *BoardHandler) ListEmployees(ctx context.Context, _ *ListEmployeesRequest) (*ListEmployeesResponse, error) {
	return &ListEmployeesResponse{Employees: h.service.Employees(ctx)}, nil
}

// Assign places an employee in a zone and returns the updated record.
func (h *BoardHandler) Assign(ctx context.Context, req *AssignRequest) (*EmployeeResponse, error) {
	id, zone, err := parseAssignment(req)
	if err != nil {
		return nil, err
	}

	if err := h.service.Assign(ctx, id, zone); err != nil {
		return nil, h.mapServiceError(err)
	}
	h.logger.Debug("Assign handled", operator(ctx), zap.String("employee_id", req.EmployeeID), zap.String("zone", req.Zone))
	return h.GetEmployee(ctx, &GetEmployeeRequest{ID: req.EmployeeID})
}

// Unassign returns an employee from a zone to the unassigned pool.
func (h *BoardHandler) Unassign(ctx context.Context, req *AssignRequest) (*EmployeeResponse, error) {
	id, zone, err := parseAssignment(req)
	if err != nil {
		return nil, err
	}

	if err := h.service.Unassign(ctx, id, zone); err != nil {
		return nil, h.mapServiceError(err)
	}
	h.logger.Debug("Unassign handled", operator(ctx), zap.String("employee_id", req.EmployeeID), zap.String("zone", req.Zone))
	return h.GetEmployee(ctx, &GetEmployeeRequest{ID: req.EmployeeID})
}

// AutoReorganize reseats the whole roster.
func (h *BoardHandler) AutoReorganize(ctx context.Context, _ *AutoReorganizeRequest) (*AutoReorganizeResponse, error) {
	report, err := h.service.AutoReorganize(ctx)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	h.logger.Info("Auto-reorganize requested", operator(ctx), zap.Int("unplaced", len(report.Unplaced)))
	return &AutoReorganizeResponse{Report: report}, nil
}

// ListZones summarises every zone together with the unassigned pool.
func (h *BoardHandler) ListZones(ctx context.Context, _ *ListZonesRequest) (*ListZonesResponse, error) {
	return &ListZonesResponse{
		Zones:      h.service.Zones(ctx),
		Unassigned: h.service.Unassigned(),
	}, nil
}

// CheckEligibility reports whether a role may occupy a zone and how full the
// zone is.
func (h *BoardHandler) CheckEligibility(ctx context.Context, req *CheckEligibilityRequest) (*CheckEligibilityResponse, error) {
	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", req.Role)
	}
	zone := models.ZoneID(req.Zone)
	occupancy, err := h.service.ZoneOccupancy(zone)
	if err != nil {
		return nil, h.mapServiceError(err)
	}

	resp := &CheckEligibilityResponse{
		Eligible:  h.service.IsEligible(role, zone),
		Occupancy: occupancy,
	}
	for _, z := range h.service.Zones(ctx) {
		if z.Zone == zone {
			resp.Capacity = z.Capacity
		}
	}
	return resp, nil
}

func parseEmployeeID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid employee ID")
	}
	return id, nil
}

func parseAssignment(req *AssignRequest) (uuid.UUID, models.ZoneID, error) {
	id, err := parseEmployeeID(req.EmployeeID)
	if err != nil {
		return uuid.Nil, "", err
	}
	if req.Zone == "" {
		return uuid.Nil, "", status.Error(codes.InvalidArgument, "zone required")
	}
	return id, models.ZoneID(req.Zone), nil
}

func operator(ctx context.Context) zap.Field {
	op, _ := auth.OperatorFromContext(ctx)
	return zap.String("operator", op)
}
