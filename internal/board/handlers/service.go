package handlers

import (
	"context"

	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "staffboard.v1.BoardService"

const (
	BoardService_CreateEmployee_FullMethodName   = "/" + ServiceName + "/CreateEmployee"
	BoardService_GetEmployee_FullMethodName      = "/" + ServiceName + "/GetEmployee"
	BoardService_ListEmployees_FullMethodName    = "/" + ServiceName + "/ListEmployees"
	BoardService_Assign_FullMethodName           = "/" + ServiceName + "/Assign"
	BoardService_Unassign_FullMethodName         = "/" + ServiceName + "/Unassign"
	BoardService_AutoReorganize_FullMethodName   = "/" + ServiceName + "/AutoReorganize"
	BoardService_ListZones_FullMethodName        = "/" + ServiceName + "/ListZones"
	BoardService_CheckEligibility_FullMethodName = "/" + ServiceName + "/CheckEligibility"
)

type CreateEmployeeRequest struct {
	Employee *models.NewEmployee `json:"employee"`
}

type EmployeeResponse struct {
	Employee *models.Employee `json:"employee"`
}

type GetEmployeeRequest struct {
	ID string `json:"id"`
}

type ListEmployeesRequest struct{}

type ListEmployeesResponse struct {
	Employees []models.Employee `json:"employees"`
}

// AssignRequest moves an employee into a zone (Assign) or back to the
// unassigned pool (Unassign).
type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
	Zone       string `json:"zone"`
}

type AutoReorganizeRequest struct{}

type AutoReorganizeResponse struct {
	Report models.ReorganizeReport `json:"report"`
}

type ListZonesRequest struct{}

type ListZonesResponse struct {
	Zones      []models.ZoneSummary `json:"zones"`
	Unassigned []uuid.UUID          `json:"unassigned"`
}

type CheckEligibilityRequest struct {
	Role string `json:"role"`
	Zone string `json:"zone"`
}

type CheckEligibilityResponse struct {
	Eligible  bool `json:"eligible"`
	Capacity  int  `json:"capacity"`
	Occupancy int  `json:"occupancy"`
}

// BoardServiceServer is the server API for the board service.
type BoardServiceServer interface {
	CreateEmployee(context.Context, *CreateEmployeeRequest) (*EmployeeResponse, error)
	GetEmployee(context.Context, *GetEmployeeRequest) (*EmployeeResponse, error)
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
	Assign(context.Context, *AssignRequest) (*EmployeeResponse, error)
	Unassign(context.Context, *AssignRequest) (*EmployeeResponse, error)
	AutoReorganize(context.Context, *AutoReorganizeRequest) (*AutoReorganizeResponse, error)
	ListZones(context.Context, *ListZonesRequest) (*ListZonesResponse, error)
	CheckEligibility(context.Context, *CheckEligibilityRequest) (*CheckEligibilityResponse, error)
}

// RegisterBoardServiceServer registers srv on s.
func RegisterBoardServiceServer(s grpc.ServiceRegistrar, srv BoardServiceServer) {
	s.RegisterService(&BoardService_ServiceDesc, srv)
}

// BoardService_ServiceDesc describes the board service for grpc.Server.
var BoardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEmployee", Handler: unaryHandler(BoardService_CreateEmployee_FullMethodName, BoardServiceServer.CreateEmployee)},
		{MethodName: "GetEmployee", Handler: unaryHandler(BoardService_GetEmployee_FullMethodName, BoardServiceServer.GetEmployee)},
		{MethodName: "ListEmployees", Handler: unaryHandler(BoardService_ListEmployees_FullMethodName, BoardServiceServer.ListEmployees)},
		{MethodName: "Assign", Handler: unaryHandler(BoardService_Assign_FullMethodName, BoardServiceServer.Assign)},
		{MethodName: "Unassign", Handler: unaryHandler(BoardService_Unassign_FullMethodName, BoardServiceServer.Unassign)},
		{MethodName: "AutoReorganize", Handler: unaryHandler(BoardService_AutoReorganize_FullMethodName, BoardServiceServer.AutoReorganize)},
		{MethodName: "ListZones", Handler: unaryHandler(BoardService_ListZones_FullMethodName, BoardServiceServer.ListZones)},
		{MethodName: "CheckEligibility", Handler: unaryHandler(BoardService_CheckEligibility_FullMethodName, BoardServiceServer.CheckEligibility)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffboard/v1/board.proto",
}

func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(BoardServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BoardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BoardServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BoardServiceClient is the client API for the board service.
type BoardServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBoardServiceClient wraps cc. Every call uses the JSON codec.
func NewBoardServiceClient(cc grpc.ClientConnInterface) *BoardServiceClient {
	return &BoardServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BoardServiceClient) CreateEmployee(ctx context.Context, in *CreateEmployeeRequest, opts ...grpc.CallOption) (*EmployeeResponse, error) {
	return invoke[EmployeeResponse](ctx, c.cc, BoardService_CreateEmployee_FullMethodName, in, opts)
}

func (c *BoardServiceClient) GetEmployee(ctx context.Context, in *GetEmployeeRequest, opts ...grpc.CallOption) (*EmployeeResponse, error) {
	return invoke[EmployeeResponse](ctx, c.cc, BoardService_GetEmployee_FullMethodName, in, opts)
}

func (c *BoardServiceClient) ListEmployees(ctx context.Context, in *ListEmployeesRequest, opts ...grpc.CallOption) (*ListEmployeesResponse, error) {
	return invoke[ListEmployeesResponse](ctx, c.cc, BoardService_ListEmployees_FullMethodName, in, opts)
}

func (c *BoardServiceClient) Assign(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*EmployeeResponse, error) {
	return invoke[EmployeeResponse](ctx, c.cc, BoardService_Assign_FullMethodName, in, opts)
}

func (c *BoardServiceClient) Unassign(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*EmployeeResponse, error) {
	return invoke[EmployeeResponse](ctx, c.cc, BoardService_Unassign_FullMethodName, in, opts)
}

func (c *BoardServiceClient) AutoReorganize(ctx context.Context, in *AutoReorganizeRequest, opts ...grpc.CallOption) (*AutoReorganizeResponse, error) {
	return invoke[AutoReorganizeResponse](ctx, c.cc, BoardService_AutoReorganize_FullMethodName, in, opts)
}

func (c *BoardServiceClient) ListZones(ctx context.Context, in *ListZonesRequest, opts ...grpc.CallOption) (*ListZonesResponse, error) {
	return invoke[ListZonesResponse](ctx, c.cc, BoardService_ListZones_FullMethodName, in, opts)
}

func (c *BoardServiceClient) CheckEligibility(ctx context.Context, in *CheckEligibilityRequest, opts ...grpc.CallOption) (*CheckEligibilityResponse, error) {
	return invoke[CheckEligibilityResponse](ctx, c.cc, BoardService_CheckEligibility_FullMethodName, in, opts)
}
