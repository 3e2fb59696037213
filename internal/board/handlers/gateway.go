package handlers

import (
	"context"
	"net/http"

	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	bodyMarshaler  runtime.Marshaler = &runtime.JSONBuiltin{}
	errorMarshaler runtime.Marshaler = &runtime.JSONPb{}
)

type routeCall func(ctx context.Context, r *http.Request, params map[string]string) (any, error)

// newGatewayMux maps the HTTP JSON API onto the handler methods.
func newGatewayMux(h *BoardHandler, gatherer prometheus.Gatherer) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()

	routes := []struct {
		method  string
		pattern string
		call    routeCall
	}{
		{http.MethodPost, "/v1/employees", func(ctx context.Context, r *http.Request, _ map[string]string) (any, error) {
			var in models.NewEmployee
			if err := decodeBody(r, &in); err != nil {
				return nil, err
			}
			return h.CreateEmployee(ctx, &CreateEmployeeRequest{Employee: &in})
		}},
		{http.MethodGet, "/v1/employees", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return h.ListEmployees(ctx, &ListEmployeesRequest{})
		}},
		{http.MethodGet, "/v1/employees/{id}", func(ctx context.Context, _ *http.Request, params map[string]string) (any, error) {
			return h.GetEmployee(ctx, &GetEmployeeRequest{ID: params["id"]})
		}},
		{http.MethodPost, "/v1/zones/{zone}/occupants", func(ctx context.Context, r *http.Request, params map[string]string) (any, error) {
			var in AssignRequest
			if err := decodeBody(r, &in); err != nil {
				return nil, err
			}
			in.Zone = params["zone"]
			return h.Assign(ctx, &in)
		}},
		{http.MethodDelete, "/v1/zones/{zone}/occupants/{id}", func(ctx context.Context, _ *http.Request, params map[string]string) (any, error) {
			return h.Unassign(ctx, &AssignRequest{EmployeeID: params["id"], Zone: params["zone"]})
		}},
		{http.MethodPost, "/v1/reorganize", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return h.AutoReorganize(ctx, &AutoReorganizeRequest{})
		}},
		{http.MethodGet, "/v1/zones", func(ctx context.Context, _ *http.Request, _ map[string]string) (any, error) {
			return h.ListZones(ctx, &ListZonesRequest{})
		}},
		{http.MethodGet, "/v1/eligibility", func(ctx context.Context, r *http.Request, _ map[string]string) (any, error) {
			q := r.URL.Query()
			return h.CheckEligibility(ctx, &CheckEligibilityRequest{Role: q.Get("role"), Zone: q.Get("zone")})
		}},
	}

	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, serveJSON(mux, rt.call)); err != nil {
			return nil, err
		}
	}

	if gatherer != nil {
		metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
		err := mux.HandlePath(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			metrics.ServeHTTP(w, r)
		})
		if err != nil {
			return nil, err
		}
	}
	return mux, nil
}

func serveJSON(mux *runtime.ServeMux, call routeCall) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		resp, err := call(r.Context(), r, params)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, errorMarshaler, w, r, err)
			return
		}

		body, err := bodyMarshaler.Marshal(resp)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, errorMarshaler, w, r, status.Error(codes.Internal, err.Error()))
			return
		}
		w.Header().Set("Content-Type", bodyMarshaler.ContentType(resp))
		_, _ = w.Write(body)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := bodyMarshaler.NewDecoder(r.Body).Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return nil
}
