package handlers

import (
	"errors"
	"fmt"

	e "github.com/gartstein/staffboard/internal/board/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapServiceError maps domain errors to gRPC status codes. The HTTP routes
// reuse the mapping through runtime.HTTPError.
func (h *BoardHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrValidation), errors.Is(err, e.ErrUnknownZone):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrUnknownEmployee), errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrCapacityExceeded), errors.Is(err, e.ErrRoleIneligible):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
	}
}
