// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// StatusClientClosedRequest is the non-standard status used for canceled requests.
const StatusClientClosedRequest = 499

// Map converts repo/infra errors into gRPC-friendly status errors.
// Errors that already carry a status pass through unchanged, so services can
// call Map on anything they bubble up.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, redis.Nil):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// the raw cause is logged by the caller; clients only see a generic message
		return status.Error(codes.Internal, "internal error")
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}

// NotFound creates a gRPC NotFound error.
func NotFound(msg string) error {
	return status.Error(codes.NotFound, msg)
}

// PermissionDenied creates a gRPC PermissionDenied error.
func PermissionDenied(msg string) error {
	return status.Error(codes.PermissionDenied, msg)
}

// Unauthenticated creates a gRPC Unauthenticated error.
func Unauthenticated(msg string) error {
	return status.Error(codes.Unauthenticated, msg)
}

// Internal creates a gRPC Internal error.
func Internal(msg string) error {
	return status.Error(codes.Internal, msg)
}

// Code extracts the status code, mapping unknown errors first.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(Map(err))
}

// HTTPStatus translates an error into the HTTP status the REST surface returns.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the human-readable part of err that is safe to show clients.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return status.Convert(Map(err)).Message()
}
