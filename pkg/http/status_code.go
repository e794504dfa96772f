package http

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusCodeFromGRPCCode returns the HTTP status code that corresponds
// to a gRPC status code. The HTTP status codes returned by this
// function correspond to the values documented in the Protobuf
// definitions of the Code enum:
//
// https://github.com/googleapis/googleapis/blob/master/google/rpc/code.proto
func StatusCodeFromGRPCCode(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.Canceled:
		// Client Closed Request, as used by nginx.
		return 499
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusCodeFromError returns the HTTP status code that corresponds to
// an error. Errors that are not gRPC statuses yield 500.
func StatusCodeFromError(err error) int {
	return StatusCodeFromGRPCCode(status.Code(err))
}
