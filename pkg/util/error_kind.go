package util

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies errors returned by the simulator, so that
// clients can tell malformed requests apart without parsing messages.
// The kind travels along with the gRPC status as a google.rpc.ErrorInfo
// detail, meaning it survives StatusWrap().
type ErrorKind string

const (
	// ErrorKindMalformedInput is returned when a reference token
	// cannot be converted to a page identifier.
	ErrorKindMalformedInput ErrorKind = "MALFORMED_INPUT"
	// ErrorKindInvalidCapacity is returned when the number of frames
	// is not a positive integer.
	ErrorKindInvalidCapacity ErrorKind = "INVALID_CAPACITY"
	// ErrorKindUnknownAlgorithm is returned when a replacement policy
	// name is not supported.
	ErrorKindUnknownAlgorithm ErrorKind = "UNKNOWN_ALGORITHM"
	// ErrorKindCapacityExceeded indicates that a strategy attempted to
	// admit a page into a full frame pool. This is a logic error.
	ErrorKindCapacityExceeded ErrorKind = "CAPACITY_EXCEEDED"
	// ErrorKindNotResident indicates that a strategy attempted to
	// evict a page that is not resident. This is a logic error.
	ErrorKindNotResident ErrorKind = "NOT_RESIDENT"
)

const errorKindDomain = "pagesim.buildbarn.github.com"

// NewKindError creates a gRPC status error that carries an ErrorKind.
func NewKindError(code codes.Code, kind ErrorKind, message string) error {
	s, err := status.New(code, message).WithDetails(&errdetails.ErrorInfo{
		Reason: string(kind),
		Domain: errorKindDomain,
	})
	if err != nil {
		return status.Error(code, message)
	}
	return s.Err()
}

// KindErrorf is identical to NewKindError, except that the message is
// formatted.
func KindErrorf(code codes.Code, kind ErrorKind, format string, args ...interface{}) error {
	return NewKindError(code, kind, fmt.Sprintf(format, args...))
}

// ErrorKindOf returns the ErrorKind attached to an error, or the empty
// string if the error does not carry one.
func ErrorKindOf(err error) ErrorKind {
	for _, detail := range status.Convert(err).Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.Domain == errorKindDomain {
			return ErrorKind(info.Reason)
		}
	}
	return ""
}
