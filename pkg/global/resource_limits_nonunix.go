//go:build !freebsd && !linux
// +build !freebsd,!linux

package global

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func setResourceLimit(name string, resourceLimit *SetResourceLimitConfiguration) error {
	return status.Error(codes.Unimplemented, "Resource limits cannot be adjusted on this operating system")
}
