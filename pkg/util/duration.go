package util

import (
	"encoding/json"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Duration is a time.Duration that is stored in configuration files
// in the textual form accepted by time.ParseDuration(), such as "10s".
type Duration time.Duration

// UnmarshalJSON parses a duration from a JSON string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return status.Errorf(codes.InvalidArgument, "Duration must be a string: %s", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid duration %#v: %s", s, err)
	}
	if v < 0 {
		return status.Errorf(codes.InvalidArgument, "Duration %#v is negative", s)
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON converts a duration to a JSON string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// AsDuration returns the value as a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}
