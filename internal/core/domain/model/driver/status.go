package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the driver's availability as shown on the dispatch directory.
//
// Status is purely informational: it is never consulted when assigning an
// order, so a dispatcher may hand work to an OFFLINE driver. It exists so the
// directory can render availability and so the staleness sweep has somewhere
// to record that a driver stopped reporting positions.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Idle is the default status of a registered driver that is reporting positions.
	Idle

	// Offline marks a driver whose position reports stopped beyond the
	// staleness window. Cleared by the next position report.
	Offline
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown: "UNKNOWN",
		Idle:    "IDLE",
		Offline: "OFFLINE",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s != Idle && s != Offline {
		return errs.NewValueIsInvalidErrorWithCause("driver status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status, e.g. "IDLE".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}
