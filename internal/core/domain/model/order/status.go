package order

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// ErrInvalidTransition is returned when a status change does not follow the
// order workflow. Use errors.Is to detect it on any transition error.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Pending ──> Assigned ──> Accepted ──> Delivered
//
// The workflow is strictly linear: no state is skipped, no transition moves
// backward, and there is no cancellation or rejection state. Delivered is
// terminal. Reassignment of an already assigned order is not allowed; the
// driver association is write-once.
//
// Status is a value object that validates state transitions and provides
// the wire-contract string representations used by all three UI roles.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first created.
	// Orders in this status are waiting for the dispatcher to assign a driver.
	Pending

	// Assigned indicates the dispatcher has associated a driver with the order.
	Assigned

	// Accepted indicates the assigned driver has confirmed the delivery.
	Accepted

	// Delivered indicates the order has been handed to the customer.
	// This is a final state with no further transitions allowed.
	Delivered
)

// getStatusStrings returns a map of Status values to their wire representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		Assigned:  "ASSIGNED",
		Accepted:  "ACCEPTED",
		Delivered: "DELIVERED",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "PENDING",
		Assigned:  "ASSIGNED",
		Accepted:  "ACCEPTED",
		Delivered: "DELIVERED",
	}
}

// Validate checks if the Status value is valid.
//
// Valid statuses are: Pending, Assigned, Accepted, Delivered.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status, e.g. "PENDING".
// This method implements the fmt.Stringer interface and is safe to call
// on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// ValidateAssign checks if the status allows driver assignment without
// performing the transition.
//
// Only Pending orders may be assigned. Reassignment from Assigned is
// deliberately rejected: the driver association is write-once, so an order
// that has left Pending can never point at a different driver.
func (s Status) ValidateAssign() error {
	if s != Pending {
		return fmt.Errorf("%w: cannot assign order in status %s", ErrInvalidTransition, s)
	}
	return nil
}

// ValidateCanHaveDriver validates the consistency between order status and
// driver assignment.
//
// Business rules:
//   - Pending orders must not have a driver assigned
//   - Assigned, Accepted, and Delivered orders must have exactly one driver
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	if hasDriver && s == Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a driver", s),
		)
	}

	if !hasDriver && (s == Assigned || s == Accepted || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no driver", s),
		)
	}

	return nil
}

// Assign transitions the status to Assigned.
//
// The only valid transition is Pending -> Assigned. Assigning an order that
// has already been assigned, accepted, or delivered fails with
// ErrInvalidTransition and must leave the order untouched.
func (s Status) Assign() (Status, error) {
	if err := s.ValidateAssign(); err != nil {
		return 0, err
	}

	return Assigned, nil
}

// Accept transitions the status to Accepted.
//
// The only valid transition is Assigned -> Accepted: a driver can confirm a
// delivery only after the dispatcher has assigned it to them.
func (s Status) Accept() (Status, error) {
	if s != Assigned {
		return 0, fmt.Errorf("%w: cannot accept order in status %s", ErrInvalidTransition, s)
	}

	return Accepted, nil
}

// Complete transitions the status to Delivered.
//
// The only valid transition is Accepted -> Delivered. Delivered is terminal;
// completing an already delivered order fails like any other skip.
func (s Status) Complete() (Status, error) {
	if s != Accepted {
		return 0, fmt.Errorf("%w: cannot complete order in status %s", ErrInvalidTransition, s)
	}

	return Delivered, nil
}
