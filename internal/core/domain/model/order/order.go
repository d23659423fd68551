package order

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// totalTolerance absorbs float accumulation noise when checking the total
// against the item subtotals.
const totalTolerance = 1e-9

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrDriverAlreadyAssigned is returned when assigning a driver to an order
	// whose driver association has already been written.
	ErrDriverAlreadyAssigned = errors.New("order already has a driver assigned")
)

// Order represents a customer's delivery request and its fulfillment state.
// It is the aggregate root that manages the order lifecycle from creation
// through driver assignment and acceptance to delivery.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a valid customer identity
//   - Must contain at least one validated item
//   - The total must equal the sum of item subtotals at creation time
//     (informational afterwards; the core never recomputes it)
//   - Status transitions follow Pending -> Assigned -> Accepted -> Delivered
//   - The driver association is written exactly once, on assignment
//   - The creation timestamp is set once and never mutated
//
// Orders are never deleted; history is derived by filtering on the terminal
// Delivered status. The order registry (repository) is the sole authority for
// order state; observers only ever hold read-only snapshots.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// customerID identifies the authenticated customer who placed the order
	customerID kernel.UUID

	// customerName is kept denormalized for display on dispatcher and driver surfaces
	customerName string

	// items is the ordered sequence of purchased lines, fixed at creation
	items []Item

	// total is the amount charged, equal to the item subtotals at creation
	total float64

	// address is the opaque delivery destination string
	address string

	// status represents the current state in the order lifecycle
	status Status

	// driverID is the assigned driver's ID (nil while Pending, write-once)
	driverID *kernel.UUID

	// createdAt is the creation timestamp, set once
	createdAt time.Time

	// isConstructed ensures the order was created via a factory method
	isConstructed bool
}

// NewOrder creates a new Order in Pending status with no driver assigned.
// This is the only way to create a fresh order, ensuring all business
// invariants hold from the start.
//
// All parameters are validated; validation failures are aggregated into a
// single joined error. The total must match the sum of price x quantity over
// the items within floating-point tolerance.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	customerName string,
	items []Item,
	total float64,
	address string,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomer(customerID, customerName),
		order.setItems(items),
		order.setAddress(address),
		order.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	if err := order.setTotal(total); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder, which always produces a Pending order, this constructor
// restores the persisted status and driver association, validating their
// mutual consistency. The total is taken as stored and not re-checked
// against the items: it is a creation-time invariant only.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	customerName string,
	items []Item,
	total float64,
	address string,
	status Status,
	driverID *kernel.UUID,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		total:         total,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomer(customerID, customerName),
		order.setItems(items),
		order.setAddress(address),
		order.setCreatedAt(createdAt),
		order.setStatus(status, driverID),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed through a
// factory method. This prevents bypassing validation by directly
// instantiating the struct, e.g. when reconstructing orders from persistence.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the identifier of the customer who placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// CustomerName returns the display name of the customer.
func (o *Order) CustomerName() string {
	return o.customerName
}

// Items returns the order lines. The returned slice is a copy to prevent
// external modification.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Total returns the amount charged for the order.
func (o *Order) Total() float64 {
	return o.total
}

// Address returns the opaque delivery destination.
func (o *Order) Address() string {
	return o.address
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Driver returns the assigned driver's ID.
// Returns nil while the order is Pending.
func (o *Order) Driver() *kernel.UUID {
	return o.driverID
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ValidateAssign checks whether the order can currently be assigned,
// without performing the transition.
func (o *Order) ValidateAssign() error {
	if o.driverID != nil {
		return fmt.Errorf("%w: %s", ErrDriverAlreadyAssigned, o.driverID)
	}
	return o.status.ValidateAssign()
}

// Assign associates the order with a driver and moves it to Assigned.
//
// The driver association is write-once: assigning an order that already has
// a driver fails with ErrDriverAlreadyAssigned, and any status other than
// Pending fails with ErrInvalidTransition. On failure the order is unchanged.
func (o *Order) Assign(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	if err := o.ValidateAssign(); err != nil {
		return err
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.driverID = &driverID
	return nil
}

// Accept marks the order as confirmed by its assigned driver.
// Valid only from Assigned; fails with ErrInvalidTransition otherwise.
func (o *Order) Accept() error {
	newStatus, err := o.status.Accept()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Complete marks the order as delivered. Valid only from Accepted; Delivered
// is the terminal state of the lifecycle.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setCustomer validates and sets the customer identity.
// A missing customer ID means the call carried no authenticated identity.
func (o *Order) setCustomer(customerID kernel.UUID, customerName string) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewAuthRequiredError("createOrder")
	}
	if customerName == "" {
		return errs.NewValueIsRequiredError("customerName")
	}

	o.customerID = customerID
	o.customerName = customerName
	return nil
}

// setItems validates and copies the order lines.
func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

// setTotal validates the total against the item subtotals and sets it.
// Called after setItems; only used by NewOrder.
func (o *Order) setTotal(total float64) error {
	var sum float64
	for _, item := range o.items {
		sum += item.Subtotal()
	}

	if total < 0 || math.Abs(total-sum) > totalTolerance {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%f does not equal the sum of item subtotals %f", total, sum))
	}

	o.total = total
	return nil
}

// setAddress validates and sets the delivery destination.
func (o *Order) setAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	o.address = address
	return nil
}

// setCreatedAt validates and sets the creation timestamp.
func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt
	return nil
}

// setStatus restores the persisted status and driver association,
// validating their mutual consistency. Only used by RestoreOrder.
func (o *Order) setStatus(status Status, driverID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}

	if err := status.ValidateCanHaveDriver(driverID != nil); err != nil {
		return err
	}

	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return err
		}
		id := *driverID
		o.driverID = &id
	}

	o.status = status
	return nil
}
