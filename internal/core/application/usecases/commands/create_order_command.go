package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired   = errs.NewValueIsRequiredError("items")
	ErrAddressIsRequired  = errs.NewValueIsRequiredError("address")
	ErrCustomerIsRequired = errs.NewValueIsRequiredError("customerName")
)

// CreateOrderCommand represents a customer's request to place a new order.
// Encapsulates the customer identity, the ordered items, the pre-computed
// total, and the delivery address.
//
// Example:
//
//	items := []order.Item{burger, fries}
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, "Jane Customer", items, 21.50, "123 Main St")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, publisher)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	customerID   kernel.UUID
	customerName string
	items        []order.Item
	total        float64
	address      string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// The customer identity is mandatory: an invalid customerID fails with an
// authentication-required error, never with a generic validation error.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	customerName string,
	items []order.Item,
	total float64,
	address string,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		total: total,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setCustomer(customerID, customerName),
		orderCommand.setItems(items),
		orderCommand.setAddress(address),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the authenticated customer's identifier.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// CustomerName returns the customer's display name.
func (c CreateOrderCommand) CustomerName() string {
	return c.customerName
}

// Items returns the ordered items.
func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

// Total returns the client-computed order total.
func (c CreateOrderCommand) Total() float64 {
	return c.total
}

// Address returns the delivery address.
func (c CreateOrderCommand) Address() string {
	return c.address
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customerID kernel.UUID, customerName string) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewAuthRequiredError("createOrder")
	}
	if customerName == "" {
		return ErrCustomerIsRequired
	}

	c.customerID = customerID
	c.customerName = customerName
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	c.items = items
	return nil
}

func (c *CreateOrderCommand) setAddress(address string) error {
	if address == "" {
		return ErrAddressIsRequired
	}

	c.address = address
	return nil
}
