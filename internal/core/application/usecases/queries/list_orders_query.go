// Package queries contains read-only operations in the CQRS architecture.
// Query handlers read the database directly and return plain response
// structs, bypassing the aggregates and the unit of work.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
	ErrSubjectIsRequired = errs.NewValueIsRequiredError("subjectID")
)

// OrderScope selects which slice of the order book a listing returns.
// Each role sees a different slice; the ordering is always newest first.
type OrderScope int

const (
	// ScopeUnknown represents an invalid scope.
	ScopeUnknown OrderScope = iota

	// ScopeDispatcherPending lists every order awaiting assignment.
	ScopeDispatcherPending

	// ScopeDriverActive lists the subject driver's orders in ASSIGNED or
	// ACCEPTED status.
	ScopeDriverActive

	// ScopeCustomerActive lists the subject customer's orders that are not
	// yet delivered.
	ScopeCustomerActive

	// ScopeHistory lists every delivered order.
	ScopeHistory
)

// Validate checks the scope value.
func (s OrderScope) Validate() error {
	if s < ScopeDispatcherPending || s > ScopeHistory {
		return errs.NewValueIsInvalidError("order scope")
	}
	return nil
}

// needsSubject reports whether the scope is keyed to a specific driver or
// customer.
func (s OrderScope) needsSubject() bool {
	return s == ScopeDriverActive || s == ScopeCustomerActive
}

// ListOrdersQuery retrieves a role-scoped slice of the order book.
//
// Example:
//
//	query, err := NewListOrdersQuery(ScopeDriverActive, &driverID)
//	if err != nil {
//	    return err
//	}
//	orders, err := NewListOrdersQueryHandler(db).Handle(ctx, query)
type ListOrdersQuery struct {
	scope     OrderScope
	subjectID kernel.UUID

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a query for one scope of the order book.
// subjectID is mandatory for the driver and customer scopes and ignored for
// the dispatcher and history scopes.
func NewListOrdersQuery(scope OrderScope, subjectID *kernel.UUID) (ListOrdersQuery, error) {
	if err := scope.Validate(); err != nil {
		return ListOrdersQuery{}, err
	}

	query := ListOrdersQuery{
		scope: scope,
		guard: guard.NewConstructorGuard(),
	}

	if scope.needsSubject() {
		if subjectID == nil {
			return ListOrdersQuery{}, ErrSubjectIsRequired
		}
		if err := subjectID.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
		query.subjectID = *subjectID
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Scope returns the requested slice of the order book.
func (q ListOrdersQuery) Scope() OrderScope {
	return q.scope
}

// SubjectID returns the driver or customer the scope is keyed to.
func (q ListOrdersQuery) SubjectID() kernel.UUID {
	return q.subjectID
}

// ItemResponse is one line of an order in a query response.
type ItemResponse struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderResponse is the read model of a single order. Status carries the wire
// string ("PENDING", "ASSIGNED", "ACCEPTED", "DELIVERED"); DriverID is nil
// until the order is assigned.
type OrderResponse struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	CustomerName string
	Items        []ItemResponse
	Total        float64
	Address      string
	Status       string
	DriverID     *kernel.UUID
	CreatedAt    time.Time
}
