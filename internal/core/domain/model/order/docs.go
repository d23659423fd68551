// Package order provides domain entities and business logic for the order
// dispatch lifecycle. It implements the Order aggregate root with lifecycle
// management and state transitions.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, items, and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//   - Item: An immutable order line value object
//
// Key business rules:
//   - Orders must carry an authenticated customer identity, at least one item,
//     a delivery address, and a total equal to the item subtotals at creation
//   - Order status follows a strictly linear workflow:
//     Pending -> Assigned -> Accepted -> Delivered
//   - The driver association is written exactly once, on assignment;
//     reassignment is rejected
//   - Orders are never deleted; delivered orders form the history
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
