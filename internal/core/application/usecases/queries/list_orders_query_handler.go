package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads role-scoped order listings straight from the
// database. Listings are snapshots: live updates come from the event stream,
// this handler only serves the initial state.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order listings.
// Requires a GORM database connection for query execution.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the listing for the query's scope.
// Results are always sorted by creation time, newest first.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	const baseSelect = `
		SELECT
			id,
			customer_id,
			customer_name,
			items,
			total,
			address,
			status,
			driver_id,
			created_at
		FROM orders
	`

	var (
		where string
		args  []any
	)

	switch query.Scope() {
	case ScopeDispatcherPending:
		where = `WHERE status = ?`
		args = []any{order.Pending}
	case ScopeDriverActive:
		where = `WHERE driver_id = ? AND status IN (?, ?)`
		args = []any{query.SubjectID().String(), order.Assigned, order.Accepted}
	case ScopeCustomerActive:
		where = `WHERE customer_id = ? AND status != ?`
		args = []any{query.SubjectID().String(), order.Delivered}
	case ScopeHistory:
		where = `WHERE status = ?`
		args = []any{order.Delivered}
	default:
		return nil, ErrListOrdersQueryIsNotConstructed
	}

	rows, err := h.db.WithContext(ctx).
		Raw(baseSelect+where+` ORDER BY created_at DESC`, args...).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderResponse, 0)
	for rows.Next() {
		resp, scanErr := scanOrderRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// scanOrderRow maps one orders row onto the read model.
func scanOrderRow(rows *sql.Rows) (OrderResponse, error) {
	var (
		id         uuid.UUID
		customerID uuid.UUID
		itemsJSON  []byte
		status     int
		driverID   sql.Null[uuid.UUID]
		resp       OrderResponse
		createdAt  time.Time
	)

	if err := rows.Scan(
		&id,
		&customerID,
		&resp.CustomerName,
		&itemsJSON,
		&resp.Total,
		&resp.Address,
		&status,
		&driverID,
		&createdAt,
	); err != nil {
		return OrderResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return OrderResponse{}, err
	}
	resp.ID = orderID

	customer, err := kernel.UUIDFromBytes(customerID[:])
	if err != nil {
		return OrderResponse{}, err
	}
	resp.CustomerID = customer

	if driverID.Valid {
		drv, drvErr := kernel.UUIDFromBytes(driverID.V[:])
		if drvErr != nil {
			return OrderResponse{}, drvErr
		}
		resp.DriverID = &drv
	}

	if err = json.Unmarshal(itemsJSON, &resp.Items); err != nil {
		return OrderResponse{}, err
	}

	resp.Status = order.Status(status).String()
	resp.CreatedAt = createdAt
	return resp, nil
}
