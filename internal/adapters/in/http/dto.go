package http

import (
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
)

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ItemRequest is one line of a new order.
type ItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CreateOrderRequest is the body of POST /api/v1/orders. The customer
// identity comes from the access token, not the body.
type CreateOrderRequest struct {
	Items   []ItemRequest `json:"items"`
	Total   float64       `json:"total"`
	Address string        `json:"address"`
}

// AssignDriverRequest is the body of the dispatcher's assignment call.
type AssignDriverRequest struct {
	DriverID string `json:"driverId"`
}

// ReportPositionRequest is one GPS sample from the driver's device.
type ReportPositionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegisterDriverRequest optionally overrides the display name from the token.
type RegisterDriverRequest struct {
	Name string `json:"name"`
}

// ItemResource is one order line on the wire.
type ItemResource struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderResource is the wire shape of an order. Status carries the lifecycle
// string ("PENDING", "ASSIGNED", "ACCEPTED", "DELIVERED"); driverId is absent
// until assigned.
type OrderResource struct {
	ID           string         `json:"id"`
	CustomerID   string         `json:"customerId"`
	CustomerName string         `json:"customerName"`
	Items        []ItemResource `json:"items"`
	Total        float64        `json:"total"`
	Address      string         `json:"address"`
	Status       string         `json:"status"`
	DriverID     *string        `json:"driverId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// PositionResource is a latitude/longitude pair on the wire.
type PositionResource struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DriverResource is the wire shape of a driver directory entry.
type DriverResource struct {
	ID          string            `json:"driverId"`
	Name        string            `json:"name"`
	Status      string            `json:"status"`
	Position    *PositionResource `json:"position,omitempty"`
	LastUpdated *time.Time        `json:"lastUpdated,omitempty"`
	Stale       bool              `json:"stale"`
}

// ETAResource is the wire shape of an arrival estimate.
type ETAResource struct {
	Available  bool    `json:"available"`
	DistanceKm float64 `json:"distanceKm"`
	Distance   string  `json:"distance"`
	ETA        string  `json:"eta"`
}

func orderResourceFromResponse(resp queries.OrderResponse) OrderResource {
	items := make([]ItemResource, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, ItemResource{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	resource := OrderResource{
		ID:           resp.ID.String(),
		CustomerID:   resp.CustomerID.String(),
		CustomerName: resp.CustomerName,
		Items:        items,
		Total:        resp.Total,
		Address:      resp.Address,
		Status:       resp.Status,
		CreatedAt:    resp.CreatedAt,
	}
	if resp.DriverID != nil {
		id := resp.DriverID.String()
		resource.DriverID = &id
	}
	return resource
}

func orderResourceFromAggregate(aggregate *order.Order) OrderResource {
	items := make([]ItemResource, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ItemResource{
			Name:     item.Name(),
			Price:    item.Price(),
			Quantity: item.Quantity(),
		})
	}

	resource := OrderResource{
		ID:           aggregate.ID().String(),
		CustomerID:   aggregate.CustomerID().String(),
		CustomerName: aggregate.CustomerName(),
		Items:        items,
		Total:        aggregate.Total(),
		Address:      aggregate.Address(),
		Status:       aggregate.Status().String(),
		CreatedAt:    aggregate.CreatedAt(),
	}
	if driverID := aggregate.Driver(); driverID != nil {
		id := driverID.String()
		resource.DriverID = &id
	}
	return resource
}

func driverResourceFromResponse(resp queries.DriverResponse) DriverResource {
	resource := DriverResource{
		ID:          resp.ID.String(),
		Name:        resp.Name,
		Status:      resp.Status,
		LastUpdated: resp.LastUpdated,
		Stale:       resp.Stale,
	}
	if resp.Position != nil {
		resource.Position = &PositionResource{
			Latitude:  resp.Position.Latitude(),
			Longitude: resp.Position.Longitude(),
		}
	}
	return resource
}

func driverResourceFromAggregate(aggregate *driver.Driver, stale bool) DriverResource {
	resource := DriverResource{
		ID:     aggregate.ID().String(),
		Name:   aggregate.Name(),
		Status: aggregate.Status().String(),
		Stale:  stale,
	}
	if position := aggregate.Position(); position != nil {
		resource.Position = &PositionResource{
			Latitude:  position.Latitude(),
			Longitude: position.Longitude(),
		}
		lastUpdated := aggregate.LastUpdated()
		resource.LastUpdated = &lastUpdated
	}
	return resource
}
