package amqp

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
)

// Wire shapes for mirrored snapshots. They intentionally match the HTTP
// response contracts so upstream consumers and API clients read one format.

type orderSnapshot struct {
	ID           string        `json:"id"`
	CustomerID   string        `json:"customerId"`
	CustomerName string        `json:"customerName"`
	Items        []itemPayload `json:"items"`
	Total        float64       `json:"total"`
	Address      string        `json:"address"`
	Status       string        `json:"status"`
	DriverID     *string       `json:"driverId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type itemPayload struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type driverSnapshot struct {
	ID          string           `json:"driverId"`
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Position    *positionPayload `json:"position,omitempty"`
	LastUpdated *time.Time       `json:"lastUpdated,omitempty"`
}

type positionPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func orderMessage(aggregate *order.Order) orderSnapshot {
	items := make([]itemPayload, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemPayload{
			Name:     item.Name(),
			Price:    item.Price(),
			Quantity: item.Quantity(),
		})
	}

	msg := orderSnapshot{
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
		msg.DriverID = &id
	}
	return msg
}

func driverMessage(aggregate *driver.Driver) driverSnapshot {
	msg := driverSnapshot{
		ID:     aggregate.ID().String(),
		Name:   aggregate.Name(),
		Status: aggregate.Status().String(),
	}
	if position := aggregate.Position(); position != nil {
		msg.Position = &positionPayload{
			Latitude:  position.Latitude(),
			Longitude: position.Longitude(),
		}
		lastUpdated := aggregate.LastUpdated()
		msg.LastUpdated = &lastUpdated
	}
	return msg
}
