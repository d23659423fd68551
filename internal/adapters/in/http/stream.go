package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StreamOrders handles GET /api/v1/orders/stream - a server-sent event feed
// of order snapshots. A slow client sees each order's newest state, not
// every intermediate transition. The subscription ends when the client
// disconnects.
func (s *Server) StreamOrders(ctx echo.Context) error {
	if _, ok := identityFrom(ctx); !ok {
		return writeError(ctx, errs.NewAuthRequiredError("streamOrders"))
	}

	sub := s.stream.SubscribeOrders()
	defer sub.Unsubscribe()

	resp, err := beginEventStream(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case snapshot, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(resp, "order", orderResourceFromAggregate(snapshot)); err != nil {
				return nil
			}
		}
	}
}

// StreamDriverPosition handles GET /api/v1/drivers/:driverID/position/stream -
// a server-sent event feed of one driver's position snapshots. If a position
// is already known it is delivered immediately, so a reconnecting client
// resumes from the current state.
func (s *Server) StreamDriverPosition(ctx echo.Context) error {
	if _, ok := identityFrom(ctx); !ok {
		return writeError(ctx, errs.NewAuthRequiredError("streamDriverPosition"))
	}

	driverID, err := kernel.UUIDFromString(ctx.Param("driverID"))
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	sub := s.stream.SubscribeDriver(driverID)
	defer sub.Unsubscribe()

	resp, err := beginEventStream(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case snapshot, ok := <-sub.Events():
			if !ok {
				return nil
			}
			// Staleness is judged by the reader against lastUpdated; a live
			// feed carries the snapshot as reported.
			if err := writeEvent(resp, "position", driverResourceFromAggregate(snapshot, false)); err != nil {
				return nil
			}
		}
	}
}

// beginEventStream switches the response into SSE mode and flushes the
// headers so the client knows the subscription is live before the first
// snapshot arrives.
func beginEventStream(ctx echo.Context) (*echo.Response, error) {
	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(resp, ": connected\n\n"); err != nil {
		return nil, err
	}
	resp.Flush()
	return resp, nil
}

func writeEvent(resp *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
