// Package http exposes the dispatch API over echo: the order lifecycle and
// driver tracking endpoints, SSE change streams, and the metrics endpoint.
// Handlers translate between the wire and the application layer; all
// business rules live behind the command and query handlers.
package http

import (
	"net/http"
	"strconv"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// fallbackDriverName is used when neither the token nor the request body
// carries a display name. Registration is not refused over a cosmetic field.
const fallbackDriverName = "Driver"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler    commands.CreateOrderCommandHandler
	assignDriverHandler   commands.AssignDriverCommandHandler
	acceptOrderHandler    commands.AcceptOrderCommandHandler
	completeOrderHandler  commands.CompleteOrderCommandHandler
	registerDriverHandler commands.RegisterDriverCommandHandler
	reportPositionHandler commands.ReportPositionCommandHandler

	// Query handlers
	listOrdersHandler        queries.ListOrdersQueryHandler
	getAllDriversHandler     queries.GetAllDriversQueryHandler
	getDriverPositionHandler queries.GetDriverPositionQueryHandler
	getDriverETAHandler      queries.GetDriverETAQueryHandler

	// Live change feeds
	stream ports.EventStream
}

// NewServer creates the HTTP server with the required command and query
// handlers and the snapshot stream.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	assignDriverHandler commands.AssignDriverCommandHandler,
	acceptOrderHandler commands.AcceptOrderCommandHandler,
	completeOrderHandler commands.CompleteOrderCommandHandler,
	registerDriverHandler commands.RegisterDriverCommandHandler,
	reportPositionHandler commands.ReportPositionCommandHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	getAllDriversHandler queries.GetAllDriversQueryHandler,
	getDriverPositionHandler queries.GetDriverPositionQueryHandler,
	getDriverETAHandler queries.GetDriverETAQueryHandler,
	stream ports.EventStream,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		assignDriverHandler:      assignDriverHandler,
		acceptOrderHandler:       acceptOrderHandler,
		completeOrderHandler:     completeOrderHandler,
		registerDriverHandler:    registerDriverHandler,
		reportPositionHandler:    reportPositionHandler,
		listOrdersHandler:        listOrdersHandler,
		getAllDriversHandler:     getAllDriversHandler,
		getDriverPositionHandler: getDriverPositionHandler,
		getDriverETAHandler:      getDriverETAHandler,
		stream:                   stream,
	}
}

// RegisterRoutes mounts the API under /api/v1 plus the metrics endpoint.
func (s *Server) RegisterRoutes(e *echo.Echo, jwtSecret []byte) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", AuthMiddleware(jwtSecret))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/stream", s.StreamOrders)
	api.POST("/orders/:orderID/assign", s.AssignDriver)
	api.POST("/orders/:orderID/accept", s.AcceptOrder)
	api.POST("/orders/:orderID/complete", s.CompleteOrder)

	api.POST("/drivers", s.RegisterDriver)
	api.GET("/drivers", s.GetDrivers)
	api.POST("/drivers/position", s.ReportPosition)
	api.GET("/drivers/:driverID/position", s.GetDriverPosition)
	api.GET("/drivers/:driverID/position/stream", s.StreamDriverPosition)
	api.GET("/drivers/:driverID/eta", s.GetDriverETA)
}

// CreateOrder handles POST /api/v1/orders - places a new order for the
// authenticated customer.
func (s *Server) CreateOrder(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("createOrder"))
	}

	var request CreateOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items := make([]order.Item, 0, len(request.Items))
	for _, line := range request.Items {
		item, err := order.NewItem(line.Name, line.Price, line.Quantity)
		if err != nil {
			return writeError(ctx, err)
		}
		items = append(items, item)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(
		orderID, identity.Subject, identity.Name, items, request.Total, request.Address,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		recordOrderOperation("create", false)
		return writeError(ctx, err)
	}

	recordOrderOperation("create", true)
	return ctx.JSON(http.StatusCreated, map[string]string{"id": orderID.String()})
}

// ListOrders handles GET /api/v1/orders - returns the caller's slice of the
// order book. Dispatchers see the pending pool, drivers their active orders,
// customers their undelivered orders; ?scope=history returns delivered ones.
func (s *Server) ListOrders(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("listOrders"))
	}

	var (
		scope   queries.OrderScope
		subject *kernel.UUID
	)
	switch {
	case ctx.QueryParam("scope") == "history":
		scope = queries.ScopeHistory
	case identity.Role == RoleDispatcher:
		scope = queries.ScopeDispatcherPending
	case identity.Role == RoleDriver:
		scope = queries.ScopeDriverActive
		subject = &identity.Subject
	default:
		scope = queries.ScopeCustomerActive
		subject = &identity.Subject
	}

	query, err := queries.NewListOrdersQuery(scope, subject)
	if err != nil {
		return writeError(ctx, err)
	}

	orders, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]OrderResource, 0, len(orders))
	for _, resp := range orders {
		response = append(response, orderResourceFromResponse(resp))
	}
	return ctx.JSON(http.StatusOK, response)
}

// AssignDriver handles POST /api/v1/orders/:orderID/assign - the dispatcher
// hands a pending order to a driver.
func (s *Server) AssignDriver(ctx echo.Context) error {
	if _, ok := identityFrom(ctx); !ok {
		return writeError(ctx, errs.NewAuthRequiredError("assignDriver"))
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request AssignDriverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewAssignDriverCommand(orderID, driverID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.assignDriverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		recordOrderOperation("assign", false)
		return writeError(ctx, err)
	}

	recordOrderOperation("assign", true)
	return ctx.NoContent(http.StatusNoContent)
}

// AcceptOrder handles POST /api/v1/orders/:orderID/accept - the assigned
// driver takes the order.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("acceptOrder"))
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewAcceptOrderCommand(orderID, identity.Subject)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.acceptOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		recordOrderOperation("accept", false)
		return writeError(ctx, err)
	}

	recordOrderOperation("accept", true)
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteOrder handles POST /api/v1/orders/:orderID/complete - the driver
// marks the delivery done.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("completeOrder"))
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewCompleteOrderCommand(orderID, identity.Subject)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.completeOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		recordOrderOperation("complete", false)
		return writeError(ctx, err)
	}

	recordOrderOperation("complete", true)
	return ctx.NoContent(http.StatusNoContent)
}

// RegisterDriver handles POST /api/v1/drivers - registers the authenticated
// driver, or resumes their session if already registered.
func (s *Server) RegisterDriver(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("registerDriver"))
	}

	var request RegisterDriverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	name := request.Name
	if name == "" {
		name = identity.Name
	}
	if name == "" {
		name = fallbackDriverName
	}

	cmd, err := commands.NewRegisterDriverCommand(identity.Subject, name)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.registerDriverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// ReportPosition handles POST /api/v1/drivers/position - one GPS sample from
// the authenticated driver's device.
func (s *Server) ReportPosition(ctx echo.Context) error {
	identity, ok := identityFrom(ctx)
	if !ok {
		return writeError(ctx, errs.NewAuthRequiredError("reportPosition"))
	}

	var request ReportPositionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewReportPositionCommand(identity.Subject, request.Latitude, request.Longitude)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.reportPositionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetDrivers handles GET /api/v1/drivers - the dispatch board's driver
// directory.
func (s *Server) GetDrivers(ctx echo.Context) error {
	if _, ok := identityFrom(ctx); !ok {
		return writeError(ctx, errs.NewAuthRequiredError("getDrivers"))
	}

	drivers, err := s.getAllDriversHandler.Handle(ctx.Request().Context(), queries.NewGetAllDriversQuery())
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]DriverResource, 0, len(drivers))
	for _, resp := range drivers {
		response = append(response, driverResourceFromResponse(resp))
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetDriverPosition handles GET /api/v1/drivers/:driverID/position - the last
// known position, used to seed a tracking view.
func (s *Server) GetDriverPosition(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("driverID"))
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	query, err := queries.NewGetDriverPositionQuery(driverID)
	if err != nil {
		return writeError(ctx, err)
	}

	resp, err := s.getDriverPositionHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, driverResourceFromResponse(resp))
}

// GetDriverETA handles GET /api/v1/drivers/:driverID/eta - the arrival
// estimate to the destination given as latitude/longitude query parameters.
func (s *Server) GetDriverETA(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("driverID"))
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	latitude, latErr := strconv.ParseFloat(ctx.QueryParam("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(ctx.QueryParam("longitude"), 64)
	if latErr != nil || lonErr != nil {
		return badRequest(ctx, "Invalid destination coordinates")
	}

	query, err := queries.NewGetDriverETAQuery(driverID, kernel.NewCoordinates(latitude, longitude))
	if err != nil {
		return writeError(ctx, err)
	}

	resp, err := s.getDriverETAHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ETAResource{
		Available:  resp.Available,
		DistanceKm: resp.DistanceKm,
		Distance:   resp.Distance,
		ETA:        resp.ETA,
	})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
