package cmd

import (
	"log/slog"

	"dispatch/internal/adapters/out/amqp"
	"dispatch/internal/adapters/out/broker"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	eventBroker *broker.EventBroker
	mirror      *amqp.Publisher
	publisher   ports.EventPublisher
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	eventBroker := broker.NewEventBroker()
	mirror := amqp.NewPublisher(config.AmqpURL, config.AmqpExchange, logger)

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		eventBroker: eventBroker,
		mirror:      mirror,
		publisher:   compositePublisher{eventBroker, mirror},
	}
}

// EventBroker exposes the in-process stream for SSE subscriptions.
func (c *CompositionRoot) EventBroker() *broker.EventBroker {
	return c.eventBroker
}

// Mirror exposes the AMQP mirror so main can start its redial loop.
func (c *CompositionRoot) Mirror() *amqp.Publisher {
	return c.mirror
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignDriverCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterDriverCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateReportPositionCommandHandler() commands.ReportPositionCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportPositionCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateMarkStaleDriversCommandHandler() commands.MarkStaleDriversCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMarkStaleDriversCommandHandler(f, c.publisher, c.config.PositionStaleAfter)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAllDriversQueryHandler() queries.GetAllDriversQueryHandler {
	return queries.NewGetAllDriversQueryHandler(c.gormDB, c.config.PositionStaleAfter)
}

func (c *CompositionRoot) CreateGetDriverPositionQueryHandler() queries.GetDriverPositionQueryHandler {
	return queries.NewGetDriverPositionQueryHandler(c.gormDB, c.config.PositionStaleAfter)
}

func (c *CompositionRoot) CreateGetDriverETAQueryHandler() queries.GetDriverETAQueryHandler {
	estimator := services.NewETAEstimator(c.config.PositionStaleAfter)
	return queries.NewGetDriverETAQueryHandler(c.gormDB, estimator)
}

func (c *CompositionRoot) CreateJobManager(logger *slog.Logger) *jobs.JobManager {
	return jobs.NewJobManager(c.CreateMarkStaleDriversCommandHandler(), logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// compositePublisher fans committed snapshots out to the in-process broker
// and the AMQP mirror.
type compositePublisher []ports.EventPublisher

func (p compositePublisher) PublishOrder(aggregate *order.Order) {
	for _, target := range p {
		target.PublishOrder(aggregate)
	}
}

func (p compositePublisher) PublishDriver(aggregate *driver.Driver) {
	for _, target := range p {
		target.PublishDriver(aggregate)
	}
}
