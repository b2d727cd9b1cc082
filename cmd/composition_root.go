package cmd

import (
	"tableside/internal/adapters/out/postgres"
	"tableside/internal/adapters/out/postgres/orderrepo"
	"tableside/internal/adapters/out/realtime"
	"tableside/internal/core/application/usecases/commands"
	"tableside/internal/core/application/usecases/queries"
	"tableside/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use case handlers. The registry is
// shared: command handlers publish through it and connection handlers and
// bridges subscribe to it.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	registry   *realtime.Registry
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB, registry *realtime.Registry) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		registry:   registry,
	}
}

// Registry exposes the shared channel registry for subscriber wiring.
func (c *CompositionRoot) Registry() *realtime.Registry {
	return c.registry
}

// OrderRepository returns a repository reading on the main connection, for
// single-order lookups outside a transaction.
func (c *CompositionRoot) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(c.gormDB)
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlaceOrderCommandHandler(f, c.registry)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(f, c.registry)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTableOrdersQueryHandler() queries.GetTableOrdersQueryHandler {
	return queries.NewGetTableOrdersQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
