package cmd

import (
	"context"
	"log/slog"
	"net/http"

	httpadapter "logistics/internal/adapters/in/http"
	mqttadapter "logistics/internal/adapters/in/mqtt"
	"logistics/internal/adapters/out/geo"
	"logistics/internal/adapters/out/postgres"
	"logistics/internal/adapters/out/postgres/shipmentrepo"
	redisstore "logistics/internal/adapters/out/redis"
	"logistics/internal/adapters/out/websocket"
	"logistics/internal/core/application/approval"
	"logistics/internal/core/application/engine"
	"logistics/internal/core/application/usecases/commands"
	"logistics/internal/core/application/usecases/queries"
	"logistics/internal/jobs"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived components of the process.
type CompositionRoot struct {
	cfg    Config
	gormDB *gorm.DB
	logger *slog.Logger

	uowFactory *postgres.GormUnitOfWorkFactory
	store      *redisstore.Store
	hub        *websocket.Hub
	engine     *engine.Engine
	scheduler  *approval.Scheduler
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, redisClient goredis.UniversalClient, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		store:      redisstore.NewStore(redisClient, cfg.SimulationStateTTL),
		hub:        websocket.NewHub(websocket.DefaultSendBuffer, cfg.WSAllowedOrigins, logger),
	}

	resolver := geo.NewResolver(geo.Config{
		GeocodingBaseURL: cfg.GeocodingBaseURL,
		GeocodingAPIKey:  cfg.GeocodingAPIKey,
		RoutingBaseURL:   cfg.RoutingBaseURL,
	}, &http.Client{}, logger)

	c.engine = engine.NewEngine(resolver, c.store, c.store, c.hub, engine.Config{
		TickInterval: cfg.SimulationTickInterval,
		StoreTimeout: cfg.SimulationStoreTimeout,
	}, logger)
	c.scheduler = approval.NewScheduler(c.CreateAutoRejectAssignmentCommandHandler(), cfg.ApprovalWindow, logger)
	return c
}

func (c *CompositionRoot) shipmentUoWs() commands.ShipmentUoWFactory {
	return FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uows() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.shipmentUoWs(), c.hub)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(c.uows(), c.scheduler, c.hub, c.logger)
}

func (c *CompositionRoot) CreateApproveAssignmentCommandHandler() commands.ApproveAssignmentCommandHandler {
	return commands.NewApproveAssignmentCommandHandler(c.shipmentUoWs(), c.scheduler, c.engine, c.hub, c.logger)
}

func (c *CompositionRoot) CreateRejectAssignmentCommandHandler() commands.RejectAssignmentCommandHandler {
	return commands.NewRejectAssignmentCommandHandler(c.uows(), c.scheduler, c.hub, c.logger)
}

func (c *CompositionRoot) CreateAutoRejectAssignmentCommandHandler() commands.AutoRejectAssignmentCommandHandler {
	return commands.NewAutoRejectAssignmentCommandHandler(c.uows(), c.hub, c.logger)
}

func (c *CompositionRoot) CreateStartTransitCommandHandler() commands.StartTransitCommandHandler {
	return commands.NewStartTransitCommandHandler(c.shipmentUoWs(), c.engine, c.hub, c.logger)
}

func (c *CompositionRoot) CreateDeliverShipmentCommandHandler() commands.DeliverShipmentCommandHandler {
	return commands.NewDeliverShipmentCommandHandler(c.shipmentUoWs(), c.engine, c.hub, c.logger)
}

func (c *CompositionRoot) CreateCancelShipmentCommandHandler() commands.CancelShipmentCommandHandler {
	return commands.NewCancelShipmentCommandHandler(c.shipmentUoWs(), c.scheduler, c.engine, c.hub, c.logger)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.store, c.hub, c.cfg.SimulationStoreTimeout, c.logger)
}

func (c *CompositionRoot) CreateGetShipmentQueryHandler() queries.GetShipmentQueryHandler {
	return queries.NewGetShipmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetShipmentRouteQueryHandler() queries.GetShipmentRouteQueryHandler {
	return queries.NewGetShipmentRouteQueryHandler(c.engine)
}

func (c *CompositionRoot) CreateGetDriverLocationQueryHandler() queries.GetDriverLocationQueryHandler {
	return queries.NewGetDriverLocationQueryHandler(c.store)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateShipment:       c.CreateCreateShipmentCommandHandler(),
		AssignDriver:         c.CreateAssignDriverCommandHandler(),
		ApproveAssignment:    c.CreateApproveAssignmentCommandHandler(),
		RejectAssignment:     c.CreateRejectAssignmentCommandHandler(),
		StartTransit:         c.CreateStartTransitCommandHandler(),
		DeliverShipment:      c.CreateDeliverShipmentCommandHandler(),
		CancelShipment:       c.CreateCancelShipmentCommandHandler(),
		UpdateDriverLocation: c.CreateUpdateDriverLocationCommandHandler(),
		GetShipment:          c.CreateGetShipmentQueryHandler(),
		GetShipmentRoute:     c.CreateGetShipmentRouteQueryHandler(),
		GetDriverLocation:    c.CreateGetDriverLocationQueryHandler(),
	}, c.hub, c.logger)
}

// CreateMQTTSubscriber returns nil when no broker is configured.
func (c *CompositionRoot) CreateMQTTSubscriber() *mqttadapter.Subscriber {
	if c.cfg.MQTTBrokerURL == "" {
		return nil
	}
	return mqttadapter.NewSubscriber(mqttadapter.Config{
		BrokerURL: c.cfg.MQTTBrokerURL,
		ClientID:  c.cfg.MQTTClientID,
		Topic:     c.cfg.MQTTLocationTopic,
	}, c.CreateUpdateDriverLocationCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.engine,
		c.store,
		shipmentrepo.NewGormShipmentRepository(c.gormDB),
		c.scheduler,
		c.cfg.RecoverySchedule,
		c.logger,
	)
}

// Shutdown stops local simulations and approval timers and disconnects
// websocket subscribers. Persisted state is kept for the next process.
func (c *CompositionRoot) Shutdown(ctx context.Context) {
	c.engine.Shutdown(ctx)
	c.scheduler.Stop(ctx)
	c.hub.Close()
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
