package shipmentrepo_test

import (
	"context"
	"testing"
	"time"

	"logistics/internal/adapters/out/postgres/shipmentrepo"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/shipment"
	"logistics/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const tenant = kernel.TenantID("acme")

type ShipmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *shipmentrepo.GormShipmentRepository
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&shipmentrepo.ShipmentDTO{}))
	suite.repo = shipmentrepo.NewGormShipmentRepository(db)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE shipments").Error)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) stored() *shipment.Shipment {
	s, err := shipment.NewShipment(kernel.NewUUID(), tenant, "Alexanderplatz 1", "Potsdamer Platz 1", time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(context.Background(), s))
	return s
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	s := suite.stored()

	loaded, err := suite.repo.Get(ctx, tenant, s.ID())

	suite.Require().NoError(err)
	suite.Equal(s.ID(), loaded.ID())
	suite.Equal(shipment.Created, loaded.Status())
	suite.Equal("Alexanderplatz 1", loaded.PickupAddress())
	suite.Nil(loaded.DriverID())
	suite.WithinDuration(s.CreatedAt(), loaded.CreatedAt(), time.Millisecond)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGet_OtherTenantIsNotFound() {
	s := suite.stored()

	_, err := suite.repo.Get(context.Background(), kernel.TenantID("globex"), s.ID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_ClearsDriverOnReject() {
	// Given
	ctx := context.Background()
	s := suite.stored()
	driverID := kernel.NewUUID()
	suite.Require().NoError(s.Assign(driverID, time.Now()))
	suite.Require().NoError(suite.repo.Update(ctx, s))

	// When
	loaded, err := suite.repo.Get(ctx, tenant, s.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.Reject(driverID))
	suite.Require().NoError(suite.repo.Update(ctx, loaded))

	// Then
	final, err := suite.repo.Get(ctx, tenant, s.ID())
	suite.Require().NoError(err)
	suite.Equal(shipment.Created, final.Status())
	suite.Nil(final.DriverID())
	suite.Nil(final.AssignedAt())
	suite.False(final.PendingApproval())
	suite.Equal(2, final.Version())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_StaleVersionIsRejected() {
	// Given two readers of the same version
	ctx := context.Background()
	s := suite.stored()
	driverID := kernel.NewUUID()
	suite.Require().NoError(s.Assign(driverID, time.Now()))
	suite.Require().NoError(suite.repo.Update(ctx, s))

	first, err := suite.repo.Get(ctx, tenant, s.ID())
	suite.Require().NoError(err)
	second, err := suite.repo.Get(ctx, tenant, s.ID())
	suite.Require().NoError(err)

	// When both write
	suite.Require().NoError(first.Approve(driverID))
	suite.Require().NoError(suite.repo.Update(ctx, first))

	suite.Require().NoError(second.Reject(driverID))
	err = suite.repo.Update(ctx, second)

	// Then the second loses
	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)
	final, err := suite.repo.Get(ctx, tenant, s.ID())
	suite.Require().NoError(err)
	suite.Equal(shipment.Approved, final.Status())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_MissingShipmentIsNotFound() {
	s, err := shipment.NewShipment(kernel.NewUUID(), tenant, "A", "B", time.Now())
	suite.Require().NoError(err)

	err = suite.repo.Update(context.Background(), s)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGetAllPendingApproval() {
	ctx := context.Background()
	pending := suite.stored()
	suite.Require().NoError(pending.Assign(kernel.NewUUID(), time.Now()))
	suite.Require().NoError(suite.repo.Update(ctx, pending))

	approvedDriver := kernel.NewUUID()
	approved := suite.stored()
	suite.Require().NoError(approved.Assign(approvedDriver, time.Now()))
	suite.Require().NoError(approved.Approve(approvedDriver))
	suite.Require().NoError(suite.repo.Update(ctx, approved))

	suite.stored()

	result, err := suite.repo.GetAllPendingApproval(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(pending.ID(), result[0].ID())
	suite.NotNil(result[0].AssignedAt())
}

func TestShipmentRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ShipmentRepositoryIntegrationTestSuite))
}
