package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"tableside/internal/adapters/out/postgres/orderrepo"
	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite provides integration tests for
// GormOrderRepository using PostgreSQL containers to verify persistence and
// row-locking behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(customerID *kernel.UUID) *order.Order {
	table, err := kernel.NewTableNumber(7)
	suite.Require().NoError(err)

	soup, err := order.NewItem("Soup", 100, 2)
	suite.Require().NoError(err)
	bread, err := order.NewItem("Bread", 20, 1)
	suite.Require().NoError(err)

	payment, err := order.NewPayment(order.PaymentCash, false)
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), table, []order.Item{soup, bread}, customerID, payment)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)

	err := suite.repository.Add(ctx, o)
	suite.Require().NoError(err)

	restored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(restored.IsEqual(o))
	suite.Equal(order.Received, restored.Status())
	suite.Equal(7, restored.TableNumber().Value())
	suite.Len(restored.Items(), 2)
	suite.Equal("Soup", restored.Items()[0].Name())
	suite.InDelta(100, restored.Items()[0].Price(), 0.001)
	suite.Nil(restored.Customer())
	suite.Equal(order.PaymentCash, restored.Payment().Method())
	suite.False(restored.Payment().Paid())
	suite.WithinDuration(o.CreatedAt(), restored.CreatedAt(), time.Millisecond)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_WithCustomer_RoundTripsCustomerID() {
	ctx := context.Background()
	customerID := kernel.NewUUID()
	o := suite.createTestOrder(&customerID)

	suite.Require().NoError(suite.repository.Add(ctx, o))

	restored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(restored.Customer())
	suite.True(restored.Customer().IsEqual(customerID))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_UnconstructedOrder_ReturnsError() {
	err := suite.repository.Add(context.Background(), &order.Order{})
	suite.Require().Error(err)
	suite.ErrorIs(err, order.ErrOrderIsNotConstructed)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StatusTransition_Persisted() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.ChangeStatus(order.Preparing))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	restored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Preparing, restored.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsError() {
	o := suite.createTestOrder(nil)

	err := suite.repository.Update(context.Background(), o)

	suite.Require().Error(err)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PaidFlagFalseToTrueAndBack() {
	ctx := context.Background()
	table, err := kernel.NewTableNumber(3)
	suite.Require().NoError(err)
	item, err := order.NewItem("Tea", 15, 1)
	suite.Require().NoError(err)
	paid, err := order.NewPayment(order.PaymentOnline, true)
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), table, []order.Item{item}, nil, paid)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	// Rewrite the same row from an aggregate with paid=false; the update must
	// not skip the zero-valued column.
	unpaid, err := order.NewPayment(order.PaymentOnline, false)
	suite.Require().NoError(err)
	updated, err := order.RestoreOrder(
		o.ID(), o.TableNumber(), o.Items(), nil, unpaid, o.Status(), o.CreatedAt())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, updated))

	restored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.False(restored.Payment().Paid())
}

// Two transactions read the same order with GetForUpdate. The second read
// blocks until the first transaction commits and then observes its write, so
// the stale-read lost update cannot happen.
func (suite *OrderRepositoryIntegrationTestSuite) TestGetForUpdate_SerializesConcurrentTransactions() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	tx1 := suite.db.Begin()
	suite.Require().NoError(tx1.Error)
	repo1 := orderrepo.NewGormOrderRepository(tx1)

	locked, err := repo1.GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(locked.ChangeStatus(order.Preparing))
	suite.Require().NoError(repo1.Update(ctx, locked))

	var (
		wg       sync.WaitGroup
		observed order.Status
	)
	wg.Add(1)
	go func() {
		defer wg.Done()

		tx2 := suite.db.Begin()
		defer tx2.Rollback()
		repo2 := orderrepo.NewGormOrderRepository(tx2)

		// Blocks on tx1's row lock until tx1 commits.
		second, getErr := repo2.GetForUpdate(ctx, o.ID())
		if getErr != nil {
			return
		}
		observed = second.Status()
	}()

	// Give the second transaction time to park on the lock before releasing it.
	time.Sleep(200 * time.Millisecond)
	suite.Require().NoError(tx1.Commit().Error)
	wg.Wait()

	suite.Equal(order.Preparing, observed)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
