package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableside/internal/core/application/usecases/commands"
	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/domain/services"
	"tableside/internal/core/ports"
	"tableside/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func restoredOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		kernel.NewUUID(), mustTable(t, 5), mustItems(t), nil, mustPayment(t),
		status, time.Now().UTC())
	require.NoError(t, err)
	return o
}

func TestChangeOrderStatusCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Received)
	cmd, err := commands.NewChangeOrderStatusCommand(aggregate.ID(), order.Preparing)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(capturingPublisher)

	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)
	changed, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.Equal(t, order.Preparing, changed.Status())

	assert.Equal(t, []string{"kitchen", "waitstaff", "management", "table:5"}, publisher.channels())
	for _, n := range publisher.notifications {
		assert.Equal(t, services.EventOrderStatusChanged, n.Event.Type)
		assert.Equal(t, "preparing", n.Event.Order.Status)
	}

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_ServedRoutesWithoutKitchen(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Ready)
	cmd, err := commands.NewChangeOrderStatusCommand(aggregate.ID(), order.Served)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(capturingPublisher)

	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)
	_, err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{"waitstaff", "management", "table:5"}, publisher.channels())
}

func TestChangeOrderStatusCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewChangeOrderStatusCommand(id, order.Preparing)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, id).
			Return(nil, errs.NewObjectNotFoundError("orderID", id)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(capturingPublisher)

	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)
	changed, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Nil(t, changed)
	assert.Empty(t, publisher.notifications)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Served)
	cmd, err := commands.NewChangeOrderStatusCommand(aggregate.ID(), order.Preparing)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(capturingPublisher)

	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)
	changed, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	var transitionErr *order.IllegalTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, order.Served, transitionErr.From)
	assert.Equal(t, order.Preparing, transitionErr.To)
	assert.Nil(t, changed)
	assert.Empty(t, publisher.notifications)
	assert.Equal(t, order.Served, aggregate.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangeOrderStatusCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	aggregate := restoredOrder(t, order.Received)
	cmd, err := commands.NewChangeOrderStatusCommand(aggregate.ID(), order.Preparing)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(capturingPublisher)

	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Empty(t, publisher.notifications)
}

// memOrderStore is an in-memory order store whose unit of work holds an
// exclusive lock from Begin until Commit or Rollback, mirroring the row lock
// a transactional store takes on GetForUpdate.
type memOrderStore struct {
	mu      sync.Mutex
	current *order.Order
}

func (s *memOrderStore) clone(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		s.current.ID(), s.current.TableNumber(), s.current.Items(), s.current.Customer(),
		s.current.Payment(), s.current.Status(), s.current.CreatedAt())
	require.NoError(t, err)
	return o
}

type memOrderUoW struct {
	t      *testing.T
	store  *memOrderStore
	locked bool
}

func (u *memOrderUoW) Begin(context.Context) error {
	u.store.mu.Lock()
	u.locked = true
	return nil
}

func (u *memOrderUoW) Commit(context.Context) error {
	u.unlock()
	return nil
}

func (u *memOrderUoW) Rollback(context.Context) error {
	u.unlock()
	return nil
}

func (u *memOrderUoW) unlock() {
	if u.locked {
		u.locked = false
		u.store.mu.Unlock()
	}
}

func (u *memOrderUoW) OrderRepository() ports.OrderRepository {
	return &memOrderRepo{uow: u}
}

type memOrderRepo struct{ uow *memOrderUoW }

func (r *memOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.uow.store.current = o
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.uow.store.current = o
	return nil
}

func (r *memOrderRepo) Get(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	return r.uow.store.clone(r.uow.t), nil
}

func (r *memOrderRepo) GetForUpdate(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	return r.uow.store.clone(r.uow.t), nil
}

type memOrderUoWFactory struct {
	t     *testing.T
	store *memOrderStore
}

func (f *memOrderUoWFactory) Create() commands.OrderUoW {
	return &memOrderUoW{t: f.t, store: f.store}
}

// Two dashboards race to advance the same received order. Locked reads
// serialize the two transactions, so the second transaction observes the
// first one's write instead of the stale received status: a lost update
// where both calls appear to succeed against received is impossible.
func TestChangeOrderStatusCommandHandler_Handle_ConcurrentTransitionsSerialized(t *testing.T) {
	ctx := context.Background()
	seed := restoredOrder(t, order.Received)
	store := &memOrderStore{current: seed}
	factory := &memOrderUoWFactory{t: t, store: store}
	publisher := new(capturingPublisher)
	h := commands.NewChangeOrderStatusCommandHandler(factory, publisher)

	toPreparing, err := commands.NewChangeOrderStatusCommand(seed.ID(), order.Preparing)
	require.NoError(t, err)
	toReady, err := commands.NewChangeOrderStatusCommand(seed.ID(), order.Ready)
	require.NoError(t, err)

	var (
		wg                     sync.WaitGroup
		preparingErr, readyErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, preparingErr = h.Handle(ctx, toPreparing)
	}()
	go func() {
		defer wg.Done()
		_, readyErr = h.Handle(ctx, toReady)
	}()
	wg.Wait()

	// The preparing transition is legal from received, so it always lands.
	require.NoError(t, preparingErr)

	final := store.current.Status()
	if readyErr != nil {
		// The ready call ran against the received status and was rejected.
		var transitionErr *order.IllegalTransitionError
		require.ErrorAs(t, readyErr, &transitionErr)
		assert.Equal(t, order.Received, transitionErr.From)
		assert.Equal(t, order.Ready, transitionErr.To)
		assert.Equal(t, order.Preparing, final)
	} else {
		// The ready call ran after preparing committed and legally advanced.
		assert.Equal(t, order.Ready, final)
	}

	// Whatever the interleaving, the machine never skipped from received to
	// ready in one step and never left the order in received.
	assert.NotEqual(t, order.Received, final)
}
