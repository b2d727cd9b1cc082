package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	adapter "tableside/internal/adapters/in/http"
	"tableside/internal/adapters/out/realtime"
	"tableside/internal/core/application/usecases/commands"
	"tableside/internal/core/application/usecases/queries"
	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/ports"
	"tableside/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a transaction-less in-memory order store backing the HTTP
// tests; the database-backed paths are covered by the repository and query
// integration suites.
type memStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*order.Order)}
}

func (s *memStore) Add(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID().String()] = o
	return nil
}

func (s *memStore) Update(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID().String()] = o
	return nil
}

func (s *memStore) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return s.Get(ctx, id)
}

type memUoW struct{ store *memStore }

func (u *memUoW) Begin(context.Context) error            { return nil }
func (u *memUoW) Commit(context.Context) error           { return nil }
func (u *memUoW) Rollback(context.Context) error         { return nil }
func (u *memUoW) OrderRepository() ports.OrderRepository { return u.store }

type memUoWFactory struct{ store *memStore }

func (f *memUoWFactory) Create() commands.OrderUoW { return &memUoW{store: f.store} }

func newTestServer(t *testing.T) (*echo.Echo, *memStore, *realtime.Registry) {
	t.Helper()

	store := newMemStore()
	factory := &memUoWFactory{store: store}
	registry := realtime.NewRegistry(nil)

	server := adapter.NewServer(
		commands.NewPlaceOrderCommandHandler(factory, registry),
		commands.NewChangeOrderStatusCommandHandler(factory, registry),
		queries.GetActiveOrdersQueryHandler{},
		queries.GetTableOrdersQueryHandler{},
		store,
	)

	e := echo.New()
	server.RegisterRoutes(e)
	adapter.NewStreamServer(registry, nil).RegisterRoutes(e)
	return e, store, registry
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const placeOrderBody = `{
	"tableNumber": 3,
	"items": [{"name": "Soup", "price": 100, "quantity": 2}],
	"payment": {"method": "cash", "paid": false}
}`

func TestServer_PlaceOrder_Success(t *testing.T) {
	e, store, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/orders", placeOrderBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"tableNumber":3`)
	assert.Contains(t, body, `"status":"received"`)
	assert.Contains(t, body, `"name":"Soup"`)
	assert.NotContains(t, body, `"customerId"`)
	assert.Len(t, store.orders, 1)
}

func TestServer_PlaceOrder_RoutesCreatedEvent(t *testing.T) {
	e, _, registry := newTestServer(t)
	kitchen := realtime.NewChannelSubscriber(4)
	table := realtime.NewChannelSubscriber(4)
	waitstaff := realtime.NewChannelSubscriber(4)
	registry.Subscribe("kitchen", kitchen)
	registry.Subscribe("table:3", table)
	registry.Subscribe("waitstaff", waitstaff)

	rec := doJSON(e, http.MethodPost, "/api/v1/orders", placeOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Len(t, kitchen.Events(), 1, "kitchen is in the created audience")
	assert.Len(t, table.Events(), 1, "the order's table is in the created audience")
	assert.Len(t, waitstaff.Events(), 0, "waitstaff is not in the created audience")
}

func TestServer_PlaceOrder_ValidationFailures(t *testing.T) {
	e, _, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed_json", `{"tableNumber": }`},
		{"table_number_out_of_range", `{"tableNumber": 0, "items": [{"name": "Soup", "price": 100, "quantity": 2}], "payment": {"method": "cash"}}`},
		{"empty_items", `{"tableNumber": 3, "items": [], "payment": {"method": "cash"}}`},
		{"negative_price", `{"tableNumber": 3, "items": [{"name": "Soup", "price": -1, "quantity": 2}], "payment": {"method": "cash"}}`},
		{"zero_quantity", `{"tableNumber": 3, "items": [{"name": "Soup", "price": 100, "quantity": 0}], "payment": {"method": "cash"}}`},
		{"unknown_payment_method", `{"tableNumber": 3, "items": [{"name": "Soup", "price": 100, "quantity": 2}], "payment": {"method": "crypto"}}`},
		{"bad_customer_id", `{"tableNumber": 3, "items": [{"name": "Soup", "price": 100, "quantity": 2}], "customerId": "not-a-uuid", "payment": {"method": "cash"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_ChangeOrderStatus_Success(t *testing.T) {
	e, store, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/orders", placeOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var id string
	for key := range store.orders {
		id = key
	}

	rec = doJSON(e, http.MethodPatch, "/api/v1/orders/"+id+"/status", `{"status": "preparing"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"preparing"`)
	assert.Equal(t, order.Preparing, store.orders[id].Status())
}

func TestServer_ChangeOrderStatus_IllegalTransitionConflict(t *testing.T) {
	e, store, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/orders", placeOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var id string
	for key := range store.orders {
		id = key
	}

	rec = doJSON(e, http.MethodPatch, "/api/v1/orders/"+id+"/status", `{"status": "served"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
	assert.Contains(t, rec.Body.String(), "served")
	assert.Equal(t, order.Received, store.orders[id].Status())
}

func TestServer_ChangeOrderStatus_NotFound(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPatch,
		"/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status": "preparing"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ChangeOrderStatus_BadInput(t *testing.T) {
	e, _, _ := newTestServer(t)
	id := kernel.NewUUID().String()

	rec := doJSON(e, http.MethodPatch, "/api/v1/orders/not-a-uuid/status", `{"status": "preparing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPatch, "/api/v1/orders/"+id+"/status", `{"status": "abandoned"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetOrder(t *testing.T) {
	e, store, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/orders", placeOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var id string
	for key := range store.orders {
		id = key
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/orders/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = doJSON(e, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamServer_Stream_RejectsUnknownChannel(t *testing.T) {
	e, _, _ := newTestServer(t)

	for _, channel := range []string{"lobby", "table:0", "table:07", "table:9999"} {
		rec := doJSON(e, http.MethodGet, "/api/v1/streams/"+channel, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "channel %q", channel)
	}
}

func TestStreamServer_Stream_ClosesWithRequest(t *testing.T) {
	e, _, registry := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/kitchen", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 0, registry.SubscriberCount("kitchen"),
		"the subscription must not outlive the connection")
}

func TestStreamServer_Snapshot_WithoutCache(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/streams/kitchen/snapshot", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
