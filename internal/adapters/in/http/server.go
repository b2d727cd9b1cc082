// Package http exposes the service over HTTP: the order mutation and query
// API plus the server-sent-events stream the dashboards subscribe to.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"tableside/internal/core/application/usecases/commands"
	"tableside/internal/core/application/usecases/queries"
	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/core/domain/services"
	"tableside/internal/core/ports"
	"tableside/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ItemRequest is one order line in a placement request.
type ItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PaymentRequest carries the settlement terms in a placement request.
type PaymentRequest struct {
	Method string `json:"method"`
	Paid   bool   `json:"paid"`
}

// PlaceOrderRequest is the body of POST /api/v1/orders.
type PlaceOrderRequest struct {
	TableNumber int            `json:"tableNumber"`
	Items       []ItemRequest  `json:"items"`
	CustomerID  *string        `json:"customerId,omitempty"`
	Payment     PaymentRequest `json:"payment"`
}

// ChangeStatusRequest is the body of PATCH /api/v1/orders/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// Server coordinates between HTTP handlers and application use cases.
// Responses carry the same order snapshot shape the event stream uses, so a
// dashboard can treat a mutation reply and a pushed event interchangeably.
type Server struct {
	placeOrderHandler   commands.PlaceOrderCommandHandler
	changeStatusHandler commands.ChangeOrderStatusCommandHandler

	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler
	getTableOrdersHandler  queries.GetTableOrdersQueryHandler

	orders ports.OrderRepository
}

// NewServer creates a new HTTP server with the required command and query
// handlers. The repository serves single-order reads outside a transaction.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	changeStatusHandler commands.ChangeOrderStatusCommandHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getTableOrdersHandler queries.GetTableOrdersQueryHandler,
	orders ports.OrderRepository,
) *Server {
	return &Server{
		placeOrderHandler:      placeOrderHandler,
		changeStatusHandler:    changeStatusHandler,
		getActiveOrdersHandler: getActiveOrdersHandler,
		getTableOrdersHandler:  getTableOrdersHandler,
		orders:                 orders,
	}
}

// RegisterRoutes attaches the API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.PlaceOrder)
	api.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	api.GET("/orders/active", s.GetActiveOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/tables/:number/orders", s.GetTableOrders)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// PlaceOrder handles POST /api/v1/orders - places a new order for a table.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var request PlaceOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	tableNumber, err := kernel.NewTableNumber(request.TableNumber)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	items := make([]order.Item, 0, len(request.Items))
	for _, itemRequest := range request.Items {
		item, itemErr := order.NewItem(itemRequest.Name, itemRequest.Price, itemRequest.Quantity)
		if itemErr != nil {
			return badRequest(ctx, "Invalid order data: "+itemErr.Error())
		}
		items = append(items, item)
	}

	var customerID *kernel.UUID
	if request.CustomerID != nil {
		cID, cErr := kernel.UUIDFromString(*request.CustomerID)
		if cErr != nil {
			return badRequest(ctx, "Invalid customer id")
		}
		customerID = &cID
	}

	payment, err := order.NewPayment(order.PaymentMethod(request.Payment.Method), request.Payment.Paid)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	cmd, err := commands.NewPlaceOrderCommand(tableNumber, items, customerID, payment)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	placed, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return internalError(ctx, "Failed to place order")
	}

	return ctx.JSON(http.StatusCreated, services.SnapshotOf(placed))
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:id/status - advances an
// order through its lifecycle. An unknown order yields 404; a transition the
// state machine rejects yields 409 with the current and requested statuses.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request ChangeStatusRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	status, err := order.StatusFromString(request.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status: "+request.Status)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(id, status)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	changed, err := s.changeStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		var transitionErr *order.IllegalTransitionError
		switch {
		case errors.Is(err, errs.ErrObjectNotFound):
			return notFound(ctx, "Order not found")
		case errors.As(err, &transitionErr):
			return ctx.JSON(http.StatusConflict, ErrorResponse{
				Code: http.StatusConflict,
				Message: "Illegal status transition from " +
					transitionErr.From.String() + " to " + transitionErr.To.String(),
			})
		default:
			return internalError(ctx, "Failed to change order status")
		}
	}

	return ctx.JSON(http.StatusOK, services.SnapshotOf(changed))
}

// GetOrder handles GET /api/v1/orders/:id - retrieves one order.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	aggregate, err := s.orders.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return notFound(ctx, "Order not found")
		}
		return internalError(ctx, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, services.SnapshotOf(aggregate))
}

// GetActiveOrders handles GET /api/v1/orders/active - retrieves all orders
// not yet completed.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	views, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve orders")
	}

	return ctx.JSON(http.StatusOK, snapshotsOfViews(views))
}

// GetTableOrders handles GET /api/v1/tables/:number/orders - retrieves the
// orders placed for one table, newest first.
func (s *Server) GetTableOrders(ctx echo.Context) error {
	number, err := strconv.Atoi(ctx.Param("number"))
	if err != nil {
		return badRequest(ctx, "Invalid table number")
	}

	tableNumber, err := kernel.NewTableNumber(number)
	if err != nil {
		return badRequest(ctx, "Invalid table number: "+err.Error())
	}

	query, err := queries.NewGetTableOrdersQuery(tableNumber)
	if err != nil {
		return badRequest(ctx, "Invalid table number: "+err.Error())
	}

	views, err := s.getTableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve orders")
	}

	return ctx.JSON(http.StatusOK, snapshotsOfViews(views))
}

// snapshotsOfViews converts read models to the wire snapshot shape.
func snapshotsOfViews(views []queries.OrderView) []services.OrderSnapshot {
	snapshots := make([]services.OrderSnapshot, 0, len(views))
	for _, view := range views {
		items := make([]services.ItemSnapshot, 0, len(view.Items))
		for _, item := range view.Items {
			items = append(items, services.ItemSnapshot{
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}

		var customerID *string
		if view.CustomerID != nil {
			s := view.CustomerID.String()
			customerID = &s
		}

		snapshots = append(snapshots, services.OrderSnapshot{
			ID:          view.ID.String(),
			TableNumber: view.TableNumber,
			Items:       items,
			CustomerID:  customerID,
			Status:      view.Status.String(),
			Payment: services.PaymentSnapshot{
				Method: view.PaymentMethod,
				Paid:   view.PaymentPaid,
			},
			CreatedAt: view.CreatedAt,
		})
	}

	return snapshots
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: message})
}

func notFound(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusNotFound, ErrorResponse{Code: http.StatusNotFound, Message: message})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: message})
}
