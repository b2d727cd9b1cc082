package services

import (
	"errors"
	"fmt"
	"time"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
)

// ErrUnroutableEvent is returned when no audience can be computed for an
// order and trigger combination. This occurs when the trigger is unknown or
// when a status-changed trigger is paired with a status that can never be
// the result of a transition.
var ErrUnroutableEvent = errors.New("unroutable event")

// Audience channel names. Table channels are derived per order via TableChannel.
const (
	// ChannelKitchen receives events the kitchen dashboard acts on.
	ChannelKitchen = "kitchen"
	// ChannelWaitstaff receives events the waiter dashboard acts on.
	ChannelWaitstaff = "waitstaff"
	// ChannelManagement receives every order event for oversight.
	ChannelManagement = "management"
)

// tableChannelPrefix is the fixed prefix of per-table channel names.
const tableChannelPrefix = "table:"

// TableChannel derives the audience channel name for a table.
// The mapping is deterministic: table 7 always maps to "table:7".
func TableChannel(tableNumber kernel.TableNumber) string {
	return tableChannelPrefix + tableNumber.String()
}

// IsAudienceChannel reports whether name is a channel the router can ever
// publish to: one of the fixed role channels or a well-formed table channel.
func IsAudienceChannel(name string) bool {
	switch name {
	case ChannelKitchen, ChannelWaitstaff, ChannelManagement:
		return true
	}

	var n int
	if _, err := fmt.Sscanf(name, tableChannelPrefix+"%d", &n); err != nil {
		return false
	}
	_, err := kernel.NewTableNumber(n)
	return err == nil && name == tableChannelPrefix+fmt.Sprint(n)
}

// Trigger identifies the order mutation that produced an event.
type Trigger int

const (
	// TriggerUnknown catches uninitialized trigger values.
	TriggerUnknown Trigger = iota
	// TriggerOrderCreated marks a freshly placed order.
	TriggerOrderCreated
	// TriggerStatusChanged marks a lifecycle transition.
	TriggerStatusChanged
)

// EventType is the wire-format discriminator of an order event.
type EventType string

const (
	// EventOrderCreated is sent when an order is placed.
	EventOrderCreated EventType = "order_created"
	// EventOrderStatusChanged is sent when an order status transitions.
	EventOrderStatusChanged EventType = "order_status_changed"
)

// ItemSnapshot mirrors one order line in the wire format.
type ItemSnapshot struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PaymentSnapshot mirrors the payment terms in the wire format.
type PaymentSnapshot struct {
	Method string `json:"method"`
	Paid   bool   `json:"paid"`
}

// OrderSnapshot is the complete current representation of an order as sent
// with every event. Dashboards hold no reconciliation logic; shipping the
// full state after each mutation keeps every consumer convergent with what
// is persisted.
type OrderSnapshot struct {
	ID          string          `json:"id"`
	TableNumber int             `json:"tableNumber"`
	Items       []ItemSnapshot  `json:"items"`
	CustomerID  *string         `json:"customerId,omitempty"`
	Status      string          `json:"status"`
	Payment     PaymentSnapshot `json:"payment"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SnapshotOf builds the wire-format snapshot of an order aggregate.
func SnapshotOf(o *order.Order) OrderSnapshot {
	items := make([]ItemSnapshot, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemSnapshot{
			Name:     item.Name(),
			Price:    item.Price(),
			Quantity: item.Quantity(),
		})
	}

	var customerID *string
	if c := o.Customer(); c != nil {
		s := c.String()
		customerID = &s
	}

	return OrderSnapshot{
		ID:          o.ID().String(),
		TableNumber: o.TableNumber().Value(),
		Items:       items,
		CustomerID:  customerID,
		Status:      o.Status().String(),
		Payment: PaymentSnapshot{
			Method: string(o.Payment().Method()),
			Paid:   o.Payment().Paid(),
		},
		CreatedAt: o.CreatedAt(),
	}
}

// Event is the payload delivered to every subscriber of a routed channel.
type Event struct {
	Type  EventType     `json:"type"`
	Order OrderSnapshot `json:"order"`
}

// Notification pairs an audience channel with the event to deliver there.
type Notification struct {
	Channel string
	Event   Event
}

// EventRouter is a domain service that translates a successfully persisted
// order mutation into the exact set of audience channels to notify and the
// payload each receives.
//
// The routing policy is fixed, not configurable per deployment:
//
//	order created            -> kitchen, management, table:<n>
//	status -> preparing|ready -> kitchen, waitstaff, management, table:<n>
//	status -> served|completed -> waitstaff, management, table:<n>
//
// Route is a pure function: it performs no I/O and has no side effects. The
// caller publishes each returned entry through the channel registry, and must
// only call Route after the mutation's persistence write is committed.
type EventRouter struct{}

// NewEventRouter creates an EventRouter.
func NewEventRouter() EventRouter {
	return EventRouter{}
}

// Route computes the notifications for a persisted order and its trigger.
//
// The returned slice preserves the policy's channel order; deliveries for a
// single mutation are published in this order, with no ordering guarantee
// across channels.
//
// Returns:
//   - the notifications to publish, one per audience channel
//   - ErrUnroutableEvent if the trigger is unknown or inconsistent with the
//     order's status (a status-changed trigger on a received order)
func (EventRouter) Route(o *order.Order, trigger Trigger) ([]Notification, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var (
		eventType EventType
		channels  []string
	)

	switch trigger {
	case TriggerOrderCreated:
		eventType = EventOrderCreated
		channels = []string{ChannelKitchen, ChannelManagement, TableChannel(o.TableNumber())}

	case TriggerStatusChanged:
		eventType = EventOrderStatusChanged
		switch o.Status() {
		case order.Preparing, order.Ready:
			channels = []string{ChannelKitchen, ChannelWaitstaff, ChannelManagement, TableChannel(o.TableNumber())}
		case order.Served, order.Completed:
			channels = []string{ChannelWaitstaff, ChannelManagement, TableChannel(o.TableNumber())}
		default:
			return nil, fmt.Errorf("%w: status %s cannot result from a transition", ErrUnroutableEvent, o.Status())
		}

	default:
		return nil, fmt.Errorf("%w: trigger %d", ErrUnroutableEvent, trigger)
	}

	event := Event{
		Type:  eventType,
		Order: SnapshotOf(o),
	}

	notifications := make([]Notification, 0, len(channels))
	for _, channel := range channels {
		notifications = append(notifications, Notification{
			Channel: channel,
			Event:   event,
		})
	}

	return notifications, nil
}
