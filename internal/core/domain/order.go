package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in display order. The set carries no
// transition rules: any status may follow any other.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusDisplays[status]; ok {
		return status, true
	}
	return "", false
}

func (s OrderStatus) Valid() bool {
	_, ok := statusDisplays[s]
	return ok
}

// StatusDisplay is the label and emphasis color shared by the customer and
// admin order views.
type StatusDisplay struct {
	Label string
	Color string
}

var unknownStatusDisplay = StatusDisplay{Label: "Unknown", Color: "#666"}

var statusDisplays = map[OrderStatus]StatusDisplay{
	OrderStatusPending:    {Label: "Pending", Color: "#ff9800"},
	OrderStatusProcessing: {Label: "Processing", Color: "#2196f3"},
	OrderStatusShipped:    {Label: "Shipped", Color: "#9c27b0"},
	OrderStatusDelivered:  {Label: "Delivered", Color: "#4caf50"},
	OrderStatusCancelled:  {Label: "Cancelled", Color: "#f44336"},
}

func (s OrderStatus) Display() StatusDisplay {
	if d, ok := statusDisplays[s]; ok {
		return d
	}
	return unknownStatusDisplay
}

// CanRequestStatusChange reports whether role may ask the service to change
// an order's status. Legality of the transition itself belongs to the
// order service.
func CanRequestStatusChange(role Role) bool {
	return role == RoleAdmin
}

type OrderItem struct {
	ItemID   string
	Title    string
	Price    decimal.Decimal
	Quantity int
}

// OrderDraft is the request built from a cart snapshot at submission time.
type OrderDraft struct {
	OwnerID     string
	Lines       []CartLine
	TotalAmount decimal.Decimal
	Status      OrderStatus
}

func NewOrderDraft(ownerID string, cart Cart) OrderDraft {
	return OrderDraft{
		OwnerID:     ownerID,
		Lines:       cart.Lines(),
		TotalAmount: cart.TotalPrice(),
		Status:      OrderStatusPending,
	}
}

func (d OrderDraft) Items() []OrderItem {
	items := make([]OrderItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, OrderItem{
			ItemID:   l.Item.ID,
			Title:    l.Item.Title,
			Price:    l.Item.Price,
			Quantity: l.Quantity,
		})
	}
	return items
}

// Order is a placed order as reported by the service. Items and
// TotalAmount are frozen at creation.
type Order struct {
	ID          string
	OwnerID     string
	Items       []OrderItem
	TotalAmount decimal.Decimal
	Status      OrderStatus
	OrderDate   time.Time
}
