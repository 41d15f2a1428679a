package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order.
// PENDING is initial; COMPLETED and CANCELLED are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusAccepted:  {},
	OrderStatusReady:     {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus accepts any casing ("ready", "Ready", "READY").
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderStatuses[status]; !ok {
		return "", NewValidation("status", fmt.Sprintf("unknown order status %q", s))
	}
	return status, nil
}

// IsTerminal reports whether no further progress is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderItem is one line of an order. Prices are in minor currency units.
type OrderItem struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// OrderItems is stored as a JSONB column.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *OrderItems) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*items = OrderItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan order items: unsupported type %T", src)
	}
	return json.Unmarshal(data, items)
}

// Order is the authoritative record of a customer order against a vendor.
type Order struct {
	ID          int64       `db:"id" json:"id"`
	UserID      int64       `db:"user_id" json:"user_id"`
	VendorID    int64       `db:"vendor_id" json:"vendor_id"`
	Items       OrderItems  `db:"items" json:"items"`
	TotalAmount int64       `db:"total_amount" json:"total_amount"`
	Status      OrderStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Validate checks the fields a caller must supply when placing an order.
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return NewValidation("user_id", "is required")
	}
	if o.VendorID <= 0 {
		return NewValidation("vendor_id", "is required")
	}
	if len(o.Items) == 0 {
		return NewValidation("items", "at least one item is required")
	}
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return NewValidation(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}
	if o.TotalAmount < 0 {
		return NewValidation("total_amount", "must not be negative")
	}
	return nil
}

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	UserID      int64       `json:"user_id"`
	VendorID    int64       `json:"vendor_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"total_amount"`
}

// UpdateStatusRequest is the request body for PUT /orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
