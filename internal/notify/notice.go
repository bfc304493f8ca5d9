package notify

import (
	"context"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindOrderConfirmation Kind = "order-confirmation"
	KindOwnerAlert        Kind = "owner-alert"
	KindStatusUpdate      Kind = "status-update"
)

// OrderNotice is a single message about an order, addressed either to the
// customer or to the store owner depending on Kind.
type OrderNotice struct {
	Kind           Kind            `json:"kind"`
	OrderID        uint            `json:"order_id"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	Quantity       int             `json:"quantity,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	TrackingURL    string          `json:"tracking_url,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n OrderNotice) error
}
