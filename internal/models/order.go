package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryType string

const (
	DeliveryPickupPoint DeliveryType = "pickup-point"
	DeliveryHome        DeliveryType = "home"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryPickupPoint || d == DeliveryHome
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether the payment status can no longer change.
func (p PaymentStatus) Terminal() bool {
	return p == PaymentCompleted || p == PaymentFailed
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// RequiresTracking is true for every status at or after shipped, except cancelled.
func (s OrderStatus) RequiresTracking() bool {
	return s == OrderShipped || s == OrderDelivered
}

type Order struct {
	ID uint `json:"id" gorm:"primary_key"`

	CustomerName  string `json:"customer_name"  gorm:"not null"`
	CustomerEmail string `json:"customer_email" validate:"required,email" gorm:"not null;index"`
	CustomerPhone string `json:"customer_phone" gorm:"not null"`

	DeliveryAddress    string       `json:"delivery_address"     gorm:"not null"`
	DeliveryPostalCode string       `json:"delivery_postal_code" gorm:"type:varchar(16);not null"`
	DeliveryCity       string       `json:"delivery_city"        gorm:"not null"`
	DeliveryDistrict   string       `json:"delivery_district"`
	DeliveryType       DeliveryType `json:"delivery_type"        validate:"oneof=pickup-point home" gorm:"type:varchar(16);not null"`

	ShippingCost decimal.Decimal `json:"shipping_cost" gorm:"type:numeric(10,2);not null"`
	TotalAmount  decimal.Decimal `json:"total_amount"  gorm:"type:numeric(10,2);not null"`

	PaymentSessionID string        `json:"payment_session_id" gorm:"type:varchar(255);unique_index;not null"`
	PaymentStatus    PaymentStatus `json:"payment_status"     gorm:"type:varchar(16);not null;default:'pending'"`
	OrderStatus      OrderStatus   `json:"order_status"       gorm:"type:varchar(16);not null;default:'pending'"`

	TrackingNumber *string `json:"tracking_number,omitempty" gorm:"type:varchar(64)"`
	TrackingURL    *string `json:"tracking_url,omitempty"`

	Items []OrderItem `json:"items" validate:"min=1,dive" gorm:"foreignkey:OrderID;association_foreignkey:ID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemsTotal sums the total price of every line, shipping line included.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

func (o Order) HasTracking() bool {
	return o.TrackingNumber != nil && *o.TrackingNumber != ""
}

// CanTransitionTo reports whether an administrative change may move the order to next.
// Payment confirmation (pending to processing) is not administrative and is never allowed here.
func (o Order) CanTransitionTo(next OrderStatus) bool {
	if next.RequiresTracking() && !o.HasTracking() {
		return false
	}
	switch o.OrderStatus {
	case OrderPending:
		return next == OrderCancelled
	case OrderProcessing:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered || next == OrderCancelled
	default:
		return false
	}
}

// UpsertOutcome reports what an upsert keyed by payment session did.
type UpsertOutcome string

const (
	UpsertCreated   UpsertOutcome = "created"
	UpsertPromoted  UpsertOutcome = "promoted"
	UpsertUnchanged UpsertOutcome = "unchanged"
)
