package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dough-store/internal/metrics"
	"dough-store/internal/models"
	"dough-store/internal/payment"
)

const (
	DefaultProductName = "Massa de Pastel Brasileira 1kg"
	shippingLineName   = "Frete de Entrega"
)

// Cart is a checkout request from the storefront.
type Cart struct {
	CustomerName  string              `json:"customer_name"        validate:"required"`
	CustomerEmail string              `json:"customer_email"       validate:"required,email"`
	CustomerPhone string              `json:"customer_phone"       validate:"required"`
	Address       string              `json:"delivery_address"     validate:"required"`
	PostalCode    string              `json:"delivery_postal_code" validate:"required"`
	City          string              `json:"delivery_city"        validate:"required"`
	District      string              `json:"delivery_district"    validate:"required"`
	DeliveryType  models.DeliveryType `json:"delivery_type"        validate:"required,oneof=pickup-point home"`
	Quantity      int                 `json:"quantity"             validate:"required,min=1"`
	// ShippingCost is computed server-side when nil.
	ShippingCost *float64 `json:"shipping_cost,omitempty"`
}

func (c *Cart) trim() {
	for _, f := range []*string{
		&c.CustomerName, &c.CustomerEmail, &c.CustomerPhone,
		&c.Address, &c.PostalCode, &c.City, &c.District,
	} {
		*f = strings.TrimSpace(*f)
	}
	c.DeliveryType = models.DeliveryType(strings.TrimSpace(string(c.DeliveryType)))
}

type CheckoutSession struct {
	CheckoutURL  string          `json:"checkoutUrl"`
	SessionID    string          `json:"sessionId"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Total        decimal.Decimal `json:"total"`
}

func (s *Service) validate(v any) error {
	if err := s.v.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("%w: %s", ErrValidation, humanizeValidationErrors(verrs))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// CreateSession opens a hosted payment session for cart and records a
// pending order under the new session id.
func (s *Service) CreateSession(ctx context.Context, cart Cart) (CheckoutSession, error) {
	cart.trim()
	if err := s.validate(cart); err != nil {
		metrics.CheckoutSessions.WithLabelValues("invalid").Inc()
		return CheckoutSession{}, err
	}

	meta := payment.Metadata{
		CustomerName:  cart.CustomerName,
		CustomerEmail: cart.CustomerEmail,
		CustomerPhone: cart.CustomerPhone,
		Address:       cart.Address,
		City:          cart.City,
		District:      cart.District,
		PostalCode:    cart.PostalCode,
		DeliveryType:  cart.DeliveryType,
		Quantity:      cart.Quantity,
		ShippingCost:  s.shippingFor(cart),
	}

	p := s.cfg.Product
	lines := []payment.LineItem{{
		Name:       p.Name,
		PriceID:    p.PriceID,
		UnitAmount: p.UnitPrice,
		Quantity:   cart.Quantity,
	}}
	if payment.ToCents(meta.ShippingCost) > 0 {
		lines = append(lines, payment.LineItem{
			Name:       shippingLineName,
			UnitAmount: meta.ShippingCost,
			Quantity:   1,
		})
	}

	base := strings.TrimRight(s.cfg.PublicURL, "/")
	sess, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		CustomerEmail: cart.CustomerEmail,
		Currency:      p.Currency,
		LineItems:     lines,
		Metadata:      meta,
		SuccessURL:    base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/checkout",
	})
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("provider_error").Inc()
		logrus.WithError(err).WithField("email", cart.CustomerEmail).Error("create checkout session")
		return CheckoutSession{}, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	order := s.buildOrder(meta, sess.ID, models.PaymentPending, models.OrderPending)
	if err := s.orders.Create(&order); err != nil {
		metrics.CheckoutSessions.WithLabelValues("persist_failed").Inc()
		logrus.WithError(err).WithField("session_id", sess.ID).
			Warn("pending order not persisted, webhook will rebuild it")
	} else {
		metrics.CheckoutSessions.WithLabelValues("created").Inc()
	}

	return CheckoutSession{
		CheckoutURL:  sess.URL,
		SessionID:    sess.ID,
		ShippingCost: meta.ShippingCost,
		Total:        order.TotalAmount,
	}, nil
}

// shippingFor trusts a well-formed caller cost, replaces a broken one with
// the default and prices the cart itself when no cost was sent.
func (s *Service) shippingFor(cart Cart) decimal.Decimal {
	if cart.ShippingCost == nil {
		return s.calc.CalculateByPostalCode(cart.PostalCode, cart.DeliveryType, cart.Quantity)
	}
	f := *cart.ShippingCost
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		metrics.ShippingFallbacks.WithLabelValues("invalid-client-cost").Inc()
		logrus.WithFields(logrus.Fields{
			"postal_code": cart.PostalCode,
			"supplied":    f,
			"cost":        s.calc.DefaultCost().StringFixed(2),
		}).Warn("invalid shipping cost replaced with default")
		return s.calc.DefaultCost()
	}
	return decimal.NewFromFloat(f).Round(2)
}

func orderItemShippingName(dt models.DeliveryType) string {
	if dt == models.DeliveryPickupPoint {
		return "Frete CTT - Ponto CTT"
	}
	return "Frete CTT - Domicílio"
}

// buildOrder prices an order from session metadata. The total is always
// recomputed from the unit price, never taken from the processor.
func (s *Service) buildOrder(m payment.Metadata, sessionID string, pay models.PaymentStatus, st models.OrderStatus) models.Order {
	o := models.Order{
		CustomerName:       m.CustomerName,
		CustomerEmail:      m.CustomerEmail,
		CustomerPhone:      m.CustomerPhone,
		DeliveryAddress:    m.Address,
		DeliveryPostalCode: m.PostalCode,
		DeliveryCity:       m.City,
		DeliveryDistrict:   m.District,
		DeliveryType:       m.DeliveryType,
		ShippingCost:       m.ShippingCost,
		PaymentSessionID:   sessionID,
		PaymentStatus:      pay,
		OrderStatus:        st,
		Items: []models.OrderItem{
			models.NewOrderItem(s.cfg.Product.Name, m.Quantity, s.cfg.Product.UnitPrice),
			models.NewOrderItem(orderItemShippingName(m.DeliveryType), 1, m.ShippingCost),
		},
	}
	o.TotalAmount = o.ItemsTotal()
	return o
}
