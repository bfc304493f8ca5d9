package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"dough-store/internal/models"
	"dough-store/internal/payment"
	svc "dough-store/internal/service"
)

func TestCreateSession_QuantityTwo_ContinentalHome(t *testing.T) {
	f := newFixture(t)
	cart := fakeCart(2)
	cost := 5.58
	cart.ShippingCost = &cost

	out, err := f.svc.CreateSession(context.Background(), cart)
	require.NoError(t, err)
	require.Equal(t, "cs_test_abc", out.SessionID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", out.CheckoutURL)
	require.True(t, dec("25.58").Equal(out.Total), out.Total.String())

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	require.Len(t, req.LineItems, 2)
	sum := int64(0)
	for _, li := range req.LineItems {
		sum += payment.ToCents(li.UnitAmount) * int64(li.Quantity)
	}
	require.Equal(t, int64(2558), sum)
	require.Equal(t, "https://massa.example.pt/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	require.Equal(t, "https://massa.example.pt/checkout", req.CancelURL)
	require.Equal(t, 2, req.Metadata.Quantity)
	require.Equal(t, "5.58", req.Metadata.Encode()[payment.KeyShippingCost])

	require.Len(t, f.pg.created, 1)
	o := f.pg.created[0]
	require.Equal(t, models.PaymentPending, o.PaymentStatus)
	require.Equal(t, models.OrderPending, o.OrderStatus)
	require.Equal(t, "cs_test_abc", o.PaymentSessionID)
	require.Len(t, o.Items, 2)
	require.Equal(t, "Frete CTT - Domicílio", o.Items[1].ProductName)
}

func TestCreateSession_ComputesShippingWhenOmitted(t *testing.T) {
	f := newFixture(t)
	cart := fakeCart(1)
	cart.PostalCode = "9500-123"

	out, err := f.svc.CreateSession(context.Background(), cart)
	require.NoError(t, err)
	require.True(t, out.ShippingCost.IsPositive())
	require.False(t, out.ShippingCost.Equal(dec("5.58")), "azores must not cost the continental default")
}

func TestCreateSession_InvalidShippingCost_UsesDefault(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		f := newFixture(t)
		cart := fakeCart(1)
		cart.ShippingCost = &bad

		out, err := f.svc.CreateSession(context.Background(), cart)
		require.NoError(t, err)
		require.True(t, dec("5.58").Equal(out.ShippingCost), "cost for %v", bad)
	}

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && e.Message == "invalid shipping cost replaced with default" {
			found = true
		}
	}
	require.True(t, found)
}

func TestCreateSession_ZeroShipping_OmitsShippingLine(t *testing.T) {
	f := newFixture(t)
	cart := fakeCart(1)
	zero := 0.004
	cart.ShippingCost = &zero

	_, err := f.svc.CreateSession(context.Background(), cart)
	require.NoError(t, err)
	require.Len(t, f.gateway.requests[0].LineItems, 1)
}

func TestCreateSession_ValidationRejectsBeforeGateway(t *testing.T) {
	cases := map[string]func(c *svc.Cart){
		"blank name":        func(c *svc.Cart) { c.CustomerName = "   " },
		"bad email":         func(c *svc.Cart) { c.CustomerEmail = "not-an-email" },
		"missing phone":     func(c *svc.Cart) { c.CustomerPhone = "" },
		"missing district":  func(c *svc.Cart) { c.District = "" },
		"zero quantity":     func(c *svc.Cart) { c.Quantity = 0 },
		"unknown delivery":  func(c *svc.Cart) { c.DeliveryType = "drone" },
		"missing post code": func(c *svc.Cart) { c.PostalCode = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			cart := fakeCart(1)
			mutate(&cart)

			_, err := f.svc.CreateSession(context.Background(), cart)
			require.ErrorIs(t, err, svc.ErrValidation)
			require.Empty(t, f.gateway.requests)
			require.Empty(t, f.pg.created)
		})
	}
}

func TestCreateSession_ProviderFailure_IsFatal(t *testing.T) {
	f := newFixture(t)
	f.gateway.createFn = func(context.Context, payment.SessionRequest) (payment.Session, error) {
		return payment.Session{}, errors.New("stripe down")
	}

	_, err := f.svc.CreateSession(context.Background(), fakeCart(1))
	require.ErrorIs(t, err, svc.ErrPaymentProvider)
	require.Empty(t, f.pg.created)
}

func TestCreateSession_PersistenceFailure_Swallowed(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	f := newFixture(t)
	f.pg.createFn = func(*models.Order) error { return errors.New("db down") }

	out, err := f.svc.CreateSession(context.Background(), fakeCart(1))
	require.NoError(t, err)
	require.NotEmpty(t, out.CheckoutURL)

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && e.Data["session_id"] == "cs_test_abc" {
			found = true
		}
	}
	require.True(t, found, "expected warn log for swallowed persistence error")
}

func TestCreateSession_UsesConfiguredPriceID(t *testing.T) {
	f := newFixture(t)
	f.svc = svc.NewService(f.repo(), svc.Config{
		Product: svc.Product{PriceID: "price_123", UnitPrice: dec("10.00")},
	}, f.deps())

	_, err := f.svc.CreateSession(context.Background(), fakeCart(3))
	require.NoError(t, err)
	li := f.gateway.requests[0].LineItems[0]
	require.Equal(t, "price_123", li.PriceID)
	require.Equal(t, 3, li.Quantity)
	require.Equal(t, "eur", f.gateway.requests[0].Currency)
}
