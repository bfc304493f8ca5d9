package service_test

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"dough-store/internal/carrier"
	"dough-store/internal/models"
	"dough-store/internal/notify"
	"dough-store/internal/payment"
	svc "dough-store/internal/service"
)

func TestHandleWebhook_CheckoutCompleted_ShipsAndNotifies(t *testing.T) {
	f := newFixture(t)
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_35", metadataFor("3", "5.58")))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))

	require.Len(t, f.pg.upserted, 1)
	o := f.pg.upserted[0]
	require.Equal(t, "cs_test_35", o.PaymentSessionID)
	require.True(t, dec("35.58").Equal(o.TotalAmount), o.TotalAmount.String())
	require.Equal(t, models.PaymentCompleted, o.PaymentStatus)
	require.Equal(t, models.OrderProcessing, o.OrderStatus)
	require.Len(t, o.Items, 2)
	require.Equal(t, 3, o.Items[0].Quantity)

	require.Len(t, f.carrier.shipments, 1)
	require.Equal(t, 4.5, f.carrier.shipments[0].WeightKg)
	require.Equal(t, []string{"PT0000000000042"}, f.pg.attached)

	cached, err := f.cache.GetOrder("cs_test_35")
	require.NoError(t, err)
	require.Equal(t, models.OrderShipped, cached.OrderStatus)
	require.True(t, cached.HasTracking())

	require.Len(t, f.notices.notices, 2)
	require.Equal(t, notify.KindOrderConfirmation, f.notices.notices[0].Kind)
	require.Equal(t, notify.KindOwnerAlert, f.notices.notices[1].Kind)
	require.Equal(t, "PT0000000000042", f.notices.notices[0].TrackingNumber)
}

func TestHandleWebhook_InvalidSignature_NoMutation(t *testing.T) {
	f := newFixture(t)
	payload, _ := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_x", metadataFor("3", "5.58")))

	for _, sig := range []string{"", "t=1,v1=deadbeef"} {
		err := f.svc.HandleWebhook(context.Background(), payload, sig)
		require.ErrorIs(t, err, svc.ErrSignature)
	}
	require.Empty(t, f.pg.upserted)
	require.Empty(t, f.carrier.shipments)
	require.Empty(t, f.notices.notices)
}

func TestHandleWebhook_CarrierFailure_LeavesProcessing(t *testing.T) {
	f := newFixture(t)
	f.carrier.createFn = func(context.Context, carrier.Shipment) (carrier.Result, error) {
		return carrier.Result{}, errors.New("entropy exhausted")
	}
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_nc", metadataFor("1", "5.58")))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Empty(t, f.pg.attached)

	cached, err := f.cache.GetOrder("cs_test_nc")
	require.NoError(t, err)
	require.Equal(t, models.OrderProcessing, cached.OrderStatus)
	require.False(t, cached.HasTracking())
	require.Len(t, f.notices.notices, 2, "customers are told even without tracking")
}

func TestHandleWebhook_RetriedEvent_IsNoop(t *testing.T) {
	f := newFixture(t)
	f.pg.upsertFn = func(o models.Order) (models.Order, models.UpsertOutcome, error) {
		o.ID = 7
		o.OrderStatus = models.OrderShipped
		o.TrackingNumber = strPtr("PT0000000000001")
		return o, models.UpsertUnchanged, nil
	}
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_dup", metadataFor("2", "5.58")))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Empty(t, f.carrier.shipments)
	require.Empty(t, f.notices.notices)
}

func TestHandleWebhook_InvalidMetadata_Acknowledged(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	f := newFixture(t)
	md := metadataFor("many", "5.58")
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_bad", md))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Empty(t, f.pg.upserted)

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.ErrorLevel && e.Message == "checkout session metadata rejected" {
			found = true
		}
	}
	require.True(t, found)
}

func TestHandleWebhook_EmailFallsBackToSession(t *testing.T) {
	f := newFixture(t)
	md := metadataFor("1", "5.58")
	delete(md, payment.KeyCustomerEmail)
	sess := completedSession("cs_test_mail", md)
	sess["customer_email"] = "fallback@example.pt"
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, sess)

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Len(t, f.pg.upserted, 1)
	require.Equal(t, "fallback@example.pt", f.pg.upserted[0].CustomerEmail)
}

func TestHandleWebhook_NoEmailAnywhere_Acknowledged(t *testing.T) {
	f := newFixture(t)
	md := metadataFor("1", "5.58")
	delete(md, payment.KeyCustomerEmail)
	sess := completedSession("cs_test_nomail", md)
	delete(sess, "customer_email")
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, sess)

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Empty(t, f.pg.upserted)
}

func TestHandleWebhook_MalformedEmail_Acknowledged(t *testing.T) {
	f := newFixture(t)
	md := metadataFor("2", "5.58")
	md[payment.KeyCustomerEmail] = "ana-at-example"
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_bademail", md))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Empty(t, f.pg.upserted)
	require.Empty(t, f.carrier.shipments)
}

func TestHandleWebhook_SparseContactDetails_Persisted(t *testing.T) {
	f := newFixture(t)
	md := metadataFor("1", "5.58")
	delete(md, payment.KeyCustomerPhone)
	delete(md, payment.KeyCustomerDistrict)
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_sparse", md))

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	require.Len(t, f.pg.upserted, 1)
	require.Empty(t, f.pg.upserted[0].CustomerPhone)
}

func TestHandleWebhook_StoreFailure_AsksForRetry(t *testing.T) {
	f := newFixture(t)
	f.pg.upsertFn = func(models.Order) (models.Order, models.UpsertOutcome, error) {
		return models.Order{}, "", errors.New("connection reset")
	}
	payload, sig := signedEvent(t, payment.EventCheckoutCompleted, completedSession("cs_test_db", metadataFor("1", "5.58")))

	err := f.svc.HandleWebhook(context.Background(), payload, sig)
	require.Error(t, err)
	require.NotErrorIs(t, err, svc.ErrSignature)
	require.Empty(t, f.carrier.shipments)
}

func TestHandleWebhook_OtherEvents_Acknowledged(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	f := newFixture(t)
	for _, typ := range []string{"payment_intent.succeeded", "customer.created"} {
		payload, sig := signedEvent(t, typ, map[string]any{"id": "obj_1"})
		require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, sig))
	}
	require.Empty(t, f.pg.upserted)

	msgs := map[string]log.Level{}
	for _, e := range hook.AllEntries() {
		msgs[e.Message] = e.Level
	}
	require.Equal(t, log.InfoLevel, msgs["webhook event received but not handled"])
	require.Equal(t, log.WarnLevel, msgs["unhandled webhook event type"])
}
