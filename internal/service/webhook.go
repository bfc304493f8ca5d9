package service

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"dough-store/internal/carrier"
	"dough-store/internal/metrics"
	"dough-store/internal/models"
	"dough-store/internal/notify"
	"dough-store/internal/payment"
)

// Event types the processor sends that are acknowledged without any state change.
var acknowledgedEvents = map[string]bool{
	"checkout.session.expired":      true,
	"payment_intent.succeeded":      true,
	"payment_intent.payment_failed": true,
	"charge.succeeded":              true,
	"charge.refunded":               true,
}

// HandleWebhook verifies and applies one processor event. A nil error means
// the event may be acknowledged; anything else asks the processor to retry.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignature) {
			metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
			logrus.WithError(err).Warn("webhook signature rejected")
			return fmt.Errorf("%w: %v", ErrSignature, err)
		}
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	log := logrus.WithFields(logrus.Fields{"event_id": ev.ID, "type": ev.Type})

	switch {
	case ev.Type == payment.EventCheckoutCompleted:
		return s.completeCheckout(ctx, ev)
	case acknowledgedEvents[ev.Type]:
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		log.Info("webhook event received but not handled")
	default:
		metrics.WebhookEvents.WithLabelValues("other", "ignored").Inc()
		log.Warn("unhandled webhook event type")
	}
	return nil
}

func (s *Service) completeCheckout(ctx context.Context, ev payment.Event) error {
	sess := ev.Session
	if sess == nil {
		metrics.WebhookEvents.WithLabelValues(ev.Type, "invalid_metadata").Inc()
		logrus.WithField("event_id", ev.ID).Warn("checkout event without session")
		return nil
	}
	log := logrus.WithFields(logrus.Fields{"event_id": ev.ID, "session_id": sess.ID})

	var order models.Order
	meta, err := payment.DecodeMetadata(sess.Metadata)
	if err == nil {
		if meta.CustomerEmail == "" {
			meta.CustomerEmail = sess.CustomerEmail
		}
		if meta.CustomerEmail == "" {
			err = fmt.Errorf("%w: %s missing", ErrInvalidMetadata, payment.KeyCustomerEmail)
		}
	}
	if err == nil {
		order = s.buildOrder(meta, sess.ID, models.PaymentCompleted, models.OrderProcessing)
		if verr := s.validate(order); verr != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidMetadata, verr)
		}
	}
	if err != nil {
		// retrying cannot fix the metadata, ack so the processor stops
		metrics.WebhookEvents.WithLabelValues(ev.Type, "invalid_metadata").Inc()
		log.WithError(err).Error("checkout session metadata rejected")
		return nil
	}

	saved, outcome, err := s.orders.UpsertBySession(order)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(ev.Type, "error").Inc()
		return pkgerrors.Wrapf(err, "upsert order for session %s", sess.ID)
	}
	s.cache.DeleteOrder(sess.ID)

	if outcome == models.UpsertUnchanged {
		metrics.WebhookEvents.WithLabelValues(ev.Type, "duplicate").Inc()
		log.WithField("order_id", saved.ID).Info("checkout session already processed")
		return nil
	}
	log = log.WithFields(logrus.Fields{"order_id": saved.ID, "outcome": outcome})

	res, err := s.carrier.CreateShipment(ctx, shipmentFor(saved, meta.Quantity, s.calc.WeightFor(meta.Quantity)))
	switch {
	case err != nil:
		log.WithError(err).Warn("shipment not created, order left processing")
	default:
		if err := s.orders.AttachTracking(saved.ID, res.TrackingNumber, res.TrackingURL); err != nil {
			log.WithError(err).Warn("tracking not attached, order left processing")
			break
		}
		saved.TrackingNumber = &res.TrackingNumber
		saved.TrackingURL = &res.TrackingURL
		saved.OrderStatus = models.OrderShipped
	}

	s.cache.PutOrder(sess.ID, saved)
	s.notices.Dispatch(
		noticeFor(notify.KindOrderConfirmation, saved),
		noticeFor(notify.KindOwnerAlert, saved),
	)

	metrics.WebhookEvents.WithLabelValues(ev.Type, "processed").Inc()
	log.WithField("status", saved.OrderStatus).Info("checkout completed")
	return nil
}

func shipmentFor(o models.Order, quantity int, weightKg float64) carrier.Shipment {
	return carrier.Shipment{
		OrderID:      o.ID,
		Name:         o.CustomerName,
		Email:        o.CustomerEmail,
		Phone:        o.CustomerPhone,
		Address:      o.DeliveryAddress,
		City:         o.DeliveryCity,
		PostalCode:   o.DeliveryPostalCode,
		DeliveryType: o.DeliveryType,
		WeightKg:     weightKg,
		Quantity:     quantity,
	}
}

func noticeFor(kind notify.Kind, o models.Order) notify.OrderNotice {
	n := notify.OrderNotice{
		Kind:          kind,
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Total:         o.TotalAmount,
		Status:        string(o.OrderStatus),
	}
	if len(o.Items) > 0 {
		n.Quantity = o.Items[0].Quantity
	}
	if o.HasTracking() {
		n.TrackingNumber = *o.TrackingNumber
		if o.TrackingURL != nil {
			n.TrackingURL = *o.TrackingURL
		}
	}
	return n
}
