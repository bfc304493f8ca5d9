package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dough-store/internal/metrics"
	"dough-store/internal/models"
	"dough-store/internal/shipping"
)

// Quote prices delivery for quantity units. The carrier's own quote is
// preferred when credentials exist; the rate table answers otherwise.
func (s *Service) Quote(ctx context.Context, postalCode string, dt models.DeliveryType, quantity int) (shipping.Quote, error) {
	if dt == "" {
		dt = models.DeliveryHome
	}
	if !dt.Valid() {
		return shipping.Quote{}, fmt.Errorf("%w: delivery_type must be one of pickup-point, home", ErrValidation)
	}
	postalCode = strings.TrimSpace(postalCode)

	if postalCode == "" || !s.carrier.Configured() {
		return s.calc.QuoteByPostalCode(postalCode, dt, quantity), nil
	}

	weight := s.calc.WeightFor(quantity)
	cq, err := s.carrier.Quote(ctx, postalCode, dt, weight)
	if err == nil {
		return shipping.Quote{
			Cost:     cq.Price.Round(2),
			Region:   shipping.Classify(postalCode),
			Source:   shipping.SourceCarrierAPI,
			WeightKg: weight,
		}, nil
	}

	metrics.ShippingFallbacks.WithLabelValues(string(shipping.FallbackCarrierAPIFailed)).Inc()
	logrus.WithError(err).WithField("postal_code", postalCode).Warn("carrier quote failed, using rate table")

	q := s.calc.QuoteByPostalCode(postalCode, dt, quantity)
	if q.Fallback == shipping.FallbackNone {
		q.Fallback = shipping.FallbackCarrierAPIFailed
	}
	return q, nil
}
