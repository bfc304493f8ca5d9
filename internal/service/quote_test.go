package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"dough-store/internal/carrier"
	"dough-store/internal/models"
	svc "dough-store/internal/service"
	"dough-store/internal/shipping"
)

func TestQuote_RateTableWhenCarrierUnconfigured(t *testing.T) {
	f := newFixture(t)

	q, err := f.svc.Quote(context.Background(), "1100-048", models.DeliveryHome, 1)
	require.NoError(t, err)
	require.Equal(t, shipping.SourceRateTable, q.Source)
	require.Equal(t, shipping.RegionContinental, q.Region)
	require.True(t, dec("5.58").Equal(q.Cost))
	require.Equal(t, shipping.FallbackNone, q.Fallback)
}

func TestQuote_CarrierPreferred(t *testing.T) {
	f := newFixture(t)
	f.carrier.configured = true
	f.carrier.quoteFn = func(_ context.Context, pc string, dt models.DeliveryType, w float64) (carrier.QuoteResult, error) {
		require.Equal(t, models.DeliveryPickupPoint, dt)
		require.Equal(t, 3.0, w)
		return carrier.QuoteResult{Price: dec("4.999")}, nil
	}

	q, err := f.svc.Quote(context.Background(), "4000-001", models.DeliveryPickupPoint, 2)
	require.NoError(t, err)
	require.Equal(t, shipping.SourceCarrierAPI, q.Source)
	require.True(t, dec("5.00").Equal(q.Cost))
}

func TestQuote_CarrierFailure_FallsBackToTable(t *testing.T) {
	f := newFixture(t)
	f.carrier.configured = true
	f.carrier.quoteFn = func(context.Context, string, models.DeliveryType, float64) (carrier.QuoteResult, error) {
		return carrier.QuoteResult{}, errors.New("timeout")
	}

	q, err := f.svc.Quote(context.Background(), "9500-123", models.DeliveryHome, 1)
	require.NoError(t, err)
	require.Equal(t, shipping.SourceRateTable, q.Source)
	require.Equal(t, shipping.FallbackCarrierAPIFailed, q.Fallback)
	require.Equal(t, shipping.RegionAzores, q.Region)
}

func TestQuote_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Quote(context.Background(), "1100-048", "drone", 1)
	require.ErrorIs(t, err, svc.ErrValidation)

	q, err := f.svc.Quote(context.Background(), "", "", 0)
	require.NoError(t, err)
	require.Equal(t, shipping.FallbackEmptyPostalCode, q.Fallback)
	require.True(t, q.Cost.IsPositive())
}
