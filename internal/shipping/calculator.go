package shipping

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dough-store/internal/metrics"
	"dough-store/internal/models"
)

const (
	// UnitWeightKg is the nominal shipping weight of one roll of dough.
	UnitWeightKg = 1.5
)

// DefaultCost is charged whenever a tariff cannot be resolved.
var DefaultCost = decimal.RequireFromString("5.58")

type Source string

const (
	SourceRateTable  Source = "rate-table"
	SourceCarrierAPI Source = "carrier-api"
)

// Fallback names the guard that replaced a computed cost with the default.
type Fallback string

const (
	FallbackNone             Fallback = ""
	FallbackEmptyPostalCode  Fallback = "empty-postal-code"
	FallbackUnknownRegion    Fallback = "unknown-region"
	FallbackInvalidWeight    Fallback = "invalid-weight"
	FallbackNonPositiveCost  Fallback = "non-positive-cost"
	FallbackCarrierAPIFailed Fallback = "carrier-api-failed"
)

// Quote is a resolved shipping price with its provenance.
type Quote struct {
	Cost     decimal.Decimal `json:"cost"`
	Region   Region          `json:"region"`
	Source   Source          `json:"source"`
	Fallback Fallback        `json:"fallback,omitempty"`
	WeightKg float64         `json:"weight_kg"`
}

type Calculator struct {
	table        Table
	defaultCost  decimal.Decimal
	unitWeightKg float64
}

type Option func(*Calculator)

func WithTable(t Table) Option { return func(c *Calculator) { c.table = t } }

func WithDefaultCost(d decimal.Decimal) Option {
	return func(c *Calculator) {
		if d.IsPositive() {
			c.defaultCost = d
		}
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		table:        DefaultTable(),
		defaultCost:  DefaultCost,
		unitWeightKg: UnitWeightKg,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Calculator) DefaultCost() decimal.Decimal { return c.defaultCost }

// WeightFor converts a quantity into shipping weight, clamping it to at least one unit.
func (c *Calculator) WeightFor(quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	return float64(quantity) * c.unitWeightKg
}

// Calculate prices a parcel of weightKg for region and delivery type.
// Unknown regions and unusable weights cost the default.
func (c *Calculator) Calculate(region Region, dt models.DeliveryType, weightKg float64) decimal.Decimal {
	cost, _ := c.calculate(region, dt, weightKg)
	return cost
}

func (c *Calculator) calculate(region Region, dt models.DeliveryType, weightKg float64) (decimal.Decimal, Fallback) {
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return c.defaultCost, FallbackInvalidWeight
	}
	b, ok := c.table.lookup(region, weightKg)
	if !ok {
		return c.defaultCost, FallbackUnknownRegion
	}
	return b.Price(dt), FallbackNone
}

// CalculateByPostalCode classifies postalCode and prices quantity units of dough.
// The result is always positive.
func (c *Calculator) CalculateByPostalCode(postalCode string, dt models.DeliveryType, quantity int) decimal.Decimal {
	return c.QuoteByPostalCode(postalCode, dt, quantity).Cost
}

// QuoteByPostalCode is CalculateByPostalCode with the resolved region and the
// fallback branch, if any, reported alongside the cost.
func (c *Calculator) QuoteByPostalCode(postalCode string, dt models.DeliveryType, quantity int) Quote {
	weight := c.WeightFor(quantity)
	q := Quote{Source: SourceRateTable, Region: RegionContinental, WeightKg: weight}

	if strings.TrimSpace(postalCode) == "" {
		q.Cost, q.Fallback = c.defaultCost, FallbackEmptyPostalCode
		c.logFallback(postalCode, q)
		return q
	}

	q.Region = Classify(postalCode)
	q.Cost, q.Fallback = c.calculate(q.Region, dt, weight)

	if q.Fallback == FallbackNone && !q.Cost.IsPositive() {
		q.Cost, q.Fallback = c.defaultCost, FallbackNonPositiveCost
	}
	if q.Fallback != FallbackNone {
		c.logFallback(postalCode, q)
	}
	return q
}

func (c *Calculator) logFallback(postalCode string, q Quote) {
	metrics.ShippingFallbacks.WithLabelValues(string(q.Fallback)).Inc()
	logrus.WithFields(logrus.Fields{
		"postal_code": postalCode,
		"region":      q.Region,
		"reason":      q.Fallback,
		"cost":        q.Cost.StringFixed(2),
	}).Warn("shipping cost fell back to default")
}
