package shipping

import (
	"github.com/shopspring/decimal"

	"dough-store/internal/models"
)

// Band is one weight bracket of a region's tariff. Pickup is optional
// because some regions only deliver to the door.
type Band struct {
	MaxWeightKg float64
	Home        decimal.Decimal
	Pickup      decimal.NullDecimal
}

// Price returns the band's price for dt. A pickup-point request in a band
// without a pickup price is charged the home price.
func (b Band) Price(dt models.DeliveryType) decimal.Decimal {
	if dt == models.DeliveryPickupPoint && b.Pickup.Valid {
		return b.Pickup.Decimal
	}
	return b.Home
}

// Table maps a region to its bands, sorted by ascending MaxWeightKg.
type Table map[Region][]Band

func band(maxKg float64, pickup, home string) Band {
	b := Band{MaxWeightKg: maxKg, Home: decimal.RequireFromString(home)}
	if pickup != "" {
		b.Pickup = decimal.NewNullDecimal(decimal.RequireFromString(pickup))
	}
	return b
}

// DefaultTable is the CTT tariff in EUR.
func DefaultTable() Table {
	return Table{
		RegionContinental: {
			band(1, "4.59", "5.58"),
			band(2, "4.93", "5.58"),
			band(5, "5.49", "6.14"),
			band(10, "6.81", "7.46"),
			band(20, "8.12", "8.77"),
			band(30, "10.94", "11.59"),
		},
		RegionAzores: {
			band(1, "5.00", "7.50"),
			band(2, "6.00", "9.00"),
			band(5, "8.00", "12.00"),
			band(10, "10.00", "15.00"),
			band(20, "13.00", "20.00"),
			band(30, "16.00", "25.00"),
		},
		RegionMadeira: {
			band(1, "5.50", "8.00"),
			band(2, "6.50", "9.50"),
			band(5, "8.50", "12.50"),
			band(10, "11.00", "16.00"),
			band(20, "14.00", "21.00"),
			band(30, "17.00", "26.00"),
		},
		RegionSpainPeninsula: {
			band(1, "2.50", "3.50"),
			band(2, "3.00", "4.20"),
			band(5, "4.00", "5.50"),
			band(10, "5.00", "7.00"),
			band(20, "6.50", "9.00"),
			band(30, "8.00", "11.00"),
		},
		RegionSpainOther: {
			band(1, "", "14.05"),
			band(5, "", "26.64"),
			band(10, "", "58.84"),
			band(15, "", "75.43"),
			band(20, "", "108.33"),
			band(25, "", "141.22"),
			band(30, "", "173.83"),
		},
	}
}

// lookup returns the first band whose bound covers weightKg. Weights above
// the heaviest bound are charged at the heaviest band.
func (t Table) lookup(region Region, weightKg float64) (Band, bool) {
	bands, ok := t[region]
	if !ok || len(bands) == 0 {
		return Band{}, false
	}
	for _, b := range bands {
		if weightKg <= b.MaxWeightKg {
			return b, true
		}
	}
	return bands[len(bands)-1], true
}
