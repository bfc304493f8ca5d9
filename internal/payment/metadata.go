package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"dough-store/internal/models"
)

var ErrInvalidMetadata = errors.New("invalid session metadata")

const (
	KeyCustomerName     = "customer_name"
	KeyCustomerEmail    = "customer_email"
	KeyCustomerPhone    = "customer_phone"
	KeyCustomerAddress  = "customer_address"
	KeyCustomerCity     = "customer_city"
	KeyCustomerDistrict = "customer_district"
	KeyPostalCode       = "customer_postal_code"
	KeyDeliveryType     = "delivery_type"
	KeyQuantity         = "quantity"
	KeyShippingCost     = "shipping_cost"
)

// Metadata is everything the webhook needs to rebuild an order, carried on
// the payment session as flat strings.
type Metadata struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	District      string
	PostalCode    string
	DeliveryType  models.DeliveryType
	Quantity      int
	ShippingCost  decimal.Decimal
}

func (m Metadata) Encode() map[string]string {
	return map[string]string{
		KeyCustomerName:     m.CustomerName,
		KeyCustomerEmail:    m.CustomerEmail,
		KeyCustomerPhone:    m.CustomerPhone,
		KeyCustomerAddress:  m.Address,
		KeyCustomerCity:     m.City,
		KeyCustomerDistrict: m.District,
		KeyPostalCode:       m.PostalCode,
		KeyDeliveryType:     string(m.DeliveryType),
		KeyQuantity:         strconv.Itoa(m.Quantity),
		KeyShippingCost:     m.ShippingCost.StringFixed(2),
	}
}

// DecodeMetadata parses raw session metadata. Quantity and shipping cost are
// required; a missing delivery type means home delivery.
func DecodeMetadata(raw map[string]string) (Metadata, error) {
	get := func(k string) string { return strings.TrimSpace(raw[k]) }

	m := Metadata{
		CustomerName:  get(KeyCustomerName),
		CustomerEmail: get(KeyCustomerEmail),
		CustomerPhone: get(KeyCustomerPhone),
		Address:       get(KeyCustomerAddress),
		City:          get(KeyCustomerCity),
		District:      get(KeyCustomerDistrict),
		PostalCode:    get(KeyPostalCode),
		DeliveryType:  models.DeliveryType(get(KeyDeliveryType)),
	}

	if m.DeliveryType == "" {
		m.DeliveryType = models.DeliveryHome
	}
	if !m.DeliveryType.Valid() {
		return Metadata{}, fmt.Errorf("%w: %s=%q", ErrInvalidMetadata, KeyDeliveryType, m.DeliveryType)
	}

	qty, err := strconv.Atoi(get(KeyQuantity))
	if err != nil || qty < 1 {
		return Metadata{}, fmt.Errorf("%w: %s=%q", ErrInvalidMetadata, KeyQuantity, raw[KeyQuantity])
	}
	m.Quantity = qty

	cost, err := decimal.NewFromString(get(KeyShippingCost))
	if err != nil || cost.IsNegative() {
		return Metadata{}, fmt.Errorf("%w: %s=%q", ErrInvalidMetadata, KeyShippingCost, raw[KeyShippingCost])
	}
	m.ShippingCost = cost

	return m, nil
}
