package models

import "github.com/shopspring/decimal"

type OrderItem struct {
	ID          uint            `json:"id" gorm:"primary_key"`
	OrderID     uint            `json:"-" gorm:"index;not null"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int             `json:"quantity"     validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"   gorm:"type:numeric(10,2);not null"`
	TotalPrice  decimal.Decimal `json:"total_price"  gorm:"type:numeric(10,2);not null"`
}

func NewOrderItem(name string, qty int, unit decimal.Decimal) OrderItem {
	return OrderItem{
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  unit.Mul(decimal.NewFromInt(int64(qty))),
	}
}
