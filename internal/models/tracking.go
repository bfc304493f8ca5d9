package models

import "time"

// ShipmentTracking is one carrier status observation for an order.
type ShipmentTracking struct {
	ID             uint      `json:"id" gorm:"primary_key"`
	OrderID        uint      `json:"order_id" gorm:"index;not null"`
	TrackingNumber string    `json:"tracking_number" gorm:"type:varchar(64);not null"`
	Status         string    `json:"status"`
	Location       string    `json:"location,omitempty"`
	TrackingData   string    `json:"tracking_data,omitempty" gorm:"type:text"`
	LastUpdate     time.Time `json:"last_update"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ShipmentTracking) TableName() string { return "shipment_tracking" }
