package models

import "time"

// Статусы доставки.
const (
	ShipmentOngoing   = "Ongoing"
	ShipmentDelivered = "Delivered"
	ShipmentReturned  = "Returned"
	ShipmentFailed    = "Failed to Deliver"
)

// ValidShipmentStatus сообщает, допустим ли статус доставки.
func ValidShipmentStatus(s string) bool {
	switch s {
	case ShipmentOngoing, ShipmentDelivered, ShipmentReturned, ShipmentFailed:
		return true
	}
	return false
}

// Shipment — доставка ежедневного заказа, связанная с ним трек-номером.
type Shipment struct {
	ID             int64     `json:"id"`
	TrackingNumber string    `json:"tracking_number"`
	OrderID        int64     `json:"order_id"`
	CustomerName   string    `json:"customer_name"`
	Address        string    `json:"address"`
	MessengerName  string    `json:"messenger_name"`
	Contact        string    `json:"contact"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ShipmentRequest запрашивает создание доставки по трек-номеру.
type ShipmentRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

// ShipmentStatusRequest запрашивает смену статуса доставки.
type ShipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
