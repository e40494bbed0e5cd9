package models

import "time"

// Статусы ежедневного заказа. Прочие положительные значения означают ручные состояния.
const (
	OrderStatusPending    = 0
	OrderStatusAutoFilled = 1
	OrderStatusSelected   = 2
)

// SnapshotIngredient — ингредиент, встроенный в снимок меню заказа.
type SnapshotIngredient struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"PricePerUnit" validate:"gte=0"`
	Portion      float64 `json:"portion" validate:"gte=0"`
}

// MenuSnapshot — денормализованная копия меню на момент создания заказа.
// Пустой снимок сериализуется как {}.
type MenuSnapshot struct {
	Title       string               `json:"menu_title,omitempty"`
	Description string               `json:"menu_description,omitempty"`
	Image       string               `json:"menu_image,omitempty"`
	Ingredients []SnapshotIngredient `json:"ingredient_list,omitempty"`
}

// DailyOrder — заказ пользователя на конкретный календарный день.
type DailyOrder struct {
	ID             int64        `json:"id"`
	UserUID        string       `json:"user_uid"`
	Date           time.Time    `json:"date"`
	Menu           MenuSnapshot `json:"menu"`
	Status         int          `json:"status"`
	TrackingNumber string       `json:"tracking_number"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OrderRequest содержит данные заказа на дату из JSON-запроса.
// Либо MenuID ссылается на меню каталога, либо поля снимка передаются явно.
type OrderRequest struct {
	Date        string               `json:"date" validate:"required"`
	MenuID      int64                `json:"menu_id,omitempty" validate:"gte=0"`
	Title       string               `json:"menu_title,omitempty"`
	Description string               `json:"menu_description,omitempty"`
	Image       string               `json:"menu_image,omitempty"`
	Ingredients []SnapshotIngredient `json:"ingredient_list,omitempty" validate:"dive"`
	Status      *int                 `json:"status,omitempty" validate:"omitempty,gte=0"`
}

// OrderScheduledEvent публикуется в RabbitMQ при создании нового заказа.
type OrderScheduledEvent struct {
	TrackingNumber string    `json:"tracking_number"`
	UserUID        string    `json:"user_uid"`
	Date           time.Time `json:"date"`
	Status         int       `json:"status"`
}
