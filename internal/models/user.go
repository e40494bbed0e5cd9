// Package models содержит доменные структуры сервиса подписки на питание:
// пользователей, пакеты, каталог (ингредиенты и меню), ежедневные заказы и доставки.
// Структуры используются в бизнес-логике, хранилище и при сериализации ответов.
package models

import "time"

// Роли пользователей.
const (
	RoleCustomer     = "CUSTOMER"
	RoleMealDesigner = "MEAL DESIGNER"
	RoleMessenger    = "MESSENGER"
)

// ValidRole сообщает, поддерживается ли роль.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleMealDesigner, RoleMessenger:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID              string    `json:"uid"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	Firstname         string    `json:"firstname"`
	Lastname          string    `json:"lastname"`
	AddressName       string    `json:"addressName"`
	AddressUnitNumber string    `json:"addressUnitNumber"`
	StreetNumber      string    `json:"streetNumber"`
	City              string    `json:"city"`
	Region            string    `json:"region"`
	PostalCode        string    `json:"postalCode"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// FullName возвращает имя и фамилию через пробел.
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// RegisterRequest содержит данные регистрации из JSON-запроса.
type RegisterRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6"`
	Role              string `json:"role,omitempty"`
	Firstname         string `json:"firstname" validate:"required"`
	Lastname          string `json:"lastname" validate:"required"`
	AddressName       string `json:"addressName" validate:"required"`
	AddressUnitNumber string `json:"addressUnitNumber" validate:"required"`
	StreetNumber      string `json:"streetNumber" validate:"required"`
	City              string `json:"city" validate:"required"`
	Region            string `json:"region" validate:"required"`
	PostalCode        string `json:"postalCode" validate:"required"`
}
