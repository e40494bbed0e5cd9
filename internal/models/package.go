package models

import "time"

// PackageDuration задаёт длительность пакета в днях. Дата окончания не хранится, а вычисляется.
const PackageDuration = 30

// Package — пакет подписки пользователя.
type Package struct {
	ID        int64     `json:"id"`
	UserUID   string    `json:"user_uid"`
	Tier      Tier      `json:"package_name"`
	Price     float64   `json:"price"`
	Features  string    `json:"features"`
	StartDate time.Time `json:"package_start_date"`
}

// EndDate возвращает производную дату окончания: start + 30 дней.
func (p *Package) EndDate() time.Time {
	return p.StartDate.AddDate(0, 0, PackageDuration)
}

// PackageView — представление пакета в ответе API вместе с вычисленной датой окончания.
type PackageView struct {
	*Package
	EndDate time.Time `json:"package_end_date"`
}

// View оборачивает пакет для ответа.
func (p *Package) View() PackageView {
	return PackageView{Package: p, EndDate: p.EndDate()}
}

// PackageRequest содержит данные нового пакета из JSON-запроса.
// Дата начала используется только для первого пакета пользователя.
type PackageRequest struct {
	Tier      string  `json:"package_name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Features  string  `json:"features" validate:"required"`
	StartDate string  `json:"package_start_date"`
}
