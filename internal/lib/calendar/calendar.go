// Package calendar содержит функции для работы с календарными днями:
// усечение времени до даты, разбор дат формата YYYY-MM-DD и подсчёт дней в месяце.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout — формат календарной даты в запросах и ответах.
const DateLayout = "2006-01-02"

// Day усекает момент времени до календарного дня (полночь UTC).
// Год, месяц и число берутся из исходной зоны t, поэтому сравнение двух
// значений после усечения эквивалентно сравнению их строк YYYY-MM-DD.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key возвращает строку YYYY-MM-DD для t.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay сообщает, приходятся ли a и b на один календарный день.
func SameDay(a, b time.Time) bool {
	return Key(a) == Key(b)
}

// Parse разбирает дату в формате YYYY-MM-DD.
func Parse(s string) (time.Time, error) {
	const op = "calendar.Parse"
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// DaysIn возвращает количество дней в месяце month года year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Within сообщает, лежит ли день t в закрытом интервале [from, to] с точностью до дня.
func Within(t, from, to time.Time) bool {
	d := Day(t)
	return !d.Before(Day(from)) && !d.After(Day(to))
}
