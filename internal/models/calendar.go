package models

// CalendarDay — ячейка календаря на один день.
type CalendarDay struct {
	Day    int          `json:"day"`
	Detail MenuSnapshot `json:"detail"`
	Status int          `json:"status"`
}

// Calendar — сетка из 12 месяцев; ключ — номер месяца от 0 до 11.
type Calendar struct {
	Year   int                   `json:"year"`
	Months map[int][]CalendarDay `json:"months"`
}
