package services

import "time"

// WeekStart returns the Monday that begins the calendar week containing day.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday that closes the calendar week containing day.
func WeekEnd(day time.Time) time.Time {
	return WeekStart(day).AddDate(0, 0, 6)
}
