package services

import (
	"testing"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-01-01", "2024-01-01"}, // Monday maps to itself
		{"2024-01-02", "2024-01-01"},
		{"2024-01-06", "2024-01-01"}, // Saturday
		{"2024-01-07", "2024-01-01"}, // Sunday still belongs to Monday's week
		{"2024-01-08", "2024-01-08"}, // next Monday
		{"2024-03-03", "2024-02-26"}, // crosses a month boundary
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			in, err := time.Parse(models.DayFormat, tt.day)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, WeekStart(in).Format(models.DayFormat))
		})
	}
}

func TestWeekEnd(t *testing.T) {
	in, err := time.Parse(models.DayFormat, "2024-01-03")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-07", WeekEnd(in).Format(models.DayFormat))

	// WeekEnd is always 6 days after WeekStart.
	assert.Equal(t, WeekStart(in).AddDate(0, 0, 6), WeekEnd(in))
}
