package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceNextDue(t *testing.T) {
	due := time.Date(2026, 1, 31, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		want      time.Time
	}{
		{"daily", due.AddDate(0, 0, 1)},
		{"weekly", due.AddDate(0, 0, 7)},
		{"monthly", due.AddDate(0, 1, 0)},
		{"quarterly", due.AddDate(0, 3, 0)},
		{"yearly", due.AddDate(1, 0, 0)},
		{"fortnightly", due}, // unknown frequency leaves the date alone
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			m := MaintenanceSchedule{Frequency: tt.frequency, NextDue: due}
			assert.Equal(t, tt.want, m.AdvanceNextDue())
		})
	}
}

func TestSparePartIsLowStock(t *testing.T) {
	assert.True(t, (&SparePart{Quantity: 3, MinQuantity: 5}).IsLowStock())
	assert.True(t, (&SparePart{Quantity: 5, MinQuantity: 5}).IsLowStock())
	assert.True(t, (&SparePart{Quantity: -2, MinQuantity: 0}).IsLowStock())
	assert.False(t, (&SparePart{Quantity: 6, MinQuantity: 5}).IsLowStock())
}
