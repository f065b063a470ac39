package models

import "time"

// SLASetting holds the per-priority response/resolution targets in hours.
// Externally configured; the lifecycle only reads it.
type SLASetting struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Priority            Priority  `gorm:"uniqueIndex;not null" json:"priority"`
	ResponseTimeHours   float64   `gorm:"not null" json:"response_time_hours"`
	ResolutionTimeHours float64   `gorm:"not null" json:"resolution_time_hours"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SLASetting model
func (SLASetting) TableName() string {
	return "sla_settings"
}
