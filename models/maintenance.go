package models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceSchedule is a recurring preventive maintenance plan.
// When a schedule comes due it spawns a regular repair request.
type MaintenanceSchedule struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Title                string         `gorm:"not null" json:"title"`
	Description          string         `json:"description"`
	EquipmentID          *uint          `gorm:"index" json:"equipment_id"`
	Equipment            *Equipment     `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	Frequency            string         `gorm:"not null" json:"frequency"` // daily, weekly, monthly, quarterly, yearly
	AssignedTeamID       *uint          `json:"assigned_team_id"`
	AssignedTechnicianID *uint          `json:"assigned_technician_id"`
	NextDue              time.Time      `gorm:"not null;index" json:"next_due"`
	LastDone             *time.Time     `json:"last_done"`
	IsActive             bool           `gorm:"not null" json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MaintenanceSchedule model
func (MaintenanceSchedule) TableName() string {
	return "recurring_maintenance"
}

// AdvanceNextDue returns the due date one frequency interval after the current one
func (m *MaintenanceSchedule) AdvanceNextDue() time.Time {
	switch m.Frequency {
	case "daily":
		return m.NextDue.AddDate(0, 0, 1)
	case "weekly":
		return m.NextDue.AddDate(0, 0, 7)
	case "monthly":
		return m.NextDue.AddDate(0, 1, 0)
	case "quarterly":
		return m.NextDue.AddDate(0, 3, 0)
	case "yearly":
		return m.NextDue.AddDate(1, 0, 0)
	}
	return m.NextDue
}
