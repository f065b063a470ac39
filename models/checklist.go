package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChecklistTemplate is a reusable list of verification steps for a category of work
type ChecklistTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	CategoryID  *uint          `gorm:"index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Steps       datatypes.JSON `json:"steps"` // ordered array of step descriptions
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ChecklistTemplate model
func (ChecklistTemplate) TableName() string {
	return "checklist_templates"
}
