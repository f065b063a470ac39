package models

import (
	"time"

	"gorm.io/gorm"
)

// SparePart represents a stocked part that repair cost lines can draw from
type SparePart struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PartCode    string         `gorm:"uniqueIndex;not null" json:"part_code"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"` // on-hand stock, may go negative
	MinQuantity int            `gorm:"not null" json:"min_quantity"`
	Unit        string         `gorm:"not null;default:'piece'" json:"unit"`
	UnitCost    float64        `gorm:"not null;default:0" json:"unit_cost"`
	Location    string         `json:"location"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the SparePart model
func (SparePart) TableName() string {
	return "spare_parts"
}

// IsLowStock reports whether on-hand quantity has reached the reorder point
func (p *SparePart) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}
