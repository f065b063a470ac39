package models

import (
	"time"

	"gorm.io/gorm"
)

// Equipment represents a maintainable asset that repair requests can reference
type Equipment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	EquipmentCode string         `gorm:"uniqueIndex;not null" json:"equipment_code"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	Building      string         `json:"building"`
	Floor         string         `json:"floor"`
	CategoryID    *uint          `gorm:"index" json:"category_id"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status        string         `gorm:"not null;default:'active'" json:"status"` // active, broken, maintenance, retired
	PurchaseDate  *time.Time     `json:"purchase_date"`
	WarrantyEnd   *time.Time     `json:"warranty_end"`
	QRCode        *string        `gorm:"type:text" json:"qr_code"` // base64 PNG data URL linking to the report form
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Equipment model
func (Equipment) TableName() string {
	return "equipment"
}
