package models

import "time"

// Comment is a discussion entry on a repair request
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RepairID  uint      `gorm:"not null;index" json:"repair_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
