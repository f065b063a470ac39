package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system (requester, technician or admin)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Password     string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	FullName     string         `gorm:"not null" json:"full_name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Avatar       *string        `json:"avatar"` // storage key of the profile image
	Role         string         `gorm:"not null;default:'user'" json:"role"` // "user", "technician" or "admin"
	DepartmentID *uint          `gorm:"index" json:"department_id"`
	Department   *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin returns true for admin accounts
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// IsTechnician returns true for technician or admin accounts
func (u *User) IsTechnician() bool {
	return u.Role == "technician" || u.Role == "admin"
}

// Department groups users for reporting purposes
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Department model
func (Department) TableName() string {
	return "departments"
}
