package models

import (
	"time"

	"gorm.io/gorm"
)

// RepairRequest represents a repair ticket in the system
type RepairRequest struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	RequestNo   string  `gorm:"uniqueIndex;not null" json:"request_no"` // REP<year><month><sequence>
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Location    string  `json:"location"`
	CategoryID  *uint   `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Priority    Priority  `gorm:"not null;default:'medium'" json:"priority"` // low, medium, high, urgent
	Status      Status    `gorm:"not null;default:'pending'" json:"status"`  // pending, accepted, in_progress, completed, cancelled

	RequesterID  uint       `gorm:"not null;index" json:"requester_id"` // immutable owner
	Requester    User       `gorm:"foreignKey:RequesterID" json:"requester"`
	TechnicianID *uint      `gorm:"index" json:"technician_id"` // nullable, set on assignment
	Technician   *User      `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	TeamID       *uint      `gorm:"index" json:"team_id"`
	EquipmentID  *uint      `gorm:"index" json:"equipment_id"`

	AcceptedAt    *time.Time `json:"accepted_at"`  // set once, on first entry to accepted
	CompletedAt   *time.Time `json:"completed_at"` // set once, on first entry to completed
	Rating        *int       `json:"rating"`       // 1-5, set by the requester after completion
	RatingComment *string    `json:"rating_comment"`
	TotalCost     float64    `gorm:"not null;default:0" json:"total_cost"` // derived from cost lines
	AfterImage    *string    `json:"after_image"`                          // storage key of the first after-photo

	SLAResponseMet   *bool `json:"sla_response_met"`   // nullable until SLA is evaluated
	SLAResolutionMet *bool `json:"sla_resolution_met"` // nullable until SLA is evaluated

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the RepairRequest model
func (RepairRequest) TableName() string {
	return "repair_requests"
}

// RepairHistory is one row of the append-only status transition ledger.
// Rows are never updated or deleted.
type RepairHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RepairID  uint      `gorm:"not null;index" json:"repair_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `gorm:"not null" json:"new_status"`
	Note      *string   `json:"note"`
	UpdatedBy uint      `gorm:"not null" json:"updated_by"`
	Updater   User      `gorm:"foreignKey:UpdatedBy" json:"updater"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RepairHistory model
func (RepairHistory) TableName() string {
	return "repair_history"
}

// RepairCost is one charged line item (part, labor or other) on a ticket
type RepairCost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RepairID  uint      `gorm:"not null;index" json:"repair_id"`
	PartID    *uint     `json:"part_id"` // nullable reference to a spare part
	PartName  string    `gorm:"not null" json:"part_name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitCost  float64   `gorm:"not null" json:"unit_cost"`
	LaborCost float64   `gorm:"not null;default:0" json:"labor_cost"`
	OtherCost float64   `gorm:"not null;default:0" json:"other_cost"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RepairCost model
func (RepairCost) TableName() string {
	return "repair_costs"
}

// LineTotal returns the charge contributed by this line
func (c RepairCost) LineTotal() float64 {
	return float64(c.Quantity)*c.UnitCost + c.LaborCost + c.OtherCost
}

// RepairFile is an attachment (photo or document) on a ticket
type RepairFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RepairID  uint      `gorm:"not null;index" json:"repair_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	FileKey   string    `gorm:"not null" json:"file_key"` // storage key in S3
	FileType  string    `json:"file_type"`                // mime type, or "after" for after-photos
	FileSize  int64     `json:"file_size"`
	FileURL   string    `gorm:"-" json:"file_url,omitempty"` // computed, presigned URL
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RepairFile model
func (RepairFile) TableName() string {
	return "repair_files"
}
