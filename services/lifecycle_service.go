package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/suriyap/repair-system-api/models"
	"gorm.io/gorm"
)

// RepairLifecycle owns the repair request state machine, its history ledger,
// technician assignment, SLA timers and cost accumulation. Status changes and
// their history rows are committed in a single transaction; notifications are
// sent only after a successful commit and never affect the business outcome.
type RepairLifecycle struct {
	db       *gorm.DB
	notifier NotificationSink
}

var lifecycleInstance *RepairLifecycle

// InitRepairLifecycle constructs the lifecycle service with its collaborators
func InitRepairLifecycle(db *gorm.DB, notifier NotificationSink) *RepairLifecycle {
	lifecycleInstance = &RepairLifecycle{db: db, notifier: notifier}
	return lifecycleInstance
}

// GetRepairLifecycle returns the initialized lifecycle service instance
func GetRepairLifecycle() *RepairLifecycle {
	return lifecycleInstance
}

// SetRepairLifecycle sets the lifecycle service instance (primarily for testing)
func SetRepairLifecycle(l *RepairLifecycle) {
	lifecycleInstance = l
}

// CreateRequestInput is the data needed to open a new ticket
type CreateRequestInput struct {
	Title        string
	Description  string
	Location     string
	CategoryID   *uint
	Priority     models.Priority
	RequesterID  uint
	TechnicianID *uint
	TeamID       *uint
	EquipmentID  *uint
}

// generateRequestNo builds the next human-readable request number,
// format REP<year><month><sequence>, sequence zero-padded to 4 digits.
// The count-then-insert pattern is not safe against concurrent creators;
// two simultaneous creations in the same month can draw the same sequence.
func generateRequestNo(tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("REP%d%02d", now.Year(), int(now.Month()))

	var count int64
	if err := tx.Model(&models.RepairRequest{}).Unscoped().
		Where("request_no LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// CreateRequest opens a new ticket in pending status and notifies all admins
func (l *RepairLifecycle) CreateRequest(input CreateRequestInput) (*models.RepairRequest, error) {
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, fmt.Errorf("invalid priority %q", input.Priority)
	}

	repair := &models.RepairRequest{
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		CategoryID:   input.CategoryID,
		Priority:     input.Priority,
		Status:       models.StatusPending,
		RequesterID:  input.RequesterID,
		TechnicianID: input.TechnicianID,
		TeamID:       input.TeamID,
		EquipmentID:  input.EquipmentID,
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		requestNo, err := generateRequestNo(tx, time.Now())
		if err != nil {
			return err
		}
		repair.RequestNo = requestNo
		return tx.Create(repair).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repair request: %w", err)
	}

	l.notifier.RepairCreated(repair)
	return repair, nil
}

// UpdateStatus moves a ticket through the lifecycle. The status write, the
// accepted_at/completed_at timestamps and the history row are applied in one
// transaction; a failure rolls back all of them. SLA flags are captured after
// the commit, then the requester is notified of the change.
func (l *RepairLifecycle) UpdateStatus(id uint, newStatus models.Status, actorID uint, note *string) (*models.RepairRequest, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	var repair models.RepairRequest
	var firstAccept, firstComplete bool

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&repair, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		oldStatus := repair.Status
		if !oldStatus.CanTransitionTo(newStatus) {
			return &InvalidTransitionError{From: oldStatus, To: newStatus}
		}

		now := time.Now()
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.StatusAccepted && repair.AcceptedAt == nil {
			firstAccept = true
			updates["accepted_at"] = now
			repair.AcceptedAt = &now
		}
		if newStatus == models.StatusCompleted && repair.CompletedAt == nil {
			firstComplete = true
			updates["completed_at"] = now
			repair.CompletedAt = &now
		}

		if err := tx.Model(&models.RepairRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		history := models.RepairHistory{
			RepairID:  id,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      note,
			UpdatedBy: actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		repair.Status = newStatus
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		var transition *InvalidTransitionError
		if errors.As(err, &transition) {
			return nil, err
		}
		return nil, fmt.Errorf("status update failed: %w", err)
	}

	// SLA flags are captured once, at the transition that defines them.
	// A missing SLA setting for the priority is not an error.
	if firstAccept {
		l.captureSLA(&repair, "sla_response_met", func(s *models.SLASetting) float64 {
			return s.ResponseTimeHours
		})
	}
	if firstComplete {
		l.captureSLA(&repair, "sla_resolution_met", func(s *models.SLASetting) float64 {
			return s.ResolutionTimeHours
		})
	}

	l.notifier.StatusChanged(&repair, newStatus)
	return &repair, nil
}

// captureSLA evaluates one SLA target against the elapsed time since
// creation and persists the result. The comparison is non-strict: landing
// exactly on the target still meets it.
func (l *RepairLifecycle) captureSLA(repair *models.RepairRequest, column string, target func(*models.SLASetting) float64) {
	var setting models.SLASetting
	if err := l.db.Where("priority = ?", repair.Priority).First(&setting).Error; err != nil {
		// No setting for this priority: leave the flag unset
		return
	}

	hoursElapsed := time.Since(repair.CreatedAt).Hours()
	met := hoursElapsed <= target(&setting)
	if err := l.db.Model(&models.RepairRequest{}).Where("id = ?", repair.ID).
		Update(column, met).Error; err != nil {
		return
	}

	switch column {
	case "sla_response_met":
		repair.SLAResponseMet = &met
	case "sla_resolution_met":
		repair.SLAResolutionMet = &met
	}
}

// AssignTechnician sets the technician and forces the ticket into accepted
// status in one transaction, then notifies the technician. The history row
// records old_status as "pending" regardless of the actual prior status;
// reassignment of an already-accepted ticket keeps that wording.
// Assignment alone does not set accepted_at or capture SLA flags; those
// happen only through UpdateStatus.
func (l *RepairLifecycle) AssignTechnician(id, technicianID, actorID uint) (*models.RepairRequest, error) {
	var repair models.RepairRequest
	var technician models.User

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&repair, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if repair.Status.IsTerminal() {
			return &InvalidTransitionError{From: repair.Status, To: models.StatusAccepted}
		}

		if err := tx.First(&technician, technicianID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.RepairRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
			"technician_id": technicianID,
			"status":        models.StatusAccepted,
		}).Error; err != nil {
			return err
		}

		note := "Technician assigned"
		history := models.RepairHistory{
			RepairID:  id,
			OldStatus: models.StatusPending,
			NewStatus: models.StatusAccepted,
			Note:      &note,
			UpdatedBy: actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		repair.TechnicianID = &technicianID
		repair.Status = models.StatusAccepted
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		var transition *InvalidTransitionError
		if errors.As(err, &transition) {
			return nil, err
		}
		return nil, fmt.Errorf("assignment failed: %w", err)
	}

	l.notifier.TechnicianAssigned(&repair, &technician)
	return &repair, nil
}

// AddCostInput is one cost line to record against a ticket
type AddCostInput struct {
	PartID    *uint
	PartName  string
	Quantity  int
	UnitCost  float64
	LaborCost float64
	OtherCost float64
	Note      *string
}

// AddCost inserts the cost line, recomputes the ticket's total cost as the
// sum over all lines of quantity*unit_cost + labor_cost + other_cost, and
// decrements the referenced spare part's stock by the quantity used. Stock
// is not floor-checked and may go negative. All three effects commit
// together.
func (l *RepairLifecycle) AddCost(repairID uint, input AddCostInput) (float64, error) {
	var total float64

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var repair models.RepairRequest
		if err := tx.First(&repair, repairID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		cost := models.RepairCost{
			RepairID:  repairID,
			PartID:    input.PartID,
			PartName:  input.PartName,
			Quantity:  input.Quantity,
			UnitCost:  input.UnitCost,
			LaborCost: input.LaborCost,
			OtherCost: input.OtherCost,
			Note:      input.Note,
		}
		if err := tx.Create(&cost).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.RepairCost{}).Where("repair_id = ?", repairID).
			Select("COALESCE(SUM(quantity * unit_cost + labor_cost + other_cost), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RepairRequest{}).Where("id = ?", repairID).
			Update("total_cost", total).Error; err != nil {
			return err
		}

		if input.PartID != nil {
			if err := tx.Model(&models.SparePart{}).Where("id = ?", *input.PartID).
				Update("quantity", gorm.Expr("quantity - ?", input.Quantity)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to add cost: %w", err)
	}

	return total, nil
}

// AddRating records the requester's rating and comment. The write is an
// unconditional overwrite; requester-only, completed-only and rate-once rules
// are enforced by the caller.
func (l *RepairLifecycle) AddRating(id uint, rating int, comment *string) error {
	result := l.db.Model(&models.RepairRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating":         rating,
		"rating_comment": comment,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to add rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the ticket with its display relations preloaded
func (l *RepairLifecycle) GetByID(id uint) (*models.RepairRequest, error) {
	var repair models.RepairRequest
	err := l.db.
		Preload("Category").
		Preload("Requester").
		Preload("Requester.Department").
		Preload("Technician").
		First(&repair, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &repair, nil
}

// GetHistory returns the ticket's transition ledger in ascending time order
func (l *RepairLifecycle) GetHistory(repairID uint) ([]models.RepairHistory, error) {
	var history []models.RepairHistory
	err := l.db.Preload("Updater").
		Where("repair_id = ?", repairID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	return history, err
}

// GetFiles returns the ticket's attachments
func (l *RepairLifecycle) GetFiles(repairID uint) ([]models.RepairFile, error) {
	var files []models.RepairFile
	err := l.db.Where("repair_id = ?", repairID).Order("id ASC").Find(&files).Error
	return files, err
}

// AddFile records an uploaded attachment against the ticket
func (l *RepairLifecycle) AddFile(repairID uint, file models.RepairFile) (*models.RepairFile, error) {
	file.RepairID = repairID
	if err := l.db.Create(&file).Error; err != nil {
		return nil, fmt.Errorf("failed to record file: %w", err)
	}
	return &file, nil
}
