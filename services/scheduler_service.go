package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/suriyap/repair-system-api/models"
	"gorm.io/gorm"
)

// MaintenanceScheduler turns due recurring maintenance plans into repair
// requests. It runs once a day via cron and can also run single schedules
// on demand from the API.
type MaintenanceScheduler struct {
	db        *gorm.DB
	lifecycle *RepairLifecycle
	cron      *cron.Cron
}

var schedulerInstance *MaintenanceScheduler

// InitMaintenanceScheduler constructs the scheduler
func InitMaintenanceScheduler(db *gorm.DB, lifecycle *RepairLifecycle) *MaintenanceScheduler {
	schedulerInstance = &MaintenanceScheduler{
		db:        db,
		lifecycle: lifecycle,
		cron:      cron.New(),
	}
	return schedulerInstance
}

// GetMaintenanceScheduler returns the initialized scheduler instance
func GetMaintenanceScheduler() *MaintenanceScheduler {
	return schedulerInstance
}

// SetMaintenanceScheduler sets the scheduler instance (primarily for testing)
func SetMaintenanceScheduler(s *MaintenanceScheduler) {
	schedulerInstance = s
}

// Start begins the daily due-schedule sweep at 06:00
func (s *MaintenanceScheduler) Start() error {
	_, err := s.cron.AddFunc("0 6 * * *", func() {
		created, err := s.RunDue()
		if err != nil {
			log.Printf("maintenance sweep failed: %v", err)
			return
		}
		if created > 0 {
			log.Printf("maintenance sweep created %d repair request(s)", created)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register maintenance sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop. Called on shutdown.
func (s *MaintenanceScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunDue runs every active schedule whose next_due has arrived and returns
// how many repair requests were created. Schedules without an assigned
// technician are skipped in automatic runs because a ticket needs a
// requester; they can still be run manually from the API.
func (s *MaintenanceScheduler) RunDue() (int, error) {
	var due []models.MaintenanceSchedule
	if err := s.db.Where("is_active = ? AND next_due <= ?", true, time.Now()).Find(&due).Error; err != nil {
		return 0, fmt.Errorf("failed to load due schedules: %w", err)
	}

	created := 0
	for i := range due {
		schedule := &due[i]
		if schedule.AssignedTechnicianID == nil {
			log.Printf("maintenance schedule %d has no assigned technician, skipping automatic run", schedule.ID)
			continue
		}
		if err := s.RunSchedule(schedule, *schedule.AssignedTechnicianID); err != nil {
			log.Printf("failed to run maintenance schedule %d: %v", schedule.ID, err)
			continue
		}
		created++
	}

	return created, nil
}

// RunSchedule creates a preventive-maintenance repair request from the
// schedule on behalf of requesterID and advances the schedule's next due date
func (s *MaintenanceScheduler) RunSchedule(schedule *models.MaintenanceSchedule, requesterID uint) error {
	_, err := s.lifecycle.CreateRequest(CreateRequestInput{
		Title:        fmt.Sprintf("[PM] %s", schedule.Title),
		Description:  schedule.Description,
		Priority:     models.PriorityMedium,
		RequesterID:  requesterID,
		TechnicianID: schedule.AssignedTechnicianID,
		TeamID:       schedule.AssignedTeamID,
		EquipmentID:  schedule.EquipmentID,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(&models.MaintenanceSchedule{}).Where("id = ?", schedule.ID).
		Updates(map[string]interface{}{
			"last_done": now,
			"next_due":  schedule.AdvanceNextDue(),
		}).Error
}
