package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/models"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T) (*MaintenanceScheduler, *RepairLifecycle, *gorm.DB) {
	lifecycle, db, _ := newTestLifecycle(t)
	require.NoError(t, db.AutoMigrate(&models.MaintenanceSchedule{}))
	scheduler := &MaintenanceScheduler{db: db, lifecycle: lifecycle}
	return scheduler, lifecycle, db
}

func TestRunDue_CreatesPMTicketsAndAdvances(t *testing.T) {
	scheduler, _, db := newTestScheduler(t)
	tech := createTestUser(t, db, "tech", "technician")

	due := models.MaintenanceSchedule{
		Title:                "Filter change",
		Description:          "Swap the AHU filters",
		Frequency:            "monthly",
		AssignedTechnicianID: &tech.ID,
		NextDue:              time.Now().Add(-time.Hour),
		IsActive:             true,
	}
	require.NoError(t, db.Create(&due).Error)

	notYet := models.MaintenanceSchedule{
		Title:                "Belt inspection",
		Frequency:            "weekly",
		AssignedTechnicianID: &tech.ID,
		NextDue:              time.Now().Add(24 * time.Hour),
		IsActive:             true,
	}
	require.NoError(t, db.Create(&notYet).Error)

	created, err := scheduler.RunDue()
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var repair models.RepairRequest
	require.NoError(t, db.Where("title LIKE ?", "[PM]%").First(&repair).Error)
	assert.True(t, strings.HasPrefix(repair.Title, "[PM] Filter change"))
	assert.Equal(t, tech.ID, repair.RequesterID)
	require.NotNil(t, repair.TechnicianID)
	assert.Equal(t, tech.ID, *repair.TechnicianID)

	var stored models.MaintenanceSchedule
	require.NoError(t, db.First(&stored, due.ID).Error)
	require.NotNil(t, stored.LastDone)
	assert.True(t, stored.NextDue.After(time.Now()))

	// The not-yet-due schedule was left alone
	stored = models.MaintenanceSchedule{}
	require.NoError(t, db.First(&stored, notYet.ID).Error)
	assert.Nil(t, stored.LastDone)
}

func TestRunDue_SkipsUnassignedAndInactive(t *testing.T) {
	scheduler, _, db := newTestScheduler(t)
	tech := createTestUser(t, db, "tech", "technician")

	unassigned := models.MaintenanceSchedule{
		Title:     "Orphan task",
		Frequency: "monthly",
		NextDue:   time.Now().Add(-time.Hour),
		IsActive:  true,
	}
	require.NoError(t, db.Create(&unassigned).Error)

	inactive := models.MaintenanceSchedule{
		Title:                "Paused task",
		Frequency:            "monthly",
		AssignedTechnicianID: &tech.ID,
		NextDue:              time.Now().Add(-time.Hour),
		IsActive:             false,
	}
	require.NoError(t, db.Create(&inactive).Error)

	created, err := scheduler.RunDue()
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	db.Model(&models.RepairRequest{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRunSchedule_ManualRunUsesCaller(t *testing.T) {
	scheduler, _, db := newTestScheduler(t)
	admin := createTestUser(t, db, "admin", "admin")

	// No assigned technician: manual runs supply the requester themselves
	schedule := models.MaintenanceSchedule{
		Title:     "Generator test",
		Frequency: "quarterly",
		NextDue:   time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	require.NoError(t, db.Create(&schedule).Error)

	require.NoError(t, scheduler.RunSchedule(&schedule, admin.ID))

	var repair models.RepairRequest
	require.NoError(t, db.Where("title = ?", "[PM] Generator test").First(&repair).Error)
	assert.Equal(t, admin.ID, repair.RequesterID)
	assert.Nil(t, repair.TechnicianID)

	var stored models.MaintenanceSchedule
	require.NoError(t, db.First(&stored, schedule.ID).Error)
	assert.Equal(t, schedule.NextDue.AddDate(0, 3, 0).Unix(), stored.NextDue.Unix())
}
