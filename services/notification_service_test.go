package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
)

func newTestSink(t *testing.T) (*DBNotificationSink, *RepairLifecycle) {
	db := setupLifecycleTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	// Unconfigured SMTP: email sends are skipped, rows are still written
	email := NewEmailService(&config.Config{})
	sink := &DBNotificationSink{db: db, email: email}
	lifecycle := &RepairLifecycle{db: db, notifier: sink}
	return sink, lifecycle
}

func TestDBNotificationSink_RepairCreatedNotifiesAdmins(t *testing.T) {
	sink, lifecycle := newTestSink(t)
	db := sink.db

	admin1 := createTestUser(t, db, "admin1", "admin")
	admin2 := createTestUser(t, db, "admin2", "admin")
	createTestUser(t, db, "bystander", "user")

	repair, err := lifecycle.CreateRequest(CreateRequestInput{Title: "Blocked drain", RequesterID: admin1.ID})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Order("user_id ASC").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	assert.Equal(t, admin1.ID, notifications[0].UserID)
	assert.Equal(t, admin2.ID, notifications[1].UserID)
	assert.Contains(t, notifications[0].Message, repair.RequestNo)
}

func TestDBNotificationSink_StatusChangedNotifiesRequester(t *testing.T) {
	sink, lifecycle := newTestSink(t)
	db := sink.db

	requester := createTestUser(t, db, "requester", "user")
	tech := createTestUser(t, db, "tech", "technician")

	repair, err := lifecycle.CreateRequest(CreateRequestInput{Title: "Dead socket", RequesterID: requester.ID})
	require.NoError(t, err)

	_, err = lifecycle.UpdateStatus(repair.ID, models.StatusAccepted, tech.ID, nil)
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", requester.ID).First(&notification).Error)
	// The message carries the human-readable label, not the raw value
	assert.Contains(t, notification.Message, "Accepted")
}

func TestDBNotificationSink_TechnicianAssigned(t *testing.T) {
	sink, lifecycle := newTestSink(t)
	db := sink.db

	admin := createTestUser(t, db, "admin", "admin")
	tech := createTestUser(t, db, "tech", "technician")

	repair, err := lifecycle.CreateRequest(CreateRequestInput{Title: "Jammed shredder", RequesterID: admin.ID})
	require.NoError(t, err)

	_, err = lifecycle.AssignTechnician(repair.ID, tech.ID, admin.ID)
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", tech.ID).First(&notification).Error)
	assert.Equal(t, "New job assigned to you", notification.Title)
}
