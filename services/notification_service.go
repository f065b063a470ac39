package services

import (
	"fmt"
	"log"

	"github.com/suriyap/repair-system-api/models"
	"gorm.io/gorm"
)

// NotificationSink receives lifecycle events after they have been committed.
// Implementations must never fail the business operation: delivery errors are
// logged and swallowed.
type NotificationSink interface {
	// RepairCreated announces a new ticket to all admin users
	RepairCreated(repair *models.RepairRequest)

	// StatusChanged informs the requester that the ticket moved to newStatus
	StatusChanged(repair *models.RepairRequest, newStatus models.Status)

	// TechnicianAssigned informs the technician of a new assignment
	TechnicianAssigned(repair *models.RepairRequest, technician *models.User)
}

// DBNotificationSink writes in-app notification rows and forwards to email
type DBNotificationSink struct {
	db    *gorm.DB
	email *EmailService
}

var notificationSinkInstance NotificationSink

// InitNotificationSink initializes the default notification sink
func InitNotificationSink(db *gorm.DB, email *EmailService) NotificationSink {
	notificationSinkInstance = &DBNotificationSink{db: db, email: email}
	return notificationSinkInstance
}

// GetNotificationSink returns the initialized notification sink instance
func GetNotificationSink() NotificationSink {
	return notificationSinkInstance
}

// SetNotificationSink sets the notification sink instance (primarily for testing)
func SetNotificationSink(sink NotificationSink) {
	notificationSinkInstance = sink
}

// RepairCreated notifies every admin about the new ticket
func (s *DBNotificationSink) RepairCreated(repair *models.RepairRequest) {
	var admins []models.User
	if err := s.db.Where("role = ?", "admin").Find(&admins).Error; err != nil {
		log.Printf("notification: failed to load admins: %v", err)
		return
	}

	for _, admin := range admins {
		s.createRow(admin.ID,
			"New repair request",
			fmt.Sprintf("%s: %s", repair.RequestNo, repair.Title),
			fmt.Sprintf("/repairs/%d", repair.ID))
	}
}

// StatusChanged notifies the requester with a human-readable status label
func (s *DBNotificationSink) StatusChanged(repair *models.RepairRequest, newStatus models.Status) {
	s.createRow(repair.RequesterID,
		fmt.Sprintf("Status update: %s", repair.RequestNo),
		fmt.Sprintf("Your repair request is now %s", newStatus.Label()),
		fmt.Sprintf("/repairs/%d", repair.ID))

	var requester models.User
	if err := s.db.First(&requester, repair.RequesterID).Error; err != nil {
		log.Printf("notification: failed to load requester %d: %v", repair.RequesterID, err)
		return
	}
	if requester.Email != "" {
		s.email.SendStatusChange(requester.Email, repair, newStatus)
	}
}

// TechnicianAssigned notifies the technician of the new job
func (s *DBNotificationSink) TechnicianAssigned(repair *models.RepairRequest, technician *models.User) {
	s.createRow(technician.ID,
		"New job assigned to you",
		fmt.Sprintf("%s: %s", repair.RequestNo, repair.Title),
		fmt.Sprintf("/repairs/%d", repair.ID))

	if technician.Email != "" {
		s.email.SendAssignment(technician.Email, repair)
	}
}

func (s *DBNotificationSink) createRow(userID uint, title, message, link string) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("notification: failed to create row for user %d: %v", userID, err)
	}
}
