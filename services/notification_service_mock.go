package services

import (
	"sync"

	"github.com/suriyap/repair-system-api/models"
)

// MockNotificationSink records lifecycle events for testing
type MockNotificationSink struct {
	mu          sync.Mutex
	Created     []*models.RepairRequest
	Changes     []StatusChange
	Assignments []Assignment
}

// StatusChange is one recorded StatusChanged call
type StatusChange struct {
	RepairID  uint
	NewStatus models.Status
}

// Assignment is one recorded TechnicianAssigned call
type Assignment struct {
	RepairID     uint
	TechnicianID uint
}

// NewMockNotificationSink creates a new mock notification sink
func NewMockNotificationSink() *MockNotificationSink {
	return &MockNotificationSink{}
}

// RepairCreated records the created ticket
func (m *MockNotificationSink) RepairCreated(repair *models.RepairRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, repair)
}

// StatusChanged records the status change
func (m *MockNotificationSink) StatusChanged(repair *models.RepairRequest, newStatus models.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changes = append(m.Changes, StatusChange{RepairID: repair.ID, NewStatus: newStatus})
}

// TechnicianAssigned records the assignment
func (m *MockNotificationSink) TechnicianAssigned(repair *models.RepairRequest, technician *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assignments = append(m.Assignments, Assignment{RepairID: repair.ID, TechnicianID: technician.ID})
}

// Clear forgets all recorded events
func (m *MockNotificationSink) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = nil
	m.Changes = nil
	m.Assignments = nil
}
