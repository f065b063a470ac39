package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/models"
)

func TestCreateMaintenance(t *testing.T) {
	db := setupControllerTestDB(t)

	router := setupTestRouter()
	router.POST("/api/v1/maintenance", mockAuthMiddleware(1, "admin", "admin"), CreateMaintenance)

	body, _ := json.Marshal(map[string]interface{}{
		"title":     "Monthly filter change",
		"frequency": "monthly",
	})
	req, _ := http.NewRequest("POST", "/api/v1/maintenance", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var stored models.MaintenanceSchedule
	require.NoError(t, db.First(&stored, "title = ?", "Monthly filter change").Error)
	assert.True(t, stored.IsActive)
	assert.WithinDuration(t, time.Now(), stored.NextDue, time.Minute)
}

func TestCreateMaintenance_InactiveIsStoredInactive(t *testing.T) {
	db := setupControllerTestDB(t)

	router := setupTestRouter()
	router.POST("/api/v1/maintenance", mockAuthMiddleware(1, "admin", "admin"), CreateMaintenance)

	body, _ := json.Marshal(map[string]interface{}{
		"title":     "Paused inspection",
		"frequency": "weekly",
		"is_active": false,
	})
	req, _ := http.NewRequest("POST", "/api/v1/maintenance", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var stored models.MaintenanceSchedule
	require.NoError(t, db.First(&stored, "title = ?", "Paused inspection").Error)
	assert.False(t, stored.IsActive, "schedule created with is_active=false must stay inactive")

	// An inactive schedule must not show up in the active or due listings
	listRouter := setupTestRouter()
	listRouter.GET("/api/v1/maintenance", mockAuthMiddleware(1, "tech", "technician"), ListMaintenance)
	listReq, _ := http.NewRequest("GET", "/api/v1/maintenance?active=true", nil)
	listW := httptest.NewRecorder()
	listRouter.ServeHTTP(listW, listReq)

	assert.Equal(t, http.StatusOK, listW.Code)
	var resp struct {
		Success bool                         `json:"success"`
		Data    []models.MaintenanceSchedule `json:"data"`
	}
	require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}
