package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
	"gorm.io/gorm"
)

// setupRepairTest prepares the database, lifecycle singleton and mock S3,
// returning the db plus a requester, a technician and an admin
func setupRepairTest(t *testing.T) (*gorm.DB, models.User, models.User, models.User) {
	db := setupControllerTestDB(t)

	sink := services.NewMockNotificationSink()
	services.InitRepairLifecycle(db, sink)
	services.NewMockS3Service().SetAsMockForTesting()

	requester := models.User{Username: "requester", Password: "x", FullName: "Requester", Role: "user", IsActive: true}
	technician := models.User{Username: "technician", Password: "x", FullName: "Technician", Role: "technician", IsActive: true}
	admin := models.User{Username: "admin", Password: "x", FullName: "Admin", Role: "admin", IsActive: true}
	require.NoError(t, db.Create(&requester).Error)
	require.NoError(t, db.Create(&technician).Error)
	require.NoError(t, db.Create(&admin).Error)

	return db, requester, technician, admin
}

func createRepairFor(t *testing.T, requesterID uint) *models.RepairRequest {
	repair, err := services.GetRepairLifecycle().CreateRequest(services.CreateRequestInput{
		Title:       "Broken chair",
		Description: "Wheel came off",
		Location:    "3rd floor",
		RequesterID: requesterID,
	})
	require.NoError(t, err)
	return repair
}

func TestCreateRepair(t *testing.T) {
	_, requester, _, _ := setupRepairTest(t)

	router := setupTestRouter()
	router.POST("/repairs", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), CreateRepair)

	form := url.Values{}
	form.Set("title", "Projector flickering")
	form.Set("description", "Image cuts out after a few minutes")
	form.Set("location", "Room 204")
	form.Set("priority", "high")

	req, _ := http.NewRequest(http.MethodPost, "/repairs", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Regexp(t, `^REP\d{6}\d{4}$`, data["request_no"])
}

func TestCreateRepair_MissingTitle(t *testing.T) {
	_, requester, _, _ := setupRepairTest(t)

	router := setupTestRouter()
	router.POST("/repairs", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), CreateRepair)

	req, _ := http.NewRequest(http.MethodPost, "/repairs", strings.NewReader("description=no+title"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateRepair_RejectsInvalidAttachment(t *testing.T) {
	_, requester, _, _ := setupRepairTest(t)

	router := setupTestRouter()
	router.POST("/repairs", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), CreateRepair)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", "Broken door handle"))
	part, err := writer.CreateFormFile("files", "payload.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/repairs", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE_FORMAT")
}

func TestListRepairs_RoleScoping(t *testing.T) {
	db, requester, technician, admin := setupRepairTest(t)

	createRepairFor(t, requester.ID)
	other := createRepairFor(t, admin.ID)
	require.NoError(t, db.Model(&models.RepairRequest{}).
		Where("id = ?", other.ID).Update("technician_id", technician.ID).Error)

	tests := []struct {
		name     string
		user     models.User
		query    string
		expected int
	}{
		{"plain user sees only own", requester, "", 1},
		{"admin sees everything", admin, "", 2},
		{"technician sees everything", technician, "", 2},
		{"technician filters to assigned", technician, "?assigned=true", 1},
		{"status filter", admin, "?status=pending", 2},
		{"status filter no match", admin, "?status=completed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/repairs", mockAuthMiddleware(tt.user.ID, tt.user.Username, tt.user.Role), ListRepairs)

			req, _ := http.NewRequest(http.MethodGet, "/repairs"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			repairs := response["data"].([]interface{})
			assert.Len(t, repairs, tt.expected)
		})
	}
}

func TestGetRepair(t *testing.T) {
	_, requester, _, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	router := setupTestRouter()
	router.GET("/repairs/:id", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), GetRepair)

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/repairs/%d", repair.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	repairData := data["repair"].(map[string]interface{})
	assert.Equal(t, "Broken chair", repairData["title"])
	assert.NotNil(t, data["history"])
	assert.NotNil(t, data["costs"])
}

func TestGetRepair_NotFound(t *testing.T) {
	_, requester, _, _ := setupRepairTest(t)

	router := setupTestRouter()
	router.GET("/repairs/:id", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), GetRepair)

	req, _ := http.NewRequest(http.MethodGet, "/repairs/99999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "REPAIR_NOT_FOUND")
}

func TestUpdateRepair_OwnerOrAdmin(t *testing.T) {
	_, requester, technician, admin := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	body, _ := json.Marshal(map[string]interface{}{"title": "Renamed"})

	tests := []struct {
		name           string
		user           models.User
		expectedStatus int
	}{
		{"owner can edit", requester, http.StatusOK},
		{"admin can edit", admin, http.StatusOK},
		{"other user cannot edit", technician, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.PUT("/repairs/:id", mockAuthMiddleware(tt.user.ID, tt.user.Username, tt.user.Role), UpdateRepair)

			req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d", repair.ID), bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestDeleteRepair(t *testing.T) {
	db, requester, technician, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	// A non-owner cannot delete
	router := setupTestRouter()
	router.DELETE("/repairs/:id", mockAuthMiddleware(technician.ID, technician.Username, technician.Role), DeleteRepair)
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/repairs/%d", repair.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can
	router = setupTestRouter()
	router.DELETE("/repairs/:id", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), DeleteRepair)
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/repairs/%d", repair.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.RepairRequest{}).Where("id = ?", repair.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUpdateRepairStatus(t *testing.T) {
	db, requester, technician, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	router := setupTestRouter()
	router.PUT("/repairs/:id/status", mockAuthMiddleware(technician.ID, technician.Username, technician.Role), UpdateRepairStatus)

	// A legal transition succeeds and leaves a history row
	body, _ := json.Marshal(map[string]interface{}{"status": "accepted", "note": "On it"})
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d/status", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var historyCount int64
	db.Model(&models.RepairHistory{}).Where("repair_id = ?", repair.ID).Count(&historyCount)
	assert.Equal(t, int64(1), historyCount)

	// Skipping ahead from accepted to pending is rejected
	body, _ = json.Marshal(map[string]interface{}{"status": "pending"})
	req, _ = http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d/status", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	// Unknown ticket
	body, _ = json.Marshal(map[string]interface{}{"status": "accepted"})
	req, _ = http.NewRequest(http.MethodPut, "/repairs/99999/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "REPAIR_NOT_FOUND")

	// Unknown status value
	body, _ = json.Marshal(map[string]interface{}{"status": "exploded"})
	req, _ = http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d/status", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")
}

func TestAssignRepair(t *testing.T) {
	db, requester, technician, admin := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	team := models.Team{Name: "Electrical"}
	require.NoError(t, db.Create(&team).Error)

	router := setupTestRouter()
	router.PUT("/repairs/:id/assign", mockAuthMiddleware(admin.ID, admin.Username, admin.Role), AssignRepair)

	body, _ := json.Marshal(map[string]interface{}{
		"technician_id": technician.ID,
		"team_id":       team.ID,
	})
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d/assign", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.RepairRequest
	require.NoError(t, db.First(&stored, repair.ID).Error)
	assert.Equal(t, models.StatusAccepted, stored.Status)
	require.NotNil(t, stored.TechnicianID)
	assert.Equal(t, technician.ID, *stored.TechnicianID)
	require.NotNil(t, stored.TeamID)
	assert.Equal(t, team.ID, *stored.TeamID)

	// Unknown technician
	body, _ = json.Marshal(map[string]interface{}{"technician_id": 99999})
	req, _ = http.NewRequest(http.MethodPut, fmt.Sprintf("/repairs/%d/assign", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddRepairCost(t *testing.T) {
	db, requester, technician, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	part := models.SparePart{PartCode: "BRG-7", Name: "Bearing", Quantity: 10, Unit: "piece", UnitCost: 10}
	require.NoError(t, db.Create(&part).Error)

	router := setupTestRouter()
	router.POST("/repairs/:id/costs", mockAuthMiddleware(technician.ID, technician.Username, technician.Role), AddRepairCost)

	body, _ := json.Marshal(map[string]interface{}{
		"part_id":    part.ID,
		"part_name":  "Bearing",
		"quantity":   2,
		"unit_cost":  10,
		"labor_cost": 5,
		"other_cost": 5,
	})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/repairs/%d/costs", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, 30.0, data["total_cost"])

	var storedPart models.SparePart
	require.NoError(t, db.First(&storedPart, part.ID).Error)
	assert.Equal(t, 8, storedPart.Quantity)
}

func TestRateRepair(t *testing.T) {
	db, requester, technician, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	rate := func(user models.User, rating int) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/repairs/:id/rating", mockAuthMiddleware(user.ID, user.Username, user.Role), RateRepair)

		body, _ := json.Marshal(map[string]interface{}{"rating": rating, "comment": "thanks"})
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/repairs/%d/rating", repair.ID), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Not completed yet
	w := rate(requester, 5)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_COMPLETED")

	require.NoError(t, db.Model(&models.RepairRequest{}).
		Where("id = ?", repair.ID).Update("status", models.StatusCompleted).Error)

	// Only the requester may rate
	w = rate(technician, 5)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// First rating succeeds
	w = rate(requester, 5)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.RepairRequest
	require.NoError(t, db.First(&stored, repair.ID).Error)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)

	// Second attempt is rejected
	w = rate(requester, 1)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_RATED")
}

func TestAddRepairComment(t *testing.T) {
	db, requester, _, _ := setupRepairTest(t)
	repair := createRepairFor(t, requester.ID)

	router := setupTestRouter()
	router.POST("/repairs/:id/comments", mockAuthMiddleware(requester.ID, requester.Username, requester.Role), AddRepairComment)

	body, _ := json.Marshal(map[string]interface{}{"content": "Any update on this?"})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/repairs/%d/comments", repair.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Comment{}).Where("repair_id = ?", repair.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
