package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/models"
)

func TestListSpareParts_LowStockFilter(t *testing.T) {
	db := setupControllerTestDB(t)

	ok := models.SparePart{PartCode: "OK-1", Name: "Plenty", Quantity: 20, MinQuantity: 5, Unit: "piece"}
	low := models.SparePart{PartCode: "LOW-1", Name: "Scarce", Quantity: 2, MinQuantity: 5, Unit: "piece"}
	require.NoError(t, db.Create(&ok).Error)
	require.NoError(t, db.Create(&low).Error)

	router := setupTestRouter()
	router.GET("/spare-parts", mockAuthMiddleware(1, "tech", "technician"), ListSpareParts)

	req, _ := http.NewRequest(http.MethodGet, "/spare-parts?low_stock=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	parts := response["data"].([]interface{})
	require.Len(t, parts, 1)
	part := parts[0].(map[string]interface{})
	assert.Equal(t, "LOW-1", part["part_code"])
}

func TestCreateSparePart_DuplicateCode(t *testing.T) {
	db := setupControllerTestDB(t)
	require.NoError(t, db.Create(&models.SparePart{PartCode: "DUP-1", Name: "Original", Unit: "piece"}).Error)

	router := setupTestRouter()
	router.POST("/spare-parts", mockAuthMiddleware(1, "admin", "admin"), CreateSparePart)

	body, _ := json.Marshal(map[string]interface{}{
		"part_code": "DUP-1",
		"name":      "Copy",
	})
	req, _ := http.NewRequest(http.MethodPost, "/spare-parts", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PART_CODE_TAKEN")
}

func TestAdjustSparePartStock(t *testing.T) {
	db := setupControllerTestDB(t)
	part := models.SparePart{PartCode: "ADJ-1", Name: "Fuse", Quantity: 10, MinQuantity: 5, Unit: "piece"}
	require.NoError(t, db.Create(&part).Error)

	router := setupTestRouter()
	router.POST("/spare-parts/:id/adjust", mockAuthMiddleware(1, "tech", "technician"), AdjustSparePartStock)

	adjust := func(delta int) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]interface{}{"delta": delta})
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/spare-parts/%d/adjust", part.ID), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := adjust(5)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.SparePart
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 15, stored.Quantity)

	// Negative deltas remove stock; no floor is applied
	w = adjust(-20)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, -5, stored.Quantity)
}
