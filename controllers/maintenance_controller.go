package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/middleware"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
)

// MaintenanceRequest represents the request body for creating or editing a
// recurring maintenance schedule
type MaintenanceRequest struct {
	Title                string     `json:"title" binding:"required"`
	Description          string     `json:"description"`
	EquipmentID          *uint      `json:"equipment_id"`
	Frequency            string     `json:"frequency" binding:"required,oneof=daily weekly monthly quarterly yearly"`
	AssignedTeamID       *uint      `json:"assigned_team_id"`
	AssignedTechnicianID *uint      `json:"assigned_technician_id"`
	NextDue              *time.Time `json:"next_due"`
	IsActive             *bool      `json:"is_active"`
}

// ListMaintenance handles GET /api/v1/maintenance
func ListMaintenance(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Equipment").Order("next_due ASC")

	if c.Query("active") != "" {
		query = query.Where("is_active = ?", true)
	}
	if c.Query("due") != "" {
		query = query.Where("is_active = ? AND next_due <= ?", true, time.Now())
	}

	var schedules []models.MaintenanceSchedule
	if err := query.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load maintenance schedules",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schedules,
	})
}

// GetMaintenance handles GET /api/v1/maintenance/:id
func GetMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var schedule models.MaintenanceSchedule
	if err := db.Preload("Equipment").First(&schedule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SCHEDULE_NOT_FOUND",
				"message": "Maintenance schedule not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schedule,
	})
}

// CreateMaintenance handles POST /api/v1/maintenance (admin only)
func CreateMaintenance(c *gin.Context) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	schedule := models.MaintenanceSchedule{
		Title:                req.Title,
		Description:          req.Description,
		EquipmentID:          req.EquipmentID,
		Frequency:            req.Frequency,
		AssignedTeamID:       req.AssignedTeamID,
		AssignedTechnicianID: req.AssignedTechnicianID,
		IsActive:             true,
	}
	if req.NextDue != nil {
		schedule.NextDue = *req.NextDue
	} else {
		schedule.NextDue = time.Now()
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	db := config.GetDB()
	if err := db.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create maintenance schedule",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    schedule,
	})
}

// UpdateMaintenance handles PUT /api/v1/maintenance/:id (admin only)
func UpdateMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var schedule models.MaintenanceSchedule
	if err := db.First(&schedule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SCHEDULE_NOT_FOUND",
				"message": "Maintenance schedule not found",
			},
		})
		return
	}

	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	updates := map[string]interface{}{
		"title":                  req.Title,
		"description":            req.Description,
		"equipment_id":           req.EquipmentID,
		"frequency":              req.Frequency,
		"assigned_team_id":       req.AssignedTeamID,
		"assigned_technician_id": req.AssignedTechnicianID,
	}
	if req.NextDue != nil {
		updates["next_due"] = *req.NextDue
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := db.Model(&schedule).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update maintenance schedule",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schedule,
	})
}

// DeleteMaintenance handles DELETE /api/v1/maintenance/:id (admin only)
func DeleteMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	result := db.Delete(&models.MaintenanceSchedule{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete maintenance schedule",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SCHEDULE_NOT_FOUND",
				"message": "Maintenance schedule not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Maintenance schedule deleted",
	})
}

// RunMaintenanceNow handles POST /api/v1/maintenance/:id/run (admin only).
// Spawns the preventive maintenance ticket immediately and advances next_due.
func RunMaintenanceNow(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var schedule models.MaintenanceSchedule
	if err := db.First(&schedule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SCHEDULE_NOT_FOUND",
				"message": "Maintenance schedule not found",
			},
		})
		return
	}

	if err := services.GetMaintenanceScheduler().RunSchedule(&schedule, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RUN_FAILED",
				"message": "Failed to run maintenance schedule",
			},
		})
		return
	}
	db.First(&schedule, id)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schedule,
	})
}
