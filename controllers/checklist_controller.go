package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
	"gorm.io/datatypes"
)

// ChecklistRequest represents the request body for creating or editing a
// checklist template
type ChecklistRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	CategoryID  *uint    `json:"category_id"`
	Steps       []string `json:"steps" binding:"required,min=1"`
}

// ListChecklists handles GET /api/v1/checklists
func ListChecklists(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Category").Order("name ASC")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var templates []models.ChecklistTemplate
	if err := query.Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load checklist templates",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    templates,
	})
}

// GetChecklist handles GET /api/v1/checklists/:id
func GetChecklist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var template models.ChecklistTemplate
	if err := db.Preload("Category").First(&template, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHECKLIST_NOT_FOUND",
				"message": "Checklist template not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    template,
	})
}

// CreateChecklist handles POST /api/v1/checklists (admin only)
func CreateChecklist(c *gin.Context) {
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name and at least one step are required",
				"details": err.Error(),
			},
		})
		return
	}

	steps, err := json.Marshal(req.Steps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid steps",
			},
		})
		return
	}

	template := models.ChecklistTemplate{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Steps:       datatypes.JSON(steps),
	}

	db := config.GetDB()
	if err := db.Create(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create checklist template",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    template,
	})
}

// UpdateChecklist handles PUT /api/v1/checklists/:id (admin only)
func UpdateChecklist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var template models.ChecklistTemplate
	if err := db.First(&template, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHECKLIST_NOT_FOUND",
				"message": "Checklist template not found",
			},
		})
		return
	}

	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name and at least one step are required",
				"details": err.Error(),
			},
		})
		return
	}

	steps, err := json.Marshal(req.Steps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid steps",
			},
		})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"category_id": req.CategoryID,
		"steps":       datatypes.JSON(steps),
	}
	if err := db.Model(&template).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update checklist template",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    template,
	})
}

// DeleteChecklist handles DELETE /api/v1/checklists/:id (admin only)
func DeleteChecklist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	result := db.Delete(&models.ChecklistTemplate{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete checklist template",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHECKLIST_NOT_FOUND",
				"message": "Checklist template not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Checklist template deleted",
	})
}
