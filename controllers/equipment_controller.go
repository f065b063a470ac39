package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
)

// EquipmentRequest represents the request body for creating or editing equipment
type EquipmentRequest struct {
	EquipmentCode string     `json:"equipment_code" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	Building      string     `json:"building"`
	Floor         string     `json:"floor"`
	CategoryID    *uint      `json:"category_id"`
	Status        string     `json:"status" binding:"omitempty,oneof=active broken maintenance retired"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	WarrantyEnd   *time.Time `json:"warranty_end"`
}

// ListEquipment handles GET /api/v1/equipment
func ListEquipment(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Category").Order("equipment_code ASC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if building := c.Query("building"); building != "" {
		query = query.Where("building = ?", building)
	}
	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where("name LIKE ? OR equipment_code LIKE ? OR location LIKE ?", term, term, term)
	}

	var equipment []models.Equipment
	if err := query.Find(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load equipment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// GetEquipment handles GET /api/v1/equipment/:id
func GetEquipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var equipment models.Equipment
	if err := db.Preload("Category").First(&equipment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// CreateEquipment handles POST /api/v1/equipment (admin only). A QR code
// pointing at the public report form is generated on creation.
func CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
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

	equipment := models.Equipment{
		EquipmentCode: req.EquipmentCode,
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		Building:      req.Building,
		Floor:         req.Floor,
		CategoryID:    req.CategoryID,
		Status:        req.Status,
		PurchaseDate:  req.PurchaseDate,
		WarrantyEnd:   req.WarrantyEnd,
	}
	if equipment.Status == "" {
		equipment.Status = "active"
	}

	db := config.GetDB()
	if err := db.Create(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create equipment",
			},
		})
		return
	}

	if dataURL, err := equipmentQRCode(equipment.ID); err == nil {
		db.Model(&equipment).Update("qr_code", dataURL)
		equipment.QRCode = &dataURL
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// UpdateEquipment handles PUT /api/v1/equipment/:id (admin only)
func UpdateEquipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var equipment models.Equipment
	if err := db.First(&equipment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	var req EquipmentRequest
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
		"equipment_code": req.EquipmentCode,
		"name":           req.Name,
		"description":    req.Description,
		"location":       req.Location,
		"building":       req.Building,
		"floor":          req.Floor,
		"category_id":    req.CategoryID,
		"purchase_date":  req.PurchaseDate,
		"warranty_end":   req.WarrantyEnd,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := db.Model(&equipment).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update equipment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

// DeleteEquipment handles DELETE /api/v1/equipment/:id (admin only)
func DeleteEquipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	result := db.Delete(&models.Equipment{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete equipment",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Equipment deleted",
	})
}

// GetEquipmentQR handles GET /api/v1/equipment/:id/qr - returns the stored
// QR data URL, generating it on demand for equipment created before the
// feature existed
func GetEquipmentQR(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var equipment models.Equipment
	if err := db.First(&equipment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	if equipment.QRCode == nil {
		dataURL, err := equipmentQRCode(equipment.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "QR_GENERATION_FAILED",
					"message": "Failed to generate QR code",
				},
			})
			return
		}
		db.Model(&equipment).Update("qr_code", dataURL)
		equipment.QRCode = &dataURL
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"equipment_code": equipment.EquipmentCode,
			"qr_code":        equipment.QRCode,
		},
	})
}

// GetEquipmentRepairs handles GET /api/v1/equipment/:id/repairs - the repair
// history of an asset, newest first
func GetEquipmentRepairs(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var equipment models.Equipment
	if err := db.First(&equipment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EQUIPMENT_NOT_FOUND",
				"message": "Equipment not found",
			},
		})
		return
	}

	var repairs []models.RepairRequest
	if err := db.Preload("Requester").Preload("Technician").
		Where("equipment_id = ?", id).Order("created_at DESC").
		Find(&repairs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load repair history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repairs,
	})
}

// equipmentQRCode renders a PNG QR pointing at the frontend's report form
// for the asset and returns it as a data URL
func equipmentQRCode(equipmentID uint) (string, error) {
	target := fmt.Sprintf("%s/report?equipment_id=%d", config.GetConfig().FrontendURL, equipmentID)
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
