package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
	"gorm.io/gorm"
)

// SparePartRequest represents the request body for creating or editing a part
type SparePartRequest struct {
	PartCode    string  `json:"part_code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    *int    `json:"quantity"`
	MinQuantity *int    `json:"min_quantity"`
	Unit        string  `json:"unit"`
	UnitCost    float64 `json:"unit_cost" binding:"min=0"`
	Location    string  `json:"location"`
}

// AdjustStockRequest represents the request body for a manual stock movement.
// Delta is signed: positive restocks, negative removes.
type AdjustStockRequest struct {
	Delta int     `json:"delta" binding:"required"`
	Note  *string `json:"note"`
}

// ListSpareParts handles GET /api/v1/spare-parts
func ListSpareParts(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("part_code ASC")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where("name LIKE ? OR part_code LIKE ?", term, term)
	}
	if c.Query("low_stock") != "" {
		query = query.Where("quantity <= min_quantity")
	}

	var parts []models.SparePart
	if err := query.Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load spare parts",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}

// GetSparePart handles GET /api/v1/spare-parts/:id
func GetSparePart(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var part models.SparePart
	if err := db.First(&part, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PART_NOT_FOUND",
				"message": "Spare part not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

// CreateSparePart handles POST /api/v1/spare-parts (admin only)
func CreateSparePart(c *gin.Context) {
	var req SparePartRequest
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

	part := models.SparePart{
		PartCode:    req.PartCode,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Unit:        req.Unit,
		UnitCost:    req.UnitCost,
		Location:    req.Location,
	}
	if req.Quantity != nil {
		part.Quantity = *req.Quantity
	}
	if req.MinQuantity != nil {
		part.MinQuantity = *req.MinQuantity
	} else {
		part.MinQuantity = 5
	}
	if part.Unit == "" {
		part.Unit = "piece"
	}

	db := config.GetDB()
	if err := db.Create(&part).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PART_CODE_TAKEN",
					"message": "Part code is already in use",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create spare part",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    part,
	})
}

// UpdateSparePart handles PUT /api/v1/spare-parts/:id (admin only)
func UpdateSparePart(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var part models.SparePart
	if err := db.First(&part, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PART_NOT_FOUND",
				"message": "Spare part not found",
			},
		})
		return
	}

	var req SparePartRequest
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
		"part_code":   req.PartCode,
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"unit_cost":   req.UnitCost,
		"location":    req.Location,
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.MinQuantity != nil {
		updates["min_quantity"] = *req.MinQuantity
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}

	if err := db.Model(&part).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update spare part",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

// DeleteSparePart handles DELETE /api/v1/spare-parts/:id (admin only)
func DeleteSparePart(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	result := db.Delete(&models.SparePart{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete spare part",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PART_NOT_FOUND",
				"message": "Spare part not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Spare part deleted",
	})
}

// AdjustSparePartStock handles POST /api/v1/spare-parts/:id/adjust
// (technician or admin). Applies a signed delta to on-hand stock.
func AdjustSparePartStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A non-zero delta is required",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var part models.SparePart
	if err := db.First(&part, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PART_NOT_FOUND",
				"message": "Spare part not found",
			},
		})
		return
	}

	if err := db.Model(&part).
		Update("quantity", gorm.Expr("quantity + ?", req.Delta)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to adjust stock",
			},
		})
		return
	}
	db.First(&part, id)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

// ListSparePartCategories handles GET /api/v1/spare-parts/categories -
// distinct category labels currently in use
func ListSparePartCategories(c *gin.Context) {
	db := config.GetDB()
	var categories []string
	if err := db.Model(&models.SparePart{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load part categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}
