package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/middleware"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
	"github.com/suriyap/repair-system-api/utils"
)

// UpdateRepairRequest represents the request body for editing a ticket's fields
type UpdateRepairRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	CategoryID  *uint           `json:"category_id"`
	Priority    models.Priority `json:"priority"`
}

// parseIDParam reads the :id path parameter as an unsigned integer
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid id parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// ListRepairs handles GET /api/v1/repairs - lists tickets with filters.
// Plain users only see their own requests; technicians can narrow to their
// assigned jobs with ?assigned=true.
func ListRepairs(c *gin.Context) {
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
	query := db.Model(&models.RepairRequest{}).
		Preload("Category").
		Preload("Requester").
		Preload("Requester.Department").
		Preload("Technician").
		Order("created_at DESC")

	role := middleware.GetUserRole(c)
	if role == "user" {
		query = query.Where("requester_id = ?", userID)
	} else if role == "technician" && c.Query("assigned") != "" {
		query = query.Where("technician_id = ?", userID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if technicianID := c.Query("technician_id"); technicianID != "" {
		query = query.Where("technician_id = ?", technicianID)
	}
	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR request_no LIKE ?", term, term, term)
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			query = query.Limit(n)
		}
	}

	var repairs []models.RepairRequest
	if err := query.Find(&repairs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load repair requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repairs,
	})
}

// GetRepair handles GET /api/v1/repairs/:id - full detail with files,
// history, comments and cost lines
func GetRepair(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	lifecycle := services.GetRepairLifecycle()
	repair, err := lifecycle.GetByID(id)
	if err != nil {
		respondRepairNotFoundOrError(c, err)
		return
	}

	files, err := lifecycle.GetFiles(id)
	if err == nil {
		// Attach presigned URLs; a storage failure only hides the links
		s3 := services.GetS3Service()
		for i := range files {
			if url, urlErr := s3.GetPresignedURL(files[i].FileKey); urlErr == nil {
				files[i].FileURL = url
			}
		}
	}

	history, _ := lifecycle.GetHistory(id)

	db := config.GetDB()
	var comments []models.Comment
	db.Preload("User").Where("repair_id = ?", id).Order("created_at ASC").Find(&comments)

	var costs []models.RepairCost
	db.Where("repair_id = ?", id).Order("id ASC").Find(&costs)

	var teamName *string
	if repair.TeamID != nil {
		var team models.Team
		if err := db.First(&team, *repair.TeamID).Error; err == nil {
			teamName = &team.Name
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"repair":    repair,
			"files":     files,
			"history":   history,
			"comments":  comments,
			"costs":     costs,
			"team_name": teamName,
		},
	})
}

// CreateRepair handles POST /api/v1/repairs - opens a new ticket, optionally
// with attachments (multipart form, up to 5 files)
func CreateRepair(c *gin.Context) {
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

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Title is required",
			},
		})
		return
	}

	input := services.CreateRequestInput{
		Title:       title,
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		Priority:    models.Priority(c.PostForm("priority")),
		RequesterID: userID,
	}
	if v := c.PostForm("category_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			id := uint(n)
			input.CategoryID = &id
		}
	}
	if v := c.PostForm("equipment_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			id := uint(n)
			input.EquipmentID = &id
		}
	}

	var fileHeaders []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		fileHeaders = form.File["files"]
	}
	if len(fileHeaders) > utils.MaxAttachmentsPerRequest {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOO_MANY_FILES",
				"message": "At most 5 attachments are allowed",
			},
		})
		return
	}
	for _, fh := range fileHeaders {
		if err := utils.ValidateAttachment(fh); err != nil {
			code, message := "INVALID_FILE", "File validation failed"
			var uploadErr *utils.FileUploadError
			if errors.As(err, &uploadErr) {
				code, message = uploadErr.Code, uploadErr.Message
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}
	}

	lifecycle := services.GetRepairLifecycle()
	repair, err := lifecycle.CreateRequest(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create repair request",
			},
		})
		return
	}

	s3 := services.GetS3Service()
	for _, fh := range fileHeaders {
		key, uploadErr := s3.UploadFile(fh, "repairs")
		if uploadErr != nil {
			continue
		}
		lifecycle.AddFile(repair.ID, models.RepairFile{
			FileName: fh.Filename,
			FileKey:  key,
			FileType: fh.Header.Get("Content-Type"),
			FileSize: fh.Size,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":         repair.ID,
			"request_no": repair.RequestNo,
		},
	})
}

// UpdateRepair handles PUT /api/v1/repairs/:id - edits ticket fields
// (owner or admin only)
func UpdateRepair(c *gin.Context) {
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
	var repair models.RepairRequest
	if err := db.First(&repair, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPAIR_NOT_FOUND",
				"message": "Repair request not found",
			},
		})
		return
	}

	if repair.RequesterID != userID && middleware.GetUserRole(c) != "admin" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the requester or an admin can edit this request",
			},
		})
		return
	}

	var req UpdateRepairRequest
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

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Priority != "" {
		if !req.Priority.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid priority value",
				},
			})
			return
		}
		updates["priority"] = req.Priority
	}

	if len(updates) > 0 {
		if err := db.Model(&repair).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update repair request",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repair,
	})
}

// DeleteRepair handles DELETE /api/v1/repairs/:id (owner or admin only)
func DeleteRepair(c *gin.Context) {
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
	var repair models.RepairRequest
	if err := db.First(&repair, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPAIR_NOT_FOUND",
				"message": "Repair request not found",
			},
		})
		return
	}

	if repair.RequesterID != userID && middleware.GetUserRole(c) != "admin" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the requester or an admin can delete this request",
			},
		})
		return
	}

	if err := db.Delete(&repair).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete repair request",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Repair request deleted",
	})
}

// ListCategories handles GET /api/v1/repairs/categories
func ListCategories(c *gin.Context) {
	db := config.GetDB()
	var categories []models.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// respondRepairNotFoundOrError maps lifecycle errors onto HTTP responses
func respondRepairNotFoundOrError(c *gin.Context, err error) {
	if err == services.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPAIR_NOT_FOUND",
				"message": "Repair request not found",
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to load repair request",
		},
	})
}
