package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/middleware"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
	"github.com/suriyap/repair-system-api/utils"
)

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
	Note   *string       `json:"note"`
}

// AssignRequest represents the request body for assigning a technician
type AssignRequest struct {
	TechnicianID uint  `json:"technician_id" binding:"required"`
	TeamID       *uint `json:"team_id"`
}

// AddCostRequest represents the request body for recording a cost line
type AddCostRequest struct {
	PartID    *uint   `json:"part_id"`
	PartName  string  `json:"part_name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitCost  float64 `json:"unit_cost" binding:"min=0"`
	LaborCost float64 `json:"labor_cost" binding:"min=0"`
	OtherCost float64 `json:"other_cost" binding:"min=0"`
	Note      *string `json:"note"`
}

// RateRequest represents the request body for rating a completed repair
type RateRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// AddCommentRequest represents the request body for a ticket comment
type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateRepairStatus handles PUT /api/v1/repairs/:id/status
func UpdateRepairStatus(c *gin.Context) {
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

	var req UpdateStatusRequest
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

	repair, err := services.GetRepairLifecycle().UpdateStatus(id, req.Status, userID, req.Note)
	if err != nil {
		var transition *services.InvalidTransitionError
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REPAIR_NOT_FOUND",
					"message": "Repair request not found",
				},
			})
		case errors.As(err, &transition):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": transition.Error(),
				},
			})
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Unknown status value",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update status",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repair,
	})
}

// AssignRepair handles PUT /api/v1/repairs/:id/assign (admin only)
func AssignRepair(c *gin.Context) {
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

	var req AssignRequest
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

	repair, err := services.GetRepairLifecycle().AssignTechnician(id, req.TechnicianID, userID)
	if err != nil {
		var transition *services.InvalidTransitionError
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Repair request or technician not found",
				},
			})
		case errors.As(err, &transition):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": transition.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to assign technician",
				},
			})
		}
		return
	}

	if req.TeamID != nil {
		if err := config.GetDB().Model(&models.RepairRequest{}).Where("id = ?", id).
			Update("team_id", *req.TeamID).Error; err == nil {
			repair.TeamID = req.TeamID
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repair,
	})
}

// AddRepairCost handles POST /api/v1/repairs/:id/costs (technician or admin)
func AddRepairCost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddCostRequest
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

	total, err := services.GetRepairLifecycle().AddCost(id, services.AddCostInput{
		PartID:    req.PartID,
		PartName:  req.PartName,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		LaborCost: req.LaborCost,
		OtherCost: req.OtherCost,
		Note:      req.Note,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
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
				"message": "Failed to add cost",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"total_cost": total,
		},
	})
}

// RateRepair handles POST /api/v1/repairs/:id/rating. Only the requester may
// rate, only once, and only after completion.
func RateRepair(c *gin.Context) {
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

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rating must be between 1 and 5",
				"details": err.Error(),
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

	if repair.RequesterID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the requester can rate this repair",
			},
		})
		return
	}
	if repair.Status != models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_COMPLETED",
				"message": "Only completed repairs can be rated",
			},
		})
		return
	}
	if repair.Rating != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_RATED",
				"message": "This repair has already been rated",
			},
		})
		return
	}

	if err := services.GetRepairLifecycle().AddRating(id, req.Rating, req.Comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save rating",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rating saved",
	})
}

// UploadAfterPhoto handles POST /api/v1/repairs/:id/after-photo. The
// technician attaches a picture of the finished work.
func UploadAfterPhoto(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
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

	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILE",
				"message": "No photo provided",
			},
		})
		return
	}
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

	s3 := services.GetS3Service()
	key, err := s3.UploadFile(fh, "after-photos")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload photo",
			},
		})
		return
	}

	if err := db.Model(&repair).Update("after_image", key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}

	url, _ := s3.GetPresignedURL(key)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}

// AddRepairComment handles POST /api/v1/repairs/:id/comments
func AddRepairComment(c *gin.Context) {
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

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Comment content is required",
				"details": err.Error(),
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

	comment := models.Comment{
		RepairID: id,
		UserID:   userID,
		Content:  req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add comment",
			},
		})
		return
	}
	db.Preload("User").First(&comment, comment.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    comment,
	})
}
