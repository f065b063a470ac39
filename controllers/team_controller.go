package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
)

// TeamRequest represents the request body for creating or editing a team
type TeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	LeaderID    *uint  `json:"leader_id"`
}

// AddMemberRequest represents the request body for adding a team member
type AddMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// ListTeams handles GET /api/v1/teams
func ListTeams(c *gin.Context) {
	db := config.GetDB()
	var teams []models.Team
	if err := db.Preload("Leader").Order("name ASC").Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load teams",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    teams,
	})
}

// GetTeam handles GET /api/v1/teams/:id - team detail with its members
func GetTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var team models.Team
	if err := db.Preload("Leader").First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEAM_NOT_FOUND",
				"message": "Team not found",
			},
		})
		return
	}

	var members []models.TeamMember
	db.Preload("User").Where("team_id = ?", id).Order("joined_at ASC").Find(&members)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"team":    team,
			"members": members,
		},
	})
}

// CreateTeam handles POST /api/v1/teams (admin only)
func CreateTeam(c *gin.Context) {
	var req TeamRequest
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

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    req.LeaderID,
	}

	db := config.GetDB()
	if err := db.Create(&team).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create team",
			},
		})
		return
	}

	// Leader automatically becomes a member
	if req.LeaderID != nil {
		db.Create(&models.TeamMember{TeamID: team.ID, UserID: *req.LeaderID})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    team,
	})
}

// UpdateTeam handles PUT /api/v1/teams/:id (admin only)
func UpdateTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEAM_NOT_FOUND",
				"message": "Team not found",
			},
		})
		return
	}

	var req TeamRequest
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
		"name":        req.Name,
		"description": req.Description,
		"leader_id":   req.LeaderID,
	}
	if err := db.Model(&team).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update team",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    team,
	})
}

// DeleteTeam handles DELETE /api/v1/teams/:id (admin only). Membership rows
// go with the team.
func DeleteTeam(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	result := db.Delete(&models.Team{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete team",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEAM_NOT_FOUND",
				"message": "Team not found",
			},
		})
		return
	}
	db.Where("team_id = ?", id).Delete(&models.TeamMember{})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Team deleted",
	})
}

// AddTeamMember handles POST /api/v1/teams/:id/members (admin only)
func AddTeamMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "user_id is required",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TEAM_NOT_FOUND",
				"message": "Team not found",
			},
		})
		return
	}
	var user models.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	var existing int64
	db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", id, req.UserID).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_MEMBER",
				"message": "User is already a member of this team",
			},
		})
		return
	}

	member := models.TeamMember{TeamID: id, UserID: req.UserID}
	if err := db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add team member",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    member,
	})
}

// RemoveTeamMember handles DELETE /api/v1/teams/:id/members/:userId (admin only)
func RemoveTeamMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid userId parameter",
			},
		})
		return
	}

	db := config.GetDB()
	result := db.Where("team_id = ? AND user_id = ?", id, uint(userID)).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove team member",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEMBER_NOT_FOUND",
				"message": "User is not a member of this team",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member removed",
	})
}
