package controllers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
)

// MonthlyBucket is one month of the trends report
type MonthlyBucket struct {
	Month     string `json:"month"` // YYYY-MM
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// SLAPriorityReport is the SLA attainment summary for one priority level
type SLAPriorityReport struct {
	Priority       string   `json:"priority"`
	ResponseMet    int64    `json:"response_met"`
	ResponseMissed int64    `json:"response_missed"`
	ResolutionMet  int64    `json:"resolution_met"`
	ResolutionMiss int64    `json:"resolution_missed"`
	ResponseHours  *float64 `json:"response_hours"`
	ResolutionHrs  *float64 `json:"resolution_hours"`
}

// SLASettingRequest represents the request body for configuring one
// priority's SLA targets
type SLASettingRequest struct {
	Priority            models.Priority `json:"priority" binding:"required"`
	ResponseTimeHours   float64         `json:"response_time_hours" binding:"required,gt=0"`
	ResolutionTimeHours float64         `json:"resolution_time_hours" binding:"required,gt=0"`
}

// GetMonthlyReport handles GET /api/v1/reports/monthly?year=&month= -
// status and category breakdowns plus total cost for one calendar month
func GetMonthlyReport(c *gin.Context) {
	now := time.Now()
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "month must be between 1 and 12",
			},
		})
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	db := config.GetDB()
	var total int64
	db.Model(&models.RepairRequest{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&total)

	byStatus := make(map[string]int64)
	for _, status := range []models.Status{
		models.StatusPending, models.StatusAccepted, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	} {
		var n int64
		db.Model(&models.RepairRequest{}).
			Where("created_at >= ? AND created_at < ? AND status = ?", start, end, status).
			Count(&n)
		byStatus[string(status)] = n
	}

	type categoryCount struct {
		CategoryID *uint
		Count      int64
	}
	var categoryRows []categoryCount
	db.Model(&models.RepairRequest{}).
		Select("category_id, COUNT(*) as count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("category_id").
		Scan(&categoryRows)

	byCategory := make(map[string]int64)
	for _, row := range categoryRows {
		name := "Uncategorized"
		if row.CategoryID != nil {
			var cat models.Category
			if err := db.First(&cat, *row.CategoryID).Error; err == nil {
				name = cat.Name
			}
		}
		byCategory[name] += row.Count
	}

	var totalCost float64
	db.Model(&models.RepairRequest{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Select("COALESCE(SUM(total_cost), 0)").Scan(&totalCost)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"year":        year,
			"month":       month,
			"total":       total,
			"by_status":   byStatus,
			"by_category": byCategory,
			"total_cost":  totalCost,
		},
	})
}

// GetSLAReport handles GET /api/v1/reports/sla - per-priority met/missed
// counts alongside the configured targets
func GetSLAReport(c *gin.Context) {
	db := config.GetDB()

	var settings []models.SLASetting
	db.Find(&settings)
	settingByPriority := make(map[models.Priority]models.SLASetting, len(settings))
	for _, s := range settings {
		settingByPriority[s.Priority] = s
	}

	report := make([]SLAPriorityReport, 0, 4)
	for _, priority := range []models.Priority{
		models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent,
	} {
		entry := SLAPriorityReport{Priority: string(priority)}

		db.Model(&models.RepairRequest{}).
			Where("priority = ? AND sla_response_met = ?", priority, true).
			Count(&entry.ResponseMet)
		db.Model(&models.RepairRequest{}).
			Where("priority = ? AND sla_response_met = ?", priority, false).
			Count(&entry.ResponseMissed)
		db.Model(&models.RepairRequest{}).
			Where("priority = ? AND sla_resolution_met = ?", priority, true).
			Count(&entry.ResolutionMet)
		db.Model(&models.RepairRequest{}).
			Where("priority = ? AND sla_resolution_met = ?", priority, false).
			Count(&entry.ResolutionMiss)

		if setting, ok := settingByPriority[priority]; ok {
			entry.ResponseHours = &setting.ResponseTimeHours
			entry.ResolutionHrs = &setting.ResolutionTimeHours
		}

		report = append(report, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"priorities": report,
			"settings":   settings,
		},
	})
}

// UpsertSLASetting handles PUT /api/v1/reports/sla-settings (admin only).
// Creates or replaces the targets for one priority; requests with no
// configured priority simply never get SLA flags.
func UpsertSLASetting(c *gin.Context) {
	var req SLASettingRequest
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
	if !req.Priority.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown priority value",
			},
		})
		return
	}

	db := config.GetDB()
	var setting models.SLASetting
	err := db.Where("priority = ?", req.Priority).First(&setting).Error
	if err != nil {
		setting = models.SLASetting{
			Priority:            req.Priority,
			ResponseTimeHours:   req.ResponseTimeHours,
			ResolutionTimeHours: req.ResolutionTimeHours,
		}
		err = db.Create(&setting).Error
	} else {
		err = db.Model(&setting).Updates(map[string]interface{}{
			"response_time_hours":   req.ResponseTimeHours,
			"resolution_time_hours": req.ResolutionTimeHours,
		}).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save SLA setting",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    setting,
	})
}

// GetTrendsReport handles GET /api/v1/reports/trends - created and completed
// counts per month over the last 12 months, bucketed in Go for portability
func GetTrendsReport(c *gin.Context) {
	db := config.GetDB()
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).
		AddDate(0, -11, 0)

	var repairs []models.RepairRequest
	if err := db.Select("id, created_at, completed_at").
		Where("created_at >= ? OR completed_at >= ?", start, start).
		Find(&repairs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load trend data",
			},
		})
		return
	}

	created := make(map[string]int)
	completed := make(map[string]int)
	for _, r := range repairs {
		created[r.CreatedAt.Format("2006-01")]++
		if r.CompletedAt != nil {
			completed[r.CompletedAt.Format("2006-01")]++
		}
	}

	buckets := make([]MonthlyBucket, 0, 12)
	for m := 0; m < 12; m++ {
		key := start.AddDate(0, m, 0).Format("2006-01")
		buckets = append(buckets, MonthlyBucket{
			Month:     key,
			Created:   created[key],
			Completed: completed[key],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    buckets,
	})
}

// GetTechnicianLeaderboard handles GET /api/v1/reports/leaderboard -
// technicians ranked by completed repairs
func GetTechnicianLeaderboard(c *gin.Context) {
	db := config.GetDB()

	var technicians []models.User
	if err := db.Where("role = ?", "technician").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load technicians",
			},
		})
		return
	}

	type leaderboardEntry struct {
		TechnicianID  uint     `json:"technician_id"`
		FullName      string   `json:"full_name"`
		Completed     int64    `json:"completed"`
		AverageRating *float64 `json:"average_rating"`
	}

	entries := make([]leaderboardEntry, 0, len(technicians))
	for _, tech := range technicians {
		entry := leaderboardEntry{TechnicianID: tech.ID, FullName: tech.FullName}
		db.Model(&models.RepairRequest{}).
			Where("technician_id = ? AND status = ?", tech.ID, models.StatusCompleted).
			Count(&entry.Completed)
		var avg *float64
		row := db.Model(&models.RepairRequest{}).
			Where("technician_id = ? AND rating IS NOT NULL", tech.ID).
			Select("AVG(rating)").Row()
		if err := row.Scan(&avg); err == nil {
			entry.AverageRating = avg
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Completed > entries[j].Completed
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// DownloadRepairReport handles GET /api/v1/reports/excel - streams an Excel
// workbook of repairs filtered by optional start/end date and status
func DownloadRepairReport(c *gin.Context) {
	filter := services.ReportFilter{Status: models.Status(c.Query("status"))}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}

	workbook, err := services.BuildRepairReport(config.GetDB(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPORT_FAILED",
				"message": "Failed to build report",
			},
		})
		return
	}

	filename := fmt.Sprintf("repair-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		log.Printf("Failed to stream report: %v", err)
	}
}
