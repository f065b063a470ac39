package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
)

// DailyCount is one bucket of the dashboard's created-per-day chart
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TechnicianStats summarizes one technician's workload and performance
type TechnicianStats struct {
	TechnicianID   uint     `json:"technician_id"`
	FullName       string   `json:"full_name"`
	Active         int64    `json:"active"`
	Completed      int64    `json:"completed"`
	AverageRating  *float64 `json:"average_rating"`
	AvgRepairHours *float64 `json:"avg_repair_hours"`
}

// GetDashboardStats handles GET /api/v1/dashboard/stats - headline counters
func GetDashboardStats(c *gin.Context) {
	db := config.GetDB()

	statusCounts := make(map[string]int64)
	for _, status := range []models.Status{
		models.StatusPending, models.StatusAccepted, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	} {
		var n int64
		db.Model(&models.RepairRequest{}).Where("status = ?", status).Count(&n)
		statusCounts[string(status)] = n
	}

	priorityCounts := make(map[string]int64)
	for _, priority := range []models.Priority{
		models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent,
	} {
		var n int64
		db.Model(&models.RepairRequest{}).Where("priority = ?", priority).Count(&n)
		priorityCounts[string(priority)] = n
	}

	var total int64
	db.Model(&models.RepairRequest{}).Count(&total)

	var avgRating *float64
	row := db.Model(&models.RepairRequest{}).
		Where("rating IS NOT NULL").
		Select("AVG(rating)").Row()
	var avg *float64
	if err := row.Scan(&avg); err == nil {
		avgRating = avg
	}

	var lowStock int64
	db.Model(&models.SparePart{}).Where("quantity <= min_quantity").Count(&lowStock)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":           total,
			"by_status":       statusCounts,
			"by_priority":     priorityCounts,
			"average_rating":  avgRating,
			"low_stock_parts": lowStock,
		},
	})
}

// GetDashboardChart handles GET /api/v1/dashboard/chart - tickets created per
// day over the last 30 days. Bucketing happens in Go so the query stays
// portable across postgres and sqlite.
func GetDashboardChart(c *gin.Context) {
	db := config.GetDB()
	since := time.Now().AddDate(0, 0, -29).Truncate(24 * time.Hour)

	var repairs []models.RepairRequest
	if err := db.Select("id, created_at").
		Where("created_at >= ?", since).
		Find(&repairs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load chart data",
			},
		})
		return
	}

	counts := make(map[string]int)
	for _, r := range repairs {
		counts[r.CreatedAt.Format("2006-01-02")]++
	}

	buckets := make([]DailyCount, 0, 30)
	for d := 0; d < 30; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		buckets = append(buckets, DailyCount{Date: day, Count: counts[day]})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    buckets,
	})
}

// GetDashboardRecent handles GET /api/v1/dashboard/recent - the ten newest
// tickets
func GetDashboardRecent(c *gin.Context) {
	db := config.GetDB()
	var repairs []models.RepairRequest
	if err := db.Preload("Category").Preload("Requester").Preload("Technician").
		Order("created_at DESC").Limit(10).Find(&repairs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load recent repairs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    repairs,
	})
}

// GetTechnicianStats handles GET /api/v1/dashboard/technicians - per
// technician workload, average rating and average time to completion
func GetTechnicianStats(c *gin.Context) {
	db := config.GetDB()

	var technicians []models.User
	if err := db.Where("role = ? AND is_active = ?", "technician", true).
		Order("full_name ASC").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load technicians",
			},
		})
		return
	}

	stats := make([]TechnicianStats, 0, len(technicians))
	for _, tech := range technicians {
		entry := TechnicianStats{TechnicianID: tech.ID, FullName: tech.FullName}

		db.Model(&models.RepairRequest{}).
			Where("technician_id = ? AND status IN ?", tech.ID,
				[]models.Status{models.StatusAccepted, models.StatusInProgress}).
			Count(&entry.Active)
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

		// Average accepted-to-completed duration computed in Go; date
		// arithmetic differs between postgres and sqlite
		var completed []models.RepairRequest
		db.Select("accepted_at, completed_at").
			Where("technician_id = ? AND accepted_at IS NOT NULL AND completed_at IS NOT NULL", tech.ID).
			Find(&completed)
		if len(completed) > 0 {
			var totalHours float64
			for _, r := range completed {
				totalHours += r.CompletedAt.Sub(*r.AcceptedAt).Hours()
			}
			avgHours := totalHours / float64(len(completed))
			entry.AvgRepairHours = &avgHours
		}

		stats = append(stats, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
