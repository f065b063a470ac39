package services

import (
	"fmt"
	"time"

	"github.com/suriyap/repair-system-api/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportFilter narrows the rows included in an export
type ReportFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    models.Status
}

// BuildRepairReport renders the repair list as an Excel workbook
func BuildRepairReport(db *gorm.DB, filter ReportFilter) (*excelize.File, error) {
	query := db.Model(&models.RepairRequest{}).
		Preload("Category").
		Preload("Requester").
		Preload("Technician").
		Order("created_at DESC")

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var repairs []models.RepairRequest
	if err := query.Find(&repairs).Error; err != nil {
		return nil, fmt.Errorf("failed to load repairs for report: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Repairs"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{
		"Request No", "Title", "Category", "Location", "Priority", "Status",
		"Requester", "Technician", "Created", "Completed", "Total Cost", "Rating",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "L1", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range repairs {
		row := []interface{}{
			r.RequestNo,
			r.Title,
			categoryName(r.Category),
			r.Location,
			string(r.Priority),
			string(r.Status),
			r.Requester.FullName,
			technicianName(r.Technician),
			r.CreatedAt.Format("2006-01-02 15:04"),
			formatTime(r.CompletedAt),
			r.TotalCost,
			formatRating(r.Rating),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "L", 16); err != nil {
		return nil, err
	}

	return f, nil
}

func categoryName(c *models.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func technicianName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.FullName
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func formatRating(r *int) interface{} {
	if r == nil {
		return ""
	}
	return *r
}
