package applications

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"hirehub/db"
	"hirehub/models"
	"hirehub/policy"

	"github.com/phpdave11/gofpdf"
)

// ExportPDF renders every applicant of a job the actor owns as an A4 table.
func (s *Service) ExportPDF(ctx context.Context, actor *models.User, jobID string) ([]byte, *models.Job, error) {
	job, err := s.loadOwnedJob(ctx, actor, policy.ViewApplications, jobID)
	if err != nil {
		return nil, nil, err
	}
	views, err := db.PopulateApplicants(ctx, s.store, job.Applicants)
	if err != nil {
		return nil, nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, tr(job.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s - %s", job.Company, job.Location)), "", 1, "L", false, 0, "")
	stats := models.CountApplications(job.Applicants)
	pdf.CellFormat(0, 7, fmt.Sprintf("%d applicants, %d shortlisted, %d hired. Generated %s",
		stats.Total, stats.Shortlisted, stats.Hired, s.now().Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{50, 70, 30, 30}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 238, 245)
	for i, h := range []string{"Name", "Email", "Status", "Applied"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, v := range views {
		name, email := "(deleted user)", ""
		if v.User != nil {
			name, email = v.User.Name, v.User.Email
		}
		row := []string{tr(name), tr(email), v.Status, v.AppliedAt.Format(time.DateOnly)}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(views) == 0 {
		pdf.CellFormat(0, 8, "No applications yet.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, models.NewInternalError("render applications pdf", err)
	}
	return buf.Bytes(), job, nil
}
