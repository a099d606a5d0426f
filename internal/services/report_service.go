package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"timber-backend/internal/models"
	"timber-backend/internal/timeutil"
)

// ReportService renders printable production documents
type ReportService struct {
	CompanyName string
}

// NewReportService creates a new report service
func NewReportService(companyName string) *ReportService {
	if companyName == "" {
		companyName = "Timber Mill"
	}
	return &ReportService{CompanyName: companyName}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// RenderProductionSlip generates the A4 production slip of an entry
func (s *ReportService) RenderProductionSlip(entry *models.ProductionEntry, summary *models.ProductionSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, s.CompanyName+" - Production Slip", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, fmt.Sprintf("Entry #%d", entry.ID), "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Process: %s (%s)", entry.ProcessName, entry.ProcessCode), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.Format(entry.ProductionDate, timeutil.DateLayout)), "1", 1, "L", false, 0, "")
	status := entry.Status
	if entry.CorrectionOf != nil {
		status = fmt.Sprintf("%s, corrects #%d", status, *entry.CorrectionOf)
	}
	pdf.CellFormat(95, 7, "Status: "+status, "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Work: %s / %s %s", summary.ActualWork, summary.PlannedWork, summary.WorkUnit), "1", 1, "L", false, 0, "")
	if entry.Notes != "" {
		pdf.MultiCell(190, 6, "Notes: "+entry.Notes, "1", "L", false)
	}
	pdf.Ln(4)

	// Inputs
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Consumed packages", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(78, 7, "Package", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Pieces", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Volume (m3)", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	for i, in := range entry.Inputs {
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(78, 6, in.PackageNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%d", in.Pieces), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, in.Volume.StringFixed(volumePlaces), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Outputs
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Produced packages", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Package", "1", 0, "C", true, 0, "")
	pdf.CellFormat(48, 7, "T x W x L (mm)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Species / Grade", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Pieces", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Volume (m3)", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	for i, out := range entry.Outputs {
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}
		dims := fmt.Sprintf("%s x %s x %s", out.Thickness, out.Width, out.Length)
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 6, valueOr(out.PackageNumber, "-"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(48, 6, dims, "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 6, truncate(out.Species+" "+out.Grade, 24), "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", out.Pieces), "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 6, out.Volume.StringFixed(volumePlaces), "1", 1, "R", true, 0, "")
	}
	pdf.Ln(4)

	// Totals
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Summary", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Input: %d pcs, %s m3", summary.InputPieces, summary.InputVolume.StringFixed(volumePlaces)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Output: %d pcs, %s m3", summary.OutputPieces, summary.OutputVolume.StringFixed(volumePlaces)), "1", 1, "L", false, 0, "")
	outcome := fmt.Sprintf("Outcome: %s%%", summary.OutcomePercent.StringFixed(2))
	if summary.Unusual {
		outcome += " (outside 50-100%)"
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(190, 7, outcome, "1", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
