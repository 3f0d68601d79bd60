package dto

import (
	"time"

	"github.com/noah-isme/campus-lms-api/internal/models"
)

// AttendanceReportFormat enumerates export encodings.
type AttendanceReportFormat string

const (
	AttendanceFormatJSON AttendanceReportFormat = "json"
	AttendanceFormatCSV  AttendanceReportFormat = "csv"
	AttendanceFormatPDF  AttendanceReportFormat = "pdf"
)

// AttendanceReportQuery selects the day and collection to summarise.
type AttendanceReportQuery struct {
	Kind   models.SubmissionKind
	Day    time.Time
	Format AttendanceReportFormat
}

// AttendanceReportResponse is the JSON rendering of a summary.
type AttendanceReportResponse struct {
	models.AttendanceSummary
	Percentage float64 `json:"percentage"`
}
