package models

import "time"

// BugReportStatus tracks triage progress.
type BugReportStatus string

const (
	BugReportOpen       BugReportStatus = "open"
	BugReportInProgress BugReportStatus = "in_progress"
	BugReportResolved   BugReportStatus = "resolved"
	BugReportClosed     BugReportStatus = "closed"
)

// Valid reports whether s is a supported status.
func (s BugReportStatus) Valid() bool {
	switch s {
	case BugReportOpen, BugReportInProgress, BugReportResolved, BugReportClosed:
		return true
	default:
		return false
	}
}

// BugReport is user feedback about the dashboard.
type BugReport struct {
	ID          string          `db:"id" json:"id"`
	ReporterID  string          `db:"reporter_id" json:"reporterId"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Status      BugReportStatus `db:"status" json:"status"`
	AdminNotes  *string         `db:"admin_notes" json:"adminNotes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// BugReportFilter constrains listing queries.
type BugReportFilter struct {
	Status     []BugReportStatus
	ReporterID string
	Limit      int
	Offset     int
}
