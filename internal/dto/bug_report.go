package dto

import "github.com/noah-isme/campus-lms-api/internal/models"

// CreateBugReportRequest payload for reporting a dashboard problem.
type CreateBugReportRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"omitempty,oneof=general ui data performance other"`
}

// UpdateBugReportStatusRequest changes triage status.
type UpdateBugReportStatusRequest struct {
	Status     models.BugReportStatus `json:"status" validate:"required"`
	AdminNotes string                 `json:"adminNotes" validate:"max=2000"`
}
