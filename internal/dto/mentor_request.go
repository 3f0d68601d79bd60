package dto

import "github.com/noah-isme/campus-lms-api/internal/models"

// CreateMentorRequest payload for proposing a mentor change.
type CreateMentorRequest struct {
	StudentID         string `json:"studentId"`
	RequestedMentorID string `json:"requestedMentorId" binding:"required"`
	CurrentMentorID   string `json:"currentMentorId"`
	Reason            string `json:"reason"`
}

// ReviewMentorRequest captures the admin decision and optional notes.
type ReviewMentorRequest struct {
	Decision models.MentorRequestStatus `json:"decision" binding:"required"`
	Notes    string                     `json:"notes"`
}

// MentorRequestQuery mirrors supported listing filters.
type MentorRequestQuery struct {
	Status            []models.MentorRequestStatus
	StudentID         string
	RequestedMentorID string
	Limit             int
	Offset            int
}

// CreateMentorRequestResponse returns the new request identifier.
type CreateMentorRequestResponse struct {
	ID string `json:"id"`
}

// MentorCapacityPage is one "load more" window over the capacity listing.
type MentorCapacityPage struct {
	Items   []models.MentorCapacity `json:"items"`
	Loaded  int                     `json:"loaded"`
	Total   int                     `json:"total"`
	HasMore bool                    `json:"hasMore"`
}
