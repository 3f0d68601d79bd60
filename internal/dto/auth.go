package dto

import "github.com/noah-isme/campus-lms-api/internal/models"

// ProfileResponse is the signed-in user's own view, mentor pointers included.
type ProfileResponse struct {
	models.UserInfo
	Phase           string `json:"phase,omitempty"`
	MentorID        string `json:"mentor_id,omitempty"`
	PendingMentorID string `json:"pending_mentor_id,omitempty"`
}

// NewProfileResponse projects u.
func NewProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		UserInfo:        u.Info(),
		Phase:           u.Phase,
		MentorID:        u.MentorID,
		PendingMentorID: u.PendingMentorID,
	}
}
