package models

import "time"

// MentorRequestStatus captures workflow states for mentor change requests.
type MentorRequestStatus string

const (
	MentorRequestPending  MentorRequestStatus = "pending"
	MentorRequestApproved MentorRequestStatus = "approved"
	MentorRequestRejected MentorRequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s MentorRequestStatus) Terminal() bool {
	return s == MentorRequestApproved || s == MentorRequestRejected
}

// MentorChangeRequest proposes moving a student to a new mentor. Names and
// emails are snapshots taken at creation time.
type MentorChangeRequest struct {
	ID                   string              `db:"id" json:"id"`
	StudentID            string              `db:"student_id" json:"studentId"`
	StudentName          string              `db:"student_name" json:"studentName"`
	StudentEmail         string              `db:"student_email" json:"studentEmail"`
	RequestedMentorID    string              `db:"requested_mentor_id" json:"requestedMentorId"`
	RequestedMentorName  string              `db:"requested_mentor_name" json:"requestedMentorName"`
	RequestedMentorEmail string              `db:"requested_mentor_email" json:"requestedMentorEmail"`
	CurrentMentorID      *string             `db:"current_mentor_id" json:"currentMentorId,omitempty"`
	CurrentMentorName    *string             `db:"current_mentor_name" json:"currentMentorName,omitempty"`
	Reason               *string             `db:"reason" json:"reason,omitempty"`
	Status               MentorRequestStatus `db:"status" json:"status"`
	CreatedAt            time.Time           `db:"created_at" json:"createdAt"`
	ReviewedAt           *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ReviewedBy           *string             `db:"reviewed_by" json:"reviewedBy,omitempty"`
	AdminNotes           *string             `db:"admin_notes" json:"adminNotes,omitempty"`
}

// MentorRequestFilter constrains listing queries.
type MentorRequestFilter struct {
	Status            []MentorRequestStatus
	StudentID         string
	RequestedMentorID string
	Limit             int
	Offset            int
}

// MentorRequestDraft is the resolved input for a new request.
type MentorRequestDraft struct {
	ID                   string
	StudentID            string
	StudentName          string
	StudentEmail         string
	RequestedMentorID    string
	RequestedMentorName  string
	RequestedMentorEmail string
	CurrentMentorID      string
	CurrentMentorName    string
	Reason               string
	CreatedAt            time.Time
}

// Record builds the insert payload: required columns always, optional
// columns only when they carry a value.
func (d MentorRequestDraft) Record() Fields {
	f := Fields{}
	f.Set("id", d.ID).
		Set("student_id", d.StudentID).
		Set("student_name", d.StudentName).
		Set("student_email", d.StudentEmail).
		Set("requested_mentor_id", d.RequestedMentorID).
		Set("requested_mentor_name", d.RequestedMentorName).
		Set("requested_mentor_email", d.RequestedMentorEmail).
		Set("status", string(MentorRequestPending)).
		Set("created_at", d.CreatedAt)
	f.SetIfPresent("current_mentor_id", d.CurrentMentorID)
	if f.Has("current_mentor_id") {
		f.SetIfPresent("current_mentor_name", d.CurrentMentorName)
	}
	f.SetIfPresent("reason", d.Reason)
	return f
}

// Request returns the pending request the draft describes.
func (d MentorRequestDraft) Request() MentorChangeRequest {
	req := MentorChangeRequest{
		ID:                   d.ID,
		StudentID:            d.StudentID,
		StudentName:          d.StudentName,
		StudentEmail:         d.StudentEmail,
		RequestedMentorID:    d.RequestedMentorID,
		RequestedMentorName:  d.RequestedMentorName,
		RequestedMentorEmail: d.RequestedMentorEmail,
		Status:               MentorRequestPending,
		CreatedAt:            d.CreatedAt,
	}
	record := d.Record()
	if v, ok := record["current_mentor_id"].(string); ok {
		req.CurrentMentorID = &v
	}
	if v, ok := record["current_mentor_name"].(string); ok {
		req.CurrentMentorName = &v
	}
	if v, ok := record["reason"].(string); ok {
		req.Reason = &v
	}
	return req
}

// MentorRequestReview is the decision applied to a pending request.
type MentorRequestReview struct {
	Status     MentorRequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	Notes      string
}

// Record builds the update payload; admin_notes is left out when empty.
func (r MentorRequestReview) Record() Fields {
	f := Fields{}
	f.Set("status", string(r.Status)).
		Set("reviewed_by", r.ReviewedBy).
		Set("reviewed_at", r.ReviewedAt)
	f.SetIfPresent("admin_notes", r.Notes)
	return f
}

// MentorRequestInconsistency flags a resolved request whose student pointers
// do not reflect the decision.
type MentorRequestInconsistency struct {
	RequestID         string              `db:"request_id" json:"requestId"`
	StudentID         string              `db:"student_id" json:"studentId"`
	Status            MentorRequestStatus `db:"status" json:"status"`
	RequestedMentorID string              `db:"requested_mentor_id" json:"requestedMentorId"`
	StudentMentorID   string              `db:"student_mentor_id" json:"studentMentorId"`
	StudentPendingID  string              `db:"student_pending_mentor_id" json:"studentPendingMentorId"`
	ReviewedAt        *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
}
