package models

import (
	"encoding/json"
	"time"
)

// Audited actions.
const (
	AuditActionLogin                 = "LOGIN"
	AuditActionMentorRequestCreate   = "MENTOR_REQUEST_CREATE"
	AuditActionMentorRequestApprove  = "MENTOR_REQUEST_APPROVE"
	AuditActionMentorRequestReject   = "MENTOR_REQUEST_REJECT"
	AuditActionAssignmentCreate      = "ASSOCIATE_ASSIGNMENT_CREATE"
	AuditActionAssignmentDelete      = "ASSOCIATE_ASSIGNMENT_DELETE"
	AuditActionBugReportStatusChange = "BUG_REPORT_STATUS_CHANGE"
)

// AuditLog is one row of the audit trail.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NewAuditEntry builds a trail row written by a background component rather
// than a browser. source lands in the user agent column.
func NewAuditEntry(actorID, action, resource, resourceID, source string) *AuditLog {
	entry := &AuditLog{Action: action, Resource: resource, IPAddress: "system", UserAgent: source}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	return entry
}

// WithValues attaches JSON snapshots of the row before and after the change.
// Nil snapshots are left empty.
func (a *AuditLog) WithValues(before, after interface{}) *AuditLog {
	if before != nil {
		a.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		a.NewValues, _ = json.Marshal(after)
	}
	return a
}
