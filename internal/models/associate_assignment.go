package models

import "time"

// AssociateAssignment scopes an academic associate to a campus and optionally a house.
type AssociateAssignment struct {
	ID          string    `db:"id" json:"id"`
	AssociateID string    `db:"associate_id" json:"associateId"`
	Campus      string    `db:"campus" json:"campus"`
	House       *string   `db:"house" json:"house,omitempty"`
	AssignedBy  string    `db:"assigned_by" json:"assignedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// AssociateAssignmentFilter constrains listing queries.
type AssociateAssignmentFilter struct {
	AssociateID string
	Campus      string
}
