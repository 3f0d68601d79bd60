package dto

// CreateAssociateAssignmentRequest scopes an academic associate.
type CreateAssociateAssignmentRequest struct {
	AssociateID string `json:"associateId" validate:"required"`
	Campus      string `json:"campus" validate:"required,max=100"`
	House       string `json:"house" validate:"max=100"`
}
