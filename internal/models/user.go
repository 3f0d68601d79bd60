package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin        UserRole = "SUPERADMIN"
	RoleAdmin             UserRole = "ADMIN"
	RoleAcademicAssociate UserRole = "ACADEMIC_ASSOCIATE"
	RoleMentor            UserRole = "MENTOR"
	RoleStudent           UserRole = "STUDENT"
)

// IsAdmin reports whether the role may manage requests and assignments.
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// User represents an application user stored in the users table. Mentor
// pointers are plain strings: an unset pointer is stored as an empty string, never NULL.
type User struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	FullName        string    `db:"full_name" json:"full_name"`
	Role            UserRole  `db:"role" json:"role"`
	Active          bool      `db:"active" json:"active"`
	Campus          string    `db:"campus" json:"campus"`
	House           string    `db:"house" json:"house"`
	Phase           string    `db:"phase" json:"phase"`
	MaxMentees      int       `db:"max_mentees" json:"max_mentees"`
	MentorID        string    `db:"mentor_id" json:"mentor_id"`
	PendingMentorID string    `db:"pending_mentor_id" json:"pending_mentor_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasPendingMentor reports whether a mentor change is awaiting a decision.
func (u *User) HasPendingMentor() bool {
	return u != nil && u.PendingMentorID != ""
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	MentorID string
	Campus   string
	House    string
}
