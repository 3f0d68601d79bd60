package models

import "time"

// ReviewStatus tracks whether a mentor has looked at a submission.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusReviewed ReviewStatus = "reviewed"
)

// DailyGoal is a student's plan for the day.
type DailyGoal struct {
	ID               string       `db:"id" json:"id"`
	StudentID        string       `db:"student_id" json:"studentId"`
	GoalText         string       `db:"goal_text" json:"goalText"`
	TargetPercentage int          `db:"target_percentage" json:"targetPercentage"`
	ReviewStatus     ReviewStatus `db:"review_status" json:"reviewStatus"`
	MentorID         string       `db:"mentor_id" json:"mentorId"`
	MentorFeedback   string       `db:"mentor_feedback" json:"mentorFeedback"`
	ReviewedAt       *time.Time   `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
}

// DailyReflection is a student's end-of-day look back at a goal.
type DailyReflection struct {
	ID                 string       `db:"id" json:"id"`
	StudentID          string       `db:"student_id" json:"studentId"`
	GoalID             string       `db:"goal_id" json:"goalId"`
	AchievedPercentage int          `db:"achieved_percentage" json:"achievedPercentage"`
	ReflectionText     string       `db:"reflection_text" json:"reflectionText"`
	ReviewStatus       ReviewStatus `db:"review_status" json:"reviewStatus"`
	MentorID           string       `db:"mentor_id" json:"mentorId"`
	MentorFeedback     string       `db:"mentor_feedback" json:"mentorFeedback"`
	ReviewedAt         *time.Time   `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"createdAt"`
}

// SubmissionKind names the two daily submission collections.
type SubmissionKind string

const (
	SubmissionGoals       SubmissionKind = "goals"
	SubmissionReflections SubmissionKind = "reflections"
)

// Valid reports whether k is a known submission collection.
func (k SubmissionKind) Valid() bool {
	return k == SubmissionGoals || k == SubmissionReflections
}

// Table returns the backing table name.
func (k SubmissionKind) Table() string {
	if k == SubmissionReflections {
		return "daily_reflections"
	}
	return "daily_goals"
}

// SubmissionReview is a mentor's feedback on a goal or reflection.
type SubmissionReview struct {
	MentorID   string
	Feedback   string
	ReviewedAt time.Time
}

// MenteeDay groups one mentee's submissions for a single day.
type MenteeDay struct {
	Student     UserInfo          `json:"student"`
	Goals       []DailyGoal       `json:"goals"`
	Reflections []DailyReflection `json:"reflections"`
}
