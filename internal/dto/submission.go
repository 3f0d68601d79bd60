package dto

// SubmitGoalRequest payload for a student's daily goal.
type SubmitGoalRequest struct {
	GoalText         string `json:"goalText" validate:"required,max=2000"`
	TargetPercentage int    `json:"targetPercentage" validate:"gte=0,lte=100"`
}

// SubmitReflectionRequest payload for a student's end-of-day reflection.
type SubmitReflectionRequest struct {
	GoalID             string `json:"goalId" validate:"required"`
	AchievedPercentage int    `json:"achievedPercentage" validate:"gte=0,lte=100"`
	ReflectionText     string `json:"reflectionText" validate:"required,max=4000"`
}

// ReviewSubmissionRequest carries a mentor's feedback.
type ReviewSubmissionRequest struct {
	Feedback string `json:"feedback" validate:"max=2000"`
}
