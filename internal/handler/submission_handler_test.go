package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/middleware"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type submissionServiceMock struct {
	goalReq     dto.SubmitGoalRequest
	goalErr     error
	mentorID    string
	day         time.Time
	reviewedIDs []string
	reviewErr   error
}

func (m *submissionServiceMock) SubmitGoal(ctx context.Context, req dto.SubmitGoalRequest, actor *models.JWTClaims) (*models.DailyGoal, error) {
	m.goalReq = req
	if m.goalErr != nil {
		return nil, m.goalErr
	}
	return &models.DailyGoal{ID: "goal-1", StudentID: actor.UserID, GoalText: req.GoalText}, nil
}

func (m *submissionServiceMock) SubmitReflection(ctx context.Context, req dto.SubmitReflectionRequest, actor *models.JWTClaims) (*models.DailyReflection, error) {
	return &models.DailyReflection{ID: "ref-1", GoalID: req.GoalID}, nil
}

func (m *submissionServiceMock) ListMenteeSubmissions(ctx context.Context, mentorID string, day time.Time, actor *models.JWTClaims) ([]models.MenteeDay, error) {
	m.mentorID = mentorID
	m.day = day
	return []models.MenteeDay{}, nil
}

func (m *submissionServiceMock) ReviewGoal(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error {
	m.reviewedIDs = append(m.reviewedIDs, "goal:"+id)
	return m.reviewErr
}

func (m *submissionServiceMock) ReviewReflection(ctx context.Context, id string, req dto.ReviewSubmissionRequest, actor *models.JWTClaims) error {
	m.reviewedIDs = append(m.reviewedIDs, "reflection:"+id)
	return m.reviewErr
}

func TestSubmissionHandlerSubmitGoal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &submissionServiceMock{}
	handler := NewSubmissionHandler(mock)

	c, w := newGinContext(http.MethodPost, "/submissions/goals", []byte(`{"goalText":"Finish recursion set","targetPercentage":80}`))
	c.Set(middleware.ContextUserKey, studentClaims)
	handler.SubmitGoal(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 80, mock.goalReq.TargetPercentage)
}

func TestSubmissionHandlerSubmitGoalConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&submissionServiceMock{goalErr: appErrors.Clone(appErrors.ErrConflict, "goal already submitted today")})

	c, w := newGinContext(http.MethodPost, "/submissions/goals", []byte(`{"goalText":"again"}`))
	c.Set(middleware.ContextUserKey, studentClaims)
	handler.SubmitGoal(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmissionHandlerMentees(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &submissionServiceMock{}
	handler := NewSubmissionHandler(mock)

	c, w := newGinContext(http.MethodGet, "/submissions/mentees?date=2025-03-04&mentorId=mentor-9", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.Mentees(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mentor-9", mock.mentorID)
	assert.Equal(t, "2025-03-04", mock.day.Format("2006-01-02"))

	c, w = newGinContext(http.MethodGet, "/submissions/mentees?date=yesterday", nil)
	c.Set(middleware.ContextUserKey, mentorClaims)
	handler.Mentees(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerReview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &submissionServiceMock{}
	handler := NewSubmissionHandler(mock)

	c, w := newGinContext(http.MethodPost, "/submissions/goals/goal-1/review", []byte(`{"feedback":"good scope"}`))
	c.Params = gin.Params{{Key: "id", Value: "goal-1"}}
	c.Set(middleware.ContextUserKey, mentorClaims)
	handler.ReviewGoal(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)

	c, _ = newGinContext(http.MethodPost, "/submissions/reflections/ref-1/review", []byte(`{"feedback":"noted"}`))
	c.Params = gin.Params{{Key: "id", Value: "ref-1"}}
	c.Set(middleware.ContextUserKey, mentorClaims)
	handler.ReviewReflection(c)

	assert.Equal(t, []string{"goal:goal-1", "reflection:ref-1"}, mock.reviewedIDs)
}

func TestSubmissionHandlerReviewForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&submissionServiceMock{reviewErr: appErrors.Clone(appErrors.ErrForbidden, "not this student's mentor")})

	c, w := newGinContext(http.MethodPost, "/submissions/goals/goal-1/review", []byte(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "goal-1"}}
	c.Set(middleware.ContextUserKey, mentorClaims)
	handler.ReviewGoal(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
