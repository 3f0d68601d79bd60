package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/middleware"
	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/service"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

var (
	adminClaims   = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	studentClaims = &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	mentorClaims  = &models.JWTClaims{UserID: "mentor-1", Role: models.RoleMentor}
)

type attendanceExporterMock struct {
	summary   *models.AttendanceSummary
	result    *service.ExportResult
	err       error
	lastQuery dto.AttendanceReportQuery
}

func (m *attendanceExporterMock) Summary(ctx context.Context, query dto.AttendanceReportQuery, actor *models.JWTClaims) (*models.AttendanceSummary, error) {
	m.lastQuery = query
	return m.summary, m.err
}

func (m *attendanceExporterMock) Render(ctx context.Context, query dto.AttendanceReportQuery, actor *models.JWTClaims) (*service.ExportResult, error) {
	m.lastQuery = query
	return m.result, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestReportHandlerAttendanceJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceExporterMock{summary: &models.AttendanceSummary{
		Kind:          models.SubmissionGoals,
		TotalStudents: 53,
		PresentCount:  45,
		AbsentCount:   8,
	}}
	handler := NewReportHandler(mock)

	c, w := newGinContext(http.MethodGet, "/reports/attendance?kind=Goals&date=2025-03-04", nil)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Attendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SubmissionGoals, mock.lastQuery.Kind)
	assert.Equal(t, dto.AttendanceFormatJSON, mock.lastQuery.Format)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), mock.lastQuery.Day)

	var body struct {
		Data dto.AttendanceReportResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 84.905, body.Data.Percentage, 0.01)
	assert.Equal(t, 45, body.Data.PresentCount)
}

func TestReportHandlerAttendanceDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceExporterMock{result: &service.ExportResult{
		Filename:    "goals-attendance-20250304.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("Student,Email,Status\n"),
	}}
	handler := NewReportHandler(mock)

	c, w := newGinContext(http.MethodGet, "/reports/attendance?kind=goals&format=csv", nil)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Attendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="goals-attendance-20250304.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Student,Email,Status\n", w.Body.String())
}

func TestReportHandlerAttendanceValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&attendanceExporterMock{})

	c, w := newGinContext(http.MethodGet, "/reports/attendance", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.Attendance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/reports/attendance?kind=goals&date=04-03-2025", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.Attendance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/reports/attendance?kind=goals", nil)
	handler.Attendance(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerAttendanceForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&attendanceExporterMock{err: appErrors.ErrForbidden})

	c, w := newGinContext(http.MethodGet, "/reports/attendance?kind=goals", nil)
	c.Set(middleware.ContextUserKey, mentorClaims)
	handler.Attendance(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}
