package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

func newExportServiceForTest(t *testing.T) *ExportService {
	t.Helper()
	students := []models.User{
		{ID: "s1", FullName: "Zoya Khan", Email: "zoya@campus.test", Role: models.RoleStudent, Active: true},
		{ID: "s2", FullName: "Arjun Das", Email: "arjun@campus.test", Role: models.RoleStudent, Active: true},
	}
	reports := NewAttendanceReportService(&stubStudentDirectory{users: students}, &stubSubmitters{ids: []string{"s1"}}, nil, nil, AttendanceReportConfig{}, nil)
	return NewExportService(reports, nil, nil, zap.NewNop())
}

func exportQuery(format dto.AttendanceReportFormat) dto.AttendanceReportQuery {
	return dto.AttendanceReportQuery{
		Kind:   models.SubmissionGoals,
		Day:    time.Date(2025, 3, 4, 6, 0, 0, 0, time.UTC),
		Format: format,
	}
}

func TestExportServiceRenderCSV(t *testing.T) {
	svc := newExportServiceForTest(t)

	result, err := svc.Render(context.Background(), exportQuery(dto.AttendanceFormatCSV), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "goals-attendance-20250304.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Email,Status", lines[0])
	assert.Equal(t, "Arjun Das,arjun@campus.test,absent", lines[1])
	assert.Equal(t, "Zoya Khan,zoya@campus.test,present", lines[2])
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := newExportServiceForTest(t)

	result, err := svc.Render(context.Background(), exportQuery(dto.AttendanceFormatPDF), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF-")))
}

func TestExportServiceRejects(t *testing.T) {
	svc := newExportServiceForTest(t)

	_, err := svc.Render(context.Background(), exportQuery("xlsx"), adminActor)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Render(context.Background(), exportQuery(dto.AttendanceFormatCSV), mentorActor)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))

	query := exportQuery(dto.AttendanceFormatJSON)
	query.Kind = "attendance"
	_, err = svc.Summary(context.Background(), query, adminActor)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestAttendanceDatasetNotes(t *testing.T) {
	summary := &models.AttendanceSummary{Kind: models.SubmissionReflections, Day: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), TotalStudents: 53, PresentCount: 45, AbsentCount: 8}
	data := AttendanceDataset(summary)
	assert.Equal(t, "Daily Reflections Attendance - 2025-03-04", data.Title)
	assert.Contains(t, data.Notes, "Attendance: 84.9%")
}
