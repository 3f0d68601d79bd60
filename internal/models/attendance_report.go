package models

import "time"

// AttendanceSummary is the outcome of one reporter run over a single day.
type AttendanceSummary struct {
	Kind          SubmissionKind    `json:"kind"`
	Day           time.Time         `json:"day"`
	TotalStudents int               `json:"totalStudents"`
	PresentCount  int               `json:"presentCount"`
	AbsentCount   int               `json:"absentCount"`
	AbsentNames   []string          `json:"absentNames,omitempty"`
	Entries       []AttendanceEntry `json:"entries,omitempty"`
}

// AttendanceEntry is one active student's standing for the day.
type AttendanceEntry struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Present   bool   `json:"present"`
}

// Percentage returns the share of students present, 0 when there are none.
func (s AttendanceSummary) Percentage() float64 {
	if s.TotalStudents == 0 {
		return 0
	}
	return float64(s.PresentCount) * 100 / float64(s.TotalStudents)
}
