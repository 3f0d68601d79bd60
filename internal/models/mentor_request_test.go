package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDraft() MentorRequestDraft {
	return MentorRequestDraft{
		ID:                   "req-1",
		StudentID:            "student-1",
		StudentName:          "Asha",
		StudentEmail:         "asha@campus.test",
		RequestedMentorID:    "mentor-2",
		RequestedMentorName:  "Ravi",
		RequestedMentorEmail: "ravi@campus.test",
		CreatedAt:            time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestMentorRequestRecordOmitsUnsetOptionalFields(t *testing.T) {
	draft := baseDraft()
	draft.Reason = "   "

	record := draft.Record()

	require.NoError(t, record.Validate())
	for _, col := range []string{"current_mentor_id", "current_mentor_name", "reason"} {
		assert.False(t, record.Has(col), "unexpected column %s", col)
	}
	assert.Equal(t, "pending", record["status"])
}

func TestMentorRequestRecordIncludesSuppliedOptionalFields(t *testing.T) {
	draft := baseDraft()
	draft.CurrentMentorID = "mentor-1"
	draft.CurrentMentorName = "Meera"
	draft.Reason = "schedule clash"

	record := draft.Record()

	assert.Equal(t, "mentor-1", record["current_mentor_id"])
	assert.Equal(t, "Meera", record["current_mentor_name"])
	assert.Equal(t, "schedule clash", record["reason"])
}

func TestMentorRequestRecordDropsNameWithoutCurrentMentor(t *testing.T) {
	draft := baseDraft()
	draft.CurrentMentorName = "Orphan"

	record := draft.Record()
	assert.False(t, record.Has("current_mentor_name"))
}

func TestMentorRequestReviewRecordNotes(t *testing.T) {
	review := MentorRequestReview{
		Status:     MentorRequestApproved,
		ReviewedBy: "admin-1",
		ReviewedAt: time.Now(),
	}
	assert.False(t, review.Record().Has("admin_notes"))

	review.Notes = "ok"
	assert.Equal(t, "ok", review.Record()["admin_notes"])
}

func TestFieldsValidateRejectsAbsenceMarkers(t *testing.T) {
	var missing *string
	assert.Error(t, Fields{"reason": nil}.Validate())
	assert.Error(t, Fields{"reason": missing}.Validate())
	assert.NoError(t, Fields{"reason": ""}.Validate())
}

func TestFieldsColumnsSorted(t *testing.T) {
	f := Fields{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, f.Columns())
}

func TestMentorRequestStatusTerminal(t *testing.T) {
	assert.False(t, MentorRequestPending.Terminal())
	assert.True(t, MentorRequestApproved.Terminal())
	assert.True(t, MentorRequestRejected.Terminal())
}

func TestMentorCapacityFilterMatches(t *testing.T) {
	c := MentorCapacity{Campus: "Pune", House: "Bageshree", Phase: "2"}
	assert.True(t, MentorCapacityFilter{}.Matches(c))
	assert.True(t, MentorCapacityFilter{Campus: "Pune", Phase: "2"}.Matches(c))
	assert.False(t, MentorCapacityFilter{Campus: "pune"}.Matches(c))
	assert.False(t, MentorCapacityFilter{House: "Malhar"}.Matches(c))
}
