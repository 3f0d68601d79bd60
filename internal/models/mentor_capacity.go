package models

// MentorCapacity summarises how many more mentees a mentor can take.
type MentorCapacity struct {
	Mentor             UserInfo `json:"mentor"`
	Campus             string   `json:"campus"`
	House              string   `json:"house"`
	Phase              string   `json:"phase"`
	CurrentMenteeCount int      `json:"currentMenteeCount"`
	MaxMentees         int      `json:"maxMentees"`
	AvailableSlots     int      `json:"availableSlots"`
}

// MentorCapacityFilter narrows the listing by exact match.
type MentorCapacityFilter struct {
	Campus string
	House  string
	Phase  string
}

// Matches applies the exact-match post filter.
func (f MentorCapacityFilter) Matches(c MentorCapacity) bool {
	if f.Campus != "" && f.Campus != c.Campus {
		return false
	}
	if f.House != "" && f.House != c.House {
		return false
	}
	if f.Phase != "" && f.Phase != c.Phase {
		return false
	}
	return true
}
