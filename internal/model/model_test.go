package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"classtrack/internal/classday"
)

func TestEffectiveDayPrefersCachedTag(t *testing.T) {
	d := classday.Sunday
	rec := AttendanceRecord{Date: "2024-03-03", Day: &d}
	assert.Equal(t, classday.Sunday, rec.EffectiveDay())
}

func TestEffectiveDayFallsBackToClassifier(t *testing.T) {
	// Legacy rows carry no day tag.
	rec := AttendanceRecord{Date: "2024-03-06"}
	assert.Equal(t, classday.Wednesday, rec.EffectiveDay())

	rec = AttendanceRecord{Date: "2024-03-05"}
	assert.Equal(t, classday.None, rec.EffectiveDay())
}

func TestAttendanceOn(t *testing.T) {
	st := Student{Attendance: []AttendanceRecord{
		{Date: "2024-03-03", Present: true},
		{Date: "2024-03-06", Present: false},
	}}

	rec, ok := st.AttendanceOn("2024-03-03")
	assert.True(t, ok)
	assert.True(t, rec.Present)
	assert.True(t, st.PresentOn("2024-03-03"))

	assert.False(t, st.PresentOn("2024-03-06"))
	_, ok = st.AttendanceOn("2024-03-10")
	assert.False(t, ok)
	assert.False(t, st.PresentOn("2024-03-10"))
}
