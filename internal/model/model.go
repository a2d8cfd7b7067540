// Package model defines the domain entities shared across services.
package model

import (
	"time"

	"classtrack/internal/classday"
)

// StudentType distinguishes enrolled members from visitors.
type StudentType string

const (
	Member  StudentType = "member"
	Visitor StudentType = "visitor"
)

// Student is a roster entry. Attendance records are owned by the
// student and unique per date.
type Student struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Class      string             `json:"class"`
	Age        int                `json:"age"`
	MotherName string             `json:"motherName"`
	Phone      string             `json:"phone"`
	Type       StudentType        `json:"type"`
	Attendance []AttendanceRecord `json:"attendance"`
	CreatedAt  time.Time          `json:"created_at,omitempty"`
}

// AttendanceRecord is one ledger row for a (student, date) pair.
// Day caches the class-day tag at write time; legacy rows have none,
// so readers must fall back to classifying the date.
type AttendanceRecord struct {
	Date        string        `json:"date"`
	Present     bool          `json:"present"`
	DismissedBy *string       `json:"dismissedBy"`
	Day         *classday.Day `json:"day,omitempty"`
}

// EffectiveDay returns the authoritative class-day type for the record:
// the cached tag when present, otherwise the classifier's output. The
// stored tag is only a cache and never overrides an unparseable date.
func (r AttendanceRecord) EffectiveDay() classday.Day {
	if r.Day != nil && *r.Day != classday.None {
		return *r.Day
	}
	d, _ := classday.ClassifyDate(r.Date)
	return d
}

// On reports whether the record belongs to the given date.
func (r AttendanceRecord) On(date string) bool { return r.Date == date }

// AttendanceOn returns the student's record for a date, if any.
func (s Student) AttendanceOn(date string) (AttendanceRecord, bool) {
	for _, rec := range s.Attendance {
		if rec.On(date) {
			return rec, true
		}
	}
	return AttendanceRecord{}, false
}

// PresentOn reports whether the student was marked present on a date.
func (s Student) PresentOn(date string) bool {
	rec, ok := s.AttendanceOn(date)
	return ok && rec.Present
}

// Volunteer is a named helper assignable to schedule roles. Created and
// edited externally; immutable from the core's perspective.
type Volunteer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleEntry assigns volunteers to roles for one class group on one
// date. Uniqueness is (date, class). MinisterIDs is an ordered list;
// order carries no meaning but must round-trip.
type ScheduleEntry struct {
	Date          string   `json:"date"`
	ClassName     string   `json:"className"`
	SupervisorID  *string  `json:"supervisorId"`
	CoordinatorID *string  `json:"coordinatorId"`
	DeskID        *string  `json:"deskId"`
	MinisterIDs   []string `json:"ministerIds"`
}

// Topic is an append-only lesson note, displayed newest first.
type Topic struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
