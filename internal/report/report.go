// Package report computes attendance views from the full ledger. The
// engine is stateless: every call rescans all students' records, which
// is fine at the expected data volume (a single small organization).
package report

import (
	"context"
	"sort"

	"classtrack/internal/classday"
	"classtrack/internal/model"
)

// ClassAll selects every class group.
const ClassAll = "all"

// DayFilter restricts monthly reports to one class-day type.
type DayFilter string

const (
	DayAll       DayFilter = "all"
	DaySunday    DayFilter = "sunday"
	DayWednesday DayFilter = "wednesday"
)

func (f DayFilter) matches(d classday.Day) bool {
	switch f {
	case DaySunday:
		return d == classday.Sunday
	case DayWednesday:
		return d == classday.Wednesday
	default:
		return true
	}
}

// PresentStudent is one row of a daily snapshot's present list.
type PresentStudent struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Class string            `json:"class"`
	Age   int               `json:"age"`
	Type  model.StudentType `json:"type"`
}

// DailySnapshot partitions one date's roster into present and absent.
type DailySnapshot struct {
	Date            string           `json:"date"`
	Class           string           `json:"class"`
	TotalPresent    int              `json:"totalPresent"`
	PresentMembers  int              `json:"presentMembers"`
	PresentVisitors int              `json:"presentVisitors"`
	Absent          int              `json:"absent"`
	Present         []PresentStudent `json:"present"`
	// ByClass breaks presence down per class group, computed across the
	// whole roster. Only populated when no class filter is applied.
	ByClass map[string]int `json:"byClass,omitempty"`
}

// StudentTally is one row of a monthly report's per-student table.
type StudentTally struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Class    string            `json:"class"`
	Type     model.StudentType `json:"type"`
	Presence int               `json:"presence"`
}

// MonthlyReport aggregates one calendar month of ledger records.
type MonthlyReport struct {
	Year            int            `json:"year"`
	Month           int            `json:"month"`
	Class           string         `json:"class"`
	Day             DayFilter      `json:"day"`
	TotalPresences  int            `json:"totalPresences"`
	ServiceDays     int            `json:"serviceDays"`
	UniqueAttendees int            `json:"uniqueAttendees"`
	Average         float64        `json:"averagePerServiceDay"`
	Students        []StudentTally `json:"students"`
}

// HistoryEntry is one class date in a student's attendance history.
type HistoryEntry struct {
	Date        string       `json:"date"`
	Present     bool         `json:"present"`
	DismissedBy *string      `json:"dismissedBy"`
	Day         classday.Day `json:"day"`
}

// HistoryTally splits a student's history counts by class-day type.
type HistoryTally struct {
	ServiceDays int `json:"serviceDays"`
	Present     int `json:"present"`
	Absent      int `json:"absent"`
	Dismissed   int `json:"dismissed"`
}

// History is a per-student reverse-chronological attendance trail. The
// set of class dates is inferred from records across the whole roster,
// so a date nobody attended never appears, even if it was a valid
// class day.
type History struct {
	StudentID  string         `json:"studentId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Entries    []HistoryEntry `json:"entries"`
	Sundays    HistoryTally   `json:"sundays"`
	Wednesdays HistoryTally   `json:"wednesdays"`
}

func classMatch(s model.Student, class string) bool {
	return class == "" || class == ClassAll || s.Class == class
}

// Daily computes the snapshot for a date over the given roster,
// optionally restricted to one class group.
func Daily(students []model.Student, date, class string) DailySnapshot {
	snap := DailySnapshot{Date: date, Class: normalizeClass(class)}
	for _, st := range students {
		if !classMatch(st, class) {
			continue
		}
		if !st.PresentOn(date) {
			snap.Absent++
			continue
		}
		snap.TotalPresent++
		if st.Type == model.Visitor {
			snap.PresentVisitors++
		} else {
			snap.PresentMembers++
		}
		snap.Present = append(snap.Present, PresentStudent{
			ID: st.ID, Name: st.Name, Class: st.Class, Age: st.Age, Type: st.Type,
		})
	}
	sort.Slice(snap.Present, func(i, j int) bool {
		return snap.Present[i].Name < snap.Present[j].Name
	})
	if snap.Class == ClassAll {
		snap.ByClass = make(map[string]int)
		for _, st := range students {
			if _, ok := snap.ByClass[st.Class]; !ok {
				snap.ByClass[st.Class] = 0
			}
			if st.PresentOn(date) {
				snap.ByClass[st.Class]++
			}
		}
	}
	return snap
}

// Monthly aggregates every present record falling in (year, month) and
// matching the class and day filters. The average divides presences by
// distinct service days and is zero when the month had none.
func Monthly(students []model.Student, year, month int, class string, day DayFilter) MonthlyReport {
	rep := MonthlyReport{Year: year, Month: month, Class: normalizeClass(class), Day: day}
	serviceDays := make(map[string]struct{})
	for _, st := range students {
		if !classMatch(st, class) {
			continue
		}
		count := 0
		for _, rec := range st.Attendance {
			if !rec.Present || !inMonth(rec.Date, year, month) || !day.matches(rec.EffectiveDay()) {
				continue
			}
			count++
			serviceDays[rec.Date] = struct{}{}
		}
		if count == 0 {
			continue
		}
		rep.TotalPresences += count
		rep.UniqueAttendees++
		rep.Students = append(rep.Students, StudentTally{
			ID: st.ID, Name: st.Name, Class: st.Class, Type: st.Type, Presence: count,
		})
	}
	rep.ServiceDays = len(serviceDays)
	if rep.ServiceDays > 0 {
		rep.Average = float64(rep.TotalPresences) / float64(rep.ServiceDays)
	}
	sort.Slice(rep.Students, func(i, j int) bool {
		if rep.Students[i].Presence != rep.Students[j].Presence {
			return rep.Students[i].Presence > rep.Students[j].Presence
		}
		return rep.Students[i].Name < rep.Students[j].Name
	})
	return rep
}

// StudentHistory builds the attendance trail for one student between
// from and to inclusive. Class dates come from the union of all
// students' records in range.
func StudentHistory(students []model.Student, studentID, from, to string) (History, error) {
	hist := History{StudentID: studentID, From: from, To: to}
	var target *model.Student
	for i := range students {
		if students[i].ID == studentID {
			target = &students[i]
			break
		}
	}
	if target == nil {
		return History{}, model.ErrNotFound
	}

	// Empirical class-day calendar: every date observed in any record.
	dates := make(map[string]classday.Day)
	for _, st := range students {
		for _, rec := range st.Attendance {
			if rec.Date < from || rec.Date > to {
				continue
			}
			day := rec.EffectiveDay()
			if !day.IsClassDay() {
				continue
			}
			dates[rec.Date] = day
		}
	}

	ordered := make([]string, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ordered)))

	for _, date := range ordered {
		day := dates[date]
		entry := HistoryEntry{Date: date, Day: day}
		if rec, ok := target.AttendanceOn(date); ok {
			entry.Present = rec.Present
			entry.DismissedBy = rec.DismissedBy
		}
		hist.Entries = append(hist.Entries, entry)

		tally := &hist.Sundays
		if day == classday.Wednesday {
			tally = &hist.Wednesdays
		}
		tally.ServiceDays++
		if entry.Present {
			tally.Present++
		}
		if entry.DismissedBy != nil {
			tally.Dismissed++
		}
	}
	hist.Sundays.Absent = hist.Sundays.ServiceDays - hist.Sundays.Present
	hist.Wednesdays.Absent = hist.Wednesdays.ServiceDays - hist.Wednesdays.Present
	return hist, nil
}

func normalizeClass(class string) string {
	if class == "" {
		return ClassAll
	}
	return class
}

func inMonth(date string, year, month int) bool {
	t, err := classday.ParseDate(date)
	if err != nil {
		return false
	}
	return t.Year() == year && int(t.Month()) == month
}

// RosterReader is the read capability the report service needs.
type RosterReader interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
}

// Service loads the roster and runs the pure aggregation over it.
type Service struct {
	store RosterReader
}

// NewService creates a report service over a store.
func NewService(store RosterReader) *Service {
	return &Service{store: store}
}

// Daily returns the snapshot for a date.
func (s *Service) Daily(ctx context.Context, date, class string) (DailySnapshot, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return DailySnapshot{}, err
	}
	return Daily(students, date, class), nil
}

// Monthly returns the report for a calendar month.
func (s *Service) Monthly(ctx context.Context, year, month int, class string, day DayFilter) (MonthlyReport, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return MonthlyReport{}, err
	}
	return Monthly(students, year, month, class, day), nil
}

// History returns one student's attendance trail for a date range.
func (s *Service) History(ctx context.Context, studentID, from, to string) (History, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return History{}, err
	}
	return StudentHistory(students, studentID, from, to)
}
