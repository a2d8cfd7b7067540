// Package attendance implements the ledger of per-student, per-date
// presence and dismissal facts. The ledger is the single source of
// truth; all reports derive from it.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"classtrack/internal/classday"
	"classtrack/internal/model"
)

var (
	// ErrInvalidClassDay rejects presence marking on a date that is
	// neither a Sunday nor a Wednesday.
	ErrInvalidClassDay = errors.New("presence can only be marked on Sundays or Wednesdays")
	// ErrNoAttendanceRecord rejects a dismissal for a date with no
	// presence record. Dismissal presupposes presence was marked.
	ErrNoAttendanceRecord = errors.New("no attendance record for that date")
	// ErrInvalidDate rejects dates that do not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// LedgerStore is the persistence capability the ledger needs. Each
// method must execute as a single atomic statement against the store so
// concurrent clients cannot observe partial writes.
type LedgerStore interface {
	// UpsertPresence inserts or updates the (studentID, date) record,
	// setting present=true and refreshing the day tag. It must leave
	// dismissed_by untouched on update.
	UpsertPresence(ctx context.Context, studentID, date string, day classday.Day) error
	// ClearPresence sets present=false and clears dismissed_by.
	// A missing record is not an error.
	ClearPresence(ctx context.Context, studentID, date string) error
	// SetDismissal records the responsible person on an existing
	// record, returning model.ErrNotFound when none exists.
	SetDismissal(ctx context.Context, studentID, date, responsibleName string) error
	// GetAttendance returns the record for (studentID, date), or
	// model.ErrNotFound.
	GetAttendance(ctx context.Context, studentID, date string) (model.AttendanceRecord, error)
}

// Service coordinates ledger mutations behind the class-day gate.
type Service struct {
	store LedgerStore
}

// NewService creates a ledger service over a store.
func NewService(store LedgerStore) *Service {
	return &Service{store: store}
}

// MarkPresent marks a student present on a class day. Idempotent: the
// record is upserted in place, never duplicated, and an existing
// dismissal survives re-marking.
func (s *Service) MarkPresent(ctx context.Context, studentID, date string) error {
	day, ok := classday.ClassifyDate(date)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if !day.IsClassDay() {
		return ErrInvalidClassDay
	}
	return s.store.UpsertPresence(ctx, studentID, date, day)
}

// UnmarkPresent retracts a presence mark and unconditionally clears the
// dismissal: a student cannot stay "picked up" while marked absent.
// Not gated on the class day so mistakes are always correctable; a
// missing record is a no-op.
func (s *Service) UnmarkPresent(ctx context.Context, studentID, date string) error {
	if _, err := classday.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return s.store.ClearPresence(ctx, studentID, date)
}

// RecordDismissal authorizes release of a present student to a named
// responsible person. Fails with ErrNoAttendanceRecord when presence
// was never marked for the date, so dismissal intent is never silently
// lost.
func (s *Service) RecordDismissal(ctx context.Context, studentID, responsibleName, date string) error {
	if responsibleName == "" {
		return fmt.Errorf("%w: responsible name required", model.ErrValidation)
	}
	err := s.store.SetDismissal(ctx, studentID, date, responsibleName)
	if errors.Is(err, model.ErrNotFound) {
		return ErrNoAttendanceRecord
	}
	return err
}

// AttendanceOn returns the ledger record for (studentID, date), or
// model.ErrNotFound when the date was never marked.
func (s *Service) AttendanceOn(ctx context.Context, studentID, date string) (model.AttendanceRecord, error) {
	return s.store.GetAttendance(ctx, studentID, date)
}
