package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/classday"
	"classtrack/internal/model"
)

const (
	sunday    = "2024-03-03"
	wednesday = "2024-03-06"
	tuesday   = "2024-03-05"
)

// memLedger mirrors the Postgres upsert semantics in memory.
type memLedger struct {
	recs map[string]model.AttendanceRecord
}

func newMemLedger() *memLedger {
	return &memLedger{recs: make(map[string]model.AttendanceRecord)}
}

func key(studentID, date string) string { return studentID + "|" + date }

func (m *memLedger) UpsertPresence(_ context.Context, studentID, date string, day classday.Day) error {
	rec, ok := m.recs[key(studentID, date)]
	if !ok {
		rec = model.AttendanceRecord{Date: date}
	}
	rec.Present = true
	rec.Day = &day
	m.recs[key(studentID, date)] = rec
	return nil
}

func (m *memLedger) ClearPresence(_ context.Context, studentID, date string) error {
	rec, ok := m.recs[key(studentID, date)]
	if !ok {
		return nil
	}
	rec.Present = false
	rec.DismissedBy = nil
	m.recs[key(studentID, date)] = rec
	return nil
}

func (m *memLedger) SetDismissal(_ context.Context, studentID, date, responsibleName string) error {
	rec, ok := m.recs[key(studentID, date)]
	if !ok {
		return model.ErrNotFound
	}
	rec.DismissedBy = &responsibleName
	m.recs[key(studentID, date)] = rec
	return nil
}

func (m *memLedger) GetAttendance(_ context.Context, studentID, date string) (model.AttendanceRecord, error) {
	rec, ok := m.recs[key(studentID, date)]
	if !ok {
		return model.AttendanceRecord{}, model.ErrNotFound
	}
	return rec, nil
}

func TestMarkPresentRejectsNonClassDay(t *testing.T) {
	store := newMemLedger()
	svc := NewService(store)
	ctx := context.Background()

	err := svc.MarkPresent(ctx, "s1", tuesday)
	assert.ErrorIs(t, err, ErrInvalidClassDay)
	assert.Empty(t, store.recs, "ledger must stay unchanged")

	err = svc.MarkPresent(ctx, "s1", "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMarkPresentIdempotent(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	require.NoError(t, svc.MarkPresent(ctx, "s1", sunday))
	first, err := svc.AttendanceOn(ctx, "s1", sunday)
	require.NoError(t, err)

	require.NoError(t, svc.MarkPresent(ctx, "s1", sunday))
	second, err := svc.AttendanceOn(ctx, "s1", sunday)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, second.Present)
	require.NotNil(t, second.Day)
	assert.Equal(t, classday.Sunday, *second.Day)
	assert.Nil(t, second.DismissedBy)
}

func TestUnmarkClearsDismissal(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	require.NoError(t, svc.MarkPresent(ctx, "s1", sunday))
	require.NoError(t, svc.RecordDismissal(ctx, "s1", "Maria", sunday))

	rec, err := svc.AttendanceOn(ctx, "s1", sunday)
	require.NoError(t, err)
	assert.True(t, rec.Present)
	require.NotNil(t, rec.DismissedBy)
	assert.Equal(t, "Maria", *rec.DismissedBy)

	require.NoError(t, svc.UnmarkPresent(ctx, "s1", sunday))
	rec, err = svc.AttendanceOn(ctx, "s1", sunday)
	require.NoError(t, err)
	assert.False(t, rec.Present)
	assert.Nil(t, rec.DismissedBy)
}

func TestUnmarkMissingRecordIsNoop(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	// No class-day gate either: retraction always works.
	assert.NoError(t, svc.UnmarkPresent(ctx, "s1", tuesday))
	_, err := svc.AttendanceOn(ctx, "s1", tuesday)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMarkUnmarkMarkRoundTrip(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	require.NoError(t, svc.MarkPresent(ctx, "s1", wednesday))
	require.NoError(t, svc.RecordDismissal(ctx, "s1", "João", wednesday))
	require.NoError(t, svc.UnmarkPresent(ctx, "s1", wednesday))
	require.NoError(t, svc.MarkPresent(ctx, "s1", wednesday))

	rec, err := svc.AttendanceOn(ctx, "s1", wednesday)
	require.NoError(t, err)
	assert.True(t, rec.Present)
	assert.Nil(t, rec.DismissedBy, "intermediate dismissal must not survive the unmark")
}

func TestRemarkKeepsDismissal(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	require.NoError(t, svc.MarkPresent(ctx, "s1", sunday))
	require.NoError(t, svc.RecordDismissal(ctx, "s1", "Maria", sunday))
	require.NoError(t, svc.MarkPresent(ctx, "s1", sunday))

	rec, err := svc.AttendanceOn(ctx, "s1", sunday)
	require.NoError(t, err)
	require.NotNil(t, rec.DismissedBy)
	assert.Equal(t, "Maria", *rec.DismissedBy)
}

func TestDismissalRequiresRecord(t *testing.T) {
	svc := NewService(newMemLedger())
	ctx := context.Background()

	err := svc.RecordDismissal(ctx, "s1", "Maria", sunday)
	assert.ErrorIs(t, err, ErrNoAttendanceRecord)

	err = svc.RecordDismissal(ctx, "s1", "", sunday)
	assert.ErrorIs(t, err, model.ErrValidation)
}
