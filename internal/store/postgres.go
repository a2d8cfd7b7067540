package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"classtrack/internal/classday"
	"classtrack/internal/model"
	"classtrack/internal/roster"
)

// Repository persists the roster and the attendance ledger in Postgres.
// It satisfies roster.Store, attendance.LedgerStore and
// report.RosterReader.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrStoreUnavailable, op, err)
}

// ListStudents returns every student ordered by name, with their
// attendance records attached.
func (r *Repository) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, class, age, mother_name, phone, type, created_at
		FROM students
		ORDER BY name
	`)
	if err != nil {
		return nil, storeErr("list students", err)
	}
	defer rows.Close()

	var students []model.Student
	index := make(map[string]int)
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Class, &st.Age, &st.MotherName, &st.Phone, &st.Type, &st.CreatedAt); err != nil {
			return nil, storeErr("scan student", err)
		}
		st.Attendance = []model.AttendanceRecord{}
		index[st.ID] = len(students)
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list students", err)
	}

	attRows, err := r.db.QueryContext(ctx, `
		SELECT student_id, date, present, dismissed_by, day
		FROM attendance
		ORDER BY date
	`)
	if err != nil {
		return nil, storeErr("list attendance", err)
	}
	defer attRows.Close()
	for attRows.Next() {
		var studentID string
		rec, err := scanAttendance(attRows, &studentID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[studentID]; ok {
			students[i].Attendance = append(students[i].Attendance, rec)
		}
	}
	if err := attRows.Err(); err != nil {
		return nil, storeErr("list attendance", err)
	}
	return students, nil
}

// GetStudent returns one student with attendance, or model.ErrNotFound.
func (r *Repository) GetStudent(ctx context.Context, id string) (model.Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, class, age, mother_name, phone, type, created_at
		FROM students WHERE id = $1
	`, id)
	var st model.Student
	if err := row.Scan(&st.ID, &st.Name, &st.Class, &st.Age, &st.MotherName, &st.Phone, &st.Type, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Student{}, model.ErrNotFound
		}
		return model.Student{}, storeErr("get student", err)
	}
	st.Attendance = []model.AttendanceRecord{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, date, present, dismissed_by, day
		FROM attendance WHERE student_id = $1
		ORDER BY date
	`, id)
	if err != nil {
		return model.Student{}, storeErr("get student attendance", err)
	}
	defer rows.Close()
	for rows.Next() {
		var studentID string
		rec, err := scanAttendance(rows, &studentID)
		if err != nil {
			return model.Student{}, err
		}
		st.Attendance = append(st.Attendance, rec)
	}
	return st, rows.Err()
}

// InsertStudent writes a new roster entry.
func (r *Repository) InsertStudent(ctx context.Context, st model.Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, class, age, mother_name, phone, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, st.ID, st.Name, st.Class, st.Age, st.MotherName, st.Phone, st.Type)
	if err != nil {
		return storeErr("insert student", err)
	}
	return nil
}

// UpdateStudent edits roster fields in place.
func (r *Repository) UpdateStudent(ctx context.Context, id string, form roster.StudentForm) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, class = $3, age = $4, mother_name = $5, phone = $6
		WHERE id = $1
	`, id, form.Name, form.Class, form.Age, form.MotherName, form.Phone)
	if err != nil {
		return storeErr("update student", err)
	}
	return requireRow(res)
}

// SetStudentType mutates the member/visitor type only.
func (r *Repository) SetStudentType(ctx context.Context, id string, t model.StudentType) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET type = $2 WHERE id = $1`, id, t)
	if err != nil {
		return storeErr("set student type", err)
	}
	return requireRow(res)
}

// DeleteStudent removes a student; attendance rows cascade.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete student", err)
	}
	return requireRow(res)
}

// UpsertPresence marks a student present on a date in one statement.
// The conflict branch refreshes the day tag but leaves dismissed_by
// alone, so re-marking after a dismissal keeps the dismissal.
func (r *Repository) UpsertPresence(ctx context.Context, studentID, date string, day classday.Day) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (student_id, date, present, day)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (student_id, date) DO UPDATE SET
			present = TRUE,
			day = EXCLUDED.day
	`, studentID, date, string(day))
	if err != nil {
		return storeErr("upsert presence", err)
	}
	return nil
}

// ClearPresence unmarks presence and drops the dismissal together.
// No row for the date is a no-op, not an error.
func (r *Repository) ClearPresence(ctx context.Context, studentID, date string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance
		SET present = FALSE, dismissed_by = NULL
		WHERE student_id = $1 AND date = $2
	`, studentID, date)
	if err != nil {
		return storeErr("clear presence", err)
	}
	return nil
}

// SetDismissal records who picked the student up. model.ErrNotFound
// when no attendance row exists for the date.
func (r *Repository) SetDismissal(ctx context.Context, studentID, date, responsibleName string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance
		SET dismissed_by = $3
		WHERE student_id = $1 AND date = $2
	`, studentID, date, responsibleName)
	if err != nil {
		return storeErr("set dismissal", err)
	}
	return requireRow(res)
}

// GetAttendance returns the record for (studentID, date).
func (r *Repository) GetAttendance(ctx context.Context, studentID, date string) (model.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, date, present, dismissed_by, day
		FROM attendance
		WHERE student_id = $1 AND date = $2
	`, studentID, date)
	var rec model.AttendanceRecord
	var sid string
	var dismissedBy, day sql.NullString
	if err := row.Scan(&sid, &rec.Date, &rec.Present, &dismissedBy, &day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AttendanceRecord{}, model.ErrNotFound
		}
		return model.AttendanceRecord{}, storeErr("get attendance", err)
	}
	applyNullable(&rec, dismissedBy, day)
	return rec, nil
}

// ListVolunteers returns all volunteers ordered by name.
func (r *Repository) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM volunteers ORDER BY name`)
	if err != nil {
		return nil, storeErr("list volunteers", err)
	}
	defer rows.Close()
	var vols []model.Volunteer
	for rows.Next() {
		var v model.Volunteer
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, storeErr("scan volunteer", err)
		}
		vols = append(vols, v)
	}
	return vols, rows.Err()
}

// ListSchedule returns all schedule entries ordered by date. Minister
// ids are stored comma-joined and split back preserving order.
func (r *Repository) ListSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, class_name, supervisor_id, coordinator_id, desk_id, minister_ids
		FROM schedule
		ORDER BY date
	`)
	if err != nil {
		return nil, storeErr("list schedule", err)
	}
	defer rows.Close()
	var entries []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		var supervisor, coordinator, desk sql.NullString
		var ministers string
		if err := rows.Scan(&e.Date, &e.ClassName, &supervisor, &coordinator, &desk, &ministers); err != nil {
			return nil, storeErr("scan schedule entry", err)
		}
		e.SupervisorID = nullable(supervisor)
		e.CoordinatorID = nullable(coordinator)
		e.DeskID = nullable(desk)
		e.MinisterIDs = SplitMinisterIDs(ministers)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListTopics returns lesson topics, newest first.
func (r *Repository) ListTopics(ctx context.Context) ([]model.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, title, description FROM topics ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, storeErr("list topics", err)
	}
	defer rows.Close()
	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.Date, &t.Title, &t.Description); err != nil {
			return nil, storeErr("scan topic", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// InsertTopic appends a lesson note.
func (r *Repository) InsertTopic(ctx context.Context, t model.Topic) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO topics (date, title, description) VALUES ($1, $2, $3)
	`, t.Date, t.Title, t.Description)
	if err != nil {
		return storeErr("insert topic", err)
	}
	return nil
}

// SplitMinisterIDs decodes the comma-joined storage encoding.
func SplitMinisterIDs(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}

// JoinMinisterIDs encodes an ordered minister id list for storage.
func JoinMinisterIDs(ids []string) string {
	return strings.Join(ids, ",")
}

type attendanceScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row attendanceScanner, studentID *string) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	var dismissedBy, day sql.NullString
	if err := row.Scan(studentID, &rec.Date, &rec.Present, &dismissedBy, &day); err != nil {
		return model.AttendanceRecord{}, storeErr("scan attendance", err)
	}
	applyNullable(&rec, dismissedBy, day)
	return rec, nil
}

func applyNullable(rec *model.AttendanceRecord, dismissedBy, day sql.NullString) {
	rec.DismissedBy = nullable(dismissedBy)
	if day.Valid && day.String != "" {
		d := classday.Day(day.String)
		rec.Day = &d
	}
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
