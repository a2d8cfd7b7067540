// Package roster manages students, volunteers, schedule entries and
// lesson topics. Ledger mutations stay in the attendance package; the
// one orchestration living here is visitor enrollment, which creates
// the student and then marks presence as two explicit sequential calls.
package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"classtrack/internal/classday"
	"classtrack/internal/model"
)

// StudentForm carries the roster fields common to create and edit.
type StudentForm struct {
	Name       string `json:"name" binding:"required"`
	Class      string `json:"class" binding:"required"`
	Age        int    `json:"age"`
	MotherName string `json:"motherName"`
	Phone      string `json:"phone"`
}

// Store is the persistence capability set the roster needs.
type Store interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudent(ctx context.Context, id string) (model.Student, error)
	InsertStudent(ctx context.Context, s model.Student) error
	UpdateStudent(ctx context.Context, id string, form StudentForm) error
	SetStudentType(ctx context.Context, id string, t model.StudentType) error
	DeleteStudent(ctx context.Context, id string) error
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
	ListSchedule(ctx context.Context) ([]model.ScheduleEntry, error)
	ListTopics(ctx context.Context) ([]model.Topic, error)
	InsertTopic(ctx context.Context, t model.Topic) error
}

// Ledger is the slice of the attendance service visitor enrollment
// depends on.
type Ledger interface {
	MarkPresent(ctx context.Context, studentID, date string) error
}

// Service implements roster operations over a store.
type Service struct {
	store  Store
	ledger Ledger
}

// NewService creates a roster service.
func NewService(store Store, ledger Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

func validateForm(form StudentForm) error {
	if form.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if form.Class == "" {
		return fmt.Errorf("%w: class is required", model.ErrValidation)
	}
	if form.Age < 0 {
		return fmt.Errorf("%w: age cannot be negative", model.ErrValidation)
	}
	return nil
}

// CreateStudent registers a new student of the given type.
func (s *Service) CreateStudent(ctx context.Context, form StudentForm, t model.StudentType) (model.Student, error) {
	if err := validateForm(form); err != nil {
		return model.Student{}, err
	}
	if t != model.Member && t != model.Visitor {
		return model.Student{}, fmt.Errorf("%w: unknown student type %q", model.ErrValidation, t)
	}
	st := model.Student{
		ID:         uuid.NewString(),
		Name:       form.Name,
		Class:      form.Class,
		Age:        form.Age,
		MotherName: form.MotherName,
		Phone:      form.Phone,
		Type:       t,
	}
	if err := s.store.InsertStudent(ctx, st); err != nil {
		return model.Student{}, err
	}
	return st, nil
}

// EnrollVisitor registers a visitor and marks them present for the
// enrollment date. Only valid on class days: a visitor exists in the
// roster because they showed up to a session.
func (s *Service) EnrollVisitor(ctx context.Context, form StudentForm, date string) (model.Student, error) {
	day, ok := classday.ClassifyDate(date)
	if !ok || !day.IsClassDay() {
		return model.Student{}, fmt.Errorf("%w: visitors can only be added on class days", model.ErrValidation)
	}
	st, err := s.CreateStudent(ctx, form, model.Visitor)
	if err != nil {
		return model.Student{}, err
	}
	if err := s.ledger.MarkPresent(ctx, st.ID, date); err != nil {
		return model.Student{}, err
	}
	return st, nil
}

// UpdateStudent edits roster fields; id, type and attendance history
// are preserved.
func (s *Service) UpdateStudent(ctx context.Context, id string, form StudentForm) error {
	if err := validateForm(form); err != nil {
		return err
	}
	return s.store.UpdateStudent(ctx, id, form)
}

// PromoteToMember turns a visitor into a member in place. There is no
// conjugate demotion.
func (s *Service) PromoteToMember(ctx context.Context, id string) error {
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if st.Type == model.Member {
		return nil
	}
	return s.store.SetStudentType(ctx, id, model.Member)
}

// DeleteStudent removes a student; attendance records cascade with it.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	return s.store.DeleteStudent(ctx, id)
}

// GetStudent returns one student with nested attendance.
func (s *Service) GetStudent(ctx context.Context, id string) (model.Student, error) {
	return s.store.GetStudent(ctx, id)
}

// ListStudents returns the full roster with nested attendance.
func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.store.ListStudents(ctx)
}

// ListVolunteers returns all volunteers ordered by name.
func (s *Service) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	return s.store.ListVolunteers(ctx)
}

// ListSchedule returns all schedule entries ordered by date.
func (s *Service) ListSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	return s.store.ListSchedule(ctx)
}

// ListTopics returns lesson topics, newest first.
func (s *Service) ListTopics(ctx context.Context) ([]model.Topic, error) {
	return s.store.ListTopics(ctx)
}

// AddTopic appends a lesson note.
func (s *Service) AddTopic(ctx context.Context, t model.Topic) error {
	if t.Date == "" || t.Title == "" || t.Description == "" {
		return fmt.Errorf("%w: date, title and description are required", model.ErrValidation)
	}
	if _, err := classday.ParseDate(t.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q", model.ErrValidation, t.Date)
	}
	return s.store.InsertTopic(ctx, t)
}
