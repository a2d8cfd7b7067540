package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/model"
)

type memStore struct {
	students map[string]model.Student
	topics   []model.Topic
}

func newMemStore() *memStore {
	return &memStore{students: make(map[string]model.Student)}
}

func (m *memStore) ListStudents(context.Context) ([]model.Student, error) {
	out := make([]model.Student, 0, len(m.students))
	for _, st := range m.students {
		out = append(out, st)
	}
	return out, nil
}

func (m *memStore) GetStudent(_ context.Context, id string) (model.Student, error) {
	st, ok := m.students[id]
	if !ok {
		return model.Student{}, model.ErrNotFound
	}
	return st, nil
}

func (m *memStore) InsertStudent(_ context.Context, st model.Student) error {
	m.students[st.ID] = st
	return nil
}

func (m *memStore) UpdateStudent(_ context.Context, id string, form StudentForm) error {
	st, ok := m.students[id]
	if !ok {
		return model.ErrNotFound
	}
	st.Name, st.Class, st.Age = form.Name, form.Class, form.Age
	st.MotherName, st.Phone = form.MotherName, form.Phone
	m.students[id] = st
	return nil
}

func (m *memStore) SetStudentType(_ context.Context, id string, t model.StudentType) error {
	st, ok := m.students[id]
	if !ok {
		return model.ErrNotFound
	}
	st.Type = t
	m.students[id] = st
	return nil
}

func (m *memStore) DeleteStudent(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memStore) ListVolunteers(context.Context) ([]model.Volunteer, error)   { return nil, nil }
func (m *memStore) ListSchedule(context.Context) ([]model.ScheduleEntry, error) { return nil, nil }
func (m *memStore) ListTopics(context.Context) ([]model.Topic, error)           { return m.topics, nil }
func (m *memStore) InsertTopic(_ context.Context, t model.Topic) error {
	m.topics = append(m.topics, t)
	return nil
}

type memLedger struct {
	marked map[string]string // studentID -> date
}

func (m *memLedger) MarkPresent(_ context.Context, studentID, date string) error {
	if m.marked == nil {
		m.marked = make(map[string]string)
	}
	m.marked[studentID] = date
	return nil
}

func validForm() StudentForm {
	return StudentForm{Name: "Ana", Class: "Juniores", Age: 9, MotherName: "Carla", Phone: "9999-0000"}
}

func TestCreateStudentValidation(t *testing.T) {
	svc := NewService(newMemStore(), &memLedger{})
	ctx := context.Background()

	_, err := svc.CreateStudent(ctx, StudentForm{Class: "Juniores"}, model.Member)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateStudent(ctx, StudentForm{Name: "Ana"}, model.Member)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateStudent(ctx, validForm(), model.StudentType("guest"))
	assert.ErrorIs(t, err, model.ErrValidation)

	st, err := svc.CreateStudent(ctx, validForm(), model.Member)
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, model.Member, st.Type)
}

func TestEnrollVisitorMarksPresence(t *testing.T) {
	store := newMemStore()
	ledger := &memLedger{}
	svc := NewService(store, ledger)
	ctx := context.Background()

	// 2024-03-06 is a Wednesday.
	st, err := svc.EnrollVisitor(ctx, validForm(), "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, model.Visitor, st.Type)
	assert.Equal(t, "2024-03-06", ledger.marked[st.ID])
}

func TestEnrollVisitorRejectsNonClassDay(t *testing.T) {
	store := newMemStore()
	ledger := &memLedger{}
	svc := NewService(store, ledger)
	ctx := context.Background()

	// 2024-03-05 is a Tuesday.
	_, err := svc.EnrollVisitor(ctx, validForm(), "2024-03-05")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, store.students)
	assert.Empty(t, ledger.marked)
}

func TestPromoteToMember(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &memLedger{})
	ctx := context.Background()

	st, err := svc.CreateStudent(ctx, validForm(), model.Visitor)
	require.NoError(t, err)

	require.NoError(t, svc.PromoteToMember(ctx, st.ID))
	got, err := svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Member, got.Type)

	// Promoting a member again is a no-op, not an error.
	assert.NoError(t, svc.PromoteToMember(ctx, st.ID))

	err = svc.PromoteToMember(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAddTopicValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &memLedger{})
	ctx := context.Background()

	err := svc.AddTopic(ctx, model.Topic{Title: "Parábolas"})
	assert.ErrorIs(t, err, model.ErrValidation)

	err = svc.AddTopic(ctx, model.Topic{Date: "06/03/2024", Title: "Parábolas", Description: "Lucas 15"})
	assert.ErrorIs(t, err, model.ErrValidation)

	err = svc.AddTopic(ctx, model.Topic{Date: "2024-03-06", Title: "Parábolas", Description: "Lucas 15"})
	require.NoError(t, err)
	assert.Len(t, store.topics, 1)
}
