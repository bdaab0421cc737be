package academy

import (
	"context"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"academy/internal/apperr"
	"academy/internal/model"
	"academy/internal/queue"
	"academy/internal/store"
)

// CreateCourse validates and stores a course.
func (s *Session) CreateCourse(ctx context.Context, c model.Course) (model.Course, error) {
	id, err := s.create(ctx, store.Courses, c)
	if err != nil {
		return model.Course{}, err
	}
	c.ID = id
	if s.loaded {
		s.courses = append(s.courses, c)
	}
	return c, nil
}

// CreateStudent validates and stores a student. A missing join date is
// stamped with the current day.
func (s *Session) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	if st.JoinDate.IsZero() {
		st.JoinDate = s.now().UTC().Truncate(24 * time.Hour)
	}
	id, err := s.create(ctx, store.Students, st)
	if err != nil {
		return model.Student{}, err
	}
	st.ID = id
	if s.loaded {
		s.students = append(s.students, st)
	}
	return st, nil
}

// CreateTeacher validates and stores a teacher.
func (s *Session) CreateTeacher(ctx context.Context, t model.Teacher) (model.Teacher, error) {
	if t.JoinDate.IsZero() {
		t.JoinDate = s.now().UTC().Truncate(24 * time.Hour)
	}
	id, err := s.create(ctx, store.Teachers, t)
	if err != nil {
		return model.Teacher{}, err
	}
	t.ID = id
	if s.loaded {
		s.teachers = append(s.teachers, t)
	}
	return t, nil
}

func (s *Session) create(ctx context.Context, collection string, v any) (string, error) {
	doc, err := model.Encode(v)
	if err != nil {
		return "", err
	}
	id, err := s.store.Create(ctx, collection, doc)
	if err != nil {
		return "", err
	}
	s.log.Info("document created", zap.String("collection", collection), zap.String("id", id))
	return id, nil
}

// UpdateStudent merges patch, keyed by stored field names, into a student.
// The join date is fixed at creation.
func (s *Session) UpdateStudent(ctx context.Context, id string, patch store.Document) (model.Student, error) {
	if _, ok := patch["joinDate"]; ok {
		return model.Student{}, apperr.Invalid("joinDate cannot be changed")
	}
	rec, err := s.store.Get(ctx, store.Students, id)
	if err != nil {
		return model.Student{}, err
	}
	merged := store.Document{}
	maps.Copy(merged, rec.Doc)
	maps.Copy(merged, patch)

	var st model.Student
	if err := model.Decode(store.Record{ID: id, Doc: merged}, &st); err != nil {
		return model.Student{}, err
	}
	doc, err := model.Encode(st)
	if err != nil {
		return model.Student{}, err
	}
	if err := s.store.Update(ctx, store.Students, id, doc); err != nil {
		return model.Student{}, err
	}
	if i := slices.IndexFunc(s.students, func(x model.Student) bool { return x.ID == id }); i >= 0 {
		s.students[i] = st
	}
	s.log.Info("student updated", zap.String("id", id))
	return st, nil
}

// DeleteEntity removes a course, student or teacher. Batches that still
// reference it are left alone and show the id without a name.
func (s *Session) DeleteEntity(ctx context.Context, collection, id string) error {
	switch collection {
	case store.Courses, store.Students, store.Teachers:
	default:
		return apperr.Invalid("collection %q cannot be deleted through this call", collection)
	}
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return err
	}
	switch collection {
	case store.Courses:
		s.courses = slices.DeleteFunc(s.courses, func(c model.Course) bool { return c.ID == id })
	case store.Students:
		s.students = slices.DeleteFunc(s.students, func(st model.Student) bool { return st.ID == id })
	case store.Teachers:
		s.teachers = slices.DeleteFunc(s.teachers, func(t model.Teacher) bool { return t.ID == id })
	}
	s.log.Info("document deleted", zap.String("collection", collection), zap.String("id", id))
	s.publish(ctx, queue.Event{Kind: queue.DocumentDeleted, Collection: collection, ID: id})
	return nil
}
