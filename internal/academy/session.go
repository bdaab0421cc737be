// Package academy coordinates batch management and attendance marking over
// the entity store. A Session owns the in-memory mirrors of one client.
package academy

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"academy/internal/model"
	"academy/internal/queue"
	"academy/internal/roster"
	"academy/internal/store"
)

// Session holds the mirrors fetched for one client. It is not safe for
// concurrent use; each client gets its own.
type Session struct {
	store store.Store
	pub   queue.Publisher
	log   *zap.Logger
	now   func() time.Time

	loaded   bool
	courses  []model.Course
	students []model.Student
	teachers []model.Teacher
	batches  []model.Batch
}

// NewSession creates an unloaded session. A nil publisher discards events.
func NewSession(s store.Store, pub queue.Publisher, log *zap.Logger) *Session {
	if pub == nil {
		pub = queue.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: s, pub: pub, log: log, now: time.Now}
}

// Load fetches every collection the workflows depend on. Unreadable
// documents are logged and left out. On failure the previous mirrors are
// kept.
func (s *Session) Load(ctx context.Context) error {
	courses, err := list[model.Course](ctx, s, store.Courses)
	if err != nil {
		return err
	}
	students, err := list[model.Student](ctx, s, store.Students)
	if err != nil {
		return err
	}
	teachers, err := list[model.Teacher](ctx, s, store.Teachers)
	if err != nil {
		return err
	}
	batches, err := list[model.Batch](ctx, s, store.Batches)
	if err != nil {
		return err
	}
	s.courses, s.students, s.teachers, s.batches = courses, students, teachers, batches
	s.loaded = true
	return nil
}

// Invalidate drops the mirrors; the next operation reloads them.
func (s *Session) Invalidate() {
	s.loaded = false
	s.courses, s.students, s.teachers, s.batches = nil, nil, nil, nil
}

// Loaded reports whether the mirrors are populated.
func (s *Session) Loaded() bool { return s.loaded }

func (s *Session) ensure(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.Load(ctx)
}

func list[T any](ctx context.Context, s *Session, collection string) ([]T, error) {
	recs, err := s.store.ListAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return model.DecodeAll[T](recs, func(rec store.Record, err error) {
		s.log.Warn("skipping unreadable document",
			zap.String("collection", collection),
			zap.String("id", rec.ID),
			zap.Error(err))
	}), nil
}

// Snapshot returns the id sets used to resolve batch drafts.
func (s *Session) Snapshot() roster.Snapshot {
	return roster.NewSnapshot(s.courses, s.students, s.teachers)
}

// Courses, Students and Teachers expose the mirrors.
func (s *Session) Courses() []model.Course   { return slices.Clone(s.courses) }
func (s *Session) Students() []model.Student { return slices.Clone(s.students) }
func (s *Session) Teachers() []model.Teacher { return slices.Clone(s.teachers) }

func (s *Session) student(id string) (model.Student, bool) {
	i := slices.IndexFunc(s.students, func(st model.Student) bool { return st.ID == id })
	if i < 0 {
		return model.Student{}, false
	}
	return s.students[i], true
}

func (s *Session) batch(id string) (model.Batch, bool) {
	i := slices.IndexFunc(s.batches, func(b model.Batch) bool { return b.ID == id })
	if i < 0 {
		return model.Batch{}, false
	}
	return s.batches[i], true
}

func (s *Session) publish(ctx context.Context, evt queue.Event) {
	evt.At = s.now().UTC()
	if err := s.pub.Publish(ctx, evt); err != nil {
		s.log.Warn("change event not published",
			zap.String("kind", evt.Kind),
			zap.String("id", evt.ID),
			zap.Error(err))
	}
}
