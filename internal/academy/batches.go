package academy

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"academy/internal/apperr"
	"academy/internal/metrics"
	"academy/internal/model"
	"academy/internal/queue"
	"academy/internal/roster"
	"academy/internal/store"
)

// Ref pairs an id with its display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BatchView is a batch with references translated for display.
type BatchView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Timing   time.Time `json:"timing"`
	Course   Ref       `json:"course"`
	Students []Ref     `json:"students"`
	Teachers []Ref     `json:"teachers"`
}

// Batches returns the mirrored batches ready for display. References that no
// longer resolve keep their id and show an empty name.
func (s *Session) Batches() []BatchView {
	courses := make(map[string]string, len(s.courses))
	for _, c := range s.courses {
		courses[c.ID] = c.Name
	}
	students := make(map[string]string, len(s.students))
	for _, st := range s.students {
		students[st.ID] = st.Name
	}
	teachers := make(map[string]string, len(s.teachers))
	for _, t := range s.teachers {
		teachers[t.ID] = t.Name
	}
	refs := func(ids []string, names map[string]string) []Ref {
		out := make([]Ref, 0, len(ids))
		for _, id := range ids {
			out = append(out, Ref{ID: id, Name: names[id]})
		}
		return out
	}

	views := make([]BatchView, 0, len(s.batches))
	for _, b := range s.batches {
		views = append(views, BatchView{
			ID:       b.ID,
			Name:     b.Name,
			Timing:   b.Timing,
			Course:   Ref{ID: b.CourseID, Name: courses[b.CourseID]},
			Students: refs(b.StudentIDs, students),
			Teachers: refs(b.TeacherIDs, teachers),
		})
	}
	return views
}

// Batch returns one mirrored batch.
func (s *Session) Batch(ctx context.Context, id string) (model.Batch, error) {
	if err := s.ensure(ctx); err != nil {
		return model.Batch{}, err
	}
	b, ok := s.batch(id)
	if !ok {
		return model.Batch{}, apperr.NotFound(store.Batches, id)
	}
	return b, nil
}

// SaveBatch resolves draft and writes it: an update when editingID is set,
// otherwise a create. The mirror changes only after the write succeeds.
func (s *Session) SaveBatch(ctx context.Context, editingID string, draft roster.BatchDraft) (b model.Batch, err error) {
	op := "create"
	if editingID != "" {
		op = "update"
	}
	defer func() { metrics.BatchWrites.WithLabelValues(op, metrics.Result(err)).Inc() }()

	if err := s.ensure(ctx); err != nil {
		return model.Batch{}, err
	}
	resolved, err := roster.Resolve(draft, s.Snapshot())
	if err != nil {
		return model.Batch{}, err
	}

	b = resolved.Batch(editingID)
	doc, err := model.Encode(b)
	if err != nil {
		return model.Batch{}, err
	}
	if editingID != "" {
		if err := s.store.Update(ctx, store.Batches, editingID, doc); err != nil {
			return model.Batch{}, err
		}
		if i := slices.IndexFunc(s.batches, func(x model.Batch) bool { return x.ID == editingID }); i >= 0 {
			s.batches[i] = b
		} else {
			s.batches = append(s.batches, b)
		}
	} else {
		id, err := s.store.Create(ctx, store.Batches, doc)
		if err != nil {
			return model.Batch{}, err
		}
		b.ID = id
		s.batches = append(s.batches, b)
	}

	s.log.Info("batch saved",
		zap.String("op", op),
		zap.String("batch_id", b.ID),
		zap.Int("students", len(b.StudentIDs)),
		zap.Int("teachers", len(b.TeacherIDs)))
	s.publish(ctx, queue.Event{Kind: queue.BatchSaved, Collection: store.Batches, ID: b.ID})
	return b, nil
}

// DeleteBatch removes a batch from the store and then from the mirror.
func (s *Session) DeleteBatch(ctx context.Context, id string) (err error) {
	defer func() { metrics.BatchWrites.WithLabelValues("delete", metrics.Result(err)).Inc() }()

	if id == "" {
		return apperr.Invalid("batch id is required")
	}
	if err := s.store.Delete(ctx, store.Batches, id); err != nil {
		return err
	}
	s.batches = slices.DeleteFunc(s.batches, func(b model.Batch) bool { return b.ID == id })
	s.log.Info("batch deleted", zap.String("batch_id", id))
	s.publish(ctx, queue.Event{Kind: queue.BatchDeleted, Collection: store.Batches, ID: id})
	return nil
}
