// Package roster validates batch drafts against the current entity snapshots.
package roster

import (
	"strings"
	"time"

	"academy/internal/apperr"
	"academy/internal/model"
)

// Entity kinds named in DanglingReference errors.
const (
	EntityCourse  = "course"
	EntityStudent = "student"
	EntityTeacher = "teacher"
)

// BatchDraft is a batch as submitted, before any checks.
type BatchDraft struct {
	Name       string   `json:"name"`
	Timing     string   `json:"timing"`
	CourseID   string   `json:"course_id"`
	StudentIDs []string `json:"student_ids"`
	TeacherIDs []string `json:"teacher_ids"`
}

// ResolvedBatch has parsed timing and deduplicated, existing references.
type ResolvedBatch struct {
	Name       string
	Timing     time.Time
	CourseID   string
	StudentIDs []string
	TeacherIDs []string
}

// Batch converts the resolution into a storable record.
func (r ResolvedBatch) Batch(id string) model.Batch {
	return model.Batch{
		ID:         id,
		Name:       r.Name,
		Timing:     r.Timing,
		CourseID:   r.CourseID,
		StudentIDs: r.StudentIDs,
		TeacherIDs: r.TeacherIDs,
	}
}

// Snapshot is the set of known identifiers per entity kind.
type Snapshot struct {
	Courses  map[string]struct{}
	Students map[string]struct{}
	Teachers map[string]struct{}
}

// NewSnapshot indexes the given records by id.
func NewSnapshot(courses []model.Course, students []model.Student, teachers []model.Teacher) Snapshot {
	s := Snapshot{
		Courses:  make(map[string]struct{}, len(courses)),
		Students: make(map[string]struct{}, len(students)),
		Teachers: make(map[string]struct{}, len(teachers)),
	}
	for _, c := range courses {
		s.Courses[c.ID] = struct{}{}
	}
	for _, st := range students {
		s.Students[st.ID] = struct{}{}
	}
	for _, t := range teachers {
		s.Teachers[t.ID] = struct{}{}
	}
	return s
}

// Resolve checks draft against snap and reports the first violation:
// required fields, then the course, then students, then teachers.
func Resolve(draft BatchDraft, snap Snapshot) (ResolvedBatch, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return ResolvedBatch{}, apperr.Invalid("batch name is required")
	}
	if strings.TrimSpace(draft.Timing) == "" {
		return ResolvedBatch{}, apperr.Invalid("batch timing is required")
	}
	timing, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(draft.Timing))
	if err != nil {
		return ResolvedBatch{}, apperr.Invalid("batch timing %q is not an RFC3339 instant", draft.Timing)
	}
	courseID := strings.TrimSpace(draft.CourseID)
	if courseID == "" {
		return ResolvedBatch{}, apperr.Invalid("batch course is required")
	}

	if _, ok := snap.Courses[courseID]; !ok {
		return ResolvedBatch{}, apperr.Dangling(EntityCourse, courseID)
	}
	students, err := existing(draft.StudentIDs, snap.Students, EntityStudent)
	if err != nil {
		return ResolvedBatch{}, err
	}
	teachers, err := existing(draft.TeacherIDs, snap.Teachers, EntityTeacher)
	if err != nil {
		return ResolvedBatch{}, err
	}

	return ResolvedBatch{
		Name:       name,
		Timing:     timing.UTC(),
		CourseID:   courseID,
		StudentIDs: students,
		TeacherIDs: teachers,
	}, nil
}

// existing deduplicates ids in first-seen order and checks each against known.
func existing(ids []string, known map[string]struct{}, entity string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperr.Invalid("empty %s id in batch", entity)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := known[id]; !ok {
			return nil, apperr.Dangling(entity, id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
