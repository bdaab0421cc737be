package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy/internal/academy"
	"academy/internal/model"
	"academy/internal/roster"
	"academy/internal/store"
)

func (h *Handler) loaded(c *gin.Context) (*academy.Session, bool) {
	sess := h.session()
	if err := sess.Load(c.Request.Context()); err != nil {
		h.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) ListCourses(c *gin.Context) {
	sess, ok := h.loaded(c)
	if !ok {
		return
	}
	out, err := render(sess.Courses(), func(x model.Course) string { return x.ID })
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) ListStudents(c *gin.Context) {
	sess, ok := h.loaded(c)
	if !ok {
		return
	}
	out, err := render(sess.Students(), func(x model.Student) string { return x.ID })
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) ListTeachers(c *gin.Context) {
	sess, ok := h.loaded(c)
	if !ok {
		return
	}
	out, err := render(sess.Teachers(), func(x model.Teacher) string { return x.ID })
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var in model.Course
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.session().CreateCourse(c.Request.Context(), in)
	h.respondRecord(c, http.StatusCreated, created.ID, created, err)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var in model.Student
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.session().CreateStudent(c.Request.Context(), in)
	h.respondRecord(c, http.StatusCreated, created.ID, created, err)
}

func (h *Handler) CreateTeacher(c *gin.Context) {
	var in model.Teacher
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.session().CreateTeacher(c.Request.Context(), in)
	h.respondRecord(c, http.StatusCreated, created.ID, created, err)
}

// UpdateStudent applies a partial update keyed by stored field names.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var patch store.Document
	if err := bind(c, &patch); err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("id")
	updated, err := h.session().UpdateStudent(c.Request.Context(), id, patch)
	h.respondRecord(c, http.StatusOK, id, updated, err)
}

func (h *Handler) deleteEntity(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.session().DeleteEntity(c.Request.Context(), collection, c.Param("id")); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) ListBatches(c *gin.Context) {
	sess, ok := h.loaded(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Batches())
}

func (h *Handler) CreateBatch(c *gin.Context) {
	h.saveBatch(c, "", http.StatusCreated)
}

func (h *Handler) UpdateBatch(c *gin.Context) {
	h.saveBatch(c, c.Param("id"), http.StatusOK)
}

func (h *Handler) saveBatch(c *gin.Context, editingID string, status int) {
	var draft roster.BatchDraft
	if err := bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.session().SaveBatch(c.Request.Context(), editingID, draft)
	h.respondRecord(c, status, b.ID, b, err)
}

func (h *Handler) DeleteBatch(c *gin.Context) {
	if err := h.session().DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, body)
}

func (h *Handler) respondRecord(c *gin.Context, status int, id string, v any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	doc, err := withID(id, v)
	h.respond(c, status, doc, err)
}
