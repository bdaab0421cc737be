// Package handler exposes the academy workflows over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academy/internal/academy"
	"academy/internal/apperr"
	"academy/internal/model"
	"academy/internal/queue"
	"academy/internal/store"
	"academy/internal/summary"
)

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler serves the JSON API. Every request gets a fresh academy session.
type Handler struct {
	store     store.Store
	pub       queue.Publisher
	summaries summary.Reader
	checks    []HealthCheck
	log       *zap.Logger
}

// New builds a Handler. summaries may be nil when redis is not configured.
func New(s store.Store, pub queue.Publisher, summaries summary.Reader, log *zap.Logger, checks ...HealthCheck) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: s, pub: pub, summaries: summaries, checks: checks, log: log}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.GET("/courses", h.ListCourses)
	v1.POST("/courses", h.CreateCourse)
	v1.DELETE("/courses/:id", h.deleteEntity(store.Courses))

	v1.GET("/students", h.ListStudents)
	v1.POST("/students", h.CreateStudent)
	v1.PATCH("/students/:id", h.UpdateStudent)
	v1.DELETE("/students/:id", h.deleteEntity(store.Students))

	v1.GET("/teachers", h.ListTeachers)
	v1.POST("/teachers", h.CreateTeacher)
	v1.DELETE("/teachers/:id", h.deleteEntity(store.Teachers))

	v1.GET("/batches", h.ListBatches)
	v1.POST("/batches", h.CreateBatch)
	v1.PUT("/batches/:id", h.UpdateBatch)
	v1.DELETE("/batches/:id", h.DeleteBatch)

	v1.GET("/attendance", h.ListAttendance)
	v1.GET("/attendance/monthly", h.GetMonthly)
	v1.PUT("/attendance/monthly", h.SaveMonthly)
	v1.GET("/attendance/monthly/export", h.ExportMonthly)
	v1.GET("/attendance/daily", h.GetDaily)
	v1.PUT("/attendance/daily", h.SaveDaily)
	v1.GET("/attendance/summary/:key", h.GetSummary)
}

func (h *Handler) session() *academy.Session {
	return academy.NewSession(h.store, h.pub, h.log)
}

// Healthz reports each dependency. Any failure turns the response into a 503.
func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for _, hc := range h.checks {
		if err := hc.Check(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			deps[hc.Name] = err.Error()
			continue
		}
		deps[hc.Name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "deps": deps})
}

var errNoRedis = errors.New("redis not configured")

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidInput:      http.StatusBadRequest,
	apperr.KindDanglingReference: http.StatusUnprocessableEntity,
	apperr.KindOutOfRangeDate:    http.StatusUnprocessableEntity,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindStoreUnavailable:  http.StatusServiceUnavailable,
}

// fail maps err to a status and writes {"error","kind"}.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
	body := gin.H{"error": err.Error()}
	if kind != "" {
		body["kind"] = kind
	}
	c.AbortWithStatusJSON(status, body)
}

// bind decodes a JSON body, reporting malformed input as InvalidInput.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Invalid("malformed request body: %v", err)
	}
	return nil
}

// withID renders a typed record with its identifier.
func withID(id string, v any) (store.Document, error) {
	doc, err := model.Encode(v)
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

func render[T any](items []T, id func(T) string) ([]store.Document, error) {
	out := make([]store.Document, 0, len(items))
	for _, it := range items {
		doc, err := withID(id(it), it)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
