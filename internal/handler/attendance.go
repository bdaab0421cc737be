package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy/internal/apperr"
	"academy/internal/attendance"
	"academy/internal/calendar"
	"academy/internal/export"
	"academy/internal/model"
)

type dayView struct {
	Day    int          `json:"day"`
	Date   string       `json:"date,omitempty"`
	Status model.Status `json:"status,omitempty"`
}

type monthlyView struct {
	Key         string             `json:"key"`
	StudentID   string             `json:"student_id"`
	StudentName string             `json:"student_name"`
	BatchID     string             `json:"batch_id,omitempty"`
	Month       string             `json:"month"`
	Prev        string             `json:"prev"`
	Next        string             `json:"next"`
	Offset      int                `json:"offset"`
	Days        int                `json:"days"`
	Weeks       [][]dayView        `json:"weeks"`
	Summary     attendance.Summary `json:"summary"`
}

func viewSheet(s *attendance.Sheet) monthlyView {
	weeks := s.Grid.Weeks()
	out := make([][]dayView, 0, len(weeks))
	for _, week := range weeks {
		row := make([]dayView, 0, len(week))
		for _, cell := range week {
			v := dayView{Day: cell.Day, Date: cell.Date}
			if !cell.Blank() {
				v.Status, _ = s.Status(cell.Date)
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return monthlyView{
		Key:         s.Key(),
		StudentID:   s.StudentID,
		StudentName: s.StudentName,
		BatchID:     s.BatchID,
		Month:       s.Grid.Month.Token(),
		Prev:        s.Grid.Month.Prev().String(),
		Next:        s.Grid.Month.Next().String(),
		Offset:      s.Grid.Offset,
		Days:        s.Grid.Days,
		Weeks:       out,
		Summary:     s.Summary(),
	}
}

type dailyView struct {
	Key     string                  `json:"key"`
	BatchID string                  `json:"batch_id"`
	Date    string                  `json:"date"`
	Roster  []string                `json:"roster"`
	Marks   map[string]model.Status `json:"marks"`
	Summary attendance.Summary      `json:"summary"`
}

func viewRoll(r *attendance.Roll) dailyView {
	return dailyView{
		Key:     r.Key(),
		BatchID: r.BatchID,
		Date:    r.Date,
		Roster:  r.Roster(),
		Marks:   r.Marks(),
		Summary: r.Summary(),
	}
}

// ListAttendance lists monthly records, optionally for one student.
func (h *Handler) ListAttendance(c *gin.Context) {
	recs, err := h.session().Attendance(c.Request.Context(), c.Query("student_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := render(recs, func(m model.MonthlyAttendance) string { return m.ID })
	h.respond(c, http.StatusOK, out, err)
}

func (h *Handler) openMonthly(c *gin.Context, studentID, batchID, month string) (*attendance.Sheet, bool) {
	ym, err := calendar.ParseYearMonth(month)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	sheet, err := h.session().OpenMonthly(c.Request.Context(), studentID, batchID, ym)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return sheet, true
}

// GetMonthly returns the grid and reconciled marks of one student and month.
func (h *Handler) GetMonthly(c *gin.Context) {
	sheet, ok := h.openMonthly(c, c.Query("student_id"), c.Query("batch_id"), c.Query("month"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewSheet(sheet))
}

type monthlyRequest struct {
	StudentID string   `json:"student_id"`
	BatchID   string   `json:"batch_id"`
	Month     string   `json:"month"`
	Toggles   []string `json:"toggles"`
}

// SaveMonthly applies toggles to the reconciled sheet and saves the full
// mapping. Any out-of-month toggle rejects the whole request unsaved.
func (h *Handler) SaveMonthly(c *gin.Context) {
	var req monthlyRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	ym, err := calendar.ParseYearMonth(req.Month)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess := h.session()
	sheet, err := sess.OpenMonthly(c.Request.Context(), req.StudentID, req.BatchID, ym)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, d := range req.Toggles {
		if err := sheet.Toggle(d); err != nil {
			h.fail(c, err)
			return
		}
	}
	if err := sess.SaveMonthly(c.Request.Context(), sheet); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewSheet(sheet))
}

// ExportMonthly downloads the sheet as an XLSX workbook.
func (h *Handler) ExportMonthly(c *gin.Context) {
	sheet, ok := h.openMonthly(c, c.Query("student_id"), c.Query("batch_id"), c.Query("month"))
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.MonthlySheet(&buf, sheet); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance-"+sheet.Grid.Month.String()+".xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// GetDaily returns one batch's roll for a date.
func (h *Handler) GetDaily(c *gin.Context) {
	roll, err := h.session().OpenDaily(c.Request.Context(), c.Query("batch_id"), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRoll(roll))
}

type dailyRequest struct {
	BatchID string                  `json:"batch_id"`
	Date    string                  `json:"date"`
	Marks   map[string]model.Status `json:"marks"`
}

// SaveDaily sets the given marks on the roll and saves the full roster.
func (h *Handler) SaveDaily(c *gin.Context) {
	var req dailyRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sess := h.session()
	roll, err := sess.OpenDaily(c.Request.Context(), req.BatchID, req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	for id, st := range req.Marks {
		if err := roll.Set(id, st); err != nil {
			h.fail(c, err)
			return
		}
	}
	if err := sess.SaveDaily(c.Request.Context(), roll); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRoll(roll))
}

// GetSummary returns the worker-computed summary of a record key.
func (h *Handler) GetSummary(c *gin.Context) {
	if h.summaries == nil {
		h.fail(c, apperr.Unavailable("summary lookup", errNoRedis))
		return
	}
	rec, err := h.summaries.Get(c.Request.Context(), c.Param("key"))
	h.respond(c, http.StatusOK, rec, err)
}
