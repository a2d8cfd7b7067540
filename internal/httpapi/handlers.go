// Package httpapi binds the services to the JSON-over-HTTP interface.
package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/attendance"
	"classtrack/internal/model"
	"classtrack/internal/notify"
	"classtrack/internal/report"
	"classtrack/internal/roster"
)

// Handler carries the service dependencies for all routes.
type Handler struct {
	roster  *roster.Service
	ledger  *attendance.Service
	reports *report.Service
	feed    notify.Feed
}

// New creates a handler.
func New(rosterSvc *roster.Service, ledger *attendance.Service, reports *report.Service, feed notify.Feed) *Handler {
	return &Handler{roster: rosterSvc, ledger: ledger, reports: reports, feed: feed}
}

// Routes registers all API routes on the group.
func (h *Handler) Routes(rg *gin.RouterGroup) {
	rg.GET("/data", h.GetData)
	rg.POST("/attendance", h.PostAttendance)
	rg.POST("/dismissal", h.PostDismissal)
	rg.POST("/students", h.PostStudent)
	rg.POST("/visitors", h.PostVisitor)
	rg.PUT("/students/:id", h.PutStudent)
	rg.DELETE("/students/:id", h.DeleteStudent)
	rg.GET("/students/:id/history", h.GetHistory)
	rg.POST("/topics", h.PostTopic)
	rg.GET("/reports/daily", h.GetDailyReport)
	rg.GET("/reports/monthly", h.GetMonthlyReport)
	rg.GET("/notifications", h.GetNotifications)
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidClassDay),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNoAttendanceRecord),
		errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) notifyf(c *gin.Context, format string, args ...any) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(c.Request.Context(), fmt.Sprintf(format, args...)); err != nil {
		log.Printf("notification publish failed: %v", err)
	}
}

// GetData returns the whole dataset in one read: students with nested
// attendance, volunteers, schedule and topics.
func (h *Handler) GetData(c *gin.Context) {
	ctx := c.Request.Context()
	students, err := h.roster.ListStudents(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	volunteers, err := h.roster.ListVolunteers(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	schedule, err := h.roster.ListSchedule(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	topics, err := h.roster.ListTopics(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	if volunteers == nil {
		volunteers = []model.Volunteer{}
	}
	if schedule == nil {
		schedule = []model.ScheduleEntry{}
	}
	if topics == nil {
		topics = []model.Topic{}
	}
	c.JSON(http.StatusOK, gin.H{
		"students":   students,
		"volunteers": volunteers,
		"schedule":   schedule,
		"topics":     topics,
	})
}

// PostAttendance marks or unmarks presence for one (student, date).
func (h *Handler) PostAttendance(c *gin.Context) {
	var req struct {
		StudentID string `json:"studentId" binding:"required"`
		Date      string `json:"date" binding:"required"`
		Present   *bool  `json:"present" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	st, err := h.roster.GetStudent(ctx, req.StudentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if *req.Present {
		err = h.ledger.MarkPresent(ctx, req.StudentID, req.Date)
		countOp("mark_present", err)
		if err != nil {
			respondErr(c, err)
			return
		}
		h.notifyf(c, "Presença de %s marcada!", st.Name)
	} else {
		err = h.ledger.UnmarkPresent(ctx, req.StudentID, req.Date)
		countOp("unmark_present", err)
		if err != nil {
			respondErr(c, err)
			return
		}
		h.notifyf(c, "Presença de %s desmarcada.", st.Name)
	}
	c.JSON(http.StatusOK, gin.H{"message": "attendance updated"})
}

// PostDismissal records who picked a present student up.
func (h *Handler) PostDismissal(c *gin.Context) {
	var req struct {
		StudentID       string `json:"studentId" binding:"required"`
		ResponsibleName string `json:"responsibleName" binding:"required"`
		Date            string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	st, err := h.roster.GetStudent(ctx, req.StudentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	err = h.ledger.RecordDismissal(ctx, req.StudentID, req.ResponsibleName, req.Date)
	countOp("record_dismissal", err)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.notifyf(c, "Saída de %s registrada para %s.", st.Name, req.ResponsibleName)
	c.JSON(http.StatusOK, gin.H{"message": "dismissal updated"})
}

// PostStudent creates a member.
func (h *Handler) PostStudent(c *gin.Context) {
	var form roster.StudentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.CreateStudent(c.Request.Context(), form, model.Member)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.notifyf(c, "%s foi adicionado como membro.", st.Name)
	c.JSON(http.StatusCreated, st)
}

// PostVisitor enrolls a visitor and marks them present for the date.
func (h *Handler) PostVisitor(c *gin.Context) {
	var req struct {
		roster.StudentForm
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.EnrollVisitor(c.Request.Context(), req.StudentForm, req.Date)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.notifyf(c, "%s foi adicionado como visitante e sua presença foi marcada.", st.Name)
	c.JSON(http.StatusCreated, st)
}

// PutStudent edits roster fields, or with {"type": "member"} promotes a
// visitor in place.
func (h *Handler) PutStudent(c *gin.Context) {
	id := c.Param("id")
	// Promotion sends only a type, so the form fields cannot carry
	// required tags here; the roster service validates edits.
	var req struct {
		Name       string            `json:"name"`
		Class      string            `json:"class"`
		Age        int               `json:"age"`
		MotherName string            `json:"motherName"`
		Phone      string            `json:"phone"`
		Type       model.StudentType `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if req.Type == model.Member && req.Name == "" {
		if err := h.roster.PromoteToMember(ctx, id); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "student promoted"})
		return
	}
	form := roster.StudentForm{
		Name: req.Name, Class: req.Class, Age: req.Age,
		MotherName: req.MotherName, Phone: req.Phone,
	}
	if err := h.roster.UpdateStudent(ctx, id, form); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student updated"})
}

// DeleteStudent removes a student and their attendance records.
func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.roster.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student deleted"})
}

// GetHistory returns one student's attendance trail for a date range.
func (h *Handler) GetHistory(c *gin.Context) {
	from := c.DefaultQuery("from", "0000-01-01")
	to := c.DefaultQuery("to", "9999-12-31")
	hist, err := h.reports.History(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// PostTopic appends a lesson note.
func (h *Handler) PostTopic(c *gin.Context) {
	var t model.Topic
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.roster.AddTopic(c.Request.Context(), t); err != nil {
		respondErr(c, err)
		return
	}
	h.notifyf(c, "Assunto %q registrado com sucesso.", t.Title)
	c.JSON(http.StatusCreated, gin.H{"message": "topic created"})
}

// GetDailyReport returns the snapshot for a date (default today).
func (h *Handler) GetDailyReport(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	class := c.DefaultQuery("class", report.ClassAll)
	snap, err := h.reports.Daily(c.Request.Context(), date, class)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetMonthlyReport returns the aggregation for a calendar month.
func (h *Handler) GetMonthlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}
	class := c.DefaultQuery("class", report.ClassAll)
	day := report.DayFilter(c.DefaultQuery("day", string(report.DayAll)))
	switch day {
	case report.DayAll, report.DaySunday, report.DayWednesday:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be all, sunday or wednesday"})
		return
	}
	rep, err := h.reports.Monthly(c.Request.Context(), year, month, class, day)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetNotifications drains the transient feed.
func (h *Handler) GetNotifications(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusOK, gin.H{"notifications": []notify.Message{}})
		return
	}
	msgs, err := h.feed.Drain(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if msgs == nil {
		msgs = []notify.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": msgs})
}
