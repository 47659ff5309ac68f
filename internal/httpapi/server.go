// Package httpapi exposes the tracker's public operations over HTTP.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/services"
	"github.com/leaflog/leaflog/internal/usecase"
)

type Server struct {
	tracker *usecase.Tracker
	engine  *gin.Engine
}

func NewServer(dbCtx *database.Context) *Server {
	s := &Server{tracker: usecase.NewTracker(dbCtx)}

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	r.POST("/books", s.handleAddBook)
	r.GET("/books", s.handleListBooks)
	r.GET("/books/:id", s.handleBookInfo)
	r.PATCH("/books/:id/pages", s.handleUpdateTotalPages)
	r.PUT("/books/:id/status", s.handleSetStatus)
	r.POST("/books/:id/progress", s.handleLogProgress)

	s.engine = r
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	slog.Info("HTTP API listening", "addr", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

type addBookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	TotalPages *int64 `json:"totalPages"`
}

func (s *Server) handleAddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	book, err := s.tracker.AddBook(c.Request.Context(), req.Title, req.Author, req.TotalPages)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"book": book})
}

func (s *Server) handleListBooks(c *gin.Context) {
	var statusFilter *reading.Status
	if raw := c.Query("status"); raw != "" {
		status, err := reading.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		statusFilter = &status
	}

	overviews, err := s.tracker.ListBooks(c.Request.Context(), statusFilter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": overviews})
}

func (s *Server) handleBookInfo(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	detail, err := s.tracker.BookInfo(c.Request.Context(), bookID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type updatePagesRequest struct {
	TotalPages int64 `json:"totalPages"`
}

func (s *Server) handleUpdateTotalPages(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req updatePagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	book, err := s.tracker.UpdateTotalPages(c.Request.Context(), bookID, req.TotalPages)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

type setStatusRequest struct {
	Status        string  `json:"status"`
	Rating        *int64  `json:"rating"`
	Review        *string `json:"review"`
	StartedDate   *string `json:"startedDate"`
	CompletedDate *string `json:"completedDate"`
	DNFDate       *string `json:"dnfDate"`
}

func (s *Server) handleSetStatus(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	status, err := reading.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.SetStatusInput{
		Status: status,
		Rating: req.Rating,
		Review: req.Review,
	}
	if input.StartedDate, err = parseDatePtr(req.StartedDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.CompletedDate, err = parseDatePtr(req.CompletedDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.DNFDate, err = parseDatePtr(req.DNFDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.tracker.SetStatus(c.Request.Context(), bookID, input)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"session": result.Session}
	if result.Archived != nil {
		resp["archived"] = gin.H{"fromSessionNumber": result.Archived.FromSessionNumber}
	}
	c.JSON(http.StatusOK, resp)
}

type logProgressRequest struct {
	CurrentPage       *int64  `json:"currentPage"`
	CurrentPercentage *int64  `json:"currentPercentage"`
	Notes             *string `json:"notes"`
	Date              string  `json:"date"`
}

func (s *Server) handleLogProgress(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req logProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	date, err := parseDatePtr(&req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var progressDate time.Time
	if date != nil {
		progressDate = *date
	}

	result, err := s.tracker.LogProgress(c.Request.Context(), bookID, services.LogProgressInput{
		CurrentPage:       req.CurrentPage,
		CurrentPercentage: req.CurrentPercentage,
		Notes:             req.Notes,
		ProgressDate:      progressDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":             result.Entry,
		"completionReached": result.CompletionReached,
		"sessionCompleted":  result.SessionCompleted,
	})
}

func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return 0, false
	}
	return id, true
}

func parseDatePtr(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, errors.New("dates must be formatted YYYY-MM-DD")
	}
	return &date, nil
}

// writeError maps core errors onto status codes: guard and validation
// failures are the caller's fault, missing rows are 404, anything else is a
// server error worth logging.
func writeError(c *gin.Context, err error) {
	var (
		verr     *services.ValidationError
		conflict *reading.TimelineConflict
		rejected *services.PageCountError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &conflict), errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
