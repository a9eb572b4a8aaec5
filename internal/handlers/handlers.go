package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/jobs"
	"github.com/sjperalta/hostel-api/internal/middleware"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/services"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Guest   *GuestHandler
	Bed     *BedHandler
	Charge  *ChargeHandler
	Stay    *StayHandler
	Expense *ExpenseHandler
	Report  *ReportHandler
	Audit   *AuditHandler
	Job     *JobHandler
}

// NewHandlers creates all handler instances. Dates given as YYYY-MM-DD in
// query strings are read in loc.
func NewHandlers(svcs *services.Services, worker *jobs.Worker, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	return &Handlers{
		Health:  NewHealthHandler(),
		Auth:    NewAuthHandler(svcs.Auth),
		Guest:   NewGuestHandler(svcs.Guest, svcs.Transaction, svcs.Payment, svcs.Statement),
		Bed:     NewBedHandler(svcs.Bed),
		Charge:  NewChargeHandler(svcs.Charge),
		Stay:    NewStayHandler(svcs.Stay, loc),
		Expense: NewExpenseHandler(svcs.Expense, loc),
		Report:  NewReportHandler(svcs.Transaction, svcs.Financial, svcs.Export, loc),
		Audit:   NewAuditHandler(svcs.Audit),
		Job:     NewJobHandler(worker),
	}
}

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	var allocErr *services.AllocationError
	if errors.As(err, &allocErr) {
		logger.Error("payment allocation needs reconciliation",
			"guest_id", allocErr.GuestID, "steps", len(allocErr.Steps), "error", allocErr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":                   err.Error(),
			"requires_reconciliation": true,
			"steps":                   allocErr.Steps,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrency):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		var storageErr *services.StorageError
		if errors.As(err, &storageErr) && storageErr.Retryable {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable", "retryable": true})
			return
		}
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// actorFrom describes who is making the request, for the audit trail
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// uuidParam parses a path parameter, writing a 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// dateQuery reads ?date=YYYY-MM-DD in loc, defaulting to now
func dateQuery(c *gin.Context, loc *time.Location) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().In(loc), true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// periodQuery reads ?period= and ?date=
func periodQuery(c *gin.Context, loc *time.Location) (services.Period, time.Time, bool) {
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, err)
		return "", time.Time{}, false
	}
	ref, ok := dateQuery(c, loc)
	if !ok {
		return "", time.Time{}, false
	}
	return period, ref, true
}

// listQuery builds a paginated query from page, per_page, search and sort (field-direction)
func listQuery(c *gin.Context, defaultPerPage int) *repository.ListQuery {
	query := repository.NewListQuery()
	query.PerPage = defaultPerPage
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		query.PerPage = min(perPage, 200)
	}
	query.Search = strings.TrimSpace(c.Query("search"))

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
