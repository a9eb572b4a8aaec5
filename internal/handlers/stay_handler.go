package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/internal/services"
)

type StayHandler struct {
	stayService *services.StayService
	loc         *time.Location
}

func NewStayHandler(stayService *services.StayService, loc *time.Location) *StayHandler {
	return &StayHandler{stayService: stayService, loc: loc}
}

// @Summary Check-ins
// @Description Stays starting on the given day, with each guest's totals
// @Tags Stays
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /stays/check-ins [get]
func (h *StayHandler) CheckIns(c *gin.Context) {
	ref, ok := dateQuery(c, h.loc)
	if !ok {
		return
	}

	stays, err := h.stayService.CheckIns(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stays": stays, "count": len(stays)})
}

// @Summary Active Stays
// @Description Guests currently in house
// @Tags Stays
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /stays/active [get]
func (h *StayHandler) Active(c *gin.Context) {
	stays, err := h.stayService.ActiveStays(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stays": stays, "count": len(stays)})
}

// @Summary Stay Calendar
// @Description Check-in and check-out events per day for one month
// @Tags Stays
// @Produce json
// @Param year query int false "Year (YYYY), defaults to the current year"
// @Param month query int false "Month (1-12), defaults to the current month"
// @Success 200 {array} models.CalendarEvent
// @Security BearerAuth
// @Router /stays/calendar [get]
func (h *StayHandler) Calendar(c *gin.Context) {
	now := time.Now().In(h.loc)
	year, month := now.Year(), int(now.Month())

	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month or year"})
			return
		}
		year = y
	}
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month or year"})
			return
		}
		month = m
	}

	events, err := h.stayService.Calendar(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
