package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"invalid amount", services.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid period", services.ErrInvalidPeriod, http.StatusBadRequest},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"lost race", services.ErrConcurrency, http.StatusConflict},
		{"duplicate", services.ErrDuplicate, http.StatusConflict},
		{"bad transition", fmt.Errorf("%w: paid -> paid", services.ErrInvalidState), http.StatusConflict},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive", services.ErrInactiveAccount, http.StatusForbidden},
		{"timeout", &services.StorageError{Op: "list", Err: context.DeadlineExceeded, Retryable: true}, http.StatusServiceUnavailable},
		{"storage", &services.StorageError{Op: "list", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRespondError_AllocationNeedsReconciliation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondError(c, &services.AllocationError{
		GuestID: "g-1",
		Steps:   []services.AllocationStep{{ChargeType: "bed", ChargeID: "a-1", Status: "paid"}},
		Err:     errors.New("connection reset"),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		RequiresReconciliation bool                      `json:"requires_reconciliation"`
		Steps                  []services.AllocationStep `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.RequiresReconciliation)
	require.Len(t, body.Steps, 1)
	assert.Equal(t, "a-1", body.Steps[0].ChargeID)
}

func TestListQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&per_page=1000&search=+ana+&sort=name-desc", nil)

	query := listQuery(c, 20)
	assert.Equal(t, 3, query.Page)
	assert.Equal(t, 200, query.PerPage)
	assert.Equal(t, "ana", query.Search)
	assert.Equal(t, "name", query.SortBy)
	assert.Equal(t, "desc", query.SortDir)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=-1&per_page=abc", nil)
	query = listQuery(c, 50)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 50, query.PerPage)
}

func TestPeriodQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	loc := time.FixedZone("UTC-6", -6*3600)

	t.Run("defaults to all", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		period, _, ok := periodQuery(c, loc)
		assert.True(t, ok)
		assert.Equal(t, services.PeriodAll, period)
	})

	t.Run("reads the day in the hostel timezone", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?period=weekly&date=2026-03-10", nil)

		period, ref, ok := periodQuery(c, loc)
		require.True(t, ok)
		assert.Equal(t, services.PeriodWeek, period)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), ref)
	})

	t.Run("unknown period", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?period=year", nil)

		_, _, ok := periodQuery(c, loc)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?period=day&date=10/03/2026", nil)

		_, _, ok := periodQuery(c, loc)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
