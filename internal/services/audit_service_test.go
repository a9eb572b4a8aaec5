package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/jobs"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_Log(t *testing.T) {
	store := newMemStore()
	svc := NewAuditService(store.repos().Audit, nil)
	userID := uuid.New()
	entityID := uuid.New()

	err := svc.Log(context.Background(), Actor{UserID: &userID, IP: "10.0.0.1"}, models.AuditActionCreate, "Guest", entityID, map[string]any{"name": "Ana"})
	require.NoError(t, err)

	logs, total, err := svc.List(context.Background(), repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entityID, logs[0].EntityID)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)

	var details map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Equal(t, "Ana", details["name"])
}

func TestAuditService_LogAsyncUsesWorker(t *testing.T) {
	store := newMemStore()
	worker := jobs.NewWorker(1)
	svc := NewAuditService(store.repos().Audit, worker)

	svc.LogAsync(SystemActor, models.AuditActionCheckout, "Assignment", uuid.New(), nil)
	worker.Shutdown()

	assert.Equal(t, []string{models.AuditActionCheckout}, store.auditActions())
	assert.Equal(t, int64(1), worker.GetStats().CompletedJobs)

	// After shutdown the entry is still written, synchronously
	svc.LogAsync(SystemActor, models.AuditActionStatus, "Bed", uuid.New(), nil)
	assert.Len(t, store.auditActions(), 2)
}

func TestAuditService_NilIsNoop(t *testing.T) {
	var svc *AuditService
	assert.NoError(t, svc.Log(context.Background(), Actor{}, models.AuditActionCreate, "Guest", uuid.New(), nil))
	svc.LogAsync(Actor{}, models.AuditActionCreate, "Guest", uuid.New(), nil)
}
