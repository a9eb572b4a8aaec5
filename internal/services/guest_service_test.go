package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGuestService_CRUD(t *testing.T) {
	store := newMemStore()
	repos := store.repos()
	svc := NewGuestService(repos, NewAuditService(repos.Audit, nil))
	ctx := context.Background()

	guest, err := svc.Create(ctx, GuestInput{Name: "Ana Lopez", Email: strPtr("ana@example.com")}, Actor{})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, guest.ID)

	_, err = svc.Create(ctx, GuestInput{Name: "", Email: strPtr("not-an-email")}, Actor{})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.Update(ctx, guest.ID, GuestInput{Name: "Ana María Lopez", Phone: strPtr("+34 600 000 000")}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "Ana María Lopez", updated.Name)
	assert.Nil(t, updated.Email)

	got, err := svc.Get(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María Lopez", got.Name)

	query := repository.NewListQuery()
	query.Search = "maría"
	guests, total, err := svc.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, guests, 1)

	require.NoError(t, svc.Delete(ctx, guest.ID, Actor{}))
	_, err = svc.Get(ctx, guest.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, store.auditActions(), models.AuditActionDelete)
}

func TestGuestService_DeleteRefusedWithCharges(t *testing.T) {
	store := newMemStore()
	guest := store.addGuest("Ana Lopez")
	store.addExtra(models.ExtraCharge{GuestID: guest.ID, ServiceDate: time.Now(), ServiceName: "Tour", Price: dec("30")})
	svc := NewGuestService(store.repos(), nil)

	err := svc.Delete(context.Background(), guest.ID, Actor{})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Get(context.Background(), guest.ID)
	assert.NoError(t, err)
}
