package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
)

// GuestService manages guest records
type GuestService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewGuestService creates a new guest service
func NewGuestService(repos *repository.Repositories, audit *AuditService) *GuestService {
	return &GuestService{repos: repos, audit: audit}
}

// GuestInput is the payload for creating or updating a guest
type GuestInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Nationality *string `json:"nationality" validate:"omitempty,max=80"`
	IDType      *string `json:"id_type" validate:"omitempty,max=40"`
	IDNumber    *string `json:"id_number" validate:"omitempty,max=80"`
	Notes       *string `json:"notes"`
}

func (in GuestInput) apply(g *models.Guest) {
	g.Name = in.Name
	g.Email = in.Email
	g.Phone = in.Phone
	g.Nationality = in.Nationality
	g.IDType = in.IDType
	g.IDNumber = in.IDNumber
	g.Notes = in.Notes
}

// Create registers a guest
func (s *GuestService) Create(ctx context.Context, input GuestInput, actor Actor) (*models.Guest, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	guest := &models.Guest{}
	input.apply(guest)
	if err := s.repos.Guest.Create(ctx, guest); err != nil {
		return nil, translateError("create guest", err)
	}

	s.audit.LogAsync(actor, models.AuditActionCreate, "Guest", guest.ID, map[string]any{"name": guest.Name})
	return guest, nil
}

// Get returns one guest
func (s *GuestService) Get(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	guest, err := s.repos.Guest.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find guest", err)
	}
	return guest, nil
}

// Update replaces a guest's contact fields
func (s *GuestService) Update(ctx context.Context, id uuid.UUID, input GuestInput, actor Actor) (*models.Guest, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	guest, err := s.repos.Guest.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find guest", err)
	}
	input.apply(guest)

	if err := s.repos.Guest.Update(ctx, guest); err != nil {
		return nil, translateError("update guest", err)
	}

	s.audit.LogAsync(actor, models.AuditActionUpdate, "Guest", guest.ID, map[string]any{"name": guest.Name})
	return guest, nil
}

// List searches guests by name, email, phone or id number
func (s *GuestService) List(ctx context.Context, query *repository.ListQuery) ([]models.Guest, int64, error) {
	guests, total, err := s.repos.Guest.List(ctx, query)
	if err != nil {
		return nil, 0, translateError("list guests", err)
	}
	return guests, total, nil
}

// Delete removes a guest that has no charges or payments on record
func (s *GuestService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Guest.LockByID(ctx, id); err != nil {
			return err
		}

		assignments, err := tx.Assignment.FindByGuest(ctx, id)
		if err != nil {
			return err
		}
		bar, err := tx.BarCharge.FindByGuest(ctx, id)
		if err != nil {
			return err
		}
		extras, err := tx.ExtraCharge.FindByGuest(ctx, id)
		if err != nil {
			return err
		}
		payments, err := tx.Payment.FindByGuest(ctx, id)
		if err != nil {
			return err
		}
		if n := len(assignments) + len(bar) + len(extras) + len(payments); n > 0 {
			return fmt.Errorf("%w: guest has %d charge(s) or payment(s) on record", ErrInvalidState, n)
		}

		return tx.Guest.Delete(ctx, id)
	})
	if err != nil {
		return translateError("delete guest", err)
	}

	s.audit.LogAsync(actor, models.AuditActionDelete, "Guest", id, nil)
	return nil
}
