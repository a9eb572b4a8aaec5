package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
)

// StayService answers front-desk questions: who arrives today, who is in
// house, and what the month's arrivals and departures look like
type StayService struct {
	repos *repository.Repositories
	cfg   *config.Config
	now   func() time.Time
}

// NewStayService creates a new stay service
func NewStayService(repos *repository.Repositories, cfg *config.Config) *StayService {
	return &StayService{repos: repos, cfg: cfg, now: time.Now}
}

// CheckIns lists stays starting on the day of ref
func (s *StayService) CheckIns(ctx context.Context, ref time.Time) ([]models.StaySummary, error) {
	day, err := PeriodDay.Range(ref, s.cfg.Location)
	if err != nil {
		return nil, err
	}

	var summaries []models.StaySummary
	err = s.repos.Snapshot(ctx, func(tx *repository.Repositories) error {
		assignments, err := tx.Assignment.FindCheckInsInRange(ctx, *day)
		if err != nil {
			return err
		}
		summaries, err = summarize(ctx, tx, assignments)
		return err
	})
	if err != nil {
		return nil, translateError("check-ins", err)
	}
	return summaries, nil
}

// ActiveStays lists stays covering the current moment
func (s *StayService) ActiveStays(ctx context.Context) ([]models.StaySummary, error) {
	var summaries []models.StaySummary
	err := s.repos.Snapshot(ctx, func(tx *repository.Repositories) error {
		assignments, err := tx.Assignment.FindActiveAt(ctx, s.now())
		if err != nil {
			return err
		}
		summaries, err = summarize(ctx, tx, assignments)
		return err
	})
	if err != nil {
		return nil, translateError("active stays", err)
	}
	return summaries, nil
}

func summarize(ctx context.Context, tx *repository.Repositories, assignments []models.Assignment) ([]models.StaySummary, error) {
	summaries := make([]models.StaySummary, 0, len(assignments))
	if len(assignments) == 0 {
		return summaries, nil
	}

	seen := make(map[uuid.UUID]bool, len(assignments))
	guestIDs := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		if !seen[a.GuestID] {
			seen[a.GuestID] = true
			guestIDs = append(guestIDs, a.GuestID)
		}
	}

	bar, err := tx.BarCharge.TotalsByGuest(ctx, guestIDs)
	if err != nil {
		return nil, err
	}
	extras, err := tx.ExtraCharge.TotalsByGuest(ctx, guestIDs)
	if err != nil {
		return nil, err
	}

	for i := range assignments {
		a := &assignments[i]
		summaries = append(summaries, models.NewStaySummary(a, totalOrZero(bar, a.GuestID), totalOrZero(extras, a.GuestID)))
	}
	return summaries, nil
}

func totalOrZero(totals map[uuid.UUID]decimal.Decimal, id uuid.UUID) decimal.Decimal {
	if v, ok := totals[id]; ok {
		return v
	}
	return decimal.Zero
}

// Calendar returns check-in and check-out events per day for a month.
// Check-ins come first, each list ordered by day.
func (s *StayService) Calendar(ctx context.Context, year int, month time.Month) ([]models.CalendarEvent, error) {
	if month < time.January || month > time.December {
		return nil, ErrValidation
	}
	ref := time.Date(year, month, 1, 12, 0, 0, 0, s.location())
	monthRange, err := PeriodMonth.Range(ref, s.location())
	if err != nil {
		return nil, err
	}

	var checkIns, checkOuts []models.Assignment
	err = s.repos.Snapshot(ctx, func(tx *repository.Repositories) error {
		var err error
		if checkIns, err = tx.Assignment.FindCheckInsInRange(ctx, *monthRange); err != nil {
			return err
		}
		checkOuts, err = tx.Assignment.FindCheckOutsInRange(ctx, *monthRange)
		return err
	})
	if err != nil {
		return nil, translateError("calendar", err)
	}

	events := s.groupByDay(checkIns, models.CalendarEventCheckIn, func(a *models.Assignment) time.Time { return a.CheckIn })
	events = append(events, s.groupByDay(checkOuts, models.CalendarEventCheckOut, func(a *models.Assignment) time.Time { return a.CheckOut })...)
	return events, nil
}

func (s *StayService) groupByDay(assignments []models.Assignment, eventType string, dateOf func(*models.Assignment) time.Time) []models.CalendarEvent {
	var events []models.CalendarEvent
	index := make(map[string]int)

	for i := range assignments {
		a := &assignments[i]
		day := dateOf(a).In(s.location()).Format("2006-01-02")

		pos, ok := index[day]
		if !ok {
			pos = len(events)
			index[day] = pos
			events = append(events, models.CalendarEvent{Date: day, Type: eventType})
		}

		guest := models.CalendarGuest{ID: a.GuestID, Name: models.UnknownGuestName, Bed: a.BedNumber()}
		if a.Guest != nil && a.Guest.Name != "" {
			guest.Name = a.Guest.Name
		}
		events[pos].Guests = append(events[pos].Guests, guest)
		events[pos].Count++
	}
	return events
}

func (s *StayService) location() *time.Location {
	if s.cfg.Location == nil {
		return time.UTC
	}
	return s.cfg.Location
}
