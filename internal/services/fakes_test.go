package services

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. Transactions are
// serialized and roll back by restoring a copy of the tables.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users       []models.User
	guests      []models.Guest
	dorms       []models.Dormitory
	beds        []models.Bed
	assignments []models.Assignment
	bar         []models.BarCharge
	extras      []models.ExtraCharge
	expenses    []models.Expense
	payments    []models.Payment
	audits      []models.AuditLog

	// failures makes the named operation return the error, once
	failures map[string]error
}

type memTables struct {
	users       []models.User
	guests      []models.Guest
	dorms       []models.Dormitory
	beds        []models.Bed
	assignments []models.Assignment
	bar         []models.BarCharge
	extras      []models.ExtraCharge
	expenses    []models.Expense
	payments    []models.Payment
	audits      []models.AuditLog
}

func newMemStore() *memStore {
	return &memStore{failures: make(map[string]error)}
}

func testConfig() *config.Config {
	return &config.Config{
		QueryTimeout:       time.Second,
		Location:           time.UTC,
		CurrencySymbol:     "$",
		Locale:             "en",
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}
}

// repos returns repositories bound to the store, with transaction support
func (s *memStore) repos() *repository.Repositories {
	r := s.plainRepos()
	r.Tx = &memTransactor{store: s}
	return r
}

func (s *memStore) plainRepos() *repository.Repositories {
	return &repository.Repositories{
		User:        &memUserRepo{s},
		Guest:       &memGuestRepo{s},
		Dormitory:   &memDormRepo{s},
		Bed:         &memBedRepo{s},
		Assignment:  &memAssignmentRepo{s},
		BarCharge:   &memBarRepo{s},
		ExtraCharge: &memExtraRepo{s},
		Expense:     &memExpenseRepo{s},
		Payment:     &memPaymentRepo{s},
		Audit:       &memAuditRepo{s},
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// fail must be called with mu held
func (s *memStore) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *memStore) snapshot() memTables {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := memTables{
		users:       slices.Clone(s.users),
		guests:      slices.Clone(s.guests),
		dorms:       slices.Clone(s.dorms),
		beds:        slices.Clone(s.beds),
		assignments: slices.Clone(s.assignments),
		bar:         slices.Clone(s.bar),
		extras:      slices.Clone(s.extras),
		expenses:    slices.Clone(s.expenses),
		audits:      slices.Clone(s.audits),
	}
	for _, p := range s.payments {
		p.Allocations = slices.Clone(p.Allocations)
		t.payments = append(t.payments, p)
	}
	return t
}

func (s *memStore) restore(t memTables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.guests, s.dorms, s.beds = t.users, t.guests, t.dorms, t.beds
	s.assignments, s.bar, s.extras, s.expenses = t.assignments, t.bar, t.extras, t.expenses
	s.payments, s.audits = t.payments, t.audits
}

type memTransactor struct {
	store *memStore
}

func (t *memTransactor) Transaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *repository.Repositories) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	saved := t.store.snapshot()
	if err := fn(t.store.plainRepos()); err != nil {
		t.store.restore(saved)
		return err
	}
	return nil
}

// Seed helpers

func (s *memStore) addGuest(name string) models.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := models.Guest{ID: uuid.New(), Name: name}
	s.guests = append(s.guests, g)
	return g
}

func (s *memStore) addBed(number string, status string, price decimal.Decimal) models.Bed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dorms) == 0 {
		s.dorms = append(s.dorms, models.Dormitory{ID: uuid.New(), Name: "Dorm A"})
	}
	b := models.Bed{ID: uuid.New(), DormitoryID: s.dorms[0].ID, BedNumber: number, BedType: models.BedTypeBunk, Status: status, Price: price}
	s.beds = append(s.beds, b)
	return b
}

func (s *memStore) addAssignment(a models.Assignment) models.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = models.PaymentStatusNotPaid
	}
	s.assignments = append(s.assignments, a)
	return a
}

func (s *memStore) addBar(c models.BarCharge) models.BarCharge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = models.PaymentStatusNotPaid
	}
	c.Amount = c.Total()
	s.bar = append(s.bar, c)
	return c
}

func (s *memStore) addExtra(c models.ExtraCharge) models.ExtraCharge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = models.PaymentStatusNotPaid
	}
	s.extras = append(s.extras, c)
	return c
}

func (s *memStore) addExpense(e models.Expense) models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.expenses = append(s.expenses, e)
	return e
}

func (s *memStore) assignment(id uuid.UUID) models.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.ID == id {
			return a
		}
	}
	return models.Assignment{}
}

func (s *memStore) barCharge(id uuid.UUID) models.BarCharge {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.bar {
		if c.ID == id {
			return c
		}
	}
	return models.BarCharge{}
}

func (s *memStore) extraCharge(id uuid.UUID) models.ExtraCharge {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.extras {
		if c.ID == id {
			return c
		}
	}
	return models.ExtraCharge{}
}

func (s *memStore) bed(id uuid.UUID) models.Bed {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.beds {
		if b.ID == id {
			return b
		}
	}
	return models.Bed{}
}

func (s *memStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// lookups, called with mu held

func (s *memStore) guestPtr(id uuid.UUID) *models.Guest {
	for i := range s.guests {
		if s.guests[i].ID == id {
			g := s.guests[i]
			return &g
		}
	}
	return nil
}

func (s *memStore) bedPtr(id uuid.UUID) *models.Bed {
	for i := range s.beds {
		if s.beds[i].ID == id {
			b := s.beds[i]
			for j := range s.dorms {
				if s.dorms[j].ID == b.DormitoryID {
					d := s.dorms[j]
					b.Dormitory = &d
				}
			}
			return &b
		}
	}
	return nil
}

func (s *memStore) withRefs(a models.Assignment) models.Assignment {
	a.Guest = s.guestPtr(a.GuestID)
	a.Bed = s.bedPtr(a.BedID)
	return a
}

func inRange(r *models.DateRange, t time.Time) bool {
	return r.Contains(t)
}

func byTime[T any](items []T, key func(T) time.Time) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		return key(a).Compare(key(b))
	})
	return items
}

// Users

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *memUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].LastLoginAt = &at
		}
	}
	return nil
}

// Guests

type memGuestRepo struct{ s *memStore }

func (r *memGuestRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("guest.find"); err != nil {
		return nil, err
	}
	if g := r.s.guestPtr(id); g != nil {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memGuestRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	return r.FindByID(ctx, id)
}

func (r *memGuestRepo) Create(ctx context.Context, guest *models.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	r.s.guests = append(r.s.guests, *guest)
	return nil
}

func (r *memGuestRepo) Update(ctx context.Context, guest *models.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.guests {
		if r.s.guests[i].ID == guest.ID {
			r.s.guests[i] = *guest
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memGuestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.guests)
	r.s.guests = slices.DeleteFunc(r.s.guests, func(g models.Guest) bool { return g.ID == id })
	if len(r.s.guests) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *memGuestRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Guest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Guest
	for _, g := range r.s.guests {
		if query.Search == "" || strings.Contains(strings.ToLower(g.Name), strings.ToLower(query.Search)) {
			out = append(out, g)
		}
	}
	return out, int64(len(out)), nil
}

// Dormitories and beds

type memDormRepo struct{ s *memStore }

func (r *memDormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Dormitory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.dorms {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDormRepo) Create(ctx context.Context, dormitory *models.Dormitory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if dormitory.ID == uuid.Nil {
		dormitory.ID = uuid.New()
	}
	r.s.dorms = append(r.s.dorms, *dormitory)
	return nil
}

func (r *memDormRepo) FindAll(ctx context.Context) ([]models.Dormitory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.dorms), nil
}

func (r *memDormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.dorms)
	r.s.dorms = slices.DeleteFunc(r.s.dorms, func(d models.Dormitory) bool { return d.ID == id })
	if len(r.s.dorms) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type memBedRepo struct{ s *memStore }

func (r *memBedRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Bed, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b := r.s.bedPtr(id); b != nil {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBedRepo) Create(ctx context.Context, bed *models.Bed) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if bed.ID == uuid.Nil {
		bed.ID = uuid.New()
	}
	if bed.Status == "" {
		bed.Status = models.BedStatusAvailable
	}
	if bed.BedType == "" {
		bed.BedType = models.BedTypeBunk
	}
	stored := *bed
	stored.Dormitory = nil
	r.s.beds = append(r.s.beds, stored)
	return nil
}

func (r *memBedRepo) Update(ctx context.Context, bed *models.Bed) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.beds {
		if r.s.beds[i].ID == bed.ID {
			r.s.beds[i].BedNumber = bed.BedNumber
			r.s.beds[i].BedType = bed.BedType
			r.s.beds[i].Price = bed.Price
			r.s.beds[i].Notes = bed.Notes
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memBedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.beds)
	r.s.beds = slices.DeleteFunc(r.s.beds, func(b models.Bed) bool { return b.ID == id })
	if len(r.s.beds) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *memBedRepo) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.beds {
		if b.DormitoryID == dormitoryID {
			n++
		}
	}
	return n, nil
}

func (r *memBedRepo) List(ctx context.Context, dormitoryID *uuid.UUID, status string) ([]models.Bed, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Bed
	for _, b := range r.s.beds {
		if dormitoryID != nil && b.DormitoryID != *dormitoryID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *r.s.bedPtr(b.ID))
	}
	return out, nil
}

func (r *memBedRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.beds {
		if r.s.beds[i].ID == id {
			r.s.beds[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memBedRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bed.count"); err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, b := range r.s.beds {
		counts[b.Status]++
	}
	return counts, nil
}

// Assignments

type memAssignmentRepo struct{ s *memStore }

func (r *memAssignmentRepo) filter(keep func(a models.Assignment) bool, key func(a models.Assignment) time.Time) []models.Assignment {
	var out []models.Assignment
	for _, a := range r.s.assignments {
		if keep(a) {
			out = append(out, r.s.withRefs(a))
		}
	}
	return byTime(out, key)
}

func checkIn(a models.Assignment) time.Time { return a.CheckIn }

func (r *memAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.ID == id {
			a = r.s.withRefs(a)
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAssignmentRepo) FindInRange(ctx context.Context, period *models.DateRange) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.range"); err != nil {
		return nil, err
	}
	key := func(a models.Assignment) time.Time { return a.TransactionDate() }
	return r.filter(func(a models.Assignment) bool {
		return inRange(period, a.CheckIn) || (a.PaymentDate != nil && inRange(period, *a.PaymentDate))
	}, key), nil
}

func (r *memAssignmentRepo) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool { return a.GuestID == guestID }, checkIn), nil
}

func (r *memAssignmentRepo) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool {
		return a.GuestID == guestID && a.PaymentStatus == models.PaymentStatusNotPaid
	}, checkIn), nil
}

func (r *memAssignmentRepo) FindCheckInsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool { return period.Contains(a.CheckIn) }, checkIn), nil
}

func (r *memAssignmentRepo) FindCheckOutsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool { return period.Contains(a.CheckOut) },
		func(a models.Assignment) time.Time { return a.CheckOut }), nil
}

func (r *memAssignmentRepo) FindActiveAt(ctx context.Context, t time.Time) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool {
		return a.CheckedOutAt == nil && !a.CheckIn.After(t) && !a.CheckOut.Before(t)
	}, checkIn), nil
}

func (r *memAssignmentRepo) FindEnded(ctx context.Context, t time.Time) ([]models.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a models.Assignment) bool {
		return a.CheckedOutAt == nil && a.CheckOut.Before(t)
	}, func(a models.Assignment) time.Time { return a.CheckOut }), nil
}

func (r *memAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	stored := *assignment
	stored.Guest, stored.Bed = nil, nil
	r.s.assignments = append(r.s.assignments, stored)
	return nil
}

func (r *memAssignmentRepo) UpdatePayment(ctx context.Context, assignment *models.Assignment, fromStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.update_payment"); err != nil {
		return err
	}
	for i := range r.s.assignments {
		a := &r.s.assignments[i]
		if a.ID == assignment.ID && a.PaymentStatus == fromStatus {
			a.PaymentStatus = assignment.PaymentStatus
			a.PaymentDate = assignment.PaymentDate
			a.PaidAmount = assignment.PaidAmount
			return nil
		}
	}
	return repository.ErrConflict
}

func (r *memAssignmentRepo) MarkCheckedOut(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.assignments {
		a := &r.s.assignments[i]
		if a.ID == id && a.CheckedOutAt == nil {
			a.CheckedOutAt = &at
			return nil
		}
	}
	return repository.ErrConflict
}

func (r *memAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.assignments)
	r.s.assignments = slices.DeleteFunc(r.s.assignments, func(a models.Assignment) bool { return a.ID == id })
	if len(r.s.assignments) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Bar charges

type memBarRepo struct{ s *memStore }

func barDate(c models.BarCharge) time.Time { return c.TransactionDate }

func (r *memBarRepo) filter(keep func(c models.BarCharge) bool) []models.BarCharge {
	var out []models.BarCharge
	for _, c := range r.s.bar {
		if keep(c) {
			c.Guest = r.s.guestPtr(c.GuestID)
			out = append(out, c)
		}
	}
	return byTime(out, barDate)
}

func (r *memBarRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BarCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if out := r.filter(func(c models.BarCharge) bool { return c.ID == id }); len(out) == 1 {
		return &out[0], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBarRepo) FindInRange(ctx context.Context, period *models.DateRange) ([]models.BarCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.BarCharge) bool { return inRange(period, c.TransactionDate) }), nil
}

func (r *memBarRepo) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.BarCharge) bool { return c.GuestID == guestID }), nil
}

func (r *memBarRepo) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.BarCharge) bool {
		return c.GuestID == guestID && c.PaymentStatus == models.PaymentStatusNotPaid
	}), nil
}

func (r *memBarRepo) TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, c := range r.s.bar {
		if slices.Contains(guestIDs, c.GuestID) {
			totals[c.GuestID] = totals[c.GuestID].Add(c.Amount)
		}
	}
	return totals, nil
}

func (r *memBarRepo) Create(ctx context.Context, charge *models.BarCharge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if charge.ID == uuid.Nil {
		charge.ID = uuid.New()
	}
	stored := *charge
	stored.Guest = nil
	r.s.bar = append(r.s.bar, stored)
	return nil
}

func (r *memBarRepo) UpdatePayment(ctx context.Context, charge *models.BarCharge, fromStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bar.update_payment"); err != nil {
		return err
	}
	for i := range r.s.bar {
		c := &r.s.bar[i]
		if c.ID == charge.ID && c.PaymentStatus == fromStatus {
			c.PaymentStatus = charge.PaymentStatus
			c.PaymentDate = charge.PaymentDate
			return nil
		}
	}
	return repository.ErrConflict
}

func (r *memBarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.bar)
	r.s.bar = slices.DeleteFunc(r.s.bar, func(c models.BarCharge) bool { return c.ID == id })
	if len(r.s.bar) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Extra services

type memExtraRepo struct{ s *memStore }

func extraDate(c models.ExtraCharge) time.Time { return c.ServiceDate }

func (r *memExtraRepo) filter(keep func(c models.ExtraCharge) bool) []models.ExtraCharge {
	var out []models.ExtraCharge
	for _, c := range r.s.extras {
		if keep(c) {
			c.Guest = r.s.guestPtr(c.GuestID)
			out = append(out, c)
		}
	}
	return byTime(out, extraDate)
}

func (r *memExtraRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ExtraCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if out := r.filter(func(c models.ExtraCharge) bool { return c.ID == id }); len(out) == 1 {
		return &out[0], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memExtraRepo) FindInRange(ctx context.Context, period *models.DateRange) ([]models.ExtraCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.ExtraCharge) bool { return inRange(period, c.ServiceDate) }), nil
}

func (r *memExtraRepo) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.ExtraCharge) bool { return c.GuestID == guestID }), nil
}

func (r *memExtraRepo) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c models.ExtraCharge) bool {
		return c.GuestID == guestID && c.PaymentStatus == models.PaymentStatusNotPaid
	}), nil
}

func (r *memExtraRepo) TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, c := range r.s.extras {
		if slices.Contains(guestIDs, c.GuestID) {
			totals[c.GuestID] = totals[c.GuestID].Add(c.Price)
		}
	}
	return totals, nil
}

func (r *memExtraRepo) Create(ctx context.Context, charge *models.ExtraCharge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if charge.ID == uuid.Nil {
		charge.ID = uuid.New()
	}
	stored := *charge
	stored.Guest = nil
	r.s.extras = append(r.s.extras, stored)
	return nil
}

func (r *memExtraRepo) UpdatePayment(ctx context.Context, charge *models.ExtraCharge, fromStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("extra.update_payment"); err != nil {
		return err
	}
	for i := range r.s.extras {
		c := &r.s.extras[i]
		if c.ID == charge.ID && c.PaymentStatus == fromStatus {
			c.PaymentStatus = charge.PaymentStatus
			c.PaymentDate = charge.PaymentDate
			return nil
		}
	}
	return repository.ErrConflict
}

func (r *memExtraRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.extras)
	r.s.extras = slices.DeleteFunc(r.s.extras, func(c models.ExtraCharge) bool { return c.ID == id })
	if len(r.s.extras) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Expenses

type memExpenseRepo struct{ s *memStore }

func (r *memExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.expenses {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memExpenseRepo) FindInRange(ctx context.Context, period *models.DateRange) ([]models.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Expense
	for _, e := range r.s.expenses {
		if inRange(period, e.Date) {
			out = append(out, e)
		}
	}
	return byTime(out, func(e models.Expense) time.Time { return e.Date }), nil
}

func (r *memExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	r.s.expenses = append(r.s.expenses, *expense)
	return nil
}

func (r *memExpenseRepo) SetReceipt(ctx context.Context, id uuid.UUID, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.expenses {
		if r.s.expenses[i].ID == id {
			r.s.expenses[i].ReceiptPath = &path
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.expenses)
	r.s.expenses = slices.DeleteFunc(r.s.expenses, func(e models.Expense) bool { return e.ID == id })
	if len(r.s.expenses) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Payments

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payment.create"); err != nil {
		return err
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	stored := *payment
	stored.Allocations = slices.Clone(payment.Allocations)
	r.s.payments = append(r.s.payments, stored)
	return nil
}

func (r *memPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPaymentRepo) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.GuestID == guestID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Payment) int { return b.Date.Compare(a.Date) })
	return out, nil
}

// Audit

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := slices.Clone(r.s.audits)
	slices.Reverse(out)
	return out, int64(len(out)), nil
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var actions []string
	for _, a := range s.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

func decimalNull(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
