package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	bookingserrors "wanderlust/internal/bookings/errors"
	"wanderlust/pkg/config"
	"wanderlust/pkg/daterange"
	mongotx "wanderlust/pkg/db/mongo"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory collaborators
// ────────────────────────────────────────────────

type memoryBookingRepository struct {
	mu         sync.Mutex
	bookings   map[string]*model.Booking
	seq        int
	createErr  error
	findErr    error
	txDeadline time.Time
}

func newMemoryBookingRepository() *memoryBookingRepository {
	return &memoryBookingRepository{bookings: map[string]*model.Booking{}}
}

func (m *memoryBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if b.ListingID == "" || b.UserID == "" || !b.CheckOut.After(b.CheckIn) {
		return bookingserrors.ErrConstraintViolation
	}
	m.seq++
	b.ID = fmt.Sprintf("%024x", m.seq)
	stored := *b
	m.bookings[b.ID] = &stored
	return nil
}

func (m *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(id) != 24 {
		return nil, bookingserrors.ErrInvalidID
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	found := *b
	return &found, nil
}

func (m *memoryBookingRepository) FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	candidate := daterange.Range{CheckIn: checkIn, CheckOut: checkOut}
	for _, b := range m.bookings {
		if b.ListingID == listingID && daterange.Overlaps(daterange.Range{CheckIn: b.CheckIn, CheckOut: b.CheckOut}, candidate) {
			found := *b
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryBookingRepository) FindByListing(ctx context.Context, listingID string) ([]*model.Booking, error) {
	return m.filter(func(b *model.Booking) bool { return b.ListingID == listingID }), nil
}

func (m *memoryBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return m.filter(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (m *memoryBookingRepository) filter(keep func(*model.Booking) bool) []*model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if keep(b) {
			found := *b
			out = append(out, &found)
		}
	}
	return out
}

func (m *memoryBookingRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memoryBookingRepository) BelongsTo(ctx context.Context, bookingID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	return ok && b.UserID == userID, nil
}

func (m *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if deadline, ok := ctx.Deadline(); ok {
		m.mu.Lock()
		m.txDeadline = deadline
		m.mu.Unlock()
	}
	return fn(ctx)
}

func (m *memoryBookingRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type memoryLockRepository struct {
	mu    sync.Mutex
	locks map[string]model.BookingLock
}

func newMemoryLockRepository() *memoryLockRepository {
	return &memoryLockRepository{locks: map[string]model.BookingLock{}}
}

func (m *memoryLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return bookingserrors.ErrLockHeld
	}
	m.locks[lock.ID] = *lock
	return nil
}

func (m *memoryLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[lockID]; ok && l.Owner == owner {
		delete(m.locks, lockID)
	}
	return nil
}

func (m *memoryLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[lockID]; ok && l.ExpiresAt.Before(now) {
		delete(m.locks, lockID)
		return true, nil
	}
	return false, nil
}

func (m *memoryLockRepository) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

type stubListings map[string]bool

func (s stubListings) Exists(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

const (
	beachHouse = "65f000000000000000000001"
	cabin      = "65f000000000000000000002"
	alice      = "user-alice"
	bob        = "user-bob"
)

var today = time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *bookingService
	repo      *memoryBookingRepository
	locks     *memoryLockRepository
	publisher *recordingPublisher
}

func newFixture() *fixture {
	cfg := &config.Config{
		Log:                      logger.Nop(),
		BookingLockTTL:           10 * time.Second,
		BookingLockWait:          2 * time.Second,
		BookingLockRetryInterval: time.Millisecond,
	}
	f := &fixture{
		repo:      newMemoryBookingRepository(),
		locks:     newMemoryLockRepository(),
		publisher: &recordingPublisher{},
	}
	listings := stubListings{beachHouse: true, cabin: true}
	f.svc = NewBookingService(f.repo, f.locks, listings, f.publisher, cfg).(*bookingService)
	f.svc.now = func() time.Time { return today }
	return f
}

func day(s string) time.Time {
	t, err := daterange.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertAppError(t *testing.T, err error, sentinel error, status int) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != status {
		t.Errorf("status = %d, want %d", appErr.StatusCode(), status)
	}
}

// ────────────────────────────────────────────────
// RequestBooking
// ────────────────────────────────────────────────

func TestRequestBooking_Confirmed(t *testing.T) {
	f := newFixture()

	booking, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	if err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}
	if booking.ID == "" || booking.UserID != alice || booking.ListingID != beachHouse {
		t.Errorf("unexpected booking %+v", booking)
	}
	if f.repo.count() != 1 {
		t.Errorf("expected 1 stored booking, got %d", f.repo.count())
	}
	if f.locks.held() != 0 {
		t.Errorf("listing lock was not released")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != model.EventBookingConfirmed {
		t.Errorf("expected one confirmed event, got %+v", f.publisher.events)
	}
}

func TestRequestBooking_NormalizesTimeOfDay(t *testing.T) {
	f := newFixture()

	in := time.Date(2030, 3, 12, 17, 30, 0, 0, time.UTC)
	out := time.Date(2030, 3, 14, 9, 0, 0, 0, time.UTC)
	booking, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, in, out)
	if err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}
	if !booking.CheckIn.Equal(day("2030-03-12")) || !booking.CheckOut.Equal(day("2030-03-14")) {
		t.Errorf("dates not truncated to day: %v - %v", booking.CheckIn, booking.CheckOut)
	}
}

func TestRequestBooking_InvalidDates(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		message string
	}{
		{"same day", "2030-03-12", "2030-03-12", "Check-out must be after check-in."},
		{"reversed", "2030-03-15", "2030-03-12", "Check-out must be after check-in."},
		{"past check-in", "2030-03-09", "2030-03-12", "Cannot book past dates."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day(tt.in), day(tt.out))
			assertAppError(t, err, bookingserrors.ErrInvalidDates, http.StatusUnprocessableEntity)
			if apperrors.AsAppError(err).Message != tt.message {
				t.Errorf("message = %q, want %q", apperrors.AsAppError(err).Message, tt.message)
			}
			if f.repo.count() != 0 {
				t.Errorf("nothing should be stored")
			}
		})
	}
}

func TestRequestBooking_CheckInTodayAllowed(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-10"), day("2030-03-11")); err != nil {
		t.Fatalf("check-in today should be accepted: %v", err)
	}
}

func TestRequestBooking_UnknownListing(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RequestBooking(context.Background(), "65f0000000000000000000ff", alice, day("2030-03-12"), day("2030-03-15"))
	assertAppError(t, err, bookingserrors.ErrNotFound, http.StatusNotFound)
}

func TestRequestBooking_Overlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err = f.svc.RequestBooking(ctx, beachHouse, bob, day("2030-03-14"), day("2030-03-17"))
	assertAppError(t, err, bookingserrors.ErrDoubleBooking, http.StatusConflict)
	if strings.Contains(err.Error(), first.ID) {
		t.Errorf("error must not disclose the conflicting booking: %v", err)
	}
	if f.repo.count() != 1 {
		t.Errorf("rejected booking must not be stored")
	}
	if f.locks.held() != 0 {
		t.Errorf("lock must be released on rejection")
	}
}

func TestRequestBooking_AdjacentStays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.svc.RequestBooking(ctx, beachHouse, bob, day("2030-03-15"), day("2030-03-18")); err != nil {
		t.Errorf("stay starting on checkout day should be accepted: %v", err)
	}
	if _, err := f.svc.RequestBooking(ctx, beachHouse, bob, day("2030-03-10"), day("2030-03-12")); err != nil {
		t.Errorf("stay ending on check-in day should be accepted: %v", err)
	}
	if f.repo.count() != 3 {
		t.Errorf("expected 3 bookings, got %d", f.repo.count())
	}
}

func TestRequestBooking_OtherListingUnaffected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.svc.RequestBooking(ctx, cabin, bob, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Errorf("same dates on another listing should be accepted: %v", err)
	}
}

func TestRequestBooking_ConcurrentSameDates(t *testing.T) {
	f := newFixture()

	const requests = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		rejected  int
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.RequestBooking(context.Background(), beachHouse, fmt.Sprintf("user-%d", i), day("2030-03-12"), day("2030-03-15"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, bookingserrors.ErrDoubleBooking):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if confirmed != 1 || rejected != requests-1 {
		t.Errorf("confirmed = %d, rejected = %d; want 1 and %d", confirmed, rejected, requests-1)
	}
	if f.repo.count() != 1 {
		t.Errorf("expected exactly one stored booking, got %d", f.repo.count())
	}
}

func TestRequestBooking_ConcurrentDifferentListings(t *testing.T) {
	f := newFixture()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, listing := range []string{beachHouse, cabin} {
		wg.Add(1)
		go func(i int, listing string) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestBooking(context.Background(), listing, alice, day("2030-03-12"), day("2030-03-15"))
		}(i, listing)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: %v", i, err)
		}
	}
}

func TestRequestBooking_BoundsTransaction(t *testing.T) {
	f := newFixture()
	f.svc.cfg.ReadTimeout = 2 * time.Second
	f.svc.cfg.WriteTimeout = 3 * time.Second

	start := time.Now()
	if _, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}

	if f.repo.txDeadline.IsZero() {
		t.Fatal("transaction ran without a deadline")
	}
	if limit := start.Add(5 * time.Second); f.repo.txDeadline.After(limit.Add(time.Second)) {
		t.Errorf("deadline %v is past read+write timeout", f.repo.txDeadline)
	}
}

func TestRequestBooking_StoreErrors(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		findErr   error
		sentinel  error
		status    int
	}{
		{
			name:     "lookup failure",
			findErr:  errors.New("connection pool cleared"),
			sentinel: bookingserrors.ErrPersistence,
			status:   http.StatusInternalServerError,
		},
		{
			name:      "insert timeout",
			createErr: fmt.Errorf("failed to create booking: %w", context.DeadlineExceeded),
			sentinel:  bookingserrors.ErrPersistence,
			status:    http.StatusInternalServerError,
		},
		{
			name:     "labelled network error",
			findErr:  mongo.CommandError{Code: 6, Name: "HostUnreachable", Labels: []string{"TransientTransactionError"}},
			sentinel: bookingserrors.ErrPersistence,
			status:   http.StatusInternalServerError,
		},
		{
			name:      "labelled missing transaction",
			createErr: mongo.CommandError{Code: 251, Name: "NoSuchTransaction", Labels: []string{"TransientTransactionError"}},
			sentinel:  bookingserrors.ErrPersistence,
			status:    http.StatusInternalServerError,
		},
		{
			name:      "write conflict",
			createErr: mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{"TransientTransactionError"}},
			sentinel:  bookingserrors.ErrDoubleBooking,
			status:    http.StatusConflict,
		},
		{
			name:      "schema validator",
			createErr: fmt.Errorf("%w: document failed validation", bookingserrors.ErrConstraintViolation),
			sentinel:  bookingserrors.ErrConstraintViolation,
			status:    http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.createErr = tt.createErr
			f.repo.findErr = tt.findErr

			_, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
			assertAppError(t, err, tt.sentinel, tt.status)
			if strings.Contains(apperrors.AsAppError(err).Message, "connection") {
				t.Errorf("driver detail leaked: %q", apperrors.AsAppError(err).Message)
			}
			if len(f.publisher.events) != 0 {
				t.Errorf("no event expected on failure")
			}
			if f.locks.held() != 0 {
				t.Errorf("lock must be released on failure")
			}
		})
	}
}

func TestRequestBooking_PublishFailureIgnored(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Fatalf("publish failure must not fail admission: %v", err)
	}
}

func TestRequestBooking_ExpiredLockTakenOver(t *testing.T) {
	f := newFixture()
	f.locks.locks["listing:"+beachHouse] = model.BookingLock{
		ID:        "listing:" + beachHouse,
		Owner:     "crashed-instance",
		ExpiresAt: today.Add(-time.Minute),
	}

	if _, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Fatalf("expired lock should be taken over: %v", err)
	}
	if f.locks.held() != 0 {
		t.Errorf("lock should be released after admission")
	}
}

func TestRequestBooking_LockWaitExceeded(t *testing.T) {
	f := newFixture()
	f.svc.cfg.BookingLockWait = 20 * time.Millisecond
	f.locks.locks["listing:"+beachHouse] = model.BookingLock{
		ID:        "listing:" + beachHouse,
		Owner:     "other-request",
		ExpiresAt: today.Add(time.Minute),
	}

	_, err := f.svc.RequestBooking(context.Background(), beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	assertAppError(t, err, bookingserrors.ErrPersistence, http.StatusInternalServerError)
	if f.locks.locks["listing:"+beachHouse].Owner != "other-request" {
		t.Errorf("foreign lock must not be touched")
	}
}

// ────────────────────────────────────────────────
// CancelBooking
// ────────────────────────────────────────────────

func TestCancelBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	booking, err := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = f.svc.CancelBooking(ctx, booking.ID, bob)
	assertAppError(t, err, bookingserrors.ErrUnauthorized, http.StatusForbidden)
	if f.repo.count() != 1 {
		t.Fatalf("booking must survive a non-owner cancel")
	}

	if err := f.svc.CancelBooking(ctx, booking.ID, alice); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if f.repo.count() != 0 {
		t.Errorf("booking should be removed")
	}

	err = f.svc.CancelBooking(ctx, booking.ID, alice)
	assertAppError(t, err, bookingserrors.ErrNotFound, http.StatusNotFound)

	last := f.publisher.events[len(f.publisher.events)-1]
	if last.Type != model.EventBookingCancelled || last.BookingID != booking.ID {
		t.Errorf("expected cancelled event for %s, got %+v", booking.ID, last)
	}
}

func TestCancelBooking_FreesDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	booking, _ := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	if err := f.svc.CancelBooking(ctx, booking.ID, alice); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.RequestBooking(ctx, beachHouse, bob, day("2030-03-12"), day("2030-03-15")); err != nil {
		t.Errorf("dates should be free after cancel: %v", err)
	}
}

func TestCancelBooking_MalformedID(t *testing.T) {
	f := newFixture()
	err := f.svc.CancelBooking(context.Background(), "not-an-id", alice)
	assertAppError(t, err, bookingserrors.ErrNotFound, http.StatusNotFound)
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_OwnerOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	booking, _ := f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15"))

	if _, err := f.svc.GetByID(ctx, booking.ID, alice); err != nil {
		t.Errorf("owner read: %v", err)
	}
	_, err := f.svc.GetByID(ctx, booking.ID, bob)
	assertAppError(t, err, bookingserrors.ErrUnauthorized, http.StatusForbidden)
}

func TestBookedRangesAndListByUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _ = f.svc.RequestBooking(ctx, beachHouse, alice, day("2030-03-12"), day("2030-03-15"))
	_, _ = f.svc.RequestBooking(ctx, cabin, bob, day("2030-04-01"), day("2030-04-03"))

	ranges, err := f.svc.BookedRanges(ctx, beachHouse)
	if err != nil {
		t.Fatalf("BookedRanges() error = %v", err)
	}
	if len(ranges) != 1 || ranges[0].From != "2030-03-12" || ranges[0].To != "2030-03-15" {
		t.Errorf("ranges = %+v", ranges)
	}

	mine, err := f.svc.ListByUser(ctx, bob)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(mine) != 1 || mine[0].ListingID != cabin {
		t.Errorf("ListByUser() = %+v", mine)
	}
}
