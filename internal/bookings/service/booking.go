package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "wanderlust/internal/bookings/errors"
	"wanderlust/internal/bookings/repository"
	"wanderlust/pkg/config"
	"wanderlust/pkg/daterange"
	mongotx "wanderlust/pkg/db/mongo"
	"wanderlust/pkg/model"

	"github.com/google/uuid"
)

const eventPublishTimeout = 5 * time.Second

// admissionState names the steps of RequestBooking in debug logs.
type admissionState string

const (
	stateReceived             admissionState = "received"
	stateValidatingDates      admissionState = "validating_dates"
	stateCheckingAvailability admissionState = "checking_availability"
	statePersisting           admissionState = "persisting"
	stateConfirmed            admissionState = "confirmed"
	stateRejected             admissionState = "rejected"
)

type BookingService interface {
	RequestBooking(ctx context.Context, listingID, userID string, checkIn, checkOut time.Time) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string) error
	GetByID(ctx context.Context, bookingID, requesterID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	BookedRanges(ctx context.Context, listingID string) ([]model.BookedRange, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	listings  repository.ListingLookup
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	listings repository.ListingLookup,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) RequestBooking(ctx context.Context, listingID, userID string, checkIn, checkOut time.Time) (*model.Booking, error) {
	s.trace(stateReceived, "listing_id", listingID, "user_id", userID)

	s.trace(stateValidatingDates, "check_in", checkIn, "check_out", checkOut)
	stay := daterange.New(checkIn, checkOut)
	if !stay.CheckOut.After(stay.CheckIn) {
		s.trace(stateRejected, "reason", bookingserrors.CodeInvalidDates)
		return nil, bookingserrors.InvalidDates("Check-out must be after check-in.")
	}
	if !stay.Valid(s.now()) {
		s.trace(stateRejected, "reason", bookingserrors.CodeInvalidDates)
		return nil, bookingserrors.InvalidDates("Cannot book past dates.")
	}

	exists, err := s.listings.Exists(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to look up listing for booking", "listing_id", listingID, "error", err)
		return nil, bookingserrors.Persistence("Something went wrong while booking.")
	}
	if !exists {
		s.trace(stateRejected, "reason", bookingserrors.CodeNotFound)
		return nil, bookingserrors.NotFound("Listing does not exist!")
	}

	release, err := s.acquireListingLock(ctx, listingID)
	if err != nil {
		return nil, err
	}
	defer release()

	admitCtx, cancel := s.transactionContext(ctx)
	defer cancel()

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(admitCtx, func(txCtx context.Context) error {
		s.trace(stateCheckingAvailability, "listing_id", listingID, "stay", stay.String())
		existing, err := s.repo.FindOverlapping(txCtx, listingID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return err
		}
		if existing != nil {
			return bookingserrors.ErrDoubleBooking
		}

		s.trace(statePersisting, "listing_id", listingID)
		booking = &model.Booking{
			ListingID: listingID,
			UserID:    userID,
			CheckIn:   stay.CheckIn,
			CheckOut:  stay.CheckOut,
		}
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, s.admissionError(listingID, err)
	}

	s.trace(stateConfirmed, "booking_id", booking.ID)
	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"listing_id", listingID,
		"user_id", userID,
		"stay", stay.String(),
	)
	s.publish(ctx, model.EventBookingConfirmed, booking)
	return booking, nil
}

// transactionContext bounds the whole check-then-write. Calls made inside the
// session do not get their own READ_TIMEOUT/WRITE_TIMEOUT, and the driver keeps
// retrying transient failures until the context is done.
func (s *bookingService) transactionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.ReadTimeout + s.cfg.WriteTimeout
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// admissionError maps a failed check-then-write to a taxonomy error. Driver
// details are logged and never returned.
func (s *bookingService) admissionError(listingID string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrDoubleBooking), mongotx.IsWriteConflict(err):
		s.trace(stateRejected, "reason", bookingserrors.CodeDoubleBooking, "listing_id", listingID)
		return bookingserrors.DoubleBooking()
	case errors.Is(err, bookingserrors.ErrConstraintViolation):
		s.cfg.Log.Warn("Booking rejected by store constraints", "listing_id", listingID, "error", err)
		return bookingserrors.ConstraintViolation("Booking violates store constraints")
	default:
		s.cfg.Log.Error("Failed to persist booking", "listing_id", listingID, "timeout", mongotx.IsTimeout(err), "error", err)
		return bookingserrors.Persistence("Something went wrong while booking.")
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return s.lookupError(bookingID, err)
	}

	owns, err := s.repo.BelongsTo(ctx, bookingID, requesterID)
	if err != nil {
		return s.lookupError(bookingID, err)
	}
	if !owns {
		s.cfg.Log.Warn("Rejected cancel by non-owner", "id", bookingID, "requester", requesterID)
		return bookingserrors.Unauthorized("Unauthorized to cancel this booking.")
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return s.lookupError(bookingID, err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", bookingID, "listing_id", booking.ListingID, "user_id", requesterID)
	s.publish(ctx, model.EventBookingCancelled, booking)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, bookingID, requesterID string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.lookupError(bookingID, err)
	}
	if booking.UserID != requesterID {
		return nil, bookingserrors.Unauthorized("You can only view your own bookings")
	}
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", err)
		return nil, bookingserrors.Persistence("Failed to retrieve bookings")
	}
	return bookings, nil
}

func (s *bookingService) BookedRanges(ctx context.Context, listingID string) ([]model.BookedRange, error) {
	bookings, err := s.repo.FindByListing(ctx, listingID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked ranges", "listing_id", listingID, "error", err)
		return nil, bookingserrors.Persistence("Failed to retrieve booked dates")
	}
	return model.ToBookedRanges(bookings), nil
}

func (s *bookingService) lookupError(bookingID string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
		return bookingserrors.NotFound("Booking not found")
	}
	s.cfg.Log.Error("Booking store failure", "id", bookingID, "error", err)
	return bookingserrors.Persistence("Failed to access booking")
}

// acquireListingLock takes the advisory lock for listingID, waiting up to
// BookingLockWait. A lock left behind by a crashed holder is taken over once
// it has expired. The returned func releases the lock even if ctx is done.
func (s *bookingService) acquireListingLock(ctx context.Context, listingID string) (func(), error) {
	lockID := "listing:" + listingID
	owner := uuid.NewString()
	start := time.Now()

	for {
		now := s.now().UTC()
		err := s.lockRepo.Create(ctx, &model.BookingLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: now.Add(s.cfg.BookingLockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return func() {
				if err := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID, owner); err != nil {
					s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", err)
				}
			}, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			s.cfg.Log.Error("Failed to acquire booking lock", "lock_id", lockID, "error", err)
			return nil, bookingserrors.Persistence("Something went wrong while booking.")
		}

		removed, err := s.lockRepo.DeleteExpired(ctx, lockID, now)
		if err != nil {
			s.cfg.Log.Warn("Failed to remove expired booking lock", "lock_id", lockID, "error", err)
		}
		if removed {
			s.cfg.Log.Warn("Took over expired booking lock", "lock_id", lockID)
			continue
		}

		if time.Since(start) >= s.cfg.BookingLockWait {
			s.cfg.Log.Warn("Timed out waiting for booking lock", "lock_id", lockID, "waited", time.Since(start))
			return nil, bookingserrors.Persistence("Listing is busy, please try again.")
		}

		select {
		case <-ctx.Done():
			return nil, bookingserrors.Persistence("Listing is busy, please try again.")
		case <-time.After(s.cfg.BookingLockRetryInterval):
		}
	}
}

// publish is best effort; failures are only logged.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, model.NewBookingEvent(eventType, booking, s.now())); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func (s *bookingService) trace(state admissionState, args ...any) {
	s.cfg.Log.Debug("Booking admission", append([]any{"state", string(state)}, args...)...)
}
