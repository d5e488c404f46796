package repository

import (
	"context"

	bookingsrepo "wanderlust/internal/bookings/repository"
	"wanderlust/pkg/model"
)

// BookedRangeReader supplies the taken dates shown on a listing page.
type BookedRangeReader interface {
	BookedRanges(ctx context.Context, listingID string) ([]model.BookedRange, error)
}

type bookedRangeReader struct {
	bookings bookingsrepo.BookingRepository
}

func NewBookedRangeReader(bookings bookingsrepo.BookingRepository) BookedRangeReader {
	return &bookedRangeReader{bookings: bookings}
}

func (r *bookedRangeReader) BookedRanges(ctx context.Context, listingID string) ([]model.BookedRange, error) {
	bookings, err := r.bookings.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return model.ToBookedRanges(bookings), nil
}
