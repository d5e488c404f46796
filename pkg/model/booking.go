package model

import (
	"time"

	"wanderlust/pkg/daterange"
)

// Booking is a confirmed stay. CheckIn and CheckOut are UTC midnights and the
// stay covers the nights in [CheckIn, CheckOut).
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID string    `json:"listing_id" bson:"listing_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CheckIn   time.Time `json:"check_in" bson:"check_in"`
	CheckOut  time.Time `json:"check_out" bson:"check_out"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type BookingRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
	CheckIn   string `json:"check_in" validate:"required"`
	CheckOut  string `json:"check_out" validate:"required"`
}

// BookedRange is what a listing's availability calendar shows. To is the
// checkout day, which is itself bookable.
type BookedRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ToBookedRanges renders bookings as calendar ranges.
func ToBookedRanges(bookings []*Booking) []BookedRange {
	ranges := make([]BookedRange, 0, len(bookings))
	for _, b := range bookings {
		ranges = append(ranges, BookedRange{
			From: b.CheckIn.UTC().Format(daterange.DayLayout),
			To:   b.CheckOut.UTC().Format(daterange.DayLayout),
		})
	}
	return ranges
}

type BookingWithListing struct {
	Booking `bson:",inline"`
	Listing *Listing `json:"listing,omitempty" bson:"-"`
}
