package service

import (
	"context"
	"errors"
	"net/http"

	userserrors "wanderlust/internal/users/errors"
	"wanderlust/internal/users/repository"
	"wanderlust/pkg/config"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/model"
	"wanderlust/pkg/sanitizer"
)

type ListingReader interface {
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error)
}

type BookingReader interface {
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
}

type ProfileService interface {
	// ToggleWishlist adds the listing when absent and removes it when present.
	ToggleWishlist(ctx context.Context, userID, listingID string) (*model.WishlistState, error)
	RemoveFromWishlist(ctx context.Context, userID, listingID string) error
	Dashboard(ctx context.Context, userID string) (*model.Dashboard, error)
}

type profileService struct {
	users    repository.UserRepository
	listings ListingReader
	bookings BookingReader
	cfg      *config.Config
}

func NewProfileService(users repository.UserRepository, listings ListingReader, bookings BookingReader, cfg *config.Config) ProfileService {
	return &profileService{
		users:    users,
		listings: listings,
		bookings: bookings,
		cfg:      cfg,
	}
}

func (s *profileService) ToggleWishlist(ctx context.Context, userID, listingID string) (*model.WishlistState, error) {
	removed, err := s.users.RemoveFromWishlist(ctx, userID, listingID)
	if err != nil {
		return nil, s.userError(userID, "ToggleWishlist", err)
	}
	if removed {
		s.cfg.Log.Info("Listing removed from wishlist", "user_id", userID, "listing_id", listingID)
		return &model.WishlistState{ListingID: listingID, Wishlisted: false}, nil
	}

	found, err := s.listings.FindByIDs(ctx, []string{listingID})
	if err != nil {
		s.cfg.Log.Error("Failed to check listing", "listing_id", listingID, "error", err)
		return nil, apperrors.Internal("Failed to update wishlist", err)
	}
	if len(found) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "Listing does not exist!", http.StatusNotFound)
	}

	if _, err := s.users.AddToWishlist(ctx, userID, listingID); err != nil {
		return nil, s.userError(userID, "ToggleWishlist", err)
	}
	s.cfg.Log.Info("Listing added to wishlist", "user_id", userID, "listing_id", listingID)
	return &model.WishlistState{ListingID: listingID, Wishlisted: true}, nil
}

func (s *profileService) RemoveFromWishlist(ctx context.Context, userID, listingID string) error {
	if _, err := s.users.RemoveFromWishlist(ctx, userID, listingID); err != nil {
		return s.userError(userID, "RemoveFromWishlist", err)
	}
	return nil
}

func (s *profileService) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.userError(userID, "Dashboard", err)
	}

	owned, err := s.listings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, s.loadError(userID, "listings", err)
	}

	bookings, err := s.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.loadError(userID, "bookings", err)
	}

	wanted := make([]string, 0, len(bookings)+len(user.Wishlist))
	for _, b := range bookings {
		wanted = append(wanted, b.ListingID)
	}
	wanted = append(wanted, user.Wishlist...)

	related, err := s.listings.FindByIDs(ctx, sanitizer.NormalizeIDs(wanted))
	if err != nil {
		return nil, s.loadError(userID, "related listings", err)
	}
	byID := make(map[string]*model.Listing, len(related))
	for _, l := range related {
		byID[l.ID] = l
	}

	dashboard := &model.Dashboard{
		MyListings: make([]model.Listing, 0, len(owned)),
		MyBookings: make([]model.BookingWithListing, 0, len(bookings)),
		Wishlist:   make([]model.Listing, 0, len(user.Wishlist)),
	}
	for _, l := range owned {
		dashboard.MyListings = append(dashboard.MyListings, *l)
	}
	// a booking whose listing was deleted is still shown, without the listing
	for _, b := range bookings {
		dashboard.MyBookings = append(dashboard.MyBookings, model.BookingWithListing{Booking: *b, Listing: byID[b.ListingID]})
	}
	for _, id := range user.Wishlist {
		if l, ok := byID[id]; ok {
			dashboard.Wishlist = append(dashboard.Wishlist, *l)
		}
	}
	return dashboard, nil
}

func (s *profileService) userError(userID, operation string, err error) error {
	if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.NotFound("User")
	}
	s.cfg.Log.Error("User operation failed", "operation", operation, "user_id", userID, "error", err)
	return apperrors.Internal("Failed to access user", err)
}

func (s *profileService) loadError(userID, what string, err error) error {
	s.cfg.Log.Error("Failed to load dashboard "+what, "user_id", userID, "error", err)
	return apperrors.Internal("Failed to load dashboard", err)
}
