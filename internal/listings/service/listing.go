package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	listingserrors "wanderlust/internal/listings/errors"
	"wanderlust/internal/listings/geocode"
	"wanderlust/internal/listings/repository"
	"wanderlust/internal/listings/validator"
	"wanderlust/pkg/config"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/model"
	"wanderlust/pkg/sanitizer"
)

type ListingService interface {
	Search(ctx context.Context, filter model.ListingFilter) ([]*model.ListingSummary, error)
	Show(ctx context.Context, id string) (*model.ListingDetail, error)
	Create(ctx context.Context, ownerID string, req *model.ListingRequest) (*model.Listing, error)
	Update(ctx context.Context, id, requesterID string, update *model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type listingService struct {
	listings  repository.ListingRepository
	reviews   repository.ReviewRepository
	booked    repository.BookedRangeReader
	geocoder  geocode.Geocoder
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	booked repository.BookedRangeReader,
	geocoder geocode.Geocoder,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		listings:  listings,
		reviews:   reviews,
		booked:    booked,
		geocoder:  geocoder,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Search(ctx context.Context, filter model.ListingFilter) ([]*model.ListingSummary, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = sanitizer.NormalizeSearch(filter.Search)
	filter.Limit = config.NormalizeSearchLimit(filter.Limit)

	if filter.Category != "" && !model.IsValidCategory(filter.Category) {
		return nil, apperrors.InvalidInput("Unknown category: " + filter.Category)
	}

	listings, err := s.listings.Search(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to search listings", "category", filter.Category, "search", filter.Search, "error", err)
		return nil, apperrors.Internal("Failed to search listings", err)
	}

	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	ratings, err := s.reviews.RatingsByListing(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load listing ratings", "count", len(ids), "error", err)
		return nil, apperrors.Internal("Failed to search listings", err)
	}

	summaries := make([]*model.ListingSummary, 0, len(listings))
	for _, l := range listings {
		summaries = append(summaries, &model.ListingSummary{
			Listing:       *l,
			AverageRating: AverageRating(ratings[l.ID]),
		})
	}

	s.cfg.Log.Debug("Listing search completed",
		"category", filter.Category,
		"search", filter.Search,
		"count", len(summaries),
	)
	return summaries, nil
}

func (s *listingService) Show(ctx context.Context, id string) (*model.ListingDetail, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.FindByListing(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to load reviews", "listing_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	ranges, err := s.booked.BookedRanges(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked ranges", "listing_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	detail := &model.ListingDetail{
		Listing:      *listing,
		ReviewDocs:   make([]model.Review, 0, len(reviews)),
		BookedRanges: ranges,
	}
	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		detail.ReviewDocs = append(detail.ReviewDocs, *r)
		ratings = append(ratings, r.Rating)
	}
	detail.AverageRating = AverageRating(ratings)
	return detail, nil
}

func (s *listingService) Create(ctx context.Context, ownerID string, req *model.ListingRequest) (*model.Listing, error) {
	sanitizeListingRequest(req)
	if err := s.validator.ValidateListing(req); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "owner", ownerID, "error", err)
		return nil, err
	}

	listing := &model.Listing{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Location:    req.Location,
		Country:     req.Country,
		Category:    req.Category,
		Owner:       ownerID,
		Reviews:     []string{},
		Geometry:    s.locate(ctx, req.Location, req.Country),
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing", "owner", ownerID, "error", err)
		return nil, apperrors.Internal("Something went wrong while creating listing.", err)
	}

	s.cfg.Log.Info("Listing created successfully", "id", listing.ID, "owner", ownerID, "category", listing.Category)
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, id, requesterID string, update *model.ListingUpdate) (*model.Listing, error) {
	if update.Empty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	sanitizeListingUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Listing update validation failed", "id", id, "error", err)
		return nil, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Owner != requesterID {
		return nil, apperrors.Forbidden("You are not the owner of this listing")
	}

	var geometry *model.Geometry
	if update.Location != nil || update.Country != nil {
		location, country := existing.Location, existing.Country
		if update.Location != nil {
			location = *update.Location
		}
		if update.Country != nil {
			country = *update.Country
		}
		geometry = s.locate(ctx, location, country)
	}

	updated, err := s.listings.Update(ctx, id, update, geometry)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, listingNotFound()
		}
		s.cfg.Log.Error("Failed to update listing", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update listing", err)
	}

	s.cfg.Log.Info("Listing updated successfully", "id", id)
	return updated, nil
}

// Delete removes the listing and its reviews in one transaction. Bookings
// on the listing are kept.
func (s *listingService) Delete(ctx context.Context, id, requesterID string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if existing.Owner != requesterID {
		return apperrors.Forbidden("You are not the owner of this listing")
	}

	var removedReviews int64
	err = s.listings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.reviews.DeleteByListing(txCtx, id)
		if err != nil {
			return err
		}
		removedReviews = n
		return s.listings.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return listingNotFound()
		}
		s.cfg.Log.Error("Failed to delete listing", "id", id, "error", err)
		return apperrors.Internal("Failed to delete listing", err)
	}

	s.cfg.Log.Info("Listing deleted successfully", "id", id, "reviews_removed", removedReviews)
	return nil
}

func (s *listingService) find(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) || errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, listingNotFound()
		}
		s.cfg.Log.Error("Failed to find listing", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}
	return listing, nil
}

// locate is best effort: a listing without coordinates is still valid.
func (s *listingService) locate(ctx context.Context, location, country string) *model.Geometry {
	query := strings.TrimSpace(location)
	if c := strings.TrimSpace(country); c != "" {
		query += ", " + c
	}

	geometry, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		if !errors.Is(err, geocode.ErrNoMatch) {
			s.cfg.Log.Warn("Geocoding failed", "query", query, "error", err)
		}
		return nil
	}
	return geometry
}

func sanitizeListingRequest(req *model.ListingRequest) {
	req.Title = sanitizer.NormalizeTitle(req.Title)
	req.Description = sanitizer.NormalizeDescription(req.Description)
	req.Location = sanitizer.NormalizeLocation(req.Location)
	req.Country = sanitizer.NormalizeCountry(req.Country)
	req.Category = strings.TrimSpace(req.Category)
}

func sanitizeListingUpdate(u *model.ListingUpdate) {
	apply := func(field *string, normalize func(string) string) {
		if field != nil {
			*field = normalize(*field)
		}
	}
	apply(u.Title, sanitizer.NormalizeTitle)
	apply(u.Description, sanitizer.NormalizeDescription)
	apply(u.Location, sanitizer.NormalizeLocation)
	apply(u.Country, sanitizer.NormalizeCountry)
	apply(u.Category, strings.TrimSpace)
}

func listingNotFound() *apperrors.AppError {
	return apperrors.New(apperrors.CodeNotFound, "Listing does not exist!", http.StatusNotFound)
}
