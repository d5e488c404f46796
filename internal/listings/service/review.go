package service

import (
	"context"
	"errors"

	listingserrors "wanderlust/internal/listings/errors"
	"wanderlust/internal/listings/repository"
	"wanderlust/internal/listings/validator"
	"wanderlust/pkg/config"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/model"
	"wanderlust/pkg/sanitizer"
)

type ReviewService interface {
	Create(ctx context.Context, listingID, authorID string, req *model.ReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, listingID, reviewID, requesterID string) error
}

type reviewService struct {
	listings  repository.ListingRepository
	reviews   repository.ReviewRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewReviewService(
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		listings:  listings,
		reviews:   reviews,
		validator: validator,
		cfg:       cfg,
	}
}

// Create stores the review and links it from the listing in one transaction,
// so a listing never references a review that does not exist.
func (s *reviewService) Create(ctx context.Context, listingID, authorID string, req *model.ReviewRequest) (*model.Review, error) {
	req.Comment = sanitizer.NormalizeDescription(req.Comment)
	if err := s.validator.ValidateReview(req); err != nil {
		return nil, err
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, s.listingError(listingID, err)
	}

	var review *model.Review
	err := s.listings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		review = &model.Review{
			ListingID: listingID,
			Comment:   req.Comment,
			Rating:    req.Rating,
			Author:    authorID,
		}
		if err := s.reviews.Create(txCtx, review); err != nil {
			return err
		}
		return s.listings.AddReview(txCtx, listingID, review.ID)
	})
	if err != nil {
		return nil, s.listingError(listingID, err)
	}

	s.cfg.Log.Info("Review created", "id", review.ID, "listing_id", listingID, "author", authorID, "rating", review.Rating)
	return review, nil
}

// Delete unlinks the review from its listing, then removes it.
func (s *reviewService) Delete(ctx context.Context, listingID, reviewID, requesterID string) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, listingserrors.ErrReviewNotFound) || errors.Is(err, listingserrors.ErrInvalidID) {
			return apperrors.NotFound("Review")
		}
		s.cfg.Log.Error("Failed to find review", "id", reviewID, "error", err)
		return apperrors.Internal("Failed to delete review", err)
	}
	if review.ListingID != listingID {
		return apperrors.NotFound("Review")
	}
	if review.Author != requesterID {
		return apperrors.Forbidden("You are not the author of this review")
	}

	err = s.listings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.listings.RemoveReview(txCtx, listingID, reviewID); err != nil && !errors.Is(err, listingserrors.ErrNotFound) {
			return err
		}
		return s.reviews.Delete(txCtx, reviewID)
	})
	if err != nil {
		if errors.Is(err, listingserrors.ErrReviewNotFound) {
			return apperrors.NotFound("Review")
		}
		s.cfg.Log.Error("Failed to delete review", "id", reviewID, "error", err)
		return apperrors.Internal("Failed to delete review", err)
	}

	s.cfg.Log.Info("Review deleted", "id", reviewID, "listing_id", listingID)
	return nil
}

func (s *reviewService) listingError(listingID string, err error) error {
	if errors.Is(err, listingserrors.ErrNotFound) || errors.Is(err, listingserrors.ErrInvalidID) {
		return listingNotFound()
	}
	s.cfg.Log.Error("Review operation failed", "listing_id", listingID, "error", err)
	return apperrors.Internal("Failed to save review", err)
}
