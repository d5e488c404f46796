package handler

import (
	"net/http"

	"wanderlust/internal/listings/service"
	httputil "wanderlust/pkg/http"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"
	"wanderlust/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ListingHandler struct {
	listings service.ListingService
	reviews  service.ReviewService
	log      *logger.Logger
}

func NewListingHandler(listings service.ListingService, reviews service.ReviewService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		reviews:  reviews,
		log:      log,
	}
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	q := r.URL.Query()
	summaries, err := h.listings.Search(r.Context(), model.ListingFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    limit,
	})
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, summaries); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.listings.Show(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Show", err)
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "Show", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ListingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	listing, err := h.listings.Create(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, listing, "New Listing Created!"); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ListingUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	listing, err := h.listings.Update(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context()), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccessMessage(w, listing, "Listing Updated!"); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.listings.Delete(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context())); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccessMessage(w, nil, "Listing Deleted!"); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *ListingHandler) CreateReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateReview", err)
		return
	}

	review, err := h.reviews.Create(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "CreateReview", err)
		return
	}

	if err := httputil.WriteCreated(w, review, "New Review Created!"); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateReview", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.reviews.Delete(r.Context(), ps.ByName("id"), ps.ByName("reviewId"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "DeleteReview", err)
		return
	}

	if err := httputil.WriteSuccessMessage(w, nil, "Review Deleted!"); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteReview", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *ListingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/listings", h.Search)
	router.GET("/api/v1/listings/:id", h.Show)
	router.POST("/api/v1/listings", middleware.RequireUser(h.Create))
	router.PATCH("/api/v1/listings/:id", middleware.RequireUser(h.Update))
	router.DELETE("/api/v1/listings/:id", middleware.RequireUser(h.Delete))
	router.POST("/api/v1/listings/:id/reviews", middleware.RequireUser(h.CreateReview))
	router.DELETE("/api/v1/listings/:id/reviews/:reviewId", middleware.RequireUser(h.DeleteReview))
}
