package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wanderlust/pkg/auth"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"
	"wanderlust/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockListingService struct {
	searchFunc func(ctx context.Context, filter model.ListingFilter) ([]*model.ListingSummary, error)
	createFunc func(ctx context.Context, ownerID string, req *model.ListingRequest) (*model.Listing, error)
	updateFunc func(ctx context.Context, id, requesterID string, update *model.ListingUpdate) (*model.Listing, error)
	deleteFunc func(ctx context.Context, id, requesterID string) error
}

func (m *mockListingService) Search(ctx context.Context, filter model.ListingFilter) ([]*model.ListingSummary, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter)
	}
	return []*model.ListingSummary{}, nil
}

func (m *mockListingService) Show(ctx context.Context, id string) (*model.ListingDetail, error) {
	if id == "missing" {
		return nil, apperrors.New(apperrors.CodeNotFound, "Listing does not exist!", http.StatusNotFound)
	}
	return &model.ListingDetail{Listing: model.Listing{ID: id}, AverageRating: 4.5}, nil
}

func (m *mockListingService) Create(ctx context.Context, ownerID string, req *model.ListingRequest) (*model.Listing, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, req)
	}
	return &model.Listing{ID: "l1", Owner: ownerID, Title: req.Title}, nil
}

func (m *mockListingService) Update(ctx context.Context, id, requesterID string, update *model.ListingUpdate) (*model.Listing, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, requesterID, update)
	}
	return &model.Listing{ID: id}, nil
}

func (m *mockListingService) Delete(ctx context.Context, id, requesterID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, requesterID)
	}
	return nil
}

type mockReviewService struct {
	deleteFunc func(ctx context.Context, listingID, reviewID, requesterID string) error
}

func (m *mockReviewService) Create(ctx context.Context, listingID, authorID string, req *model.ReviewRequest) (*model.Review, error) {
	return &model.Review{ID: "r1", ListingID: listingID, Author: authorID, Rating: req.Rating, Comment: req.Comment}, nil
}

func (m *mockReviewService) Delete(ctx context.Context, listingID, reviewID, requesterID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, listingID, reviewID, requesterID)
	}
	return nil
}

func newRouter(listings *mockListingService, reviews *mockReviewService) *httprouter.Router {
	h := NewListingHandler(listings, reviews, logger.Nop())
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), &auth.Principal{UserID: userID, Username: userID}))
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return resp.Message
}

func TestSearch_PassesFilter(t *testing.T) {
	var got model.ListingFilter
	svc := &mockListingService{
		searchFunc: func(ctx context.Context, filter model.ListingFilter) ([]*model.ListingSummary, error) {
			got = filter
			return []*model.ListingSummary{{Listing: model.Listing{ID: "l1"}, AverageRating: 4.2}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?category=Iconic+Cities&search=paris&limit=5", nil)
	rec := httptest.NewRecorder()
	newRouter(svc, &mockReviewService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if got.Category != model.CategoryIconicCities || got.Search != "paris" || got.Limit != 5 {
		t.Errorf("filter = %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"average_rating":4.2`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSearch_BadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?limit=many", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockListingService{}, &mockReviewService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestShow(t *testing.T) {
	router := newRouter(&mockListingService{}, &mockReviewService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings/l1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Listing does not exist!") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMutations_RequireUser(t *testing.T) {
	router := newRouter(&mockListingService{}, &mockReviewService{})
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/listings", `{"title":"x"}`},
		{http.MethodPatch, "/api/v1/listings/l1", `{"title":"x"}`},
		{http.MethodDelete, "/api/v1/listings/l1", ""},
		{http.MethodPost, "/api/v1/listings/l1/reviews", `{"comment":"x","rating":3}`},
		{http.MethodDelete, "/api/v1/listings/l1/reviews/r1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	var gotOwner string
	svc := &mockListingService{
		createFunc: func(ctx context.Context, ownerID string, req *model.ListingRequest) (*model.Listing, error) {
			gotOwner = ownerID
			return &model.Listing{ID: "l1", Owner: ownerID, Title: req.Title}, nil
		},
	}
	body := `{"title":"Loft","description":"d","price":100,"location":"Paris","country":"France","category":"Iconic Cities"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(body)), "alice")
	rec := httptest.NewRecorder()
	newRouter(svc, &mockReviewService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if gotOwner != "alice" {
		t.Errorf("owner = %q", gotOwner)
	}
	if msg := decodeMessage(t, rec); msg != "New Listing Created!" {
		t.Errorf("message = %q", msg)
	}
}

func TestUpdate_Forbidden(t *testing.T) {
	svc := &mockListingService{
		updateFunc: func(ctx context.Context, id, requesterID string, update *model.ListingUpdate) (*model.Listing, error) {
			if update.Title == nil || *update.Title != "New" {
				t.Errorf("update = %+v", update)
			}
			return nil, apperrors.Forbidden("You are not the owner of this listing")
		},
	}
	req := asUser(httptest.NewRequest(http.MethodPatch, "/api/v1/listings/l1", strings.NewReader(`{"title":"New"}`)), "mallory")
	rec := httptest.NewRecorder()
	newRouter(svc, &mockReviewService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	var gotID, gotRequester string
	svc := &mockListingService{
		deleteFunc: func(ctx context.Context, id, requesterID string) error {
			gotID, gotRequester = id, requesterID
			return nil
		},
	}
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/listings/l1", nil), "alice")
	rec := httptest.NewRecorder()
	newRouter(svc, &mockReviewService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotID != "l1" || gotRequester != "alice" {
		t.Errorf("service got (%q, %q)", gotID, gotRequester)
	}
	if msg := decodeMessage(t, rec); msg != "Listing Deleted!" {
		t.Errorf("message = %q", msg)
	}
}

func TestReviews(t *testing.T) {
	var gotListing, gotReview string
	reviews := &mockReviewService{
		deleteFunc: func(ctx context.Context, listingID, reviewID, requesterID string) error {
			gotListing, gotReview = listingID, reviewID
			return nil
		},
	}
	router := newRouter(&mockListingService{}, reviews)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/listings/l1/reviews", strings.NewReader(`{"comment":"Great","rating":5}`)), "bob")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "New Review Created!" {
		t.Errorf("message = %q", msg)
	}

	req = asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/listings/l1/reviews/r1", nil), "bob")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if gotListing != "l1" || gotReview != "r1" {
		t.Errorf("service got (%q, %q)", gotListing, gotReview)
	}
	if msg := decodeMessage(t, rec); msg != "Review Deleted!" {
		t.Errorf("message = %q", msg)
	}
}
