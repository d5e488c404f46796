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

type mockAuthService struct {
	loginErr error
}

func (m *mockAuthService) Register(ctx context.Context, req *model.SignupRequest) (*model.Session, error) {
	return &model.Session{Token: "tok", User: &model.User{ID: "u1", Username: req.Username}}, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &model.Session{Token: "tok", User: &model.User{ID: "u1", Username: req.Username}}, nil
}

func (m *mockAuthService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	return &model.User{ID: "u1", Username: username}, nil
}

func (m *mockAuthService) IssueSession(user *model.User) (*model.Session, error) {
	return &model.Session{Token: "tok", User: user}, nil
}

type mockProfileService struct {
	wishlisted map[string]bool
	gotUser    string
}

func (m *mockProfileService) ToggleWishlist(ctx context.Context, userID, listingID string) (*model.WishlistState, error) {
	m.gotUser = userID
	m.wishlisted[listingID] = !m.wishlisted[listingID]
	return &model.WishlistState{ListingID: listingID, Wishlisted: m.wishlisted[listingID]}, nil
}

func (m *mockProfileService) RemoveFromWishlist(ctx context.Context, userID, listingID string) error {
	m.gotUser = userID
	delete(m.wishlisted, listingID)
	return nil
}

func (m *mockProfileService) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	m.gotUser = userID
	return &model.Dashboard{MyListings: []model.Listing{}, MyBookings: []model.BookingWithListing{}, Wishlist: []model.Listing{}}, nil
}

func newRouter(a *mockAuthService, p *mockProfileService) *httprouter.Router {
	router := httprouter.New()
	NewUserHandler(a, p, logger.Nop()).RegisterRoutes(router)
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

func TestSignupAndLogin(t *testing.T) {
	router := newRouter(&mockAuthService{}, &mockProfileService{wishlisted: map[string]bool{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/signup",
		strings.NewReader(`{"username":"traveler1","email":"t@example.com","password":"correct-horse"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if msg := decodeMessage(t, rec); msg != "Welcome to Wanderlust!" {
		t.Errorf("signup message = %q", msg)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Errorf("signup body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"traveler1","password":"correct-horse"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Welcome back to Wanderlust!" {
		t.Errorf("login message = %q", msg)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	router := newRouter(&mockAuthService{loginErr: apperrors.Unauthorized("Password or username is incorrect")}, &mockProfileService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"traveler1","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWishlist(t *testing.T) {
	profile := &mockProfileService{wishlisted: map[string]bool{}}
	router := newRouter(&mockAuthService{}, profile)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/v1/users/wishlist/l1", nil), "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Listing added to your wishlist." {
		t.Errorf("toggle message = %q", msg)
	}
	if profile.gotUser != "alice" {
		t.Errorf("user = %q", profile.gotUser)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/users/wishlist/l1", nil), "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Listing removed from your wishlist." {
		t.Errorf("remove message = %q", msg)
	}
}

func TestProtectedRoutes(t *testing.T) {
	router := newRouter(&mockAuthService{}, &mockProfileService{wishlisted: map[string]bool{}})
	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users/dashboard"},
		{http.MethodPost, "/api/v1/users/wishlist/l1"},
		{http.MethodDelete, "/api/v1/users/wishlist/l1"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestDashboard(t *testing.T) {
	profile := &mockProfileService{}
	router := newRouter(&mockAuthService{}, profile)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/dashboard", nil), "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if profile.gotUser != "alice" {
		t.Errorf("user = %q", profile.gotUser)
	}
	if !strings.Contains(rec.Body.String(), `"my_bookings":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
