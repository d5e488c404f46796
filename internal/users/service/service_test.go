package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	userserrors "wanderlust/internal/users/errors"
	"wanderlust/internal/users/validator"
	"wanderlust/pkg/auth"
	"wanderlust/pkg/config"
	mongotx "wanderlust/pkg/db/mongo"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

// ────────────────────────────────────────────────
// In-memory collaborators
// ────────────────────────────────────────────────

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
	seq   int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]*model.User{}}
}

func (m *memoryUserRepository) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return userserrors.ErrDuplicateUser
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("%024x", m.seq)
	stored := *u
	stored.Wishlist = append([]string{}, u.Wishlist...)
	m.users[u.ID] = &stored
	return nil
}

func (m *memoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(id) != 24 {
		return nil, userserrors.ErrInvalidID
	}
	u, ok := m.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	cp := *u
	cp.Wishlist = append([]string{}, u.Wishlist...)
	return &cp, nil
}

func (m *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepository) AddToWishlist(ctx context.Context, userID, listingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, userserrors.ErrNotFound
	}
	for _, id := range u.Wishlist {
		if id == listingID {
			return false, nil
		}
	}
	u.Wishlist = append(u.Wishlist, listingID)
	return true, nil
}

func (m *memoryUserRepository) RemoveFromWishlist(ctx context.Context, userID, listingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, userserrors.ErrNotFound
	}
	kept := u.Wishlist[:0]
	removed := false
	for _, id := range u.Wishlist {
		if id == listingID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	u.Wishlist = kept
	return removed, nil
}

// ExecuteTransaction drops users created inside a failed callback.
func (m *memoryUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	before := make(map[string]bool, len(m.users))
	for id := range m.users {
		before[id] = true
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		for id := range m.users {
			if !before[id] {
				delete(m.users, id)
			}
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

type memoryCredentialsRepository struct {
	mu        sync.Mutex
	creds     map[string]*model.Credentials
	createErr error
	findErr   error
}

func newMemoryCredentialsRepository() *memoryCredentialsRepository {
	return &memoryCredentialsRepository{creds: map[string]*model.Credentials{}}
}

func (m *memoryCredentialsRepository) Create(ctx context.Context, c *model.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.creds[c.Username]; ok {
		return userserrors.ErrDuplicateUser
	}
	stored := *c
	m.creds[c.Username] = &stored
	return nil
}

func (m *memoryCredentialsRepository) FindByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.creds[username]
	if !ok {
		return nil, userserrors.ErrCredentialsNotFound
	}
	cp := *c
	return &cp, nil
}

type stubListings struct {
	listings map[string]*model.Listing
}

func (s *stubListings) FindByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	var out []*model.Listing
	for _, l := range s.listings {
		if l.Owner == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubListings) FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error) {
	var out []*model.Listing
	for _, id := range ids {
		if l, ok := s.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubBookings struct {
	bookings []*model.Booking
	err      error
}

func (s *stubBookings) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

type fixture struct {
	users    *memoryUserRepository
	creds    *memoryCredentialsRepository
	listings *stubListings
	bookings *stubBookings
	tokens   *auth.TokenManager
	auth     *authService
	profile  ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{Log: logger.Nop()}
	f := &fixture{
		users:    newMemoryUserRepository(),
		creds:    newMemoryCredentialsRepository(),
		listings: &stubListings{listings: map[string]*model.Listing{}},
		bookings: &stubBookings{},
		tokens:   auth.NewTokenManager("test-secret-test-secret-test-secret", time.Hour),
	}
	f.auth = newAuthService(f.users, f.creds, f.tokens, validator.NewUserValidator(logger.Nop()), cfg, bcrypt.MinCost)
	f.profile = NewProfileService(f.users, f.listings, f.bookings, cfg)
	return f
}

func (f *fixture) register(t *testing.T, username string) *model.Session {
	t.Helper()
	session, err := f.auth.Register(context.Background(), &model.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return session
}

func (f *fixture) addListing(id, owner string) {
	f.listings.listings[id] = &model.Listing{ID: id, Owner: owner, Title: "Listing " + id}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with status %d, got %v", want, err)
	}
	if appErr.StatusCode() != want {
		t.Fatalf("expected status %d, got %d (%v)", want, appErr.StatusCode(), err)
	}
}

// ────────────────────────────────────────────────
// Auth
// ────────────────────────────────────────────────

func TestRegister_IssuesVerifiableSession(t *testing.T) {
	f := newFixture(t)
	session := f.register(t, "traveler1")

	if session.User == nil || session.User.ID == "" {
		t.Fatalf("session user = %+v", session.User)
	}
	principal, err := f.tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify token: %v", err)
	}
	if principal.UserID != session.User.ID || principal.Username != "traveler1" {
		t.Errorf("principal = %+v", principal)
	}

	stored := f.creds.creds["traveler1"]
	if stored == nil || stored.ID != session.User.ID {
		t.Fatalf("credentials = %+v", stored)
	}
	if string(stored.PasswordHash) == "correct-horse" {
		t.Error("password stored in clear text")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "traveler1")

	_, err := f.auth.Register(context.Background(), &model.SignupRequest{
		Username: "traveler1",
		Email:    "other@example.com",
		Password: "correct-horse",
	})
	assertStatus(t, err, http.StatusConflict)
}

func TestRegister_CredentialFailureRollsBackUser(t *testing.T) {
	f := newFixture(t)
	f.creds.createErr = errors.New("write failed")

	_, err := f.auth.Register(context.Background(), &model.SignupRequest{
		Username: "traveler1",
		Email:    "t@example.com",
		Password: "correct-horse",
	})
	assertStatus(t, err, http.StatusInternalServerError)
	if len(f.users.users) != 0 {
		t.Errorf("user left without credentials: %d", len(f.users.users))
	}
}

func TestRegister_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), &model.SignupRequest{Username: "x", Email: "bad", Password: "1"})
	assertStatus(t, err, http.StatusUnprocessableEntity)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "traveler1")

	session, err := f.auth.Login(context.Background(), &model.LoginRequest{Username: " traveler1 ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.User.ID != registered.User.ID {
		t.Errorf("logged in as %q, want %q", session.User.ID, registered.User.ID)
	}
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t)
	f.register(t, "traveler1")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "traveler1", "wrong-horse"},
		{"unknown user", "nobody", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Login(context.Background(), &model.LoginRequest{Username: tt.username, Password: tt.password})
			assertStatus(t, err, http.StatusUnauthorized)
			if msg := apperrors.AsAppError(err).Message; msg != invalidLoginMessage {
				t.Errorf("message = %q", msg)
			}
		})
	}
}

func TestLogin_StoreError(t *testing.T) {
	f := newFixture(t)
	f.creds.findErr = errors.New("connection refused")
	_, err := f.auth.Login(context.Background(), &model.LoginRequest{Username: "traveler1", Password: "x"})
	assertStatus(t, err, http.StatusInternalServerError)
}

// ────────────────────────────────────────────────
// Wishlist & dashboard
// ────────────────────────────────────────────────

func TestToggleWishlist(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "traveler1").User
	listingID := fmt.Sprintf("%024x", 100)
	f.addListing(listingID, "someone")

	state, err := f.profile.ToggleWishlist(context.Background(), user.ID, listingID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !state.Wishlisted {
		t.Error("first toggle should add")
	}

	state, err = f.profile.ToggleWishlist(context.Background(), user.ID, listingID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if state.Wishlisted {
		t.Error("second toggle should remove")
	}

	for i := 0; i < 3; i++ {
		if _, err := f.profile.ToggleWishlist(context.Background(), user.ID, listingID); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	stored, _ := f.users.FindByID(context.Background(), user.ID)
	if len(stored.Wishlist) != 1 {
		t.Errorf("wishlist = %v, want exactly one entry", stored.Wishlist)
	}
}

func TestToggleWishlist_Errors(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "traveler1").User
	listingID := fmt.Sprintf("%024x", 100)
	f.addListing(listingID, "someone")

	_, err := f.profile.ToggleWishlist(context.Background(), user.ID, fmt.Sprintf("%024x", 999))
	assertStatus(t, err, http.StatusNotFound)

	_, err = f.profile.ToggleWishlist(context.Background(), fmt.Sprintf("%024x", 999), listingID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestRemoveFromWishlist(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "traveler1").User
	listingID := fmt.Sprintf("%024x", 100)
	f.addListing(listingID, "someone")

	if _, err := f.profile.ToggleWishlist(context.Background(), user.ID, listingID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.profile.RemoveFromWishlist(context.Background(), user.ID, listingID); err != nil {
			t.Fatalf("remove %d: %v", i, err)
		}
	}
	stored, _ := f.users.FindByID(context.Background(), user.ID)
	if len(stored.Wishlist) != 0 {
		t.Errorf("wishlist = %v", stored.Wishlist)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "traveler1").User

	owned := fmt.Sprintf("%024x", 100)
	booked := fmt.Sprintf("%024x", 101)
	wished := fmt.Sprintf("%024x", 102)
	deleted := fmt.Sprintf("%024x", 103)
	f.addListing(owned, user.ID)
	f.addListing(booked, "host")
	f.addListing(wished, "host")
	f.bookings.bookings = []*model.Booking{
		{ID: "b1", ListingID: booked, UserID: user.ID},
		{ID: "b2", ListingID: deleted, UserID: user.ID},
		{ID: "b3", ListingID: booked, UserID: "someone-else"},
	}
	if _, err := f.profile.ToggleWishlist(context.Background(), user.ID, wished); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	d, err := f.profile.Dashboard(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.MyListings) != 1 || d.MyListings[0].ID != owned {
		t.Errorf("MyListings = %+v", d.MyListings)
	}
	if len(d.MyBookings) != 2 {
		t.Fatalf("MyBookings = %+v", d.MyBookings)
	}
	if d.MyBookings[0].Listing == nil || d.MyBookings[0].Listing.ID != booked {
		t.Errorf("booking listing not joined: %+v", d.MyBookings[0])
	}
	if d.MyBookings[1].Listing != nil {
		t.Errorf("booking of deleted listing should have no listing, got %+v", d.MyBookings[1].Listing)
	}
	if len(d.Wishlist) != 1 || d.Wishlist[0].ID != wished {
		t.Errorf("Wishlist = %+v", d.Wishlist)
	}
}

func TestDashboard_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := f.profile.Dashboard(context.Background(), "bogus")
	assertStatus(t, err, http.StatusNotFound)

	user := f.register(t, "traveler1").User
	f.bookings.err = errors.New("timeout")
	_, err = f.profile.Dashboard(context.Background(), user.ID)
	assertStatus(t, err, http.StatusInternalServerError)
}
