package service

import (
	"context"
	"errors"
	"time"

	userserrors "wanderlust/internal/users/errors"
	"wanderlust/internal/users/repository"
	"wanderlust/internal/users/validator"
	"wanderlust/pkg/auth"
	"wanderlust/pkg/config"
	apperrors "wanderlust/pkg/errors"
	"wanderlust/pkg/model"
	"wanderlust/pkg/sanitizer"

	"golang.org/x/crypto/bcrypt"
)

const invalidLoginMessage = "Password or username is incorrect"

type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

// AuthService owns credentials. Profiles in the Users collection never carry
// a password hash.
type AuthService interface {
	Register(ctx context.Context, req *model.SignupRequest) (*model.Session, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	Verify(ctx context.Context, username, password string) (*model.User, error)
	IssueSession(user *model.User) (*model.Session, error)
}

type authService struct {
	users     repository.UserRepository
	creds     repository.CredentialsRepository
	tokens    TokenIssuer
	validator *validator.UserValidator
	cfg       *config.Config
	hashCost  int
	// compared against when the username is unknown, so both paths pay for a hash
	dummyHash []byte
}

func NewAuthService(
	users repository.UserRepository,
	creds repository.CredentialsRepository,
	tokens TokenIssuer,
	validator *validator.UserValidator,
	cfg *config.Config,
) AuthService {
	return newAuthService(users, creds, tokens, validator, cfg, bcrypt.DefaultCost)
}

func newAuthService(
	users repository.UserRepository,
	creds repository.CredentialsRepository,
	tokens TokenIssuer,
	validator *validator.UserValidator,
	cfg *config.Config,
	hashCost int,
) *authService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("wanderlust-dummy-password"), hashCost)
	if err != nil {
		cfg.Log.Fatal("Failed to prepare password hashing", "error", err)
	}
	return &authService{
		users:     users,
		creds:     creds,
		tokens:    tokens,
		validator: validator,
		cfg:       cfg,
		hashCost:  hashCost,
		dummyHash: dummy,
	}
}

func (s *authService) Register(ctx context.Context, req *model.SignupRequest) (*model.Session, error) {
	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateSignup(req); err != nil {
		s.cfg.Log.Warn("Signup validation failed", "username", req.Username, "error", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "username", req.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{Username: req.Username, Email: req.Email, Wishlist: []string{}}
	err = s.users.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		return s.creds.Create(txCtx, &model.Credentials{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: hash,
		})
	})
	if err != nil {
		if errors.Is(err, userserrors.ErrDuplicateUser) {
			return nil, apperrors.Conflict("A user with the given username or email is already registered")
		}
		s.cfg.Log.Error("Failed to register user", "username", req.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "username", user.Username)
	return s.IssueSession(user)
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	req.Username = sanitizer.NormalizeUsername(req.Username)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.Verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(user)
}

// Verify checks a password without revealing whether the username exists.
func (s *authService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	creds, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, userserrors.ErrCredentialsNotFound) {
			s.cfg.Log.Error("Failed to load credentials", "username", username, "error", err)
			return nil, apperrors.Internal("Failed to log in", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.cfg.Log.Info("Login rejected", "username", username, "reason", "unknown user")
		return nil, apperrors.Unauthorized(invalidLoginMessage)
	}

	if err := bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)); err != nil {
		s.cfg.Log.Info("Login rejected", "username", username, "reason", "wrong password")
		return nil, apperrors.Unauthorized(invalidLoginMessage)
	}

	user, err := s.users.FindByID(ctx, creds.ID)
	if err != nil {
		s.cfg.Log.Error("Credentials without profile", "user_id", creds.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}
	return user, nil
}

func (s *authService) IssueSession(user *model.User) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Issue(auth.Principal{UserID: user.ID, Username: user.Username})
	if err != nil {
		s.cfg.Log.Error("Failed to issue session", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to create session", err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
