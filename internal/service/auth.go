package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/auth"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by register and login.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	opts   options

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(store *repository.Store, tokens *auth.TokenManager, opts ...Option) *AuthService {
	o := newOptions(opts)
	if o.bcryptCost == 0 {
		o.bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: store.Users, tokens: tokens, opts: o}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	verr := &ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(verr, in); err != nil {
		return Session{}, err
	}
	if in.Password != in.PasswordConfirmation {
		verr.Add("password", "The password field confirmation does not match.")
	}
	if err := verr.errOrNil(); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.bcryptCost)
	if err != nil {
		return Session{}, err
	}
	now := s.opts.now()
	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.SecurityLogger.Warn("Duplicate email on register", zap.String("email", in.Email))
			verr.Add("email", "The email has already been taken.")
			return Session{}, verr
		}
		return Session{}, err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	logger.AuditLogger.Info("User registered", zap.Int64("user_id", user.ID))
	return Session{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	verr := &ValidationError{}
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(verr, in); err != nil {
		return Session{}, err
	}
	if err := verr.errOrNil(); err != nil {
		return Session{}, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		// Unknown emails still pay for one bcrypt comparison.
		_ = bcrypt.CompareHashAndPassword(s.unknownUserHash(), []byte(in.Password))
		logger.SecurityLogger.Warn("Login for unknown email", zap.String("email", in.Email))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return Session{}, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	logger.AuditLogger.Info("Login success", zap.Int64("user_id", user.ID))
	return Session{User: user, Token: token}, nil
}

// unknownUserHash is a hash of a random password at the configured cost.
func (s *AuthService) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.opts.bcryptCost)
		if err != nil {
			logger.ErrorLogger.Error("Generate placeholder hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, &NotFoundError{Resource: "User"}
	}
	return user, err
}

// Logout revokes the token the request was made with.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	logger.AuditLogger.Info("Logout", zap.Int64("user_id", claims.UserID))
	return nil
}

// DeleteAccount removes the user with all todos and categories, then
// revokes the current token.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *auth.Claims) error {
	if err := s.users.Delete(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "User"}
		}
		return err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	logger.AuditLogger.Info("Account deleted", zap.Int64("user_id", claims.UserID))
	return nil
}
