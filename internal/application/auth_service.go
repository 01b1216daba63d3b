package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
)

const passwordRule = "must be 8 to 72 characters long"

type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Notifier *Notifier
	Logger   *logrus.Logger

	comparePassword func(hash, plain string) bool
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, notifier *Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Notifier: notifier, Logger: logger, comparePassword: helpers.CompareHashAndPassword}
}

// AuthToken is a signed bearer token and the moment it stops being accepted.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and signs the user in.
func (s *AuthService) Register(ctx context.Context, email, password string) (AuthToken, error) {
	email = normalizeEmail(email)
	details := map[string]string{}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		details["email"] = "must be a valid email"
	}
	if len(password) < helpers.MinPasswordLen || len(password) > helpers.MaxPasswordBytes {
		details["password"] = passwordRule
	}
	if len(details) > 0 {
		return AuthToken{}, apperror.Validation("validation error", details)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return AuthToken{}, apperror.Wrap(apperror.KindInternal, "hash password", err)
	}

	u := &entity.User{Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if apperror.Is(err, apperror.KindDuplicateUser) {
			return AuthToken{}, err
		}
		return AuthToken{}, apperror.Wrap(apperror.KindInternal, "create user", err)
	}

	s.Logger.WithField("user_id", u.ID).Info("user registered")
	s.Notifier.Welcome(ctx, u.Email, u.CreatedAt)

	return s.issue(u)
}

// Login checks the credentials. Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthToken, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// same bcrypt work as a wrong password, so timing does not reveal registered emails
			s.compare(helpers.DummyPasswordHash(), password)
			return AuthToken{}, apperror.ErrInvalidCredentials
		}
		return AuthToken{}, apperror.Wrap(apperror.KindInternal, "load user", err)
	}
	if !s.compare(u.Password, password) {
		return AuthToken{}, apperror.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) compare(hash, plain string) bool {
	if s.comparePassword == nil {
		return helpers.CompareHashAndPassword(hash, plain)
	}
	return s.comparePassword(hash, plain)
}

// Verify returns the user id carried by a valid token.
func (s *AuthService) Verify(token string) (string, error) {
	if token == "" {
		return "", apperror.ErrUnauthorized
	}
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return "", apperror.Wrap(apperror.KindUnauthorized, "invalid or expired token", err)
	}
	return claims.UserID, nil
}

func (s *AuthService) issue(u *entity.User) (AuthToken, error) {
	tok, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		return AuthToken{}, apperror.Wrap(apperror.KindInternal, "generate token", err)
	}
	return AuthToken{Token: tok, ExpiresAt: exp, UserID: u.ID}, nil
}
