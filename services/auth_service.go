// File: /services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"eventhub-api/models"
	"eventhub-api/repositories"
	"eventhub-api/utils"
)

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	PasswordCost int
}

type AuthService struct {
	users    *repositories.UserRepository
	profiles *repositories.ProfileRepository
	revoked  RevocationStore
	cfg      AuthConfig
	log      *logrus.Entry
}

func NewAuthService(users *repositories.UserRepository, profiles *repositories.ProfileRepository, revoked RevocationStore, cfg AuthConfig, l *logrus.Logger) *AuthService {
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		profiles: profiles,
		revoked:  revoked,
		cfg:      cfg,
		log:      l.WithField("from", "auth-service"),
	}
}

type SignUpRequest struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

func (r *SignUpRequest) validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	switch {
	case r.Username == "" || len(r.Username) > 150:
		return validationError("username must be between 1 and 150 characters")
	case !utils.IsValidEmail(r.Email):
		return validationError("enter a valid email address")
	case !utils.IsValidPassword(r.Password):
		return validationError("password must be at least 6 characters and mix letters, digits or symbols")
	}
	if r.Role == 0 {
		r.Role = models.RoleParticipant
	}
	if !r.Role.Valid() {
		return validationError("unknown role")
	}
	return nil
}

// SignUp creates an inactive account with its profile and role. The caller
// delivers the activation link from the returned profile.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, *models.Profile, error) {
	if err := req.validate(); err != nil {
		return nil, nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, fmt.Errorf("username %q %w", req.Username, ErrDuplicate)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.PasswordCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	profile := models.NewProfile(user.ID)
	if err := s.users.Create(ctx, user, profile, req.Role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, fmt.Errorf("username %q %w", req.Username, ErrDuplicate)
		}
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": req.Role}).Info("user signed up")
	return user, profile, nil
}

// Authenticate checks credentials and the activation state.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrAuthentication
	}
	if !user.IsActive || user.Profile == nil || !user.Profile.IsActivated {
		return nil, ErrNotActivated
	}
	return user, nil
}

// IssueToken signs a session token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) parseClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return claims, nil
}

// UserFromToken resolves a session token to an active user with groups.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: session ended", ErrAuthentication)
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotActivated
	}
	return user, nil
}

// Logout revokes the session token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		// Nothing to revoke for an invalid or expired token.
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// EnsureRole returns the user's highest role. A user without any group is
// given Participant, and that membership is persisted.
func (s *AuthService) EnsureRole(ctx context.Context, user *models.User) (models.Role, error) {
	if role, ok := user.HighestRole(); ok {
		return role, nil
	}
	if err := s.users.AddRole(ctx, user, models.RoleParticipant); err != nil {
		return 0, err
	}
	s.log.WithField("user_id", user.ID).Info("assigned default Participant role")
	return models.RoleParticipant, nil
}

func (s *AuthService) Profile(ctx context.Context, user *models.User) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return profile, nil
}
