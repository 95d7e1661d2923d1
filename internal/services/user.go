package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/repository"
)

// RoleModerator grants access to the field-approval endpoints
const RoleModerator = "moderator"

// Claims are the session token claims issued by the identity provider.
// The subject is the provider's user ID.
type Claims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Role          string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is an authenticated caller
type Identity struct {
	User   *models.User
	Role   string
	Claims *Claims
}

// IsModerator reports whether the caller may moderate pending updates
func (i *Identity) IsModerator() bool {
	return i != nil && i.Role == RoleModerator
}

// UserStore is the user persistence used by UserService
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (bool, error)
	UpdateUserLogin(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// UserService handles session validation and user records
type UserService struct {
	users     UserStore
	jwtSecret string
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// GenerateJWT signs a session token for the given subject
func (s *UserService) GenerateJWT(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns its claims
func (s *UserService) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse token: %w", ErrUnauthorized, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject not found in token", ErrUnauthorized)
	}

	return claims, nil
}

// Authenticate validates the token and resolves the caller's user record,
// creating it on first sight. Blocked users are refused.
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := s.ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUID(ctx, claims.Subject)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			ID:        uuid.New().String(),
			UID:       claims.Subject,
			CreatedAt: s.now(),
		}
		applyClaims(user, claims)
		created, err := s.users.CreateUser(ctx, user)
		if err != nil {
			return nil, storeErr(err)
		}
		if !created {
			// a concurrent first request inserted the same subject
			if user, err = s.users.GetUserByUID(ctx, claims.Subject); err != nil {
				return nil, storeErr(err)
			}
			break
		}
		log.Info().Str("user_id", user.ID).Str("uid", user.UID).Msg("User created")
	case err != nil:
		return nil, storeErr(err)
	}

	if user.IsBlocked {
		return nil, fmt.Errorf("%w: user is blocked", ErrUnauthorized)
	}

	return &Identity{User: user, Role: claims.Role, Claims: claims}, nil
}

// RecordLogin bumps the login counter and refreshes the identity fields from the token
func (s *UserService) RecordLogin(ctx context.Context, id *Identity) (*models.User, error) {
	user := *id.User
	applyClaims(&user, id.Claims)
	now := s.now()
	user.LoginCount++
	user.LastLoggedInAt = &now

	if err := s.users.UpdateUserLogin(ctx, &user); err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

// UpdatePushToken stores the device token used for push notifications; empty clears it
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if t := strings.TrimSpace(pushToken); t != "" {
		token = &t
	}
	if err := s.users.UpdatePushToken(ctx, userID, token); err != nil {
		return storeErr(err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func applyClaims(user *models.User, claims *Claims) {
	if claims == nil {
		return
	}
	if claims.Email != "" {
		user.Email = claims.Email
	}
	user.EmailVerified = user.EmailVerified || claims.EmailVerified
	if claims.Name != "" {
		name := claims.Name
		user.Name = &name
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.Picture = &picture
	}
}
