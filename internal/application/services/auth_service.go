package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// sessionClaims represents the JWT claims carried in the session cookie.
// Key binds the token to the stored account it was issued for.
type sessionClaims struct {
	Username string `json:"username"`
	Key      string `json:"key"`
	jwt.RegisteredClaims
}

// sessionKey derives from the salted password hash, so it changes with the
// password and differs for a new account registered under a reused name.
func sessionKey(user *entities.User) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(user.Password)).String()
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo      ports.UserRepository
	activity      activityRecorder
	sessionConfig config.SessionConfig
	logger        *logger.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, activityRepo ports.ActivityRepository, sessionConfig config.SessionConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		activity:      activityRecorder{repo: activityRepo, logger: logger},
		sessionConfig: sessionConfig,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a new user account and opens a session for it
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.User{
		Username: req.Username,
		Password: string(hashedPassword),
		Address:  req.Address,
	}

	// Upsert refuses a taken username without touching the file
	if err := s.userRepo.Upsert(ctx, "", user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("User registered successfully", "username", user.Username)
	s.activity.record(ctx, user.Username, entities.ActivityRegister)

	return s.issue(&user, s.sessionConfig.TTL)
}

// Login authenticates a user and returns a session token
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if entities.IsNotFound(err) {
			s.logger.Warnw("Login attempt with unknown username", "username", req.Username)
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Warnw("Login attempt with invalid password", "username", req.Username)
		return nil, entities.ErrInvalidCredentials
	}

	ttl := s.sessionConfig.TTL
	if req.RememberMe {
		ttl = s.sessionConfig.RememberTTL
	}

	s.logger.Infow("User logged in successfully", "username", user.Username, "remember_me", req.RememberMe)
	s.activity.record(ctx, user.Username, entities.ActivityLogin)

	return s.issue(user, ttl)
}

// Logout records the logout. Sessions are stateless, so the caller drops the cookie.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	if username == "" {
		return errors.New("logout: username is required")
	}

	s.logger.Infow("User logged out successfully", "username", username)
	s.activity.record(ctx, username, entities.ActivityLogout)
	return nil
}

// ValidateToken validates a session token and checks that the account it was
// issued for still exists unchanged
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.sessionConfig.Secret), nil
	}, jwt.WithIssuer(s.sessionConfig.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("%w: invalid token claims", entities.ErrInvalidSession)
	}

	user, err := s.userRepo.FindByUsername(ctx, claims.Username)
	if err != nil {
		if entities.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %q no longer exists", entities.ErrInvalidSession, claims.Username)
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if claims.Key != sessionKey(user) {
		return nil, fmt.Errorf("%w: account changed since token was issued", entities.ErrInvalidSession)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &ports.Claims{
		Username:  claims.Username,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) issue(user *entities.User, ttl time.Duration) (*ports.AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &sessionClaims{
		Username: user.Username,
		Key:      sessionKey(user),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.sessionConfig.Issuer,
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.sessionConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &ports.AuthResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		User:      ports.NewUserResponse(user),
	}, nil
}
