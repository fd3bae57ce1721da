package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mindspace/mindspace-backend/internal/models"
	"github.com/mindspace/mindspace-backend/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when a user is inactive
	ErrUserInactive = errors.New("user account is inactive")
	// ErrEmailAlreadyExists is returned when email is already registered
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUsernameAlreadyExists is returned when username is already taken
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrSessionNotFound is returned when a login session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a login session is expired or revoked
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidEmail is returned when an email address cannot be parsed
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidUserType is returned for user types that cannot self-register
	ErrInvalidUserType = errors.New("invalid user type")
	// ErrPasswordMismatch is returned when a confirmation does not match
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// TokenPair is what a successful login or refresh hands back
type TokenPair struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RegisterInput carries sign-up fields
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	Password  string
	UserType  string
}

// ClientInfo identifies where a login came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Service handles authentication operations
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.UserSessionRepository
	jwt         *JWTService
	logger      *logrus.Logger
}

// NewService creates a new auth service
func NewService(userRepo repository.UserRepository, sessionRepo repository.UserSessionRepository, jwt *JWTService, logger *logrus.Logger) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwt:         jwt,
		logger:      logger,
	}
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email
	}

	userType := in.UserType
	switch userType {
	case "":
		userType = models.UserTypeUser
	case models.UserTypeUser, models.UserTypeDoctor:
	default:
		return nil, ErrInvalidUserType
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		PasswordHash: passwordHash,
		UserType:     userType,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email or username and opens a login session
func (s *Service) Login(ctx context.Context, identifier, password string, client ClientInfo) (*models.User, *TokenPair, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	tokens, err := s.IssueSession(ctx, user, client)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return user, tokens, nil
}

// IssueSession opens a login session for user and returns its tokens
func (s *Service) IssueSession(ctx context.Context, user *models.User, client ClientInfo) (*TokenPair, error) {
	now := time.Now().UTC()
	session := &models.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		ExpiresAt:        now.Add(s.jwt.AccessTTL()),
		RefreshExpiresAt: now.Add(s.jwt.RefreshTTL()),
		IPAddress:        client.IPAddress,
		UserAgent:        client.UserAgent,
		CreatedAt:        now,
		LastActivity:     now,
	}

	accessToken, refreshToken, err := s.jwt.GenerateTokenPair(
		user.ID.String(),
		user.Email,
		user.Username,
		user.UserType,
		session.ID.String(),
	)
	if err != nil {
		return nil, err
	}

	session.TokenHash = HashToken(accessToken)
	session.RefreshTokenHash = HashToken(refreshToken)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create login session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// RefreshToken rotates both tokens of a live login session
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	if session.RefreshTokenHash != HashToken(refreshToken) {
		return nil, ErrInvalidToken
	}

	now := time.Now().UTC()
	if session.RefreshExpiresAt.Before(now) {
		return nil, ErrSessionExpired
	}

	user, err := s.activeUser(ctx, session.UserID.String())
	if err != nil {
		return nil, err
	}

	newAccessToken, newRefreshToken, err := s.jwt.GenerateTokenPair(
		user.ID.String(),
		user.Email,
		user.Username,
		user.UserType,
		session.ID.String(),
	)
	if err != nil {
		return nil, err
	}

	session.TokenHash = HashToken(newAccessToken)
	session.RefreshTokenHash = HashToken(newRefreshToken)
	session.ExpiresAt = now.Add(s.jwt.AccessTTL())
	session.RefreshExpiresAt = now.Add(s.jwt.RefreshTTL())
	session.LastActivity = now

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// Logout revokes a login session
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	session.RevokedAt = &now
	return s.sessionRepo.Update(ctx, session)
}

// ValidateAccessToken checks the token signature, its login session and the
// owning user
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*models.User, *JWTClaims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}

	if session.TokenHash != HashToken(token) {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	session.LastActivity = time.Now().UTC()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to update session activity")
	}

	return user, claims, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, confirmPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if confirmPassword != "" && confirmPassword != newPassword {
		return ErrPasswordMismatch
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, newHash)
}

// DeleteAccount removes a user together with every login session
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete login sessions: %w", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired and revoked login sessions
func (s *Service) CleanupExpiredSessions(ctx context.Context) error {
	return s.sessionRepo.DeleteExpired(ctx)
}

// loadSession returns a live login session
func (s *Service) loadSession(ctx context.Context, sessionID string) (*models.UserSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.RevokedAt != nil {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *Service) activeUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}
