package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mindspace/mindspace-backend/internal/api/middleware"
	"github.com/mindspace/mindspace-backend/internal/audit"
	"github.com/mindspace/mindspace-backend/internal/auth"
	"github.com/mindspace/mindspace-backend/internal/models"
)

// LoginRequest represents a login request. Email may also carry a username.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Password  string `json:"password"`
	UserType  string `json:"user_type"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	UserType  string `json:"user_type"`
}

// AuthResponse is returned by signup, login and refresh
type AuthResponse struct {
	User *UserResponse `json:"user,omitempty"`
	*auth.TokenPair
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		UserType:  user.UserType,
	}
}

func clientInfo(c *fiber.Ctx) auth.ClientInfo {
	return auth.ClientInfo{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func record(c *fiber.Ctx, recorder audit.Recorder, eventType audit.EventType, userID string, err error) {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	event := audit.NewEvent(eventType, uid, c.IP(), c.Get(fiber.HeaderUserAgent))
	event.ResourceType = "user"
	event.ResourceID = userID
	if err != nil {
		event.Result = audit.ResultError
		event.Error = err.Error()
	}
	recorder.Record(c.UserContext(), event)
}

// Signup registers a user and logs them in
func Signup(authService *auth.Service, recorder audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			return badRequest(c, "Email and password are required")
		}

		user, err := authService.Register(c.UserContext(), auth.RegisterInput{
			Email:     req.Email,
			Username:  req.Username,
			FirstName: req.FirstName,
			Password:  req.Password,
			UserType:  req.UserType,
		})
		if err != nil {
			record(c, recorder, audit.EventSignup, "", err)
			return respondError(c, err)
		}

		tokens, err := authService.IssueSession(c.UserContext(), user, clientInfo(c))
		if err != nil {
			return respondError(c, err)
		}

		record(c, recorder, audit.EventSignup, user.ID.String(), nil)

		return c.Status(fiber.StatusCreated).JSON(AuthResponse{
			User:      toUserResponse(user),
			TokenPair: tokens,
		})
	}
}

// Login handles user login
func Login(authService *auth.Service, recorder audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return badRequest(c, "Email and password are required")
		}

		user, tokens, err := authService.Login(c.UserContext(), req.Email, req.Password, clientInfo(c))
		if err != nil {
			record(c, recorder, audit.EventLogin, "", err)
			// Don't reveal which half of the credentials was wrong
			if errors.Is(err, auth.ErrUserNotFound) {
				err = auth.ErrInvalidCredentials
			}
			return respondError(c, err)
		}

		record(c, recorder, audit.EventLogin, user.ID.String(), nil)

		return c.JSON(AuthResponse{
			User:      toUserResponse(user),
			TokenPair: tokens,
		})
	}
}

// RefreshToken rotates the caller's token pair
func RefreshToken(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return badRequest(c, "Refresh token is required")
		}

		tokens, err := authService.RefreshToken(c.UserContext(), req.RefreshToken)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(AuthResponse{TokenPair: tokens})
	}
}

// Logout revokes the login session behind the access token
func Logout(authService *auth.Service, recorder audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return respondError(c, err)
		}

		err = authService.Logout(c.UserContext(), middleware.GetSessionID(c))
		record(c, recorder, audit.EventLogout, userID.String(), err)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
}

// GetCurrentUser returns the authenticated user
func GetCurrentUser(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return respondError(c, err)
		}

		user, err := authService.GetUser(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toUserResponse(user))
	}
}

// ChangePassword replaces the caller's password
func ChangePassword(authService *auth.Service, recorder audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return respondError(c, err)
		}

		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if req.OldPassword == "" || req.NewPassword == "" {
			return badRequest(c, "Old and new passwords are required")
		}

		err = authService.ChangePassword(c.UserContext(), userID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
		record(c, recorder, audit.EventPasswordChange, userID.String(), err)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return badRequest(c, "Old password is incorrect")
			}
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "Password changed successfully"})
	}
}

// DeleteAccount removes the caller's account
func DeleteAccount(authService *auth.Service, recorder audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return respondError(c, err)
		}

		err = authService.DeleteAccount(c.UserContext(), userID)
		record(c, recorder, audit.EventAccountDelete, userID.String(), err)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "Account deleted successfully"})
	}
}
