package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go-inventory-api/internal/apperror"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// RegisterRequest is the registration body. Role defaults to employee when
// omitted; only admin and employee are accepted.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(req *RegisterRequest, creator *model.Actor) (*model.User, error)
	Login(username, password string) (*LoginResponse, error)
	Refresh(refreshToken string) (string, error)
	Me(userID uuid.UUID) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
	ChangeRole(targetID uuid.UUID, role string, actor model.Actor) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// validatePasswordStrength enforces the registration password policy:
// at least 8 characters with upper, lower, digit, and special characters.
func validatePasswordStrength(password string) error {
	switch {
	case len(password) < 8:
		return apperror.ErrInvalidInput.WithMessage("Password must be at least 8 characters long")
	case !upperPattern.MatchString(password):
		return apperror.ErrInvalidInput.WithMessage("Password must contain at least one uppercase letter")
	case !lowerPattern.MatchString(password):
		return apperror.ErrInvalidInput.WithMessage("Password must contain at least one lowercase letter")
	case !digitPattern.MatchString(password):
		return apperror.ErrInvalidInput.WithMessage("Password must contain at least one digit")
	case !specialPattern.MatchString(password):
		return apperror.ErrInvalidInput.WithMessage("Password must contain at least one special character")
	}
	return nil
}

func (s *authService) Register(req *RegisterRequest, creator *model.Actor) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleEmployee
	}

	if username == "" || req.Password == "" || email == "" {
		return nil, apperror.ErrInvalidInput.WithMessage("username, email, and password are required")
	}
	if len(username) < 3 {
		return nil, apperror.ErrInvalidInput.WithMessage("Username must be at least 3 characters long")
	}
	if role != model.RoleAdmin && role != model.RoleEmployee {
		return nil, apperror.ErrInvalidInput.WithMessage("Role must be either admin or employee")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ErrInvalidInput.WithMessage("Invalid email format")
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	if existing, _ := s.userRepo.FindByUsername(username); existing != nil {
		return nil, apperror.ErrDuplicateUsername
	}
	if existing, _ := s.userRepo.FindByEmail(email); existing != nil {
		return nil, apperror.ErrDuplicateEmail
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		Role:      role,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to hash password", 500)
	}

	// Attribute the record when an authenticated admin created it.
	if creator != nil {
		creatorID := creator.ID.String()
		user.CreatedByUserID = &creatorID
		user.CreatedBy = creatorID
		user.UpdatedBy = creatorID
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.ErrUserInactive
	}

	if !user.CheckPassword(password) {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		return nil, err
	}

	accessToken, err := jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to generate token", 500)
	}
	refreshToken, err := jwt.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to generate token", 500)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

func (s *authService) Refresh(refreshToken string) (string, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperror.ErrUnauthorized.WithMessage("Invalid or expired refresh token")
	}

	// Re-resolve the user so a deactivated account cannot mint new tokens.
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil || !user.IsActive {
		return "", apperror.ErrUnauthorized.WithMessage("Invalid or expired refresh token")
	}

	return jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
}

func (s *authService) Me(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperror.ErrUserNotFound
	}

	if !user.CheckPassword(oldPassword) {
		return apperror.ErrUnauthorized.WithMessage("Current password is incorrect")
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to hash password", 500)
	}
	return s.userRepo.UpdatePassword(userID, user.PasswordHash)
}

func (s *authService) ChangeRole(targetID uuid.UUID, role string, actor model.Actor) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden.WithMessage("Unauthorized. Admin access required")
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role != model.RoleAdmin && role != model.RoleEmployee {
		return nil, apperror.ErrInvalidInput.WithMessage(
			fmt.Sprintf("Role must be either %s or %s", model.RoleAdmin, model.RoleEmployee))
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.userRepo.UpdateRole(targetID, role, actor.ID.String()); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(targetID)
}
