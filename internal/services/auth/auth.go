// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/jwt"
	"github.com/magabrotheeeer/meal-subscription/internal/lib/password"
	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// ErrInvalidCredentials возвращается при неверном email или пароле.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или models.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью CUSTOMER по умолчанию.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"

	role := models.RoleCustomer
	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			return "", fmt.Errorf("%s: %w", op, models.NewValidationError("role", "unknown role"))
		}
		role = req.Role
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:             normalizeEmail(req.Email),
		PasswordHash:      hashed,
		Role:              role,
		Firstname:         req.Firstname,
		Lastname:          req.Lastname,
		AddressName:       req.AddressName,
		AddressUnitNumber: req.AddressUnitNumber,
		StreetNumber:      req.StreetNumber,
		City:              req.City,
		Region:            req.Region,
		PostalCode:        req.PostalCode,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("uid", uid), slog.String("role", role))
	return uid, nil
}

// Login проверяет пароль пользователя и выпускает JWT с email и ролью.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает email и роль пользователя.
func (s *AuthService) ValidateToken(token string) (string, string, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}
	return claims.Email, claims.Role, nil
}

// CurrentUser возвращает профиль пользователя по email из токена.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*models.User, error) {
	const op = "auth.CurrentUser"
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUser возвращает пользователя по UID.
func (s *AuthService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "auth.GetUser"
	user, err := s.users.GetUser(ctx, uid)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "auth.ListUsers"
	res, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
