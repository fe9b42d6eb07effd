package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"playbox/internal/models"
	"playbox/internal/repositories"
	"playbox/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Error kinds for service outcomes. Handlers match on these with errors.Is
// and never inspect error strings.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError tags a user-facing message with one of the error kinds above.
// Error() returns the message as it should appear on the wire.
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Kind }

func fail(kind error, message string) error {
	return &ServiceError{Kind: kind, Message: message}
}

// minPasswordLength is the registration password-strength floor.
const minPasswordLength = 8

// AuthService handles business logic for registration, authentication and
// user record access.
type AuthService struct {
	userRepo  repositories.UserRepository
	validate  *validator.Validate
	jwtSecret []byte
	mqClient  *rabbitmq.Client // optional; nil skips event publishing
}

// NewAuthService creates a new AuthService. mqClient may be nil when no
// broker is configured.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, mqClient *rabbitmq.Client) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		validate:  validator.New(),
		jwtSecret: []byte(jwtSecret),
		mqClient:  mqClient,
	}
}

// Register validates the registration payload, persists a new user with the
// default role and returns a signed token plus the role.
func (s *AuthService) Register(name, email, password string) (string, string, error) {
	// Message strings match the existing wire contract byte for byte,
	// trailing spaces included.
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", "", fail(ErrValidation, "please enter a valid email ")
	}
	if len(password) < minPasswordLength {
		return "", "", fail(ErrValidation, "please enter a strong password ")
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return "", "", fail(ErrConflict, "user already exist")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return "", "", fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return "", "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.createToken(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}

	s.publishEvent(rabbitmq.EventUserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return token, user.Role, nil
}

// Login authenticates a user by email and password and returns a signed
// token plus the user's role.
//
// A missing user and a wrong password are reported with distinct messages,
// preserving the existing wire contract. A caller probing for registered
// emails can tell the two apart; see DESIGN.md.
func (s *AuthService) Login(email, password string) (string, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", "", fail(ErrNotFound, "user does not exist ")
		}
		return "", "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fail(ErrInvalidCredentials, "Invalid Credentials")
	}

	token, err := s.createToken(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// GetUser returns the user record for id with the password field cleared.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fail(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	user.Password = ""
	return user, nil
}

// DeleteUser removes the user record for id.
func (s *AuthService) DeleteUser(id string) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fail(ErrNotFound, "User not found")
		}
		return fmt.Errorf("failed to get user %s: %w", id, err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fail(ErrNotFound, "User not found")
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	s.publishEvent(rabbitmq.EventUserDeleted, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return nil
}

// createToken signs a token embedding the user identifier and role. No
// expiry claim is set; tokens live for as long as the signing secret does.
func (s *AuthService) createToken(id, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"iat":  time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a signed token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// publishEvent sends a user lifecycle event when a broker is configured.
// Publishing is best-effort; failures are logged and never surface to the
// caller.
func (s *AuthService) publishEvent(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishUserEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", event, err)
	}
}
