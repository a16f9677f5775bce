package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tagblaze/tagblaze/internal/models"
	"github.com/tagblaze/tagblaze/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("validation failed")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService registers users, verifies passwords, and issues and verifies
// signed bearer tokens.
type AuthService struct {
	users             *repository.UserRepository
	jwtManager        *JWTManager
	hasher            *PasswordHasher
	passwordMinLength int
}

func NewAuthService(users *repository.UserRepository, jwtManager *JWTManager, hasher *PasswordHasher, passwordMinLength int) *AuthService {
	if passwordMinLength <= 0 {
		passwordMinLength = 8
	}
	return &AuthService{
		users:             users,
		jwtManager:        jwtManager,
		hasher:            hasher,
		passwordMinLength: passwordMinLength,
	}
}

// Register creates a user. The email must be well-formed and not yet taken;
// the duplicate check and insert are atomic in the store, so a concurrent
// duplicate registration yields exactly one user row.
func (s *AuthService) Register(email, name, password, role string) (*models.User, error) {
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(password) < s.passwordMinLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.passwordMinLength)
	}
	if role == "" {
		role = string(models.RoleAgent)
	}
	if !models.UserRole(role).IsValid() {
		return nil, fmt.Errorf("%w: role must be agent or admin", ErrValidation)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token. Unknown
// email and wrong password produce the same error, and a bcrypt comparison
// runs in both cases so response timing does not leak which one it was.
func (s *AuthService) Login(email, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.LoginResponse{
		Token:     token,
		User:      user,
		ExpiresAt: time.Now().Add(s.jwtManager.TokenDuration()),
	}, nil
}

// Verify validates a bearer token and resolves its embedded identity. A
// token whose user no longer exists is reported as invalid, not as missing.
func (s *AuthService) Verify(token string) (*models.User, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
