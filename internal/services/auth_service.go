package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminRole is the role carried by administrator tokens
const AdminRole = "admin"

// TokenIssuer signs session tokens
type TokenIssuer interface {
	GenerateToken(userID, username, email string, roles []string) (string, error)
}

// AdminCredentials is the single administrator account
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// authService implements the AuthService interface
type authService struct {
	admin     AdminCredentials
	issuer    TokenIssuer
	tokenTTL  time.Duration
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(admin AdminCredentials, issuer TokenIssuer, tokenTTL time.Duration, logger *logrus.Logger) AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		admin:     admin,
		issuer:    issuer,
		tokenTTL:  tokenTTL,
		validator: validator.New(),
		logger:    logger,
	}
}

// Login checks the credentials against the administrator account
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("login request cannot be nil")
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if s.admin.Email == "" || s.admin.PasswordHash == "" || !strings.EqualFold(req.Email, s.admin.Email) {
		s.logger.WithField("email", req.Email).Warn("Login rejected")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("email", req.Email).Warn("Login rejected")
		return nil, ErrInvalidCredentials
	}

	email := strings.ToLower(s.admin.Email)
	token, err := s.issuer.GenerateToken(email, email, email, []string{AdminRole})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithField("email", email).Info("Administrator signed in")

	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		Email:     email,
	}, nil
}
