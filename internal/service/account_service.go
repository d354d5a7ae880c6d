package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/authz"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"
)

// AccountService handles registration, login and token issuance. The caller
// identity every row-level policy consumes originates here.
type AccountService struct {
	store     *store.Store
	secured   *store.Secured
	secretKey []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// Claims carries the authenticated caller identity inside a JWT
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAccountService creates a new account service
func NewAccountService(st *store.Store, secured *store.Secured, jwtSecret string, tokenTTLHours int) *AccountService {
	return &AccountService{
		store:     st,
		secured:   secured,
		secretKey: []byte(jwtSecret),
		tokenTTL:  time.Duration(tokenTTLHours) * time.Hour,
		logger:    util.GetLogger(),
	}
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Register creates a new account. Registration is the one insert that runs
// outside a user session, so it goes to the store directly rather than
// through the policy wrapper.
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	role := req.Role
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleMerchant:
	default:
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role))
	return user, nil
}

// Login verifies credentials and issues a token
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GenerateToken issues a signed JWT for a user
func (s *AccountService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and returns the caller subject
func (s *AccountService) ValidateToken(tokenString string) (authz.Subject, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return authz.Subject{}, err
	}
	if !token.Valid {
		return authz.Subject{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return authz.Subject{}, fmt.Errorf("invalid subject id in token: %w", err)
	}

	return authz.Subject{ID: userID, Role: claims.Role}, nil
}

// GetProfile returns the caller's own account row
func (s *AccountService) GetProfile(ctx context.Context, sub authz.Subject) (*models.User, error) {
	return s.secured.GetUser(ctx, sub, sub.ID)
}

// UpdateEmail changes the caller's email
func (s *AccountService) UpdateEmail(ctx context.Context, sub authz.Subject, email string) error {
	return s.secured.UpdateUserEmail(ctx, sub, sub.ID, email)
}

// DeleteAccount removes the caller's account and all owned rows
func (s *AccountService) DeleteAccount(ctx context.Context, sub authz.Subject) error {
	return s.secured.DeleteUser(ctx, sub, sub.ID)
}
