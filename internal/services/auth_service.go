package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"canedrop/internal/logger"
	"canedrop/internal/models"
	"canedrop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo      repositories.UserRepository
	jwtSecret     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new AuthService. tokenDuration defaults to 24h.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// RegisterInput is the public sign-up form.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,min=10,max=20"`
	Address  string `json:"address" validate:"omitempty,min=5,max=500"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterUser creates a customer account and signs it in.
// Public registration never creates owners.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Username: in.Username,
		Role:     models.RoleCustomer,
	}
	if in.Address != "" {
		user.Address = &in.Address
	}
	if err := s.createUser(ctx, user, in.Password); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("customer registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &Session{Token: token, User: user}, nil
}

// createUser checks uniqueness, hashes password and stores user.
func (s *AuthService) createUser(ctx context.Context, user *models.User, password string) error {
	if err := s.ensureUnique(ctx, user.Username, user.Email, ""); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// ensureUnique fails with ErrConflict when username or email belong to an account other than selfID.
func (s *AuthService) ensureUnique(ctx context.Context, username, email, selfID string) error {
	if username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to look up username: %w", err)
		}
		if err == nil && existing != nil && existing.ID != selfID {
			return fmt.Errorf("username '%s' already taken: %w", username, ErrConflict)
		}
	}
	if email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to look up email: %w", err)
		}
		if err == nil && existing != nil && existing.ID != selfID {
			return fmt.Errorf("email '%s' already registered: %w", email, ErrConflict)
		}
	}
	return nil
}

// dummyHash is compared against when the username is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("canedrop-unknown-user"), bcrypt.DefaultCost)

// LoginUser authenticates a user and returns a session if successful.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// same answer and similar timing for unknown users and wrong passwords
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.FromCtx(ctx).Info("failed login", zap.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenDuration).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the principal it names.
func (s *AuthService) ValidateToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return models.Principal{}, fmt.Errorf("invalid token: %v: %w", err, ErrAuthenticationRequired)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Principal{}, fmt.Errorf("invalid token: %w", ErrAuthenticationRequired)
	}

	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	principal := models.Principal{UserID: userID, Username: username, Role: models.Role(role)}
	if !principal.Authenticated() {
		return models.Principal{}, fmt.Errorf("invalid token claims: %w", ErrAuthenticationRequired)
	}
	return principal, nil
}

// GetUser returns the account of principal.
func (s *AuthService) GetUser(ctx context.Context, principal models.Principal) (*models.User, error) {
	if !principal.Authenticated() {
		return nil, ErrAuthenticationRequired
	}
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", principal.UserID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ProfileInput holds the editable profile fields. Role, username and password are not editable here.
type ProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,min=10,max=20"`
	Address *string `json:"address" validate:"omitempty,min=5,max=500"`
}

// UpdateProfile changes the caller's contact details.
func (s *AuthService) UpdateProfile(ctx context.Context, principal models.Principal, in ProfileInput) (*models.User, error) {
	if err := authorize(principal, models.CapEditProfile); err != nil {
		return nil, err
	}
	trim(in.Name, in.Phone, in.Address)
	// an empty address clears it
	clearAddress := in.Address != nil && *in.Address == ""
	if clearAddress {
		in.Address = nil
	}
	if in.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &lowered
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, principal)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if err := s.ensureUnique(ctx, "", *in.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	switch {
	case clearAddress:
		user.Address = nil
	case in.Address != nil:
		user.Address = in.Address
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// OwnerInput describes the owner account an administrator provisions.
type OwnerInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,min=10,max=20"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ProvisionOwner creates the owner account if it does not exist yet.
// It reports false when an owner with that username is already present and
// fails with ErrConflict when the username or email belongs to a customer.
func (s *AuthService) ProvisionOwner(ctx context.Context, in OwnerInput) (*models.User, bool, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	switch {
	case err == nil && existing.Role == models.RoleOwner:
		return existing, false, nil
	case err == nil:
		return nil, false, fmt.Errorf("username '%s' belongs to a %s: %w", in.Username, existing.Role, ErrConflict)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up username: %w", err)
	}

	owner := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Username: in.Username,
		Role:     models.RoleOwner,
	}
	if err := s.createUser(ctx, owner, in.Password); err != nil {
		return nil, false, err
	}
	logger.FromCtx(ctx).Info("owner provisioned", zap.String("user_id", owner.ID), zap.String("username", owner.Username))
	return owner, true, nil
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
