package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"canedrop/internal/models"
	"canedrop/internal/repositories"
	"canedrop/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func validRegistration() services.RegisterInput {
	return services.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Phone:    "9876543210",
		Username: "alice",
		Password: "password123",
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a customer", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleCustomer && u.Password != "password123" && u.ID != ""
		})).Return(nil).Once()

		session, err := authService.RegisterUser(ctx, validRegistration())
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, models.RoleCustomer, session.User.Role)
		assert.Equal(t, "alice@example.com", session.User.Email)
		assert.Nil(t, session.User.Address)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(session.User.Password), []byte("password123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("username already taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(&models.User{ID: "1"}, nil).Once()

		_, err := authService.RegisterUser(ctx, validRegistration())
		assert.ErrorIs(t, err, services.ErrConflict)
		assert.Contains(t, err.Error(), "username 'alice' already taken")
		mockRepo.AssertExpectations(t)
	})

	t.Run("email already registered", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&models.User{ID: "1"}, nil).Once()

		_, err := authService.RegisterUser(ctx, validRegistration())
		assert.ErrorIs(t, err, services.ErrConflict)
		assert.Contains(t, err.Error(), "email 'alice@example.com' already registered")
		mockRepo.AssertExpectations(t)
	})

	t.Run("unique index race", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate)).Once()

		_, err := authService.RegisterUser(ctx, validRegistration())
		assert.ErrorIs(t, err, services.ErrConflict)
	})

	t.Run("field rules", func(t *testing.T) {
		authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour)
		in := services.RegisterInput{Name: "A", Email: "nope", Phone: "123", Address: "X", Username: "al", Password: "123"}

		_, err := authService.RegisterUser(ctx, in)
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"name", "email", "phone", "address", "username", "password"} {
			assert.Contains(t, verr.Fields, field)
		}
	})
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleOwner,
	}

	// Test successful login
	mockRepo.On("GetByUsername", mock.Anything, user.Username).Return(user, nil).Once()
	session, err := authService.LoginUser(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user, session.User)

	parsedToken, err := jwt.Parse(session.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	assert.Equal(t, "owner", claims["role"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", mock.Anything, user.Username).Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByUsername", mock.Anything, "nonexistentuser").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.LoginUser(ctx, "nonexistentuser", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser_UnknownUserStillHashes(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
	mockRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, repositories.ErrNotFound).Once()

	// a bcrypt comparison at the default cost takes tens of milliseconds
	start := time.Now()
	_, err := authService.LoginUser(context.Background(), "ghost", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour)

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	// Test valid token
	principal, err := authService.ValidateToken(sign(jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"role":     "customer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, models.Principal{UserID: "user-123", Username: "testuser", Role: models.RoleCustomer}, principal)

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)

	// Test wrong secret
	_, err = authService.ValidateToken(sign(jwt.MapClaims{
		"user_id": "user-123", "role": "customer", "exp": time.Now().Add(time.Hour).Unix(),
	}, "other_secret"))
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)

	// Test expired token
	_, err = authService.ValidateToken(sign(jwt.MapClaims{
		"user_id": "user-123", "role": "customer", "exp": time.Now().Add(-time.Hour).Unix(),
	}, testJWTSecret))
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)

	// Test unknown role
	_, err = authService.ValidateToken(sign(jwt.MapClaims{
		"user_id": "user-123", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret))
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates contact fields", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		stored := &models.User{ID: customer.UserID, Name: "Alice", Email: "alice@example.com", Phone: "9876543210", Username: "alice", Role: models.RoleCustomer}
		mockRepo.On("GetByID", mock.Anything, customer.UserID).Return(stored, nil).Once()
		mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := authService.UpdateProfile(ctx, customer, services.ProfileInput{
			Name:    ptr("  Alice B "),
			Email:   ptr("New@Example.com"),
			Address: ptr("42 River Street"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", user.Name)
		assert.Equal(t, "new@example.com", user.Email)
		require.NotNil(t, user.Address)
		assert.Equal(t, "42 River Street", *user.Address)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, models.RoleCustomer, user.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty address clears it", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		address := "42 River Street"
		stored := &models.User{ID: customer.UserID, Name: "Alice", Email: "alice@example.com", Address: &address, Role: models.RoleCustomer}
		mockRepo.On("GetByID", mock.Anything, customer.UserID).Return(stored, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := authService.UpdateProfile(ctx, customer, services.ProfileInput{Address: ptr("   ")})
		require.NoError(t, err)
		assert.Nil(t, user.Address)
		mockRepo.AssertExpectations(t)
	})

	t.Run("short address rejected", func(t *testing.T) {
		authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour)
		_, err := authService.UpdateProfile(ctx, customer, services.ProfileInput{Address: ptr("X")})
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "address")
	})

	t.Run("email used by another account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
		mockRepo.On("GetByID", mock.Anything, customer.UserID).Return(&models.User{ID: customer.UserID, Email: "alice@example.com"}, nil).Once()
		mockRepo.On("GetByEmail", mock.Anything, "bob@example.com").Return(&models.User{ID: "someone-else"}, nil).Once()

		_, err := authService.UpdateProfile(ctx, customer, services.ProfileInput{Email: ptr("bob@example.com")})
		assert.ErrorIs(t, err, services.ErrConflict)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour)
		_, err := authService.UpdateProfile(ctx, models.Principal{}, services.ProfileInput{Name: ptr("Alice")})
		assert.ErrorIs(t, err, services.ErrAuthenticationRequired)
	})
}

func TestAuthService_ProvisionOwner(t *testing.T) {
	ctx := context.Background()
	in := services.OwnerInput{Name: "Shop Owner", Email: "owner@example.com", Phone: "9000000000", Username: "owner", Password: "from-secret-store"}

	t.Run("creates the owner once", func(t *testing.T) {
		repo := repositories.NewMemoryUserRepository()
		authService := services.NewAuthService(repo, testJWTSecret, time.Hour)

		created, isNew, err := authService.ProvisionOwner(ctx, in)
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.Equal(t, models.RoleOwner, created.Role)

		again, isNew, err := authService.ProvisionOwner(ctx, in)
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, created.ID, again.ID)

		session, err := authService.LoginUser(ctx, "owner", "from-secret-store")
		require.NoError(t, err)
		assert.Equal(t, models.RoleOwner, session.User.Role)
	})

	t.Run("refuses to promote a customer", func(t *testing.T) {
		repo := repositories.NewMemoryUserRepository()
		authService := services.NewAuthService(repo, testJWTSecret, time.Hour)
		reg := validRegistration()
		reg.Username = "owner"
		_, err := authService.RegisterUser(ctx, reg)
		require.NoError(t, err)

		_, _, err = authService.ProvisionOwner(ctx, in)
		assert.ErrorIs(t, err, services.ErrConflict)
	})
}
