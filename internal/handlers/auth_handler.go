package handlers

import (
	"canedrop/internal/middleware"
	"canedrop/internal/models"
	"canedrop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and sessions.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the account routes. limit guards the credential endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth, limit fiber.Handler) {
	router.Post("/register", limit, h.HandleRegister)
	router.Post("/login", limit, h.HandleLogin)
	router.Get("/user", auth, h.HandleGetUser)
	router.Patch("/profile", auth, middleware.Require(models.CapEditProfile), h.HandleUpdateProfile)
}

// HandleRegister handles new customer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	session, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    session.User,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Username == "" || req.Password == "" {
		fields := map[string]string{}
		if req.Username == "" {
			fields["username"] = "is required"
		}
		if req.Password == "" {
			fields["password"] = "is required"
		}
		return respondError(c, &services.ValidationError{Fields: fields})
	}

	session, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.User,
	})
}

// HandleGetUser returns the signed-in user and what their role may do.
func (h *AuthHandler) HandleGetUser(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)
	user, err := h.authService.GetUser(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":         user,
		"capabilities": user.Role.Capabilities(),
	})
}

// HandleUpdateProfile changes the caller's contact details.
// Role, username and password in the body are ignored.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	principal, _ := middleware.PrincipalFrom(c)
	user, err := h.authService.UpdateProfile(c.UserContext(), principal, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
