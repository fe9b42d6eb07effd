package handlers

import (
	"errors"
	"log"

	"playbox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for registration, login and user CRUD.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// failure translates a service error into the uniform wire shape. Every
// failure is an HTTP 200 with success:false; the status line never signals
// errors on this API. Untagged errors are logged and collapsed into a
// generic message so internal detail never leaks to the caller.
func failure(c *fiber.Ctx, err error) error {
	var se *services.ServiceError
	if errors.As(err, &se) {
		return c.JSON(fiber.Map{"success": false, "message": se.Message})
	}
	log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.JSON(fiber.Map{"success": false, "message": "Error"})
}

// HandleRegister handles new user registration and issues a token.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, err)
	}

	token, role, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return failure(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"role":    role,
	})
}

// HandleLogin handles user login and issues a token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, err)
	}

	token, role, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return failure(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"role":    role,
	})
}

// HandleGetUser returns a user record by ID, password excluded.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.Params("id"))
	if err != nil {
		return failure(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// HandleDeleteUser removes a user record by ID.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.authService.DeleteUser(c.Params("id")); err != nil {
		return failure(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
