// Account HTTP handlers.
//
// This file exposes REST endpoints for account lifecycle:
//   - POST /auth/signup   (register a new account)
//   - POST /auth/login    (authenticate and refresh the streak)
//
// Handlers are transport-thin: they validate input, call the account service,
// and map sentinel errors onto HTTP statuses. Unknown-user and wrong-password
// failures are deliberately indistinguishable in the response.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/services"
)

//
// DTOs
//

// SignupRequest is the JSON payload for registering an account.
type SignupRequest struct {
	// Username is the unique account name.
	Username string `json:"username" binding:"required,min=1,max=64" example:"ada"`
	// Password must be at least 6 characters.
	Password string `json:"password" binding:"required" example:"hunter22"`
	// ConfirmPassword must match Password exactly.
	ConfirmPassword string `json:"confirm_password" binding:"required" example:"hunter22"`
	// Email is an optional contact address.
	Email string `json:"email" example:"ada@example.com"`
}

// LoginRequest is the JSON payload for authenticating.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"ada"`
	Password string `json:"password" binding:"required" example:"hunter22"`
}

// AuthResponse wraps the authenticated account.
type AuthResponse struct {
	User *domain.User `json:"user"`
}

//
// Handlers
//

// Signup godoc
// @ID          signup
// @Summary     Register a new account
// @Description Creates an account after validating the username, password, and
// @Description confirmation. Usernames are unique.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignupRequest  true  "Signup payload"
//
// @Success     201  {object} handlers.AuthResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure"
// @Failure     409  {object} handlers.ErrorResponse "Username already exists"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	u, err := h.accountSvc.Signup(c.Request.Context(), strings.TrimSpace(req.Username), req.Password, req.ConfirmPassword, strings.TrimSpace(req.Email))
	if err != nil {
		switch err {
		case services.ErrMissingFields, services.ErrPasswordMismatch, services.ErrPasswordTooShort:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case services.ErrUsernameTaken:
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSignupFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, AuthResponse{User: u})
}

// Login godoc
// @ID          login
// @Summary     Authenticate an account
// @Description Verifies the credentials and refreshes the persisted journaling streak.
// @Description A streak broken by a gap of more than one day resets to zero at login.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object} handlers.AuthResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	u, err := h.accountSvc.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		switch err {
		case services.ErrBadCredentials:
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, AuthResponse{User: u})
}
