package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"baul-admin-api/internal/middleware"
	"baul-admin-api/internal/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService services.AuthService
	tokens      *middleware.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthService, tokens *middleware.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

// UserInfo represents the signed-in administrator
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RefreshTokenRequest represents the refresh token request
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary Login
// @Description Authenticate the administrator and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Login credentials"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Refresh token
// @Description Exchange a valid token for a new one
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Current token"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.tokens.RefreshToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Invalid token",
			Message: err.Error(),
		})
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TokenDuration() / time.Second),
		Email:     claims.Email,
	})
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserInfo
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, username, email, roles, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "User information not found in context",
		})
		return
	}

	c.JSON(http.StatusOK, UserInfo{
		ID:       userID,
		Username: username,
		Email:    email,
		Roles:    roles,
	})
}
