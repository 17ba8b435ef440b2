package handlers

import (
	"net/http"
	"time"

	"taskify/server/internal/dto"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService, now: time.Now}
}

func (h *AuthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Auth route is working"})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		Message: "Signup successful",
		User:    dto.UserSummary{ID: user.ID, Username: user.Username},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	expiresIn := result.ExpiresAt.Sub(h.now()).Round(time.Second)
	if expiresIn < 0 {
		expiresIn = 0
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Message:   "Login successful",
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: int64(expiresIn.Seconds()),
		Username:  result.User.Username,
		UserID:    result.User.ID,
	})
}
