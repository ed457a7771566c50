package handler

import (
	"errors"
	"net/http"
	"time"

	"supplydesk/internal/middleware"
	"supplydesk/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/logout-all", requireAdmin, h.LogoutAll)
		auth.GET("/session", h.Session)
	}
}

type LogoutAllResponse struct {
	Message string `json:"message"`
	Revoked int    `json:"revoked"`
}

type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Login exchanges the admin password for a session token
// @Summary      Admin login
// @Description  Verifies the admin password, opens a session and sets the admin_token cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginInput  true  "Admin password"
// @Success      200      {object}  service.LoginResult
// @Failure      400      {object}  response.ErrorBody
// @Failure      401      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	middleware.SetSessionCookie(c, res.Token, res.ExpiresAt)
	c.JSON(http.StatusOK, res)
}

// Logout ends the current admin session
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err, "Failed to log out")
			return
		}
	}

	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// LogoutAll ends every admin session, including the caller's
// @Summary      Log out everywhere
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  LogoutAllResponse
// @Failure      401  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	revoked, err := h.authService.RevokeSessions(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err, "Failed to revoke sessions")
		return
	}

	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, LogoutAllResponse{Message: "All sessions revoked", Revoked: revoked})
}

// Session reports whether the caller holds a live admin session
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusOK, SessionResponse{})
		return
	}

	claims, err := h.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusOK, SessionResponse{})
			return
		}
		respondError(c, err, "Failed to verify session")
		return
	}

	var expires *time.Time
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		expires = &t
	}
	c.JSON(http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: expires})
}
