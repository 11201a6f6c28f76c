package handlers

import (
	"net/http"
	"net/url"
	"time"

	"task-rooms-api/internal/models"
	"task-rooms-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

type AuthHandler struct {
	accounts    *service.AuthService
	frontendURL string
}

// NewAuthHandler builds the account endpoints. frontendURL is where the Google
// callback sends the browser with the issued token.
func NewAuthHandler(accounts *service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{accounts: accounts, frontendURL: frontendURL}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token:   session.Token,
		User:    session.User,
		Message: "Login successful",
	})
}

// GoogleLogin handles GET /api/auth/google/login by redirecting to the
// consent page. The state is echoed back through a short-lived cookie.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	target, err := h.accounts.GoogleAuthURL(state)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/api/auth/google", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code not found"})
		return
	}

	session, err := h.accounts.GoogleLogin(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	target, err := url.Parse(h.frontendURL)
	if err != nil {
		respondError(c, err)
		return
	}
	q := target.Query()
	q.Set("token", session.Token)
	target.RawQuery = q.Encode()

	c.SetCookie(oauthStateCookie, "", -1, "/api/auth/google", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, target.String())
}
