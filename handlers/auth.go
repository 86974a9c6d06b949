package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-admin-api/middleware"
	"restaurant-admin-api/models"
	"restaurant-admin-api/services"
	"restaurant-admin-api/tiers"
)

type AuthHandler struct {
	admins *services.AdminService
	tokens *middleware.Tokens
}

func NewAuthHandler(admins *services.AdminService, tokens *middleware.Tokens) *AuthHandler {
	return &AuthHandler{admins: admins, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an admin by username or email and returns a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}

	admin, err := h.admins.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, "Login successful", admin)
}

// Register creates a new admin account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.admins.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header(tiers.HeaderName, string(res.Tier))
	h.issue(c, http.StatusCreated, "Admin account created", res.Value.Identity())
}

func (h *AuthHandler) issue(c *gin.Context, status int, msg string, admin models.AdminIdentity) {
	token, err := h.tokens.GenerateToken(admin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"message": msg,
		"token":   token,
		"admin":   admin,
	})
}

// ── Profile ──────────────────────────────────────────────

type UpdateProfileRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// GetProfile returns the authenticated admin's account
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, _ := middleware.GetAdmin(c)
	res, err := h.admins.Profile(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"admin": res.Value})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	caller, _ := middleware.GetAdmin(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.admins.UpdateProfile(c.Request.Context(), caller.ID, services.ProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Profile updated", "admin": res.Value})
}

// ── Settings ─────────────────────────────────────────────

func (h *AuthHandler) GetSettings(c *gin.Context) {
	caller, _ := middleware.GetAdmin(c)
	res, err := h.admins.Settings(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"settings": res.Value})
}

func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	caller, _ := middleware.GetAdmin(c)
	var patch models.AdminSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.admins.UpdateSettings(c.Request.Context(), caller.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res.Tier, gin.H{"message": "Settings updated", "settings": res.Value})
}
