package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/loantrack/config"
	"github.com/yourusername/loantrack/middleware"
	"github.com/yourusername/loantrack/models"
	"github.com/yourusername/loantrack/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// PasswordResetMailer is the mail seam; utils.Mailer satisfies it.
type PasswordResetMailer interface {
	SendPasswordReset(to, token string) error
}

type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	CSRF   *middleware.CSRFStore
	Log    *logrus.Logger
	Mailer PasswordResetMailer
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, csrf *middleware.CSRFStore, log *logrus.Logger, mailer PasswordResetMailer) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, CSRF: csrf, Log: log, Mailer: mailer}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues access, refresh and CSRF tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "User account is inactive"})
		return
	}

	accessToken, err := middleware.GenerateToken(user.ID, user.Role, h.Cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate access token"})
		return
	}
	refreshToken, err := middleware.GenerateToken(user.ID, user.Role, h.Cfg.JWTRefreshSecret, refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate refresh token"})
		return
	}

	h.Log.WithField("username", user.Username).Info("user logged in")
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"csrf_token":    h.CSRF.Issue(user.ID),
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

// Logout revokes the caller's CSRF token. The JWTs themselves stay valid
// until expiry; the next login reissues a fresh CSRF token.
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	h.CSRF.Revoke(actor.ID)
	h.Log.WithField("user_id", actor.ID).Info("user logged out")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}

// RefreshToken request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Validate refresh token using the refresh secret
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.Cfg.JWTRefreshSecret), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired refresh token", "code": "InvalidToken"})
		return
	}

	// Fetch user from DB to ensure they still exist and are active
	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "User account is inactive"})
		return
	}

	// Issue new access and refresh tokens
	accessToken, err := middleware.GenerateToken(user.ID, user.Role, h.Cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate access token"})
		return
	}

	refreshToken, err := middleware.GenerateToken(user.ID, user.Role, h.Cfg.JWTRefreshSecret, refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a single-use reset token and mails it. The response
// is identical whether or not the address is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	genericOK := gin.H{"success": true, "message": "If the email exists, a reset link has been sent."}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, genericOK)
		return
	}

	reset := models.PasswordResetToken{
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.DB.Create(&reset).Error; err != nil {
		h.Log.WithError(err).Error("failed to store reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
		return
	}

	// Mail failure must not reveal anything to the caller; the token stays
	// valid and can be re-requested.
	if h.Mailer != nil {
		if err := h.Mailer.SendPasswordReset(user.Email, reset.Token); err != nil {
			h.Log.WithError(err).Warn("reset mail not delivered")
		}
	}

	c.JSON(http.StatusOK, genericOK)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ResetPassword consumes a valid token and replaces the user's password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !validation.Password(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password must be at least 6 characters long."})
		return
	}

	var reset models.PasswordResetToken
	err := h.DB.Where("token = ? AND used = ? AND expires_at > ?", req.Token, false, time.Now()).
		First(&reset).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired reset token."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.PasswordResetToken{}).Where("id = ?", reset.ID).
			Update("used", true).Error
	})
	if err != nil {
		h.Log.WithError(err).Error("password reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
		return
	}

	h.CSRF.Revoke(reset.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset. You can now log in."})
}
