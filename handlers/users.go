package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/loantrack/middleware"
	"github.com/yourusername/loantrack/models"
	"github.com/yourusername/loantrack/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// primarySuperAdminID is the bootstrap account: it can never be deleted,
// demoted or deactivated.
const primarySuperAdminID = 1

type UserHandler struct {
	DB   *gorm.DB
	Log  *logrus.Logger
	CSRF *middleware.CSRFStore
}

func NewUserHandler(db *gorm.DB, log *logrus.Logger, csrf *middleware.CSRFStore) *UserHandler {
	return &UserHandler{DB: db, Log: log, CSRF: csrf}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,personname"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin super_admin"`
}

// CreateUser registers a new admin account. Super-admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !validation.Username(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username must be 3-50 characters: letters, numbers and underscores."})
		return
	}
	if !validation.Password(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password must be at least 6 characters long."})
		return
	}

	var count int64
	h.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username or email already exists."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.Log.WithError(err).Error("user creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create user. Please try again."})
		return
	}

	h.Log.WithField("username", user.Username).Info("user created")
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User created successfully.", "user_id": user.ID})
}

// ListUsers returns all accounts. Super-admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		h.Log.WithError(err).Error("user list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch users."})
		return
	}
	c.JSON(http.StatusOK, users)
}

type UpdateUserRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	FullName        *string `json:"full_name"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"current_password"`
	Role            *string `json:"role"`
	IsActive        *bool   `json:"is_active"`
}

// UpdateUser edits an account. Users may edit their own profile and
// password; editing anyone else, or touching role/is_active, takes a super
// admin. A user changing their own password must present the current one.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user id."})
		return
	}
	id := uint(id64)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	isSuperAdmin := actor.Role == models.RoleSuperAdmin
	if actor.ID != id && !isSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden: insufficient permissions"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found."})
		return
	}

	values := map[string]any{}

	if req.Username != nil && *req.Username != user.Username {
		if !validation.Username(*req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username must be 3-50 characters: letters, numbers and underscores."})
			return
		}
		var count int64
		h.DB.Model(&models.User{}).Where("username = ? AND id != ?", *req.Username, id).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username already exists."})
			return
		}
		values["username"] = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if !validation.Email(*req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email format."})
			return
		}
		var count int64
		h.DB.Model(&models.User{}).Where("email = ? AND id != ?", *req.Email, id).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already exists."})
			return
		}
		values["email"] = *req.Email
	}
	if req.FullName != nil && *req.FullName != user.FullName {
		if !validation.Name(*req.FullName) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid full name format."})
			return
		}
		values["full_name"] = *req.FullName
	}
	if req.Password != nil {
		if !validation.Password(*req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password must be at least 6 characters long."})
			return
		}
		if actor.ID == id {
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
				c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Current password is incorrect."})
				return
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
			return
		}
		values["password_hash"] = string(hash)
	}
	if req.Role != nil && *req.Role != user.Role {
		if !isSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Only a super admin can change roles."})
			return
		}
		if id == primarySuperAdminID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "The primary super admin cannot be demoted."})
			return
		}
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleSuperAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role."})
			return
		}
		values["role"] = *req.Role
	}
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if !isSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Only a super admin can change account status."})
			return
		}
		if id == primarySuperAdminID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "The primary super admin cannot be deactivated."})
			return
		}
		values["is_active"] = *req.IsActive
	}

	if len(values) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No changes to update."})
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", id).Updates(values).Error; err != nil {
		h.Log.WithError(err).Error("user update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update user. Please try again."})
		return
	}

	if _, changed := values["password_hash"]; changed && h.CSRF != nil {
		h.CSRF.Revoke(id)
	}

	h.Log.WithField("user_id", id).Info("user updated")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully."})
}

// DeleteUser removes an account. The primary super admin and the calling
// account itself are protected.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user id."})
		return
	}
	id := uint(id64)

	if id == primarySuperAdminID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "The primary super admin cannot be deleted."})
		return
	}
	if actor, ok := middleware.ActorFromContext(c); ok && actor.ID == id {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You cannot delete your own account."})
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found."})
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		h.Log.WithError(err).Error("user delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete user. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully."})
}
