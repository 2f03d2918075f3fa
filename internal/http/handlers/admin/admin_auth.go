package admin

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, gin.H{
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
		},
		"token":      token,
		"expires_at": expiresAt,
	})
}

// UpdateAdminPasswordRequest 修改管理员密码请求
type UpdateAdminPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改当前管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredential):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "failed to change password", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// CreateAdmin 创建管理员
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	admin, err := h.AuthService.CreateAdmin(req.Username, req.Password, req.IsSuper)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminExists):
			respondError(c, response.CodeBadRequest, "username already exists", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "failed to create admin", err)
		}
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeInternal, "admin created but role assignment failed", err)
			return
		}
	}
	response.Success(c, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"is_super": admin.IsSuper,
	})
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load admins", err)
		return
	}
	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			roles = nil
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"roles":         roles,
			"last_login_at": admin.LastLoginAt,
		})
	}
	response.Success(c, gin.H{"items": items})
}

// DeleteAdmin 删除管理员
func (h *Handler) DeleteAdmin(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	if deleteErr := h.AuthService.DeleteAdmin(uint(id)); deleteErr != nil {
		switch {
		case errors.Is(deleteErr, service.ErrAdminNotFound):
			respondError(c, response.CodeNotFound, "admin not found", nil)
		case errors.Is(deleteErr, service.ErrAdminExists):
			respondError(c, response.CodeBadRequest, "super admin cannot be deleted", nil)
		default:
			respondError(c, response.CodeInternal, "failed to delete admin", deleteErr)
		}
		return
	}
	if err := h.AuthzService.SetAdminRoles(uint(id), nil); err != nil {
		respondError(c, response.CodeInternal, "admin deleted but role cleanup failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
