package admin

import (
	"strconv"

	"github.com/tourmall-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func pathAdminID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

// GetAuthzMe 当前管理员的角色信息
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roles", err)
		return
	}
	isSuper := false
	if value, exists := c.Get("admin_is_super"); exists {
		if b, okType := value.(bool); okType {
			isSuper = b
		}
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper,
		"roles":    roles,
	})
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roles", err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// CreateAuthzRoleRequest 创建角色请求
type CreateAuthzRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req CreateAuthzRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "failed to create role", err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// AuthzPolicyRequest 角色策略请求
type AuthzPolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req AuthzPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "failed to grant policy", err)
		return
	}
	response.Success(c, gin.H{"granted": true})
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req AuthzPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "failed to revoke policy", err)
		return
	}
	response.Success(c, gin.H{"revoked": true})
}

// GetAuthzRolePolicies 角色策略列表
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "failed to load role policies", err)
		return
	}
	response.Success(c, gin.H{"policies": policies})
}

// GetAuthzAdminRoles 查询管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	id, ok := pathAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load admin roles", err)
		return
	}
	response.Success(c, gin.H{"roles": roles})
}

// SetAuthzAdminRolesRequest 设置管理员角色请求
type SetAuthzAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	id, ok := pathAdminID(c)
	if !ok {
		return
	}
	var req SetAuthzAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "failed to set admin roles", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
