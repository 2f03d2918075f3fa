package admin

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListUsers 用户列表
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load users", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// AdminGetUser 用户详情
func (h *Handler) AdminGetUser(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	response.Success(c, user)
}

// SetUserStatusRequest 用户状态更新请求
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminSetUserStatus 启用/禁用用户
func (h *Handler) AdminSetUserStatus(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if req.Status != constants.UserStatusActive && req.Status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "invalid status", nil)
		return
	}

	user, err := h.UserAuthService.SetUserStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update user status", err)
		return
	}
	response.Success(c, user)
}
