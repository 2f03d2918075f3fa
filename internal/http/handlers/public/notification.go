package public

import (
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications 我的通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	notifications, total, err := h.NotificationService.ListByUser(repository.NotificationListFilter{
		UserID:     uid,
		OnlyUnread: c.Query("unread") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load notifications", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// MarkNotificationsReadRequest 标记已读请求
type MarkNotificationsReadRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// MarkNotificationsRead 标记通知为已读
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.NotificationService.MarkRead(uid, req.IDs); err != nil {
		respondError(c, response.CodeInternal, "failed to mark notifications read", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// CountUnreadNotifications 未读通知数量
func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to count notifications", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}
