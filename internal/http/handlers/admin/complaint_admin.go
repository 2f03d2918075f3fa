package admin

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListComplaints 投诉列表
func (h *Handler) AdminListComplaints(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)

	complaints, total, err := h.ComplaintService.ListComplaints(repository.ComplaintListFilter{
		UserID:   uint(userID),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load complaints", err)
		return
	}
	response.SuccessWithPage(c, complaints, response.NewPagination(page, pageSize, total))
}

// ResolveComplaintRequest 投诉处理请求
type ResolveComplaintRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// AdminResolveComplaint 回复并关闭投诉
func (h *Handler) AdminResolveComplaint(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	var req ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	complaint, err := h.ComplaintService.ResolveComplaint(uint(id), req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrComplaintNotFound):
			respondError(c, response.CodeNotFound, "complaint not found", nil)
		case errors.Is(err, service.ErrComplaintResolved):
			respondError(c, response.CodeBadRequest, "complaint already resolved", nil)
		default:
			respondError(c, response.CodeInternal, "failed to resolve complaint", err)
		}
		return
	}
	response.Success(c, complaint)
}
