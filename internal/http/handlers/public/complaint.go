package public

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateComplaintRequest 提交投诉请求
type CreateComplaintRequest struct {
	BookingID *uint  `json:"booking_id"`
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body" binding:"required"`
}

// CreateComplaint 提交投诉
func (h *Handler) CreateComplaint(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	complaint, err := h.ComplaintService.CreateComplaint(service.CreateComplaintInput{
		UserID:    uid,
		BookingID: req.BookingID,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			respondError(c, response.CodeBadRequest, "booking not found", nil)
		case errors.Is(err, service.ErrComplaintNotFound):
			respondError(c, response.CodeBadRequest, "invalid complaint data", nil)
		default:
			respondError(c, response.CodeInternal, "failed to submit complaint", err)
		}
		return
	}
	response.Success(c, complaint)
}

// ListMyComplaints 我的投诉列表
func (h *Handler) ListMyComplaints(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	complaints, total, err := h.ComplaintService.ListComplaints(repository.ComplaintListFilter{
		UserID:   uid,
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

// GetMyComplaint 我的投诉详情
func (h *Handler) GetMyComplaint(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	complaint, err := h.ComplaintService.GetComplaintByUser(id, uid)
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			respondError(c, response.CodeNotFound, "complaint not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load complaint", err)
		return
	}
	response.Success(c, complaint)
}
