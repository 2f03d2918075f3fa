package admin

import (
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListPayments 支付单列表
func (h *Handler) AdminListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)
	bookingID, _ := strconv.ParseUint(c.Query("booking_id"), 10, 32)

	payments, total, err := h.PaymentService.ListPayments(repository.PaymentListFilter{
		UserID:    uint(userID),
		BookingID: uint(bookingID),
		Method:    c.Query("method"),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load payments", err)
		return
	}
	response.SuccessWithPage(c, payments, response.NewPagination(page, pageSize, total))
}

// AdminSyncPayment 主动同步渠道侧支付状态
func (h *Handler) AdminSyncPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	payment, err := h.PaymentService.SyncPaymentStatus(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to sync payment status", err)
		return
	}
	response.Success(c, payment)
}
