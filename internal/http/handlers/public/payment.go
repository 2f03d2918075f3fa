package public

import (
	"errors"
	"io"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 创建支付请求
type CreatePaymentRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Method    string `json:"method" binding:"required"`
}

// CreatePayment 发起支付
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.PaymentService.CreatePayment(service.CreatePaymentInput{
		BookingID: req.BookingID,
		UserID:    uid,
		Method:    req.Method,
		Context:   c.Request.Context(),
	})
	if err != nil {
		respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "failed to create payment")
		return
	}
	response.Success(c, gin.H{
		"payment":      result.Payment,
		"booking_paid": result.BookingPaid,
		"pay_url":      result.PayURL,
	})
}

// GetPayment 支付单详情
func (h *Handler) GetPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	payment, err := h.PaymentService.GetPaymentByUser(id, uid)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load payment", err)
		return
	}
	response.Success(c, payment)
}

// ListPayments 我的支付单列表
func (h *Handler) ListPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	payments, total, err := h.PaymentService.ListPayments(repository.PaymentListFilter{
		UserID:   uid,
		Status:   c.Query("status"),
		Method:   c.Query("method"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load payments", err)
		return
	}
	response.SuccessWithPage(c, payments, response.NewPagination(page, pageSize, total))
}

// SyncPayment 主动同步渠道侧支付状态
func (h *Handler) SyncPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	// 先做归属校验，避免同步他人支付单
	if _, err := h.PaymentService.GetPaymentByUser(id, uid); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load payment", err)
		return
	}

	payment, err := h.PaymentService.SyncPaymentStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to sync payment status", err)
		return
	}
	response.Success(c, payment)
}

// StripeWebhook Stripe 回调入口，验签失败一律 400
func (h *Handler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(400, "invalid body")
		return
	}

	payment, err := h.PaymentService.HandleStripeWebhook(c.GetHeader("Stripe-Signature"), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentSignatureInvalid):
			c.String(400, "signature verification failed")
		case errors.Is(err, service.ErrPaymentNotFound):
			c.String(404, "payment not found")
		case errors.Is(err, service.ErrPaymentAmountMismatch), errors.Is(err, service.ErrPaymentCurrencyMismatch):
			c.String(400, "payment mismatch")
		default:
			respondError(c, response.CodeInternal, "webhook processing failed", err)
		}
		return
	}
	if payment == nil {
		// 非终态事件，确认收到即可
		c.String(200, "ignored")
		return
	}
	c.String(200, "ok")
}
