package public

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// BookingItemRequest 预订条目请求
type BookingItemRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	Items     []BookingItemRequest `json:"items"`
	FromCart  bool                 `json:"from_cart"`
	PromoCode string               `json:"promo_code"`
}

func bookingInputFromRequest(uid uint, req CreateBookingRequest) service.CreateBookingInput {
	items := make([]service.CreateBookingItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateBookingItem{
			ItemType: item.ItemType,
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}
	return service.CreateBookingInput{
		UserID:    uid,
		Items:     items,
		FromCart:  req.FromCart,
		PromoCode: req.PromoCode,
	}
}

// PreviewBooking 预订试算（不落库）
func (h *Handler) PreviewBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	preview, err := h.BookingService.PreviewBooking(bookingInputFromRequest(uid, req))
	if err != nil {
		respondWithMappedError(c, err, bookingCreateErrorRules, response.CodeInternal, "failed to preview booking")
		return
	}
	response.Success(c, preview)
}

// CreateBooking 创建预订
func (h *Handler) CreateBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	booking, promo, err := h.BookingService.CreateBooking(bookingInputFromRequest(uid, req))
	if err != nil {
		respondWithMappedError(c, err, bookingCreateErrorRules, response.CodeInternal, "failed to create booking")
		return
	}
	response.Success(c, gin.H{
		"booking": booking,
		"promo":   promo,
	})
}

// ApplyPromoRequest 为既有预订应用优惠码请求
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyBookingPromo 为待支付预订应用优惠码
func (h *Handler) ApplyBookingPromo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	booking, promo, err := h.BookingService.ApplyPromo(id, uid, req.Code)
	if err != nil {
		respondWithMappedError(c, err, bookingApplyPromoErrorRules, response.CodeInternal, "failed to apply promo code")
		return
	}
	response.Success(c, gin.H{
		"booking": booking,
		"promo":   promo,
	})
}

// CancelBooking 取消预订
func (h *Handler) CancelBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.CancelBooking(id, uid)
	if err != nil {
		respondWithMappedError(c, err, bookingCancelErrorRules, response.CodeInternal, "failed to cancel booking")
		return
	}
	response.Success(c, booking)
}

// ListBookings 我的预订列表
func (h *Handler) ListBookings(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.BookingListFilter{
		UserID:   uid,
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
	bookings, total, err := h.BookingService.ListBookingsByUser(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load bookings", err)
		return
	}
	response.SuccessWithPage(c, bookings, response.NewPagination(page, pageSize, total))
}

// GetBooking 我的预订详情
func (h *Handler) GetBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.GetBookingByUser(id, uid)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			respondError(c, response.CodeNotFound, "booking not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load booking", err)
		return
	}
	response.Success(c, booking)
}
