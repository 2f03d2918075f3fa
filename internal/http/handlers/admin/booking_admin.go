package admin

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListBookings 订单列表
func (h *Handler) AdminListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)
	promoID, _ := strconv.ParseUint(c.Query("promo_code_id"), 10, 32)

	bookings, total, err := h.BookingService.ListBookingsForAdmin(repository.BookingListFilter{
		UserID:      uint(userID),
		Status:      c.Query("status"),
		BookingNo:   c.Query("booking_no"),
		PromoCodeID: uint(promoID),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load bookings", err)
		return
	}
	response.SuccessWithPage(c, bookings, response.NewPagination(page, pageSize, total))
}

// AdminGetBooking 订单详情
func (h *Handler) AdminGetBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	booking, err := h.BookingService.GetBookingForAdmin(uint(id))
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
