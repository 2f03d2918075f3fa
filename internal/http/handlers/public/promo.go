package public

import (
	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ValidatePromoRequest 优惠码校验请求
// 不传条目时按当前购物车内容校验。
type ValidatePromoRequest struct {
	Code  string `json:"code" binding:"required"`
	Items []struct {
		ItemType string `json:"item_type"`
		ItemID   uint   `json:"item_id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// ValidatePromo 校验优惠码是否适用于当前购物车
func (h *Handler) ValidatePromo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	var items []models.BookingItem
	if len(req.Items) > 0 {
		items = make([]models.BookingItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, models.BookingItem{
				ItemType: item.ItemType,
				ItemID:   item.ItemID,
				Quantity: item.Quantity,
			})
		}
	} else {
		cartItems, _, err := h.CartService.ListByUser(uid)
		if err != nil {
			respondError(c, response.CodeInternal, "failed to load cart", err)
			return
		}
		items = make([]models.BookingItem, 0, len(cartItems))
		for _, item := range cartItems {
			items = append(items, models.BookingItem{
				ItemType:  item.ItemType,
				ItemID:    item.ItemID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}

	decision, err := h.PromoService.Validate(req.Code, uid, items)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to validate promo code", err)
		return
	}
	response.Success(c, decision)
}
