package public

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ItemType string `json:"item_type" binding:"required"`
	ItemID   uint   `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

func cartItemKeyFromPath(c *gin.Context) (string, uint, bool) {
	itemType := c.Param("item_type")
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "invalid cart item", nil)
		return "", 0, false
	}
	return itemType, uint(itemID), true
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	items, total, err := h.CartService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cart", err)
		return
	}
	response.Success(c, gin.H{
		"items": items,
		"total": total,
	})
}

// UpsertCartItem 添加/累加购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:   uid,
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrItemUnavailable):
			respondError(c, response.CodeBadRequest, "item not available", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update cart", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// SetCartItemQuantity 设置购物车项数量，0 表示移除
func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemType, itemID, ok := cartItemKeyFromPath(c)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.CartService.SetQuantity(uid, itemType, itemID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			respondError(c, response.CodeNotFound, "cart item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemType, itemID, ok := cartItemKeyFromPath(c)
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(uid, itemType, itemID); err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "failed to clear cart", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
