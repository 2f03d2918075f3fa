package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PromoCodeRequest 优惠码创建/更新请求
type PromoCodeRequest struct {
	Code            string          `json:"code" binding:"required"`
	Discount        decimal.Decimal `json:"discount" binding:"required"`
	ExpiresAt       time.Time       `json:"expires_at" binding:"required"`
	UsageLimit      int             `json:"usage_limit"`
	AssignedUserIDs []uint          `json:"assigned_user_ids"`
	ScopeType       string          `json:"scope_type" binding:"required"`
	ScopeRefIDs     []uint          `json:"scope_ref_ids" binding:"required"`
	IsActive        *bool           `json:"is_active"`
	Remark          string          `json:"remark"`
}

func promoInputFromRequest(req PromoCodeRequest) service.PromoCodeInput {
	return service.PromoCodeInput{
		Code:            req.Code,
		Discount:        models.NewMoneyFromDecimal(req.Discount),
		ExpiresAt:       req.ExpiresAt,
		UsageLimit:      req.UsageLimit,
		AssignedUserIDs: req.AssignedUserIDs,
		ScopeType:       req.ScopeType,
		ScopeRefIDs:     req.ScopeRefIDs,
		IsActive:        req.IsActive,
		Remark:          req.Remark,
	}
}

func respondPromoAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromoNotFound):
		respondError(c, response.CodeNotFound, "promo code not found", nil)
	case errors.Is(err, service.ErrPromoExists):
		respondError(c, response.CodeBadRequest, "promo code already exists", nil)
	case errors.Is(err, service.ErrItemUnavailable):
		respondError(c, response.CodeBadRequest, "invalid promo code data", nil)
	default:
		respondError(c, response.CodeInternal, "failed to save promo code", err)
	}
}

func pathPromoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	promo, err := h.PromoAdminService.Create(promoInputFromRequest(req))
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// UpdatePromoCode 更新优惠码
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	id, ok := pathPromoID(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	promo, err := h.PromoAdminService.Update(id, promoInputFromRequest(req))
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// GetPromoCode 优惠码详情
func (h *Handler) GetPromoCode(c *gin.Context) {
	id, ok := pathPromoID(c)
	if !ok {
		return
	}
	promo, err := h.PromoAdminService.Get(id)
	if err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, promo)
}

// ListPromoCodes 优惠码列表
func (h *Handler) ListPromoCodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PromoCodeListFilter{
		Code:      c.Query("code"),
		ScopeType: c.Query("scope_type"),
		Page:      page,
		PageSize:  pageSize,
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filter.IsActive = &isActive
	}

	promos, total, err := h.PromoAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load promo codes", err)
		return
	}
	response.SuccessWithPage(c, promos, response.NewPagination(page, pageSize, total))
}

// DeletePromoCode 删除优惠码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	id, ok := pathPromoID(c)
	if !ok {
		return
	}
	if err := h.PromoAdminService.Delete(id); err != nil {
		respondPromoAdminError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ListPromoRedemptions 优惠码核销记录
func (h *Handler) ListPromoRedemptions(c *gin.Context) {
	id, ok := pathPromoID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	redemptions, total, err := h.PromoAdminService.ListRedemptions(repository.PromoRedemptionListFilter{
		PromoCodeID: id,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load redemptions", err)
		return
	}
	response.SuccessWithPage(c, redemptions, response.NewPagination(page, pageSize, total))
}
