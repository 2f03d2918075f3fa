package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ActivityRequest 活动创建/更新请求（广告商）
type ActivityRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Price       decimal.Decimal `json:"price"`
	StartsAt    time.Time       `json:"starts_at"`
	Capacity    int             `json:"capacity"`
	IsActive    *bool           `json:"is_active"`
}

// ItineraryRequest 行程创建/更新请求（导游）
type ItineraryRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Locations     []string        `json:"locations"`
	Language      string          `json:"language"`
	Price         decimal.Decimal `json:"price"`
	AvailableFrom time.Time       `json:"available_from"`
	AvailableTo   time.Time       `json:"available_to"`
	IsActive      *bool           `json:"is_active"`
}

// ProductRequest 商品创建/更新请求（商家）
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    *bool           `json:"is_active"`
}

func ownerFilterFromQuery(c *gin.Context) repository.CatalogListFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)
	return repository.CatalogListFilter{
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	}
}

func respondCatalogWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		respondError(c, response.CodeNotFound, "item not found", nil)
	case errors.Is(err, service.ErrItemUnavailable):
		respondError(c, response.CodeBadRequest, "invalid item data", nil)
	default:
		respondError(c, response.CodeInternal, "failed to save item", err)
	}
}

// ListMyActivities 我发布的活动
func (h *Handler) ListMyActivities(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	filter := ownerFilterFromQuery(c)
	items, total, err := h.ActivityService.ListByOwner(uid, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load activities", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// CreateMyActivity 发布活动
func (h *Handler) CreateMyActivity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ActivityService.Create(uid, activityInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateMyActivity 更新活动
func (h *Handler) UpdateMyActivity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ActivityService.Update(id, uid, activityInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteMyActivity 下架并删除活动
func (h *Handler) DeleteMyActivity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ActivityService.Delete(id, uid); err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func activityInputFromRequest(req ActivityRequest) service.ActivityInput {
	return service.ActivityInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Tags:        req.Tags,
		Price:       req.Price,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
		IsActive:    req.IsActive,
	}
}

// ListMyItineraries 我发布的行程
func (h *Handler) ListMyItineraries(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	filter := ownerFilterFromQuery(c)
	items, total, err := h.ItineraryService.ListByOwner(uid, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load itineraries", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// CreateMyItinerary 发布行程
func (h *Handler) CreateMyItinerary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ItineraryService.Create(uid, itineraryInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateMyItinerary 更新行程
func (h *Handler) UpdateMyItinerary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ItineraryService.Update(id, uid, itineraryInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteMyItinerary 下架并删除行程
func (h *Handler) DeleteMyItinerary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ItineraryService.Delete(id, uid); err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func itineraryInputFromRequest(req ItineraryRequest) service.ItineraryInput {
	return service.ItineraryInput{
		Name:          req.Name,
		Description:   req.Description,
		Locations:     req.Locations,
		Language:      req.Language,
		Price:         req.Price,
		AvailableFrom: req.AvailableFrom,
		AvailableTo:   req.AvailableTo,
		IsActive:      req.IsActive,
	}
}

// ListMyProducts 我发布的商品
func (h *Handler) ListMyProducts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	filter := ownerFilterFromQuery(c)
	items, total, err := h.ProductService.ListByOwner(uid, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// CreateMyProduct 发布商品
func (h *Handler) CreateMyProduct(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ProductService.Create(uid, productInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateMyProduct 更新商品
func (h *Handler) UpdateMyProduct(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	item, err := h.ProductService.Update(id, uid, productInputFromRequest(req))
	if err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteMyProduct 下架并删除商品
func (h *Handler) DeleteMyProduct(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id, uid); err != nil {
		respondCatalogWriteError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func productInputFromRequest(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}
}
