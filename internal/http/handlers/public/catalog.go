package public

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

func catalogFilterFromQuery(c *gin.Context) repository.CatalogListFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)
	return repository.CatalogListFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

func respondCatalogGetError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrItemNotFound) {
		respondError(c, response.CodeNotFound, "item not found", nil)
		return
	}
	respondError(c, response.CodeInternal, "failed to load item", err)
}

// GetActivities 公开活动列表
func (h *Handler) GetActivities(c *gin.Context) {
	filter := catalogFilterFromQuery(c)
	items, total, err := h.ActivityService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load activities", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetActivity 公开活动详情
func (h *Handler) GetActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.ActivityService.GetPublic(id)
	if err != nil {
		respondCatalogGetError(c, err)
		return
	}
	response.Success(c, item)
}

// GetItineraries 公开行程列表
func (h *Handler) GetItineraries(c *gin.Context) {
	filter := catalogFilterFromQuery(c)
	items, total, err := h.ItineraryService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load itineraries", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetItinerary 公开行程详情
func (h *Handler) GetItinerary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.ItineraryService.GetPublic(id)
	if err != nil {
		respondCatalogGetError(c, err)
		return
	}
	response.Success(c, item)
}

// GetProducts 公开商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	filter := catalogFilterFromQuery(c)
	items, total, err := h.ProductService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetProduct 公开商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.ProductService.GetPublic(id)
	if err != nil {
		respondCatalogGetError(c, err)
		return
	}
	response.Success(c, item)
}
