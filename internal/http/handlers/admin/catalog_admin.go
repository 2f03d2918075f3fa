package admin

import (
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"

	"github.com/gin-gonic/gin"
)

func adminCatalogFilterFromQuery(c *gin.Context) repository.CatalogListFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	ownerID, _ := strconv.ParseUint(c.Query("owner_id"), 10, 32)
	filter := repository.CatalogListFilter{
		OwnerID:  uint(ownerID),
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filter.IsActive = &isActive
	}
	return filter
}

// AdminListActivities 活动列表（含下架）
func (h *Handler) AdminListActivities(c *gin.Context) {
	filter := adminCatalogFilterFromQuery(c)
	items, total, err := h.ActivityService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load activities", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// AdminListItineraries 行程列表（含下架）
func (h *Handler) AdminListItineraries(c *gin.Context) {
	filter := adminCatalogFilterFromQuery(c)
	items, total, err := h.ItineraryService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load itineraries", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// AdminListProducts 商品列表（含下架）
func (h *Handler) AdminListProducts(c *gin.Context) {
	filter := adminCatalogFilterFromQuery(c)
	items, total, err := h.ProductService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}
