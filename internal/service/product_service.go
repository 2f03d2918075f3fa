package service

import (
	"context"
	"strings"
	"time"

	"github.com/tourmall-next/internal/cache"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo     repository.ProductRepository
	cacheTTL time.Duration
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, cacheTTL time.Duration) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ProductService{repo: repo, cacheTTL: cacheTTL}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name        string
	Description string
	Tags        []string
	Price       decimal.Decimal
	Stock       int
	IsActive    *bool
}

// ListPublic 公开商品列表
func (s *ProductService) ListPublic(ctx context.Context, filter repository.CatalogListFilter) ([]models.Product, int64, error) {
	active := true
	filter.IsActive = &active
	filter.OwnerID = 0

	key := catalogListCacheKey("product", filter)
	var cached cachedCatalogPage[models.Product]
	if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if err := cache.SetJSON(ctx, key, cachedCatalogPage[models.Product]{Items: items, Total: total}, s.cacheTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return items, total, nil
}

// GetPublic 公开商品详情
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrItemNotFound
	}
	return product, nil
}

// ListByOwner 卖家自己的商品列表
func (s *ProductService) ListByOwner(ownerID uint, filter repository.CatalogListFilter) ([]models.Product, int64, error) {
	filter.OwnerID = ownerID
	return s.repo.List(filter)
}

// ListAdmin 管理端商品列表
func (s *ProductService) ListAdmin(filter repository.CatalogListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// Create 创建商品
func (s *ProductService) Create(ownerID uint, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if ownerID == 0 || name == "" || price.LessThan(decimal.Zero) || input.Stock < 0 {
		return nil, ErrItemUnavailable
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	product := &models.Product{
		SellerID:    ownerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Tags:        models.StringArray(input.Tags),
		Price:       models.NewMoneyFromDecimal(price),
		Stock:       input.Stock,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	invalidateCatalogCache("product")
	return product, nil
}

// Update 更新商品，仅限属主
func (s *ProductService) Update(id, ownerID uint, input ProductInput) (*models.Product, error) {
	product, err := s.getOwned(id, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if name == "" || price.LessThan(decimal.Zero) || input.Stock < 0 {
		return nil, ErrItemUnavailable
	}
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.Tags = models.StringArray(input.Tags)
	product.Price = models.NewMoneyFromDecimal(price)
	product.Stock = input.Stock
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	invalidateCatalogCache("product")
	return product, nil
}

// Delete 删除商品，仅限属主
func (s *ProductService) Delete(id, ownerID uint) error {
	if _, err := s.getOwned(id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	invalidateCatalogCache("product")
	return nil
}

func (s *ProductService) getOwned(id, ownerID uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || (ownerID != 0 && product.SellerID != ownerID) {
		return nil, ErrItemNotFound
	}
	return product, nil
}
