package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tourmall-next/internal/cache"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ActivityService 活动业务服务
type ActivityService struct {
	repo     repository.ActivityRepository
	cacheTTL time.Duration
}

// NewActivityService 创建活动服务
func NewActivityService(repo repository.ActivityRepository, cacheTTL time.Duration) *ActivityService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ActivityService{repo: repo, cacheTTL: cacheTTL}
}

// ActivityInput 创建/更新活动输入
type ActivityInput struct {
	Name        string
	Description string
	Location    string
	Category    string
	Tags        []string
	Price       decimal.Decimal
	StartsAt    time.Time
	Capacity    int
	IsActive    *bool
}

type cachedCatalogPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// catalogListCacheKey 公开目录列表缓存键
func catalogListCacheKey(kind string, filter repository.CatalogListFilter) string {
	return fmt.Sprintf("catalog:%s:list:p%d_s%d_k%s_c%s",
		kind, filter.Page, filter.PageSize,
		strings.TrimSpace(filter.Keyword), strings.TrimSpace(filter.Category),
	)
}

// invalidateCatalogCache 目录变更后批量失效列表缓存
func invalidateCatalogCache(kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.DelByPrefix(ctx, fmt.Sprintf("catalog:%s:", kind)); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "kind", kind, "error", err)
	}
}

// ListPublic 公开活动列表，只含上架活动，短 TTL 缓存
func (s *ActivityService) ListPublic(ctx context.Context, filter repository.CatalogListFilter) ([]models.Activity, int64, error) {
	active := true
	filter.IsActive = &active
	filter.OwnerID = 0

	key := catalogListCacheKey("activity", filter)
	var cached cachedCatalogPage[models.Activity]
	if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if err := cache.SetJSON(ctx, key, cachedCatalogPage[models.Activity]{Items: items, Total: total}, s.cacheTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return items, total, nil
}

// GetPublic 公开活动详情
func (s *ActivityService) GetPublic(id uint) (*models.Activity, error) {
	activity, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if activity == nil || !activity.IsActive {
		return nil, ErrItemNotFound
	}
	return activity, nil
}

// ListByOwner 广告商自己的活动列表
func (s *ActivityService) ListByOwner(ownerID uint, filter repository.CatalogListFilter) ([]models.Activity, int64, error) {
	filter.OwnerID = ownerID
	return s.repo.List(filter)
}

// ListAdmin 管理端活动列表
func (s *ActivityService) ListAdmin(filter repository.CatalogListFilter) ([]models.Activity, int64, error) {
	return s.repo.List(filter)
}

// Create 创建活动
func (s *ActivityService) Create(ownerID uint, input ActivityInput) (*models.Activity, error) {
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if ownerID == 0 || name == "" || price.LessThan(decimal.Zero) || input.Capacity < 0 {
		return nil, ErrItemUnavailable
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	activity := &models.Activity{
		AdvertiserID: ownerID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Location:     strings.TrimSpace(input.Location),
		Category:     strings.TrimSpace(input.Category),
		Tags:         models.StringArray(input.Tags),
		Price:        models.NewMoneyFromDecimal(price),
		StartsAt:     input.StartsAt,
		Capacity:     input.Capacity,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(activity); err != nil {
		return nil, err
	}
	invalidateCatalogCache("activity")
	return activity, nil
}

// Update 更新活动，仅限属主
func (s *ActivityService) Update(id, ownerID uint, input ActivityInput) (*models.Activity, error) {
	activity, err := s.getOwned(id, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if name == "" || price.LessThan(decimal.Zero) || input.Capacity < 0 {
		return nil, ErrItemUnavailable
	}
	activity.Name = name
	activity.Description = strings.TrimSpace(input.Description)
	activity.Location = strings.TrimSpace(input.Location)
	activity.Category = strings.TrimSpace(input.Category)
	activity.Tags = models.StringArray(input.Tags)
	activity.Price = models.NewMoneyFromDecimal(price)
	activity.StartsAt = input.StartsAt
	activity.Capacity = input.Capacity
	if input.IsActive != nil {
		activity.IsActive = *input.IsActive
	}
	activity.UpdatedAt = time.Now()
	if err := s.repo.Update(activity); err != nil {
		return nil, err
	}
	invalidateCatalogCache("activity")
	return activity, nil
}

// Delete 下架并删除活动，仅限属主
func (s *ActivityService) Delete(id, ownerID uint) error {
	if _, err := s.getOwned(id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	invalidateCatalogCache("activity")
	return nil
}

func (s *ActivityService) getOwned(id, ownerID uint) (*models.Activity, error) {
	activity, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if activity == nil || (ownerID != 0 && activity.AdvertiserID != ownerID) {
		return nil, ErrItemNotFound
	}
	return activity, nil
}
