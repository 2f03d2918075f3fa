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

// ItineraryService 行程业务服务
type ItineraryService struct {
	repo     repository.ItineraryRepository
	cacheTTL time.Duration
}

// NewItineraryService 创建行程服务
func NewItineraryService(repo repository.ItineraryRepository, cacheTTL time.Duration) *ItineraryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ItineraryService{repo: repo, cacheTTL: cacheTTL}
}

// ItineraryInput 创建/更新行程输入
type ItineraryInput struct {
	Name          string
	Description   string
	Locations     []string
	Language      string
	Price         decimal.Decimal
	AvailableFrom time.Time
	AvailableTo   time.Time
	IsActive      *bool
}

// ListPublic 公开行程列表
func (s *ItineraryService) ListPublic(ctx context.Context, filter repository.CatalogListFilter) ([]models.Itinerary, int64, error) {
	active := true
	filter.IsActive = &active
	filter.OwnerID = 0

	key := catalogListCacheKey("itinerary", filter)
	var cached cachedCatalogPage[models.Itinerary]
	if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if err := cache.SetJSON(ctx, key, cachedCatalogPage[models.Itinerary]{Items: items, Total: total}, s.cacheTTL); err != nil {
		logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
	}
	return items, total, nil
}

// GetPublic 公开行程详情
func (s *ItineraryService) GetPublic(id uint) (*models.Itinerary, error) {
	itinerary, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if itinerary == nil || !itinerary.IsActive {
		return nil, ErrItemNotFound
	}
	return itinerary, nil
}

// ListByOwner 导游自己的行程列表
func (s *ItineraryService) ListByOwner(ownerID uint, filter repository.CatalogListFilter) ([]models.Itinerary, int64, error) {
	filter.OwnerID = ownerID
	return s.repo.List(filter)
}

// ListAdmin 管理端行程列表
func (s *ItineraryService) ListAdmin(filter repository.CatalogListFilter) ([]models.Itinerary, int64, error) {
	return s.repo.List(filter)
}

// Create 创建行程
func (s *ItineraryService) Create(ownerID uint, input ItineraryInput) (*models.Itinerary, error) {
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if ownerID == 0 || name == "" || price.LessThan(decimal.Zero) {
		return nil, ErrItemUnavailable
	}
	if !input.AvailableTo.IsZero() && input.AvailableTo.Before(input.AvailableFrom) {
		return nil, ErrItemUnavailable
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	itinerary := &models.Itinerary{
		TourGuideID:   ownerID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Locations:     models.StringArray(input.Locations),
		Language:      strings.TrimSpace(input.Language),
		Price:         models.NewMoneyFromDecimal(price),
		AvailableFrom: input.AvailableFrom,
		AvailableTo:   input.AvailableTo,
		IsActive:      isActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(itinerary); err != nil {
		return nil, err
	}
	invalidateCatalogCache("itinerary")
	return itinerary, nil
}

// Update 更新行程，仅限属主
func (s *ItineraryService) Update(id, ownerID uint, input ItineraryInput) (*models.Itinerary, error) {
	itinerary, err := s.getOwned(id, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	price := input.Price.Round(2)
	if name == "" || price.LessThan(decimal.Zero) {
		return nil, ErrItemUnavailable
	}
	if !input.AvailableTo.IsZero() && input.AvailableTo.Before(input.AvailableFrom) {
		return nil, ErrItemUnavailable
	}
	itinerary.Name = name
	itinerary.Description = strings.TrimSpace(input.Description)
	itinerary.Locations = models.StringArray(input.Locations)
	itinerary.Language = strings.TrimSpace(input.Language)
	itinerary.Price = models.NewMoneyFromDecimal(price)
	itinerary.AvailableFrom = input.AvailableFrom
	itinerary.AvailableTo = input.AvailableTo
	if input.IsActive != nil {
		itinerary.IsActive = *input.IsActive
	}
	itinerary.UpdatedAt = time.Now()
	if err := s.repo.Update(itinerary); err != nil {
		return nil, err
	}
	invalidateCatalogCache("itinerary")
	return itinerary, nil
}

// Delete 删除行程，仅限属主
func (s *ItineraryService) Delete(id, ownerID uint) error {
	if _, err := s.getOwned(id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	invalidateCatalogCache("itinerary")
	return nil
}

func (s *ItineraryService) getOwned(id, ownerID uint) (*models.Itinerary, error) {
	itinerary, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if itinerary == nil || (ownerID != 0 && itinerary.TourGuideID != ownerID) {
		return nil, ErrItemNotFound
	}
	return itinerary, nil
}
