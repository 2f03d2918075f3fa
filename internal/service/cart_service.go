package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ItemType  string       `json:"item_type"`
	ItemID    uint         `json:"item_id"`
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	LineTotal models.Money `json:"line_total"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID   uint
	ItemType string
	ItemID   uint
	Quantity int
}

// CartService 购物车服务
type CartService struct {
	cartRepo      repository.CartRepository
	activityRepo  repository.ActivityRepository
	itineraryRepo repository.ItineraryRepository
	productRepo   repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	activityRepo repository.ActivityRepository,
	itineraryRepo repository.ItineraryRepository,
	productRepo repository.ProductRepository,
) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		activityRepo:  activityRepo,
		itineraryRepo: itineraryRepo,
		productRepo:   productRepo,
	}
}

// ListByUser 获取用户购物车，已下架条目顺手清理
func (s *CartService) ListByUser(userID uint) ([]CartItemDetail, models.Money, error) {
	zero := models.NewMoneyFromDecimal(decimal.Zero)
	if userID == 0 {
		return nil, zero, ErrCartItemNotFound
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, zero, err
	}
	details := make([]CartItemDetail, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		name, price, err := s.resolveItem(item.ItemType, item.ItemID)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrItemUnavailable) {
				if delErr := s.cartRepo.Delete(userID, item.ItemType, item.ItemID); delErr != nil {
					logger.Warnw("cart_prune_stale_failed",
						"user_id", userID,
						"item_type", item.ItemType,
						"item_id", item.ItemID,
						"error", delErr,
					)
				}
				continue
			}
			return nil, zero, err
		}
		line := price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(line)
		details = append(details, CartItemDetail{
			ItemType:  item.ItemType,
			ItemID:    item.ItemID,
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: models.NewMoneyFromDecimal(price),
			LineTotal: models.NewMoneyFromDecimal(line),
		})
	}
	return details, models.NewMoneyFromDecimal(total), nil
}

// UpsertItem 添加购物车条目，已存在时累加数量
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	itemType := strings.TrimSpace(strings.ToLower(input.ItemType))
	if input.UserID == 0 || input.ItemID == 0 || input.Quantity <= 0 {
		return ErrCartItemNotFound
	}
	if _, _, err := s.resolveItem(itemType, input.ItemID); err != nil {
		return err
	}
	now := time.Now()
	return s.cartRepo.Upsert(&models.CartItem{
		UserID:    input.UserID,
		ItemType:  itemType,
		ItemID:    input.ItemID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// SetQuantity 覆盖条目数量，0 表示移除
func (s *CartService) SetQuantity(userID uint, itemType string, itemID uint, quantity int) error {
	itemType = strings.TrimSpace(strings.ToLower(itemType))
	if userID == 0 || itemID == 0 || quantity < 0 {
		return ErrCartItemNotFound
	}
	if quantity == 0 {
		return s.cartRepo.Delete(userID, itemType, itemID)
	}
	item, err := s.cartRepo.GetItem(userID, itemType, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.UpdateQuantity(item.ID, quantity)
}

// RemoveItem 移除条目
func (s *CartService) RemoveItem(userID uint, itemType string, itemID uint) error {
	if userID == 0 || itemID == 0 {
		return ErrCartItemNotFound
	}
	return s.cartRepo.Delete(userID, strings.TrimSpace(strings.ToLower(itemType)), itemID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrCartItemNotFound
	}
	return s.cartRepo.ClearByUser(userID)
}

func (s *CartService) resolveItem(itemType string, itemID uint) (string, decimal.Decimal, error) {
	switch itemType {
	case constants.BookingItemTypeActivity:
		activity, err := s.activityRepo.GetByID(itemID)
		if err != nil {
			return "", decimal.Zero, err
		}
		if activity == nil {
			return "", decimal.Zero, ErrItemNotFound
		}
		if !activity.IsActive {
			return "", decimal.Zero, ErrItemUnavailable
		}
		return activity.Name, activity.Price.Decimal, nil
	case constants.BookingItemTypeItinerary:
		itinerary, err := s.itineraryRepo.GetByID(itemID)
		if err != nil {
			return "", decimal.Zero, err
		}
		if itinerary == nil {
			return "", decimal.Zero, ErrItemNotFound
		}
		if !itinerary.IsActive {
			return "", decimal.Zero, ErrItemUnavailable
		}
		return itinerary.Name, itinerary.Price.Decimal, nil
	case constants.BookingItemTypeProduct:
		product, err := s.productRepo.GetByID(itemID)
		if err != nil {
			return "", decimal.Zero, err
		}
		if product == nil {
			return "", decimal.Zero, ErrItemNotFound
		}
		if !product.IsActive {
			return "", decimal.Zero, ErrItemUnavailable
		}
		return product.Name, product.Price.Decimal, nil
	default:
		return "", decimal.Zero, ErrItemNotFound
	}
}
