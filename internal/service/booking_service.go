package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/queue"
	"github.com/tourmall-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingService 预订服务
type BookingService struct {
	bookingRepo    repository.BookingRepository
	activityRepo   repository.ActivityRepository
	itineraryRepo  repository.ItineraryRepository
	productRepo    repository.ProductRepository
	cartRepo       repository.CartRepository
	promoRepo      repository.PromoCodeRepository
	redemptionRepo repository.PromoRedemptionRepository
	paymentRepo    repository.PaymentRepository
	promoService   *PromoService
	queueClient    *queue.Client
	expireMinutes  int
	currency       string
}

// NewBookingService 创建预订服务
func NewBookingService(
	bookingRepo repository.BookingRepository,
	activityRepo repository.ActivityRepository,
	itineraryRepo repository.ItineraryRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	promoRepo repository.PromoCodeRepository,
	redemptionRepo repository.PromoRedemptionRepository,
	paymentRepo repository.PaymentRepository,
	promoService *PromoService,
	queueClient *queue.Client,
	expireMinutes int,
	currency string,
) *BookingService {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	return &BookingService{
		bookingRepo:    bookingRepo,
		activityRepo:   activityRepo,
		itineraryRepo:  itineraryRepo,
		productRepo:    productRepo,
		cartRepo:       cartRepo,
		promoRepo:      promoRepo,
		redemptionRepo: redemptionRepo,
		paymentRepo:    paymentRepo,
		promoService:   promoService,
		queueClient:    queueClient,
		expireMinutes:  expireMinutes,
		currency:       currency,
	}
}

// CreateBookingItem 创建预订条目输入
type CreateBookingItem struct {
	ItemType string
	ItemID   uint
	Quantity int
}

// CreateBookingInput 创建预订输入
type CreateBookingInput struct {
	UserID    uint
	Items     []CreateBookingItem
	FromCart  bool
	PromoCode string
}

// BookingPreview 预订试算结果
type BookingPreview struct {
	Items          []models.BookingItem `json:"items"`
	Currency       string               `json:"currency"`
	OriginalAmount models.Money         `json:"original_amount"`
	Promo          *DiscountDecision    `json:"promo,omitempty"`
	DiscountAmount models.Money         `json:"discount_amount"`
	TotalAmount    models.Money         `json:"total_amount"`
}

// PreviewBooking 试算订单金额与优惠，不落库不消耗名额。
func (s *BookingService) PreviewBooking(input CreateBookingInput) (*BookingPreview, error) {
	items, original, err := s.resolveItems(input)
	if err != nil {
		return nil, err
	}

	preview := &BookingPreview{
		Items:          items,
		Currency:       s.currency,
		OriginalAmount: models.NewMoneyFromDecimal(original),
		DiscountAmount: models.NewMoneyFromDecimal(decimal.Zero),
	}

	if strings.TrimSpace(input.PromoCode) != "" {
		decision, err := s.promoService.Validate(input.PromoCode, input.UserID, items)
		if err != nil {
			return nil, err
		}
		preview.Promo = decision
		if decision.Valid {
			preview.DiscountAmount = decision.Discount
		}
	}

	preview.TotalAmount = s.promoService.Reconcile(preview.OriginalAmount, preview.DiscountAmount)
	return preview, nil
}

// CreateBooking 创建订单。优惠码校验不通过时返回携带提示的 DiscountDecision，
// 订单不会创建；名额与库存在事务内占用，任一失败整体回滚。
func (s *BookingService) CreateBooking(input CreateBookingInput) (*models.Booking, *DiscountDecision, error) {
	if input.UserID == 0 {
		return nil, nil, ErrUserNotFound
	}

	items, original, err := s.resolveItems(input)
	if err != nil {
		return nil, nil, err
	}

	var decision *DiscountDecision
	discount := decimal.Zero
	if strings.TrimSpace(input.PromoCode) != "" {
		decision, err = s.promoService.Validate(input.PromoCode, input.UserID, items)
		if err != nil {
			return nil, nil, err
		}
		if !decision.Valid {
			return nil, decision, nil
		}
		discount = decision.Discount.Decimal
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	booking := &models.Booking{
		BookingNo:      generateBookingNo(),
		UserID:         input.UserID,
		Status:         constants.BookingStatusPendingPayment,
		Currency:       s.currency,
		OriginalAmount: models.NewMoneyFromDecimal(original),
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		TotalAmount:    s.promoService.Reconcile(models.NewMoneyFromDecimal(original), models.NewMoneyFromDecimal(discount)),
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if decision != nil && decision.Promo != nil {
		booking.PromoCodeID = &decision.Promo.ID
		booking.PromoCode = decision.Promo.Code
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		if err := bookingRepo.Create(booking, items); err != nil {
			return err
		}

		if err := s.reserveInventory(tx, items); err != nil {
			return err
		}

		if decision != nil && decision.Promo != nil {
			promoRepo := s.promoRepo.WithTx(tx)
			ok, err := promoRepo.IncrementUsedCountBelowLimit(decision.Promo.ID)
			if err != nil {
				return err
			}
			// 校验后名额被并发抢完，以占用结果为准
			if !ok {
				return ErrPromoUsageRace
			}
			redemptionRepo := s.redemptionRepo.WithTx(tx)
			redemption := &models.PromoRedemption{
				PromoCodeID:    decision.Promo.ID,
				UserID:         input.UserID,
				BookingID:      booking.ID,
				DiscountAmount: models.NewMoneyFromDecimal(discount),
				CreatedAt:      now,
			}
			if err := redemptionRepo.Create(redemption); err != nil {
				return err
			}
		}

		if input.FromCart {
			cartRepo := s.cartRepo.WithTx(tx)
			if err := cartRepo.ClearByUser(input.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if decision != nil && isPromoUsageRace(err) {
			return nil, rejected(PromoMsgMaxUsage), nil
		}
		return nil, nil, err
	}

	if s.queueClient != nil && s.queueClient.Enabled() {
		delay := time.Duration(s.expireMinutes) * time.Minute
		if err := s.queueClient.EnqueueBookingTimeoutCancel(queue.BookingTimeoutCancelPayload{
			BookingID: booking.ID,
		}, delay); err != nil {
			logger.Warnw("booking_enqueue_timeout_cancel_failed",
				"booking_id", booking.ID,
				"booking_no", booking.BookingNo,
				"error", err,
			)
		}
	}

	full, err := s.bookingRepo.GetByID(booking.ID)
	if err == nil && full != nil {
		return full, decision, nil
	}
	booking.Items = items
	return booking, decision, nil
}

// ApplyPromo 为已创建的待支付订单追加优惠码。
// 一旦订单存在未终结的支付单，金额即被冻结，不再允许调整。
func (s *BookingService) ApplyPromo(bookingID, userID uint, code string) (*models.Booking, *DiscountDecision, error) {
	booking, err := s.bookingRepo.GetByIDAndUser(bookingID, userID)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, ErrBookingNotFound
	}
	if !booking.IsPayable() {
		return nil, nil, ErrBookingNotPayable
	}
	if booking.PromoCodeID != nil {
		return nil, nil, ErrBookingAmountLocked
	}

	active, err := s.paymentRepo.GetActiveByBookingID(booking.ID)
	if err != nil {
		return nil, nil, err
	}
	if active != nil {
		return nil, nil, ErrBookingAmountLocked
	}

	decision, err := s.promoService.Validate(code, userID, booking.Items)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Valid {
		return booking, decision, nil
	}

	now := time.Now()
	total := s.promoService.Reconcile(booking.OriginalAmount, decision.Discount)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		promoRepo := s.promoRepo.WithTx(tx)
		ok, err := promoRepo.IncrementUsedCountBelowLimit(decision.Promo.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPromoUsageRace
		}
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		if err := redemptionRepo.Create(&models.PromoRedemption{
			PromoCodeID:    decision.Promo.ID,
			UserID:         userID,
			BookingID:      booking.ID,
			DiscountAmount: decision.Discount,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		bookingRepo := s.bookingRepo.WithTx(tx)
		return bookingRepo.UpdateStatus(booking.ID, booking.Status, map[string]interface{}{
			"promo_code_id":   decision.Promo.ID,
			"promo_code":      decision.Promo.Code,
			"discount_amount": decision.Discount,
			"total_amount":    total,
			"updated_at":      now,
		})
	})
	if err != nil {
		if isPromoUsageRace(err) {
			return booking, rejected(PromoMsgMaxUsage), nil
		}
		return nil, nil, err
	}

	full, err := s.bookingRepo.GetByIDAndUser(bookingID, userID)
	if err != nil || full == nil {
		return booking, decision, nil
	}
	return full, decision, nil
}

// CancelBooking 用户取消待支付订单
func (s *BookingService) CancelBooking(bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDAndUser(bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != constants.BookingStatusPendingPayment {
		return nil, ErrBookingNotCancelable
	}
	if err := s.cancelBooking(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelExpiredBooking 取消支付超时订单（worker 调用，幂等）
func (s *BookingService) CancelExpiredBooking(bookingID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != constants.BookingStatusPendingPayment {
		return booking, nil
	}
	if time.Now().Before(booking.ExpiresAt) {
		return booking, nil
	}
	if err := s.cancelBooking(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// SweepExpiredBookings 批量取消超时未支付订单，作为延迟任务的兜底
func (s *BookingService) SweepExpiredBookings(limit int) error {
	if limit <= 0 {
		limit = 100
	}
	expired, err := s.bookingRepo.ListExpiredPending(time.Now(), limit)
	if err != nil {
		return err
	}
	for _, booking := range expired {
		if _, err := s.CancelExpiredBooking(booking.ID); err != nil {
			logger.Warnw("booking_sweep_cancel_failed",
				"booking_id", booking.ID,
				"booking_no", booking.BookingNo,
				"error", err,
			)
		}
	}
	return nil
}

// cancelBooking 取消订单并释放优惠名额与库存
func (s *BookingService) cancelBooking(booking *models.Booking) error {
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		if err := bookingRepo.UpdateStatus(booking.ID, constants.BookingStatusCanceled, map[string]interface{}{
			"canceled_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		if err := s.releaseInventory(tx, booking.Items); err != nil {
			return err
		}

		redemptionRepo := s.redemptionRepo.WithTx(tx)
		redemption, err := redemptionRepo.GetByBookingID(booking.ID)
		if err != nil {
			return err
		}
		if redemption != nil {
			if err := redemptionRepo.DeleteByBookingID(booking.ID); err != nil {
				return err
			}
			promoRepo := s.promoRepo.WithTx(tx)
			if err := promoRepo.DecrementUsedCount(redemption.PromoCodeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	booking.Status = constants.BookingStatusCanceled
	booking.CanceledAt = &now
	booking.UpdatedAt = now
	return nil
}

// GetBookingByUser 获取用户订单详情
func (s *BookingService) GetBookingByUser(bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDAndUser(bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// ListBookingsByUser 获取用户订单列表
func (s *BookingService) ListBookingsByUser(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	return s.bookingRepo.ListByUser(filter)
}

// ListBookingsForAdmin 管理端订单列表
func (s *BookingService) ListBookingsForAdmin(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	return s.bookingRepo.ListAdmin(filter)
}

// GetBookingForAdmin 管理端订单详情
func (s *BookingService) GetBookingForAdmin(bookingID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// resolveItems 解析下单条目，生成价格快照并合计原始金额。
// FromCart 为真时忽略 Items 输入，以购物车内容为准。
func (s *BookingService) resolveItems(input CreateBookingInput) ([]models.BookingItem, decimal.Decimal, error) {
	specs := input.Items
	if input.FromCart {
		cartItems, err := s.cartRepo.ListByUser(input.UserID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		specs = specs[:0]
		for _, ci := range cartItems {
			specs = append(specs, CreateBookingItem{
				ItemType: ci.ItemType,
				ItemID:   ci.ItemID,
				Quantity: ci.Quantity,
			})
		}
	}
	if len(specs) == 0 {
		return nil, decimal.Zero, ErrCartEmpty
	}

	merged := mergeBookingItems(specs)
	items := make([]models.BookingItem, 0, len(merged))
	total := decimal.Zero
	for _, spec := range merged {
		name, price, err := s.resolveCatalogItem(spec.ItemType, spec.ItemID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(spec.Quantity)))
		items = append(items, models.BookingItem{
			ItemType:   spec.ItemType,
			ItemID:     spec.ItemID,
			Name:       name,
			UnitPrice:  models.NewMoneyFromDecimal(price),
			Quantity:   spec.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

// resolveCatalogItem 查找上架条目并返回名称与单价
func (s *BookingService) resolveCatalogItem(itemType string, itemID uint) (string, decimal.Decimal, error) {
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

// reserveInventory 事务内占用活动名额与商品库存
func (s *BookingService) reserveInventory(tx *gorm.DB, items []models.BookingItem) error {
	activityRepo := s.activityRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	for _, item := range items {
		switch item.ItemType {
		case constants.BookingItemTypeActivity:
			ok, err := activityRepo.IncrementBookedCountBelowCapacity(item.ItemID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrItemSoldOut
			}
		case constants.BookingItemTypeProduct:
			ok, err := productRepo.DeductStock(item.ItemID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrItemSoldOut
			}
		}
	}
	return nil
}

// releaseInventory 取消时回补名额与库存
func (s *BookingService) releaseInventory(tx *gorm.DB, items []models.BookingItem) error {
	activityRepo := s.activityRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	for _, item := range items {
		switch item.ItemType {
		case constants.BookingItemTypeActivity:
			if err := activityRepo.DecrementBookedCount(item.ItemID, item.Quantity); err != nil {
				return err
			}
		case constants.BookingItemTypeProduct:
			if err := productRepo.RestoreStock(item.ItemID, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeBookingItems 合并重复条目并纠正非法数量
func mergeBookingItems(items []CreateBookingItem) []CreateBookingItem {
	type key struct {
		itemType string
		itemID   uint
	}
	index := make(map[key]int)
	merged := make([]CreateBookingItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		k := key{itemType: item.ItemType, itemID: item.ItemID}
		if pos, ok := index[k]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func isPromoUsageRace(err error) bool {
	return errors.Is(err, ErrPromoUsageRace)
}

func generateBookingNo() string {
	now := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("TM%s%s", now, suffix)
}
