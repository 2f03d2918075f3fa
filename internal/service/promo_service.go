package service

import (
	"strings"
	"time"

	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
)

// 优惠码校验失败的提示文案，按校验顺序固定。
const (
	PromoMsgInvalid       = "Invalid promo code"
	PromoMsgExpired       = "Promo code has expired"
	PromoMsgMaxUsage      = "Promo code has reached its maximum usage"
	PromoMsgNotEligible   = "You are not eligible to use this promo code"
	PromoMsgNotApplicable = "Promo code does not apply to any items in your cart"
)

// DiscountDecision 优惠码校验结果。
// 校验不通过属于正常业务结果而非错误，Message 给出对应提示；
// 只有基础设施故障（如数据库不可用）才通过 error 返回。
type DiscountDecision struct {
	Valid    bool              `json:"valid"`
	Message  string            `json:"message,omitempty"`
	Discount models.Money      `json:"discount"`
	Promo    *models.PromoCode `json:"-"`
}

// PromoService 优惠码服务
type PromoService struct {
	promoRepo repository.PromoCodeRepository
}

// NewPromoService 创建优惠码服务
func NewPromoService(promoRepo repository.PromoCodeRepository) *PromoService {
	return &PromoService{promoRepo: promoRepo}
}

func rejected(message string) *DiscountDecision {
	return &DiscountDecision{Valid: false, Message: message}
}

// Validate 校验优惠码并给出减免金额。
// 校验按固定顺序执行：存在性、有效期、使用次数、用户资格、条目适用性，
// 命中第一条失败即返回，对应提示不受后续条件影响。
func (s *PromoService) Validate(code string, userID uint, items []models.BookingItem) (*DiscountDecision, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return rejected(PromoMsgInvalid), nil
	}

	promo, err := s.promoRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if promo == nil || !promo.IsActive {
		return rejected(PromoMsgInvalid), nil
	}

	// 到期当刻仍然有效，只有越过到期时间才算过期
	if time.Now().After(promo.ExpiresAt) {
		return rejected(PromoMsgExpired), nil
	}

	if !promo.HasUsageLeft() {
		return rejected(PromoMsgMaxUsage), nil
	}

	if !promo.IsAssignedTo(userID) {
		return rejected(PromoMsgNotEligible), nil
	}

	if !anyItemInScope(promo, items) {
		return rejected(PromoMsgNotApplicable), nil
	}

	return &DiscountDecision{
		Valid:    true,
		Discount: models.NewMoneyFromDecimal(promo.Discount.Decimal),
		Promo:    promo,
	}, nil
}

// Reconcile 计算应付金额：原价减去优惠，下限为零，保留两位小数。
func (s *PromoService) Reconcile(total, discount models.Money) models.Money {
	payable := total.Decimal.Sub(discount.Decimal)
	if payable.LessThan(decimal.Zero) {
		payable = decimal.Zero
	}
	return models.NewMoneyFromDecimal(payable)
}

// anyItemInScope 判断条目集合中是否存在优惠码适用的条目
func anyItemInScope(promo *models.PromoCode, items []models.BookingItem) bool {
	if len(promo.ScopeRefIDs) == 0 {
		return false
	}
	for _, item := range items {
		if item.ItemType != promo.ScopeType {
			continue
		}
		if promo.ScopeRefIDs.Contains(item.ItemID) {
			return true
		}
	}
	return false
}
