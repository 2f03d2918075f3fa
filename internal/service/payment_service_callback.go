package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/payment/stripe"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// settleInput 渠道侧终态回执
type settleInput struct {
	PaymentNo   string
	ProviderRef string
	Status      string
	Amount      string
	Currency    string
	PaidAt      *time.Time
	Raw         map[string]interface{}
}

// HandleStripeWebhook 处理 Stripe Webhook 回调。
// 验签失败返回 ErrPaymentSignatureInvalid；非终态事件直接吞掉；
// 成功事件幂等入账，重复投递只返回已落账的支付单。
func (s *PaymentService) HandleStripeWebhook(signatureHeader string, body []byte) (*models.Payment, error) {
	if s.stripeCfg == nil {
		return nil, ErrPaymentStateInvalid
	}

	result, err := stripe.VerifyAndParseWebhook(s.stripeCfg, signatureHeader, body, time.Now())
	if err != nil {
		if errors.Is(err, stripe.ErrSignatureInvalid) {
			return nil, ErrPaymentSignatureInvalid
		}
		return nil, err
	}

	log := paymentLogger(
		"event_id", result.EventID,
		"event_type", result.EventType,
		"payment_no", result.PaymentNo,
		"provider_ref", result.ProviderRef,
	)

	switch result.Status {
	case constants.PaymentStatusSuccess, constants.PaymentStatusFailed, constants.PaymentStatusExpired:
	default:
		log.Infow("payment_webhook_ignored", "status", result.Status)
		return nil, nil
	}

	payment, err := s.settlePayment(settleInput{
		PaymentNo:   result.PaymentNo,
		ProviderRef: result.ProviderRef,
		Status:      result.Status,
		Amount:      result.Amount,
		Currency:    result.Currency,
		PaidAt:      result.PaidAt,
		Raw:         result.Raw,
	})
	if err != nil {
		log.Errorw("payment_webhook_settle_failed", "error", err)
		return nil, err
	}
	log.Infow("payment_webhook_settled",
		"payment_id", payment.ID,
		"status", payment.Status,
	)
	return payment, nil
}

// settlePayment 将渠道终态落库。成功态不可被覆盖，重复回执幂等返回。
func (s *PaymentService) settlePayment(input settleInput) (*models.Payment, error) {
	var payment *models.Payment
	var paidBookingID uint

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		bookingRepo := s.bookingRepo.WithTx(tx)

		found, err := s.locatePayment(paymentRepo, input)
		if err != nil {
			return err
		}
		locked, err := paymentRepo.GetByIDForUpdate(found.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrPaymentNotFound
		}

		if locked.Status == constants.PaymentStatusSuccess {
			payment = locked
			return nil
		}

		if input.Status == constants.PaymentStatusSuccess {
			if err := validateSettleAmount(locked, input); err != nil {
				return err
			}
		}

		now := time.Now()
		locked.Status = input.Status
		locked.UpdatedAt = now
		if strings.TrimSpace(input.ProviderRef) != "" {
			locked.ProviderRef = input.ProviderRef
		}
		if len(input.Raw) > 0 {
			locked.RawPayload = models.JSON(input.Raw)
		}
		if input.Status == constants.PaymentStatusSuccess {
			paidAt := now
			if input.PaidAt != nil {
				paidAt = *input.PaidAt
			}
			locked.SucceededAt = &paidAt
		}
		if err := paymentRepo.Update(locked); err != nil {
			return err
		}

		if input.Status == constants.PaymentStatusSuccess {
			booking, err := bookingRepo.GetByIDForUpdate(locked.BookingID)
			if err != nil {
				return err
			}
			if booking == nil {
				return ErrBookingNotFound
			}
			if booking.Status == constants.BookingStatusPendingPayment {
				paidAt := *locked.SucceededAt
				if err := s.markBookingPaid(tx, booking, paidAt); err != nil {
					return err
				}
				paidBookingID = booking.ID
			}
		}

		payment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if paidBookingID != 0 {
		s.enqueueBookingNotification(paidBookingID, constants.BookingStatusPaid, paymentLogger("payment_no", payment.PaymentNo))
	}
	return payment, nil
}

// locatePayment 按支付单号优先、渠道单号兜底定位支付单
func (s *PaymentService) locatePayment(repo *repository.GormPaymentRepository, input settleInput) (*models.Payment, error) {
	if no := strings.TrimSpace(input.PaymentNo); no != "" {
		payment, err := repo.GetByPaymentNo(no)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	if ref := strings.TrimSpace(input.ProviderRef); ref != "" {
		payment, err := repo.GetByProviderRef(ref)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	return nil, ErrPaymentNotFound
}

// validateSettleAmount 校验渠道回执金额与币种
func validateSettleAmount(payment *models.Payment, input settleInput) error {
	if strings.TrimSpace(input.Currency) != "" &&
		!strings.EqualFold(strings.TrimSpace(input.Currency), payment.Currency) {
		return ErrPaymentCurrencyMismatch
	}
	if strings.TrimSpace(input.Amount) == "" {
		return nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return ErrPaymentAmountMismatch
	}
	if !amount.Round(2).Equal(payment.Amount.Decimal.Round(2)) {
		return ErrPaymentAmountMismatch
	}
	return nil
}
