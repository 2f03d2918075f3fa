package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tourmall-next/internal/config"
	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/payment/stripe"
	"github.com/tourmall-next/internal/queue"
	"github.com/tourmall-next/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService 支付服务
type PaymentService struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	walletSvc   *WalletService
	queueClient *queue.Client
	stripeCfg   *stripe.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	walletSvc *WalletService,
	queueClient *queue.Client,
	stripeCfg *config.StripeConfig,
) *PaymentService {
	svc := &PaymentService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		walletSvc:   walletSvc,
		queueClient: queueClient,
	}
	if stripeCfg != nil && stripeCfg.Enabled {
		cfg := &stripe.Config{
			SecretKey:               stripeCfg.SecretKey,
			WebhookSecret:           stripeCfg.WebhookSecret,
			SuccessURL:              stripeCfg.SuccessURL,
			CancelURL:               stripeCfg.CancelURL,
			APIBaseURL:              stripeCfg.APIBaseURL,
			WebhookToleranceSeconds: stripeCfg.WebhookToleranceSeconds,
		}
		cfg.Normalize()
		svc.stripeCfg = cfg
	}
	return svc
}

// CreatePaymentInput 创建支付请求
type CreatePaymentInput struct {
	BookingID uint
	UserID    uint
	Method    string
	Context   context.Context
}

// CreatePaymentResult 创建支付结果
type CreatePaymentResult struct {
	Payment     *models.Payment
	BookingPaid bool
	PayURL      string
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// CreatePayment 为待支付订单创建一次支付尝试。
// 钱包支付在当前事务内完成扣款并落账；Stripe 支付先落 initiated
// 支付单，拿到收银台地址后转 pending。同一订单同时只允许一个
// 未终结的支付单。
func (s *PaymentService) CreatePayment(input CreatePaymentInput) (*CreatePaymentResult, error) {
	if input.BookingID == 0 || input.UserID == 0 {
		return nil, ErrPaymentStateInvalid
	}
	method := strings.TrimSpace(strings.ToLower(input.Method))
	switch method {
	case constants.PaymentMethodStripe:
		if s.stripeCfg == nil {
			return nil, ErrPaymentStateInvalid
		}
	case constants.PaymentMethodWallet:
	default:
		return nil, ErrPaymentStateInvalid
	}

	log := paymentLogger(
		"booking_id", input.BookingID,
		"user_id", input.UserID,
		"method", method,
	)

	var payment *models.Payment
	var booking *models.Booking
	reusedPending := false
	bookingPaid := false
	now := time.Now()

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)

		locked, err := bookingRepo.GetByIDForUpdate(input.BookingID)
		if err != nil {
			return err
		}
		if locked == nil || locked.UserID != input.UserID {
			return ErrBookingNotFound
		}
		if !locked.IsPayable() {
			return ErrBookingNotPayable
		}
		if !locked.ExpiresAt.IsZero() && !locked.ExpiresAt.After(now) {
			return ErrBookingNotPayable
		}

		active, err := paymentRepo.GetActiveByBookingID(locked.ID)
		if err != nil {
			return err
		}
		if active != nil {
			if active.Method == constants.PaymentMethodStripe && strings.TrimSpace(active.PayURL) != "" {
				reusedPending = true
				payment = active
				booking = locked
				return nil
			}
			// 未拿到收银台地址的残留支付单直接作废，重新发起
			active.Status = constants.PaymentStatusFailed
			active.UpdatedAt = now
			if err := paymentRepo.Update(active); err != nil {
				return err
			}
		}

		payment = &models.Payment{
			PaymentNo: generatePaymentNo(),
			BookingID: locked.ID,
			UserID:    locked.UserID,
			Method:    method,
			Status:    constants.PaymentStatusInitiated,
			Amount:    locked.TotalAmount,
			Currency:  locked.Currency,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if method == constants.PaymentMethodWallet {
			if s.walletSvc == nil {
				return ErrPaymentStateInvalid
			}
			if _, err := s.walletSvc.DebitBookingInTx(tx, locked); err != nil {
				return err
			}
			paidAt := time.Now()
			payment.Status = constants.PaymentStatusSuccess
			payment.SucceededAt = &paidAt
			if err := paymentRepo.Create(payment); err != nil {
				return err
			}
			if err := s.markBookingPaid(tx, locked, paidAt); err != nil {
				return err
			}
			bookingPaid = true
			booking = locked
			return nil
		}

		if err := paymentRepo.Create(payment); err != nil {
			return err
		}
		booking = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if booking == nil || payment == nil {
		return nil, ErrPaymentNotFound
	}

	if reusedPending {
		log.Infow("payment_create_reuse_pending",
			"payment_id", payment.ID,
			"payment_no", payment.PaymentNo,
		)
		return &CreatePaymentResult{Payment: payment, PayURL: payment.PayURL}, nil
	}

	if bookingPaid {
		log.Infow("payment_create_wallet_success",
			"payment_id", payment.ID,
			"payment_no", payment.PaymentNo,
			"amount", payment.Amount.String(),
			"currency", payment.Currency,
		)
		s.enqueueBookingNotification(booking.ID, constants.BookingStatusPaid, log)
		return &CreatePaymentResult{Payment: payment, BookingPaid: true}, nil
	}

	// Stripe：事务外调渠道，失败则回写 failed
	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := stripe.CreateSession(ctx, s.stripeCfg, stripe.CreateInput{
		BookingNo:   booking.BookingNo,
		PaymentNo:   payment.PaymentNo,
		Amount:      payment.Amount.String(),
		Currency:    payment.Currency,
		Description: fmt.Sprintf("Booking %s", booking.BookingNo),
	})
	if err != nil {
		payment.Status = constants.PaymentStatusFailed
		payment.UpdatedAt = time.Now()
		if updateErr := s.paymentRepo.Update(payment); updateErr != nil {
			log.Errorw("payment_create_provider_failed_with_rollback_error",
				"payment_id", payment.ID,
				"provider_error", err,
				"rollback_error", updateErr,
			)
		} else {
			log.Errorw("payment_create_provider_failed",
				"payment_id", payment.ID,
				"error", err,
			)
		}
		return nil, err
	}

	payment.Status = constants.PaymentStatusPending
	payment.ProviderRef = session.SessionID
	payment.PayURL = session.URL
	payment.UpdatedAt = time.Now()
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	log.Infow("payment_create_success",
		"payment_id", payment.ID,
		"payment_no", payment.PaymentNo,
		"provider_ref", payment.ProviderRef,
		"amount", payment.Amount.String(),
		"currency", payment.Currency,
	)
	return &CreatePaymentResult{Payment: payment, PayURL: payment.PayURL}, nil
}

// GetPaymentByUser 查询用户自己的支付单
func (s *PaymentService) GetPaymentByUser(paymentID, userID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments 管理端支付单列表
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(filter)
}

// SyncPaymentStatus 主动向 Stripe 查询一次支付状态，用于回调迟到的兜底。
func (s *PaymentService) SyncPaymentStatus(ctx context.Context, paymentID uint) (*models.Payment, error) {
	if s.stripeCfg == nil {
		return nil, ErrPaymentStateInvalid
	}
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Method != constants.PaymentMethodStripe || strings.TrimSpace(payment.ProviderRef) == "" {
		return payment, nil
	}
	if payment.Status == constants.PaymentStatusSuccess || payment.Status == constants.PaymentStatusFailed {
		return payment, nil
	}

	result, err := stripe.QuerySession(ctx, s.stripeCfg, payment.ProviderRef)
	if err != nil {
		return nil, err
	}
	if result.Status != constants.PaymentStatusSuccess &&
		result.Status != constants.PaymentStatusExpired {
		return payment, nil
	}
	return s.settlePayment(settleInput{
		PaymentNo:   payment.PaymentNo,
		ProviderRef: payment.ProviderRef,
		Status:      result.Status,
		Amount:      result.Amount,
		Currency:    result.Currency,
		PaidAt:      result.PaidAt,
		Raw:         result.Raw,
	})
}

// markBookingPaid 事务内把待支付订单置为已支付
func (s *PaymentService) markBookingPaid(tx *gorm.DB, booking *models.Booking, paidAt time.Time) error {
	result := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, constants.BookingStatusPendingPayment).
		Updates(map[string]interface{}{
			"status":     constants.BookingStatusPaid,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotPayable
	}
	booking.Status = constants.BookingStatusPaid
	booking.PaidAt = &paidAt
	return nil
}

func (s *PaymentService) enqueueBookingNotification(bookingID uint, status string, log *zap.SugaredLogger) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueBookingNotification(queue.BookingNotificationPayload{
		BookingID: bookingID,
		Status:    status,
	})
	if err != nil {
		log.Warnw("booking_notification_enqueue_failed",
			"booking_id", bookingID,
			"status", status,
			"error", err,
		)
	}
}

func generatePaymentNo() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("PAY%s%s", time.Now().Format("20060102150405"), raw[:8])
}
