package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService 钱包服务
type WalletService struct {
	walletRepo repository.WalletRepository
	currency   string
}

// NewWalletService 创建钱包服务
func NewWalletService(walletRepo repository.WalletRepository, currency string) *WalletService {
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	return &WalletService{walletRepo: walletRepo, currency: currency}
}

// WalletAdjustInput 管理员余额调整输入
type WalletAdjustInput struct {
	UserID uint
	Delta  models.Money
	Remark string
}

// GetAccount 获取钱包账户（不存在时自动创建）
func (s *WalletService) GetAccount(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	account, err := s.walletRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		created, queryErr := s.walletRepo.GetAccountByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, err
	}
	return account, nil
}

// ListTransactions 查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// AdminAdjustBalance 管理员调整余额（正数入账、负数扣减）
func (s *WalletService) AdminAdjustBalance(input WalletAdjustInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrUserNotFound
	}
	if input.Delta.Decimal.IsZero() {
		return nil, nil, ErrWalletCurrencyMismatch
	}
	reference := fmt.Sprintf("adjust:%d:%d", input.UserID, time.Now().UnixNano())
	return s.changeBalance(input.UserID, input.Delta.Decimal, constants.WalletTxnTypeAdminAdjust, nil, reference, cleanRemark(input.Remark, "管理员余额调整"))
}

// DebitBookingInTx 事务内全额扣减订单应付金额。
// 以 booking 引用作为幂等键，重复调用返回已存在的流水；
// 余额不足返回 ErrWalletInsufficientBalance，与优惠码类错误严格区分。
func (s *WalletService) DebitBookingInTx(tx *gorm.DB, booking *models.Booking) (*models.WalletTransaction, error) {
	if tx == nil || booking == nil {
		return nil, ErrBookingNotFound
	}
	amount := booking.TotalAmount.Decimal.Round(2)
	repo := s.walletRepo.WithTx(tx)

	reference := bookingWalletReference(booking.ID, constants.WalletTxnTypeBookingPay)
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, booking.UserID, now)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(account.Currency, booking.Currency) {
		return nil, ErrWalletCurrencyMismatch
	}

	before := account.Balance.Decimal.Round(2)
	after := before.Sub(amount).Round(2)
	if after.LessThan(decimal.Zero) {
		return nil, ErrWalletInsufficientBalance
	}
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		UserID:        booking.UserID,
		BookingID:     &booking.ID,
		Type:          constants.WalletTxnTypeBookingPay,
		Direction:     constants.WalletTxnDirectionOut,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      account.Currency,
		Reference:     reference,
		Remark:        "订单余额支付",
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// RefundBookingInTx 事务内将订单金额退回钱包，按引用幂等。
func (s *WalletService) RefundBookingInTx(tx *gorm.DB, booking *models.Booking, txnType, remark string) (*models.WalletTransaction, error) {
	if tx == nil || booking == nil {
		return nil, ErrBookingNotFound
	}
	amount := booking.TotalAmount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}
	repo := s.walletRepo.WithTx(tx)

	reference := bookingWalletReference(booking.ID, txnType)
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, booking.UserID, now)
	if err != nil {
		return nil, err
	}

	before := account.Balance.Decimal.Round(2)
	after := before.Add(amount).Round(2)
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		UserID:        booking.UserID,
		BookingID:     &booking.ID,
		Type:          txnType,
		Direction:     constants.WalletTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      account.Currency,
		Reference:     reference,
		Remark:        cleanRemark(remark, "订单退款"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *WalletService) changeBalance(userID uint, delta decimal.Decimal, txnType string, bookingID *uint, reference, remark string) (*models.WalletAccount, *models.WalletTransaction, error) {
	var accountResult *models.WalletAccount
	var txnResult *models.WalletTransaction
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.walletRepo.WithTx(tx)
		now := time.Now()
		account, err := s.ensureAccountForUpdate(repo, userID, now)
		if err != nil {
			return err
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Add(delta).Round(2)
		if after.LessThan(decimal.Zero) {
			return ErrWalletInsufficientBalance
		}
		direction := constants.WalletTxnDirectionIn
		amount := delta.Round(2)
		if delta.LessThan(decimal.Zero) {
			direction = constants.WalletTxnDirectionOut
			amount = delta.Abs().Round(2)
		}

		account.Balance = models.NewMoneyFromDecimal(after)
		account.UpdatedAt = now
		if err := repo.UpdateAccount(account); err != nil {
			return err
		}

		txn := &models.WalletTransaction{
			UserID:        userID,
			BookingID:     bookingID,
			Type:          txnType,
			Direction:     direction,
			Amount:        models.NewMoneyFromDecimal(amount),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Currency:      account.Currency,
			Reference:     strings.TrimSpace(reference),
			Remark:        remark,
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return err
		}

		accountResult = account
		txnResult = txn
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return accountResult, txnResult, nil
}

func (s *WalletService) ensureAccountForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		created, queryErr := repo.GetAccountByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, err
	}
	return account, nil
}

func cleanRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func bookingWalletReference(bookingID uint, action string) string {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "wallet"
	}
	return fmt.Sprintf("booking:%d:%s", bookingID, action)
}
