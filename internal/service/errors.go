package service

import "errors"

// 业务语义错误，由 handler 层映射为统一响应码与提示。
var (
	// 认证相关
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDisabled      = errors.New("user disabled")
	ErrCaptchaInvalid    = errors.New("captcha invalid")
	ErrWeakPassword      = errors.New("password too weak")

	// 目录相关
	ErrItemNotFound    = errors.New("item not found")
	ErrItemUnavailable = errors.New("item unavailable")
	ErrItemSoldOut     = errors.New("item sold out")

	// 购物车相关
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("cart item not found")

	// 订单相关
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingNotPayable    = errors.New("booking not payable")
	ErrBookingNotCancelable = errors.New("booking not cancelable")
	ErrBookingAmountLocked  = errors.New("booking amount locked")

	// 优惠码相关（并发下名额被抢占）
	ErrPromoUsageRace = errors.New("promo code usage exhausted")

	// 钱包相关
	ErrWalletInsufficientBalance = errors.New("wallet balance insufficient")
	ErrWalletCurrencyMismatch    = errors.New("wallet currency mismatch")

	// 支付相关
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentStateInvalid     = errors.New("payment state invalid")
	ErrPaymentAmountMismatch   = errors.New("payment amount mismatch")
	ErrPaymentCurrencyMismatch = errors.New("payment currency mismatch")
	ErrPaymentSignatureInvalid = errors.New("payment signature invalid")

	// 投诉相关
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrComplaintResolved = errors.New("complaint already resolved")

	// 管理端相关
	ErrAdminNotFound = errors.New("admin not found")
	ErrAdminExists   = errors.New("admin already exists")
	ErrPromoNotFound = errors.New("promo code not found")
	ErrPromoExists   = errors.New("promo code already exists")
)
