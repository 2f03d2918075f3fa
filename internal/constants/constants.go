package constants

// 预订状态常量
const (
	BookingStatusPendingPayment = "pending_payment"
	BookingStatusPaid           = "paid"
	BookingStatusCompleted      = "completed"
	BookingStatusCanceled       = "canceled"
)

// 预订项类型常量
const (
	BookingItemTypeActivity  = "activity"
	BookingItemTypeItinerary = "itinerary"
	BookingItemTypeProduct   = "product"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// 支付方式常量
const (
	PaymentMethodStripe = "stripe"
	PaymentMethodWallet = "wallet"
)

// 钱包交易类型常量
const (
	WalletTxnTypeBookingPay    = "booking_pay"
	WalletTxnTypeBookingRefund = "booking_refund"
	WalletTxnTypeAdminAdjust   = "admin_adjust"
	WalletTxnTypeAdminRefund   = "admin_refund"
)

// 钱包交易方向常量
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	UserRoleTourist    = "tourist"
	UserRoleTourGuide  = "tour_guide"
	UserRoleAdvertiser = "advertiser"
	UserRoleSeller     = "seller"
)

// 投诉状态常量
const (
	ComplaintStatusPending  = "pending"
	ComplaintStatusResolved = "resolved"
)

// 通知类型常量
const (
	NotificationTypeBookingStatus  = "booking_status"
	NotificationTypeComplaintReply = "complaint_reply"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskBookingTimeoutCancel = "booking:timeout_cancel"
	TaskBookingNotification  = "booking:notification"
)

// 站点币种默认值
const (
	SiteCurrencyDefault = "USD"
)
