package repository

import "time"

// BookingListFilter 订单列表筛选
type BookingListFilter struct {
	UserID      uint
	Status      string
	BookingNo   string
	PromoCodeID uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// PaymentListFilter 支付单列表筛选
type PaymentListFilter struct {
	BookingID uint
	UserID    uint
	Method    string
	Status    string
	Page      int
	PageSize  int
}

// WalletTransactionListFilter 钱包流水筛选
type WalletTransactionListFilter struct {
	UserID      uint
	BookingID   uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// UserListFilter 用户列表筛选
type UserListFilter struct {
	Keyword  string
	Role     string
	Status   string
	Page     int
	PageSize int
}

// CatalogListFilter 目录列表筛选（活动/行程/商品通用）
type CatalogListFilter struct {
	OwnerID  uint
	Keyword  string
	Category string
	IsActive *bool
	Page     int
	PageSize int
}

// ComplaintListFilter 投诉列表筛选
type ComplaintListFilter struct {
	UserID   uint
	Status   string
	Page     int
	PageSize int
}

// NotificationListFilter 通知列表筛选
type NotificationListFilter struct {
	UserID     uint
	OnlyUnread bool
	Page       int
	PageSize   int
}
