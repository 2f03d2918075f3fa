package repository

import (
	"errors"
	"time"

	"github.com/tourmall-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRepository 订单数据访问接口
type BookingRepository interface {
	Create(booking *models.Booking, items []models.BookingItem) error
	GetByID(id uint) (*models.Booking, error)
	GetByIDForUpdate(id uint) (*models.Booking, error)
	GetByIDAndUser(id uint, userID uint) (*models.Booking, error)
	GetByBookingNo(bookingNo string) (*models.Booking, error)
	ListByUser(filter BookingListFilter) ([]models.Booking, int64, error)
	ListAdmin(filter BookingListFilter) ([]models.Booking, int64, error)
	ListExpiredPending(before time.Time, limit int) ([]models.Booking, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormBookingRepository
}

// GormBookingRepository GORM 实现
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建订单仓库
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookingRepository) WithTx(tx *gorm.DB) *GormBookingRepository {
	if tx == nil {
		return r
	}
	return &GormBookingRepository{db: tx}
}

// Create 创建订单与订单条目
func (r *GormBookingRepository) Create(booking *models.Booking, items []models.BookingItem) error {
	if err := r.db.Create(booking).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].BookingID = booking.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据ID获取订单
func (r *GormBookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Items").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByIDForUpdate 根据ID加锁获取订单
func (r *GormBookingRepository) GetByIDForUpdate(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByIDAndUser 获取用户订单详情
func (r *GormBookingRepository) GetByIDAndUser(id uint, userID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNo 根据订单号获取订单
func (r *GormBookingRepository) GetByBookingNo(bookingNo string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Items").
		Where("booking_no = ?", bookingNo).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// ListByUser 获取用户订单列表
func (r *GormBookingRepository) ListByUser(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BookingNo != "" {
		query = query.Where("booking_no LIKE ?", "%"+filter.BookingNo+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var bookings []models.Booking
	if err := query.Preload("Items").Order("id desc").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListAdmin 管理端订单列表
func (r *GormBookingRepository) ListAdmin(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BookingNo != "" {
		query = query.Where("booking_no = ?", filter.BookingNo)
	}
	if filter.PromoCodeID != 0 {
		query = query.Where("promo_code_id = ?", filter.PromoCodeID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var bookings []models.Booking
	if err := query.Preload("Items").Order("id desc").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListExpiredPending 获取支付超时的待支付订单
func (r *GormBookingRepository) ListExpiredPending(before time.Time, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 100
	}
	var bookings []models.Booking
	if err := r.db.Where("status = ? AND expires_at <= ?", "pending_payment", before).
		Order("id asc").
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus 更新订单状态
func (r *GormBookingRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Booking{}).Where("id = ?", id).Updates(updates).Error
}
