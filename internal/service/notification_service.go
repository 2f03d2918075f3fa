package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"
)

// NotificationService 站内通知服务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	bookingRepo      repository.BookingRepository
}

// NewNotificationService 创建站内通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, bookingRepo repository.BookingRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		bookingRepo:      bookingRepo,
	}
}

var bookingStatusTitles = map[string]string{
	constants.BookingStatusPaid:      "Booking confirmed",
	constants.BookingStatusCanceled:  "Booking canceled",
	constants.BookingStatusCompleted: "Booking completed",
}

// NotifyBookingStatus 写入订单状态变更通知，由队列消费侧调用
func (s *NotificationService) NotifyBookingStatus(bookingID uint, status string) error {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if strings.TrimSpace(status) == "" {
		status = booking.Status
	}
	title, ok := bookingStatusTitles[status]
	if !ok {
		title = fmt.Sprintf("Booking %s", status)
	}
	return s.notificationRepo.Create(&models.Notification{
		UserID: booking.UserID,
		Type:   constants.NotificationTypeBookingStatus,
		Title:  title,
		Body:   fmt.Sprintf("Booking %s is now %s.", booking.BookingNo, status),
		Payload: models.JSON{
			"booking_id": booking.ID,
			"booking_no": booking.BookingNo,
			"status":     status,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyComplaintReply 写入投诉处理结果通知
func (s *NotificationService) NotifyComplaintReply(complaint *models.Complaint) error {
	if complaint == nil {
		return ErrComplaintNotFound
	}
	return s.notificationRepo.Create(&models.Notification{
		UserID: complaint.UserID,
		Type:   constants.NotificationTypeComplaintReply,
		Title:  "Complaint resolved",
		Body:   complaint.Reply,
		Payload: models.JSON{
			"complaint_id": complaint.ID,
		},
		CreatedAt: time.Now(),
	})
}

// ListByUser 用户通知列表
func (s *NotificationService) ListByUser(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notificationRepo.List(filter)
}

// MarkRead 标记通知已读，ids 为空表示全部标记
func (s *NotificationService) MarkRead(userID uint, ids []uint) error {
	return s.notificationRepo.MarkRead(userID, ids)
}

// CountUnread 未读通知数
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}
