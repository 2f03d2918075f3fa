package service

import (
	"strings"
	"time"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"
)

// ComplaintService 投诉服务
type ComplaintService struct {
	complaintRepo   repository.ComplaintRepository
	bookingRepo     repository.BookingRepository
	notificationSvc *NotificationService
}

// NewComplaintService 创建投诉服务
func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	bookingRepo repository.BookingRepository,
	notificationSvc *NotificationService,
) *ComplaintService {
	return &ComplaintService{
		complaintRepo:   complaintRepo,
		bookingRepo:     bookingRepo,
		notificationSvc: notificationSvc,
	}
}

// CreateComplaintInput 提交投诉请求
type CreateComplaintInput struct {
	UserID    uint
	BookingID *uint
	Title     string
	Body      string
}

// CreateComplaint 提交投诉，关联订单时校验归属
func (s *ComplaintService) CreateComplaint(input CreateComplaintInput) (*models.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if input.UserID == 0 || title == "" || body == "" {
		return nil, ErrComplaintNotFound
	}
	if input.BookingID != nil {
		booking, err := s.bookingRepo.GetByIDAndUser(*input.BookingID, input.UserID)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, ErrBookingNotFound
		}
	}
	now := time.Now()
	complaint := &models.Complaint{
		UserID:    input.UserID,
		BookingID: input.BookingID,
		Title:     title,
		Body:      body,
		Status:    constants.ComplaintStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.complaintRepo.Create(complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// GetComplaintByUser 用户查询自己的投诉
func (s *ComplaintService) GetComplaintByUser(id, userID uint) (*models.Complaint, error) {
	complaint, err := s.complaintRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	return complaint, nil
}

// ListComplaints 投诉列表（用户侧传 UserID，管理侧不限定）
func (s *ComplaintService) ListComplaints(filter repository.ComplaintListFilter) ([]models.Complaint, int64, error) {
	return s.complaintRepo.List(filter)
}

// ResolveComplaint 管理员处理投诉，只允许处理一次
func (s *ComplaintService) ResolveComplaint(id uint, reply string) (*models.Complaint, error) {
	reply = strings.TrimSpace(reply)
	complaint, err := s.complaintRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	if complaint.Status == constants.ComplaintStatusResolved {
		return nil, ErrComplaintResolved
	}
	now := time.Now()
	complaint.Status = constants.ComplaintStatusResolved
	complaint.Reply = reply
	complaint.ResolvedAt = &now
	complaint.UpdatedAt = now
	if err := s.complaintRepo.Update(complaint); err != nil {
		return nil, err
	}
	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyComplaintReply(complaint); err != nil {
			logger.Warnw("complaint_resolve_notify_failed",
				"complaint_id", complaint.ID,
				"error", err,
			)
		}
	}
	return complaint, nil
}
