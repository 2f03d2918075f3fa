package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/provider"
	"github.com/tourmall-next/internal/queue"
	"github.com/tourmall-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskBookingTimeoutCancel, c.handleBookingTimeoutCancel)
	mux.HandleFunc(constants.TaskBookingNotification, c.handleBookingNotification)
}

func (c *Consumer) handleBookingTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_booking_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BookingTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 {
		logger.Debugw("worker_booking_timeout_cancel_skip_invalid_payload", "booking_id", payload.BookingID)
		return nil
	}
	if c.BookingService == nil {
		logger.Warnw("worker_booking_timeout_cancel_skip_service_nil", "booking_id", payload.BookingID)
		return nil
	}
	_, err := c.BookingService.CancelExpiredBooking(payload.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			logger.Debugw("worker_booking_timeout_cancel_skip_not_found", "booking_id", payload.BookingID)
			return nil
		case errors.Is(err, service.ErrBookingNotCancelable):
			// 已支付或已取消，超时任务过期作废
			logger.Debugw("worker_booking_timeout_cancel_skip_not_cancelable", "booking_id", payload.BookingID)
			return nil
		default:
			logger.Warnw("worker_booking_timeout_cancel_failed", "booking_id", payload.BookingID, "error", err)
			return err
		}
	}
	logger.Infow("worker_booking_timeout_cancel_done", "booking_id", payload.BookingID)
	return nil
}

func (c *Consumer) handleBookingNotification(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_booking_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BookingNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_notification_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 {
		logger.Debugw("worker_booking_notification_skip_invalid_payload", "booking_id", payload.BookingID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_booking_notification_skip_service_nil", "booking_id", payload.BookingID)
		return nil
	}
	if err := c.NotificationService.NotifyBookingStatus(payload.BookingID, payload.Status); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			logger.Debugw("worker_booking_notification_skip_not_found", "booking_id", payload.BookingID)
			return nil
		}
		logger.Warnw("worker_booking_notification_failed", "booking_id", payload.BookingID, "error", err)
		return err
	}
	return nil
}
