package queue

import (
	"encoding/json"

	"github.com/tourmall-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskBookingTimeoutCancel 订单支付超时取消任务
	TaskBookingTimeoutCancel = constants.TaskBookingTimeoutCancel
	// TaskBookingNotification 订单状态站内通知任务
	TaskBookingNotification = constants.TaskBookingNotification
)

// BookingTimeoutCancelPayload 超时取消任务载荷
type BookingTimeoutCancelPayload struct {
	BookingID uint `json:"booking_id"`
}

// BookingNotificationPayload 订单通知任务载荷
type BookingNotificationPayload struct {
	BookingID uint   `json:"booking_id"`
	Status    string `json:"status"`
}

// NewBookingTimeoutCancelTask 创建超时取消任务
func NewBookingTimeoutCancelTask(payload BookingTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingTimeoutCancel, body), nil
}

// NewBookingNotificationTask 创建订单通知任务
func NewBookingNotificationTask(payload BookingNotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingNotification, body), nil
}
