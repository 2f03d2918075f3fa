package public

import (
	"errors"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var bookingCreateErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrItemNotFound, code: response.CodeBadRequest, msg: "item not available"},
	{target: service.ErrItemUnavailable, code: response.CodeBadRequest, msg: "item not available"},
	{target: service.ErrItemSoldOut, code: response.CodeBadRequest, msg: "item sold out"},
	{target: service.ErrPromoUsageRace, code: response.CodeBadRequest, msg: service.PromoMsgMaxUsage},
}

var bookingApplyPromoErrorRules = []mappedHandlerError{
	{target: service.ErrBookingNotFound, code: response.CodeNotFound, msg: "booking not found"},
	{target: service.ErrBookingAmountLocked, code: response.CodeBadRequest, msg: "booking has an active payment, amounts are locked"},
	{target: service.ErrBookingNotPayable, code: response.CodeBadRequest, msg: "booking is not awaiting payment"},
	{target: service.ErrPromoUsageRace, code: response.CodeBadRequest, msg: service.PromoMsgMaxUsage},
}

var bookingCancelErrorRules = []mappedHandlerError{
	{target: service.ErrBookingNotFound, code: response.CodeNotFound, msg: "booking not found"},
	{target: service.ErrBookingNotCancelable, code: response.CodeBadRequest, msg: "booking cannot be canceled"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrBookingNotFound, code: response.CodeNotFound, msg: "booking not found"},
	{target: service.ErrBookingNotPayable, code: response.CodeBadRequest, msg: "booking is not awaiting payment"},
	{target: service.ErrWalletInsufficientBalance, code: response.CodeBadRequest, msg: "wallet balance insufficient"},
	{target: service.ErrWalletCurrencyMismatch, code: response.CodeBadRequest, msg: "wallet currency mismatch"},
	{target: service.ErrPaymentStateInvalid, code: response.CodeBadRequest, msg: "payment method not supported"},
}
