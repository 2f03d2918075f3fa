package admin

import (
	"errors"
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

// AdminGetUserWallet 查询用户钱包
func (h *Handler) AdminGetUserWallet(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load wallet", err)
		return
	}
	response.Success(c, account)
}

// AdminListUserWalletTransactions 查询用户钱包流水
func (h *Handler) AdminListUserWalletTransactions(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	txns, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		UserID:    userID,
		Type:      c.Query("type"),
		Direction: c.Query("direction"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load wallet transactions", err)
		return
	}
	response.SuccessWithPage(c, txns, response.NewPagination(page, pageSize, total))
}

// AdjustWalletRequest 余额调整请求，正数入账负数扣减
type AdjustWalletRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Remark string          `json:"remark"`
}

// AdminAdjustUserWallet 管理员调整用户余额
func (h *Handler) AdminAdjustUserWallet(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	account, txn, err := h.WalletService.AdminAdjustBalance(service.WalletAdjustInput{
		UserID: userID,
		Delta:  models.NewMoneyFromDecimal(req.Delta),
		Remark: req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWalletInsufficientBalance):
			respondError(c, response.CodeBadRequest, "wallet balance insufficient", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to adjust wallet", err)
		}
		return
	}
	response.Success(c, gin.H{
		"account":     account,
		"transaction": txn,
	})
}
