package public

import (
	"strconv"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyWallet 获取我的钱包账户
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load wallet", err)
		return
	}
	response.Success(c, account)
}

// GetMyWalletTransactions 获取我的钱包流水
func (h *Handler) GetMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page, pageSize = normalizePagination(page, pageSize)

	txns, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		UserID:    uid,
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
