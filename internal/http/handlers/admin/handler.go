package admin

import (
	handlershared "github.com/tourmall-next/internal/http/handlers/shared"
	"github.com/tourmall-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 管理端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.ContextUint(c, "admin_id")
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
