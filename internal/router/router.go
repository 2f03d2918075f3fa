package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tourmall-next/internal/authz"
	"github.com/tourmall-next/internal/cache"
	"github.com/tourmall-next/internal/config"
	"github.com/tourmall-next/internal/constants"
	adminhandlers "github.com/tourmall-next/internal/http/handlers/admin"
	publichandlers "github.com/tourmall-next/internal/http/handlers/public"
	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if logger.L == nil {
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts, try again later",
	}
	adminLoginRule := loginRule
	adminLoginRule.Prefix = fmt.Sprintf("%s:rate:admin_login", redisPrefix)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/activities", publicHandler.GetActivities)
			public.GET("/activities/:id", publicHandler.GetActivity)
			public.GET("/itineraries", publicHandler.GetItineraries)
			public.GET("/itineraries/:id", publicHandler.GetItinerary)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("identifier")), publicHandler.UserLogin)
		}

		// Stripe 回调（无需鉴权，依赖签名校验）
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.UpsertCartItem)
			user.PUT("/cart/items/:item_type/:item_id", publicHandler.SetCartItemQuantity)
			user.DELETE("/cart/items/:item_type/:item_id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)

			user.POST("/promo-codes/validate", publicHandler.ValidatePromo)

			user.POST("/bookings/preview", publicHandler.PreviewBooking)
			user.POST("/bookings", publicHandler.CreateBooking)
			user.GET("/bookings", publicHandler.ListBookings)
			user.GET("/bookings/:id", publicHandler.GetBooking)
			user.POST("/bookings/:id/promo", publicHandler.ApplyBookingPromo)
			user.POST("/bookings/:id/cancel", publicHandler.CancelBooking)

			user.POST("/payments", publicHandler.CreatePayment)
			user.GET("/payments", publicHandler.ListPayments)
			user.GET("/payments/:id", publicHandler.GetPayment)
			user.POST("/payments/:id/sync", publicHandler.SyncPayment)

			user.GET("/wallet", publicHandler.GetMyWallet)
			user.GET("/wallet/transactions", publicHandler.GetMyWalletTransactions)

			user.POST("/complaints", publicHandler.CreateComplaint)
			user.GET("/complaints", publicHandler.ListMyComplaints)
			user.GET("/complaints/:id", publicHandler.GetMyComplaint)

			user.GET("/notifications", publicHandler.ListNotifications)
			user.POST("/notifications/read", publicHandler.MarkNotificationsRead)
			user.GET("/notifications/unread-count", publicHandler.CountUnreadNotifications)

			// 发布方接口（按角色限制）
			advertiser := user.Group("/my/activities", RequireUserRole(constants.UserRoleAdvertiser))
			{
				advertiser.GET("", publicHandler.ListMyActivities)
				advertiser.POST("", publicHandler.CreateMyActivity)
				advertiser.PUT("/:id", publicHandler.UpdateMyActivity)
				advertiser.DELETE("/:id", publicHandler.DeleteMyActivity)
			}
			guide := user.Group("/my/itineraries", RequireUserRole(constants.UserRoleTourGuide))
			{
				guide.GET("", publicHandler.ListMyItineraries)
				guide.POST("", publicHandler.CreateMyItinerary)
				guide.PUT("/:id", publicHandler.UpdateMyItinerary)
				guide.DELETE("/:id", publicHandler.DeleteMyItinerary)
			}
			seller := user.Group("/my/products", RequireUserRole(constants.UserRoleSeller))
			{
				seller.GET("", publicHandler.ListMyProducts)
				seller.POST("", publicHandler.CreateMyProduct)
				seller.PUT("/:id", publicHandler.UpdateMyProduct)
				seller.DELETE("/:id", publicHandler.DeleteMyProduct)
			}
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 管理员与权限管理
				authorized.GET("/admins", adminHandler.ListAdmins)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.DELETE("/admins/:id", adminHandler.DeleteAdmin)
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})

				// 优惠码管理
				authorized.POST("/promo-codes", adminHandler.CreatePromoCode)
				authorized.GET("/promo-codes", adminHandler.ListPromoCodes)
				authorized.GET("/promo-codes/:id", adminHandler.GetPromoCode)
				authorized.PUT("/promo-codes/:id", adminHandler.UpdatePromoCode)
				authorized.DELETE("/promo-codes/:id", adminHandler.DeletePromoCode)
				authorized.GET("/promo-codes/:id/redemptions", adminHandler.ListPromoRedemptions)

				// 目录管理
				authorized.GET("/activities", adminHandler.AdminListActivities)
				authorized.GET("/itineraries", adminHandler.AdminListItineraries)
				authorized.GET("/products", adminHandler.AdminListProducts)

				// 订单与支付
				authorized.GET("/bookings", adminHandler.AdminListBookings)
				authorized.GET("/bookings/:id", adminHandler.AdminGetBooking)
				authorized.GET("/payments", adminHandler.AdminListPayments)
				authorized.POST("/payments/:id/sync", adminHandler.AdminSyncPayment)

				// 投诉处理
				authorized.GET("/complaints", adminHandler.AdminListComplaints)
				authorized.POST("/complaints/:id/resolve", adminHandler.AdminResolveComplaint)

				// 用户与钱包
				authorized.GET("/users", adminHandler.AdminListUsers)
				authorized.GET("/users/:id", adminHandler.AdminGetUser)
				authorized.PUT("/users/:id/status", adminHandler.AdminSetUserStatus)
				authorized.GET("/users/:id/wallet", adminHandler.AdminGetUserWallet)
				authorized.GET("/users/:id/wallet/transactions", adminHandler.AdminListUserWalletTransactions)
				authorized.POST("/users/:id/wallet/adjust", adminHandler.AdminAdjustUserWallet)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 汇总管理端路由，供角色授权界面选择
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
