package provider

import (
	"time"

	"github.com/tourmall-next/internal/authz"
	"github.com/tourmall-next/internal/cache"
	"github.com/tourmall-next/internal/config"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/queue"
	"github.com/tourmall-next/internal/repository"
	"github.com/tourmall-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	ActivityRepo   repository.ActivityRepository
	ItineraryRepo  repository.ItineraryRepository
	ProductRepo    repository.ProductRepository
	CartRepo       repository.CartRepository
	PromoRepo      repository.PromoCodeRepository
	RedemptionRepo repository.PromoRedemptionRepository
	BookingRepo    repository.BookingRepository
	PaymentRepo    repository.PaymentRepository
	WalletRepo     repository.WalletRepository
	ComplaintRepo  repository.ComplaintRepository
	NotifyRepo     repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CaptchaService      *service.CaptchaService
	ActivityService     *service.ActivityService
	ItineraryService    *service.ItineraryService
	ProductService      *service.ProductService
	CartService         *service.CartService
	PromoService        *service.PromoService
	PromoAdminService   *service.PromoAdminService
	BookingService      *service.BookingService
	WalletService       *service.WalletService
	PaymentService      *service.PaymentService
	ComplaintService    *service.ComplaintService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ActivityRepo = repository.NewActivityRepository(db)
	c.ItineraryRepo = repository.NewItineraryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PromoRepo = repository.NewPromoCodeRepository(db)
	c.RedemptionRepo = repository.NewPromoRedemptionRepository(db)
	c.BookingRepo = repository.NewBookingRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.ComplaintRepo = repository.NewComplaintRepository(db)
	c.NotifyRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	catalogCacheTTL := time.Duration(c.Config.Booking.CacheTTLSeconds) * time.Second

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ActivityService = service.NewActivityService(c.ActivityRepo, catalogCacheTTL)
	c.ItineraryService = service.NewItineraryService(c.ItineraryRepo, catalogCacheTTL)
	c.ProductService = service.NewProductService(c.ProductRepo, catalogCacheTTL)
	c.CartService = service.NewCartService(c.CartRepo, c.ActivityRepo, c.ItineraryRepo, c.ProductRepo)
	c.PromoService = service.NewPromoService(c.PromoRepo)
	c.PromoAdminService = service.NewPromoAdminService(c.PromoRepo, c.RedemptionRepo)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.Config.Site.Currency)
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.ActivityRepo,
		c.ItineraryRepo,
		c.ProductRepo,
		c.CartRepo,
		c.PromoRepo,
		c.RedemptionRepo,
		c.PaymentRepo,
		c.PromoService,
		c.QueueClient,
		c.Config.Booking.PaymentExpireMinutes,
		c.Config.Site.Currency,
	)
	c.PaymentService = service.NewPaymentService(c.BookingRepo, c.PaymentRepo, c.WalletService, c.QueueClient, &c.Config.Stripe)
	c.NotificationService = service.NewNotificationService(c.NotifyRepo, c.BookingRepo)
	c.ComplaintService = service.NewComplaintService(c.ComplaintRepo, c.BookingRepo, c.NotificationService)
}
