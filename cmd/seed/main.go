package main

import (
	"time"

	"github.com/tourmall-next/internal/config"
	"github.com/tourmall-next/internal/constants"
	"github.com/tourmall-next/internal/logger"
	"github.com/tourmall-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Tourmall123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}

	// 添加示例用户
	users := []models.User{
		{Email: "tourist@example.com", Username: "demo_tourist", Role: constants.UserRoleTourist, Status: constants.UserStatusActive, Nationality: "US"},
		{Email: "guide@example.com", Username: "demo_guide", Role: constants.UserRoleTourGuide, Status: constants.UserStatusActive, Nationality: "IT"},
		{Email: "advertiser@example.com", Username: "demo_advertiser", Role: constants.UserRoleAdvertiser, Status: constants.UserStatusActive, Nationality: "FR"},
		{Email: "seller@example.com", Username: "demo_seller", Role: constants.UserRoleSeller, Status: constants.UserStatusActive, Nationality: "JP"},
	}

	userIDs := map[string]uint{}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			user.PasswordHash = string(passwordHash)
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", user.Email, err)
				continue
			}
			stdLog.Printf("Created user: %s", user.Email)
			userIDs[user.Role] = user.ID
		} else {
			stdLog.Printf("User already exists: %s", user.Email)
			userIDs[existing.Role] = existing.ID
		}
	}

	advertiserID := userIDs[constants.UserRoleAdvertiser]
	guideID := userIDs[constants.UserRoleTourGuide]
	sellerID := userIDs[constants.UserRoleSeller]

	now := time.Now()

	// 添加示例活动
	activities := []models.Activity{
		{
			AdvertiserID: advertiserID,
			Name:         "Sunset Catamaran Cruise",
			Description:  "Two-hour catamaran cruise along the coast with drinks included.",
			Location:     "Santorini",
			Category:     "cruise",
			Tags:         models.StringArray{"sunset", "boat", "drinks"},
			Price:        models.NewMoneyFromDecimal(decimal.NewFromFloat(89.00)),
			StartsAt:     now.AddDate(0, 1, 0),
			Capacity:     40,
			IsActive:     true,
		},
		{
			AdvertiserID: advertiserID,
			Name:         "Old Town Food Walk",
			Description:  "Guided tasting walk through six family-run tavernas.",
			Location:     "Athens",
			Category:     "food",
			Tags:         models.StringArray{"food", "walking"},
			Price:        models.NewMoneyFromDecimal(decimal.NewFromFloat(55.50)),
			StartsAt:     now.AddDate(0, 0, 14),
			Capacity:     12,
			IsActive:     true,
		},
	}
	for _, activity := range activities {
		var existing models.Activity
		if err := models.DB.Where("name = ? AND advertiser_id = ?", activity.Name, activity.AdvertiserID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&activity).Error; err != nil {
				stdLog.Printf("Failed to create activity %s: %v", activity.Name, err)
			} else {
				stdLog.Printf("Created activity: %s", activity.Name)
			}
		} else {
			stdLog.Printf("Activity already exists: %s", activity.Name)
		}
	}

	// 添加示例行程
	itineraries := []models.Itinerary{
		{
			TourGuideID:   guideID,
			Name:          "Three-Day Cyclades Highlights",
			Description:   "Island hopping itinerary covering Mykonos, Paros and Naxos.",
			Locations:     models.StringArray{"Mykonos", "Paros", "Naxos"},
			Language:      "English",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(420.00)),
			AvailableFrom: now,
			AvailableTo:   now.AddDate(0, 6, 0),
			IsActive:      true,
		},
	}
	for _, itinerary := range itineraries {
		var existing models.Itinerary
		if err := models.DB.Where("name = ? AND tour_guide_id = ?", itinerary.Name, itinerary.TourGuideID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&itinerary).Error; err != nil {
				stdLog.Printf("Failed to create itinerary %s: %v", itinerary.Name, err)
			} else {
				stdLog.Printf("Created itinerary: %s", itinerary.Name)
			}
		} else {
			stdLog.Printf("Itinerary already exists: %s", itinerary.Name)
		}
	}

	// 添加示例商品
	products := []models.Product{
		{
			SellerID:    sellerID,
			Name:        "Handmade Olive Wood Bowl",
			Description: "Carved olive wood bowl, each piece unique.",
			Tags:        models.StringArray{"handmade", "souvenir"},
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(32.90)),
			Stock:       50,
			IsActive:    true,
		},
		{
			SellerID:    sellerID,
			Name:        "Local Honey Gift Set",
			Description: "Three jars of thyme honey from island apiaries.",
			Tags:        models.StringArray{"food", "gift"},
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(24.00)),
			Stock:       120,
			IsActive:    true,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ? AND seller_id = ?", product.Name, product.SellerID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	// 添加示例优惠码（作用于全部活动）
	var activityIDs models.UintArray
	var activityList []models.Activity
	if err := models.DB.Where("advertiser_id = ?", advertiserID).Find(&activityList).Error; err != nil {
		stdLog.Printf("Failed to load activities: %v", err)
	}
	for _, activity := range activityList {
		activityIDs = append(activityIDs, activity.ID)
	}

	promoCodes := []models.PromoCode{
		{
			Code:        "WELCOME10",
			Discount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(10.00)),
			ExpiresAt:   now.AddDate(0, 3, 0),
			UsageLimit:  100,
			ScopeType:   constants.BookingItemTypeActivity,
			ScopeRefIDs: activityIDs,
			IsActive:    true,
			Remark:      "seed data",
		},
	}
	for _, promo := range promoCodes {
		var existing models.PromoCode
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promo code: %s", promo.Code)
			}
		} else {
			stdLog.Printf("Promo code already exists: %s", promo.Code)
		}
	}

	stdLog.Println("Seed completed")
}
