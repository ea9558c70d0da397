package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/quench/internal/config"
	"github.com/example/quench/internal/handlers"
	"github.com/example/quench/internal/middleware"
	"github.com/example/quench/internal/rewards"
	"github.com/example/quench/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, rewardsSvc *rewards.Service) {
	// Initialize Telegram service
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	authHandler := handlers.NewAuthHandler(db, cfg)
	passwordResetHandler := handlers.NewPasswordResetHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	orderHandler := handlers.NewOrderHandler(db, rewardsSvc, telegramService)
	rewardsHandler := handlers.NewRewardsHandler(db, rewardsSvc, telegramService)
	profileHandler := handlers.NewProfileHandler(db)
	marketingHandler := handlers.NewMarketingHandler(db)
	contentHandler := handlers.NewContentHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify", authHandler.Verify)
	auth.Post("/forgot-password", passwordResetHandler.ForgotPassword)
	auth.Post("/verify-reset-code", passwordResetHandler.VerifyResetCode)
	auth.Post("/reset-password", passwordResetHandler.ResetPassword)

	// Catalog routes
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Put("/:id", catalogHandler.UpdateCategory)
	categories.Delete("/:id", catalogHandler.DeleteCategory)

	brands := api.Group("/brands")
	brands.Get("/", catalogHandler.ListBrands)
	brands.Post("/", catalogHandler.CreateBrand)
	brands.Get("/:id", catalogHandler.GetBrand)
	brands.Put("/:id", catalogHandler.UpdateBrand)
	brands.Delete("/:id", catalogHandler.DeleteBrand)

	regions := api.Group("/regions")
	regions.Get("/", catalogHandler.ListRegions)
	regions.Post("/", catalogHandler.CreateRegion)
	regions.Get("/:id", catalogHandler.GetRegion)
	regions.Put("/:id", catalogHandler.UpdateRegion)
	regions.Delete("/:id", catalogHandler.DeleteRegion)

	styles := api.Group("/styles")
	styles.Get("/", catalogHandler.ListStyles)
	styles.Post("/", catalogHandler.CreateStyle)
	styles.Get("/:id", catalogHandler.GetStyle)
	styles.Put("/:id", catalogHandler.UpdateStyle)
	styles.Delete("/:id", catalogHandler.DeleteStyle)

	// Products
	products := api.Group("/products")
	productHandler.RegisterProductRoutes(products)

	// Marketing resources
	api.Get("/banner", marketingHandler.ListBanners)
	api.Post("/banner", marketingHandler.CreateBanner)
	api.Put("/banner/:id", marketingHandler.UpdateBanner)
	api.Delete("/banner/:id", marketingHandler.DeleteBanner)

	stores := api.Group("/stores")
	stores.Get("/", marketingHandler.ListStores)
	stores.Post("/", marketingHandler.CreateStore)
	stores.Put("/:id", marketingHandler.UpdateStore)
	stores.Delete("/:id", marketingHandler.DeleteStore)

	payments := api.Group("/payment-providers")
	payments.Get("/", marketingHandler.ListPaymentProviders)
	payments.Post("/", marketingHandler.CreatePaymentProvider)
	payments.Put("/:id", marketingHandler.UpdatePaymentProvider)
	payments.Delete("/:id", marketingHandler.DeletePaymentProvider)

	// Storefront content
	api.Get("/content", contentHandler.GetContent)
	api.Put("/content", contentHandler.UpdateContent)

	// Rewards catalog is public so the storefront can render it pre-login.
	api.Get("/rewards/catalog", rewardsHandler.ListCatalog)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	// Rewards member routes
	protected.Get("/rewards/account", rewardsHandler.GetAccount)
	protected.Get("/rewards/history", rewardsHandler.GetHistory)
	protected.Get("/rewards/expiring", rewardsHandler.GetExpiringPoints)
	protected.Get("/rewards/vouchers", rewardsHandler.ListVouchers)
	protected.Post("/rewards/redeem", rewardsHandler.Redeem)
	protected.Post("/rewards/missing-points", rewardsHandler.ReportMissingPoints)
	protected.Get("/rewards/missing-points", rewardsHandler.ListMissingPointsReports)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg))
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/orders/recent", adminHandler.RecentOrders)
	admin.Get("/users", adminHandler.ListAllUsers)

	admin.Post("/rewards/items", rewardsHandler.CreateRewardItem)
	admin.Put("/rewards/items/:id", rewardsHandler.UpdateRewardItem)
	admin.Put("/rewards/vouchers/:id/status", rewardsHandler.UpdateVoucherStatus)
	admin.Post("/rewards/expiries/:id/expire", rewardsHandler.ExpireBatch)
	admin.Post("/rewards/adjust", rewardsHandler.AdjustPoints)
	admin.Put("/rewards/missing-points/:id", rewardsHandler.ResolveMissingPoints)
}
