package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/example/quench/internal/config"
	"github.com/example/quench/internal/database"
	"github.com/example/quench/internal/rewards"
	"github.com/example/quench/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	rewardsSvc := rewards.NewService(db, cfg.PointsValidityDays, cfg.VoucherValidityDays)

	app := fiber.New(fiber.Config{
		AppName: "Quench Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, rewardsSvc)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ExpirySweepSpec, func() {
		points, vouchers, err := rewardsSvc.SweepExpired()
		if err != nil {
			log.Printf("[Rewards] expiry sweep failed: %v", err)
			return
		}
		if points > 0 || vouchers > 0 {
			log.Printf("[Rewards] expiry sweep: %d point batches, %d vouchers", points, vouchers)
		}
	}); err != nil {
		log.Fatalf("failed to schedule expiry sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
