package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"spacrm-backend/cache"
	"spacrm-backend/config"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/routes"
	"spacrm-backend/services"
	"spacrm-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	zl, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "spacrm-backend")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	var (
		otpStore cache.Store
		sweeper  services.Sweeper
	)
	switch cfg.OTPBackend {
	case "redis":
		rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store := cache.NewRedisStore(rdb, "spacrm:")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(ctx); err != nil {
			zl.Fatal("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		otpStore = store
	default:
		mem := cache.NewMemoryStore(time.Now)
		otpStore, sweeper = mem, mem
	}

	var sms services.SMSSender
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		sms = services.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, cfg.Twilio.CountryCode, zl)
	} else {
		zl.Warn("twilio credentials missing, SMS will only be logged")
		sms = services.NewLogSender(zl)
	}

	customers := services.NewCustomerService(db, zl)
	otp := services.NewOTPService(otpStore, services.SystemClock)
	auth := services.NewAuthService(db, customers, services.SystemClock, zl)
	reminders := services.NewReminderService(db, sms, services.SystemClock, zl)
	objects := storage.NewClient(cfg.Storage.URL, cfg.Storage.Key, cfg.Storage.Bucket, zl)

	svc := routes.Services{
		Auth:            auth,
		Customers:       customers,
		Linking:         services.NewLinkingService(db, otp, sms, zl),
		Staff:           services.NewStaffService(db, zl),
		Schedules:       services.NewScheduleService(db, zl),
		TimeOff:         services.NewTimeOffService(db, services.SystemClock, zl),
		DefaultSchedule: services.NewDefaultScheduleService(db),
		Catalog:         services.NewCatalogService(db, zl),
		Media:           services.NewMediaService(db, objects, services.SystemClock, zl),
		Reminders:       reminders,
		Dashboard:       services.NewDashboardService(db, services.SystemClock),
		Export:          services.NewExportService(customers),
	}

	if err := auth.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zl.Fatal("admin bootstrap failed", zap.Error(err))
	}

	scheduler := services.NewScheduler(reminders, sweeper, zl)
	if err := scheduler.Register(cfg.ReminderCron, cfg.CleanupCron); err != nil {
		zl.Fatal("invalid cron spec", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(svc, cfg.CORSOrigins, zl)
	printRoutes(r)
	zl.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
