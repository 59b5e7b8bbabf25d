package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"habit-quest-system/handlers"
	"habit-quest-system/middleware"
	"habit-quest-system/models"
	"habit-quest-system/services"
	"habit-quest-system/utils"
	"habit-quest-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024, // 4MB — icon uploads are the largest payload
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns Postgres unique violations into
	// gorm.ErrDuplicatedKey, which the store maps onto "already completed".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Habit{},
		&models.Completion{},
		&models.UserProgress{},
		&models.UserAchievement{},
		&models.XPEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Icon storage is cosmetic: a missing R2 config disables uploads instead
	// of killing the service.
	iconUploads := true
	if err := utils.InitR2(); err != nil {
		iconUploads = false
		log.Printf("⚠️  Icon storage disabled: %v", err)
	}

	store := services.NewGormStore(db)
	progressionService := services.NewProgressionService(store)
	coachClient := services.NewCoachClient(
		os.Getenv("COACH_SERVICE_URL"),
		os.Getenv("COACH_SERVICE_TOKEN"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditWorker := workers.NewProgressAuditWorker(db, 10*time.Minute)
	auditWorker.Start(ctx)

	store.StartStreakScheduler()

	handlers.SetupHabitRoutes(app, progressionService, store)
	handlers.SetupProgressionRoutes(app, progressionService, coachClient)

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":5300"
	}

	go func() {
		if err := app.Listen(listenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost%s", listenAddr)
	log.Println("✅ Progress Audit Worker running")
	log.Println("✅ Streak snapshot scheduler running (hourly)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)
	if !iconUploads {
		log.Println("ℹ️  Habit icon uploads unavailable (no R2 configuration)")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
}
