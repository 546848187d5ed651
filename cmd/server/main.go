package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"inspection-backend/internal/archive"
	"inspection-backend/internal/cache"
	"inspection-backend/internal/config"
	"inspection-backend/internal/database"
	"inspection-backend/internal/db"
	"inspection-backend/internal/email"
	"inspection-backend/internal/handlers"
	"inspection-backend/internal/health"
	ihttp "inspection-backend/internal/http"
	"inspection-backend/internal/middleware"
	"inspection-backend/internal/repositories"
	"inspection-backend/internal/seed"
	"inspection-backend/internal/services"
)

func main() {
	portFlag := flag.Int("port", 0, "Override the configured HTTP port")
	flag.Parse()

	cfg := config.Load()
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional - the PDF cache degrades to a miss without it
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable, continuing without PDF cache: %v", err)
	} else {
		log.Println("[Redis] Connected successfully")
	}

	migrationCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.NewMigrator(pool).RunMigrations(migrationCtx); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	sender := email.New(email.Options{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	uploader, err := archive.New(context.Background(), archive.Options{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
	})
	if err != nil {
		log.Fatalf("archive setup failed: %v", err)
	}

	// Repositories
	inspectionFormRepo := repositories.NewInspectionFormRepository(pool)
	incomingQualityRepo := repositories.NewIncomingQualityRepository(pool)
	lineClearanceRepo := repositories.NewLineClearanceRepository(pool)

	// Services
	inspectionFormService := services.NewInspectionFormService(inspectionFormRepo)
	incomingQualityService := services.NewIncomingQualityService(incomingQualityRepo)
	lineClearanceService := services.NewLineClearanceService(lineClearanceRepo)

	if cfg.Seed.Enabled {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
		seed.Run(seedCtx, inspectionFormService, incomingQualityService, lineClearanceService)
		cancelSeed()
	}

	// Handlers
	inspectionFormHandler := handlers.NewInspectionFormHandler(inspectionFormService, sender, uploader)
	incomingQualityHandler := handlers.NewIncomingQualityHandler(incomingQualityService, sender, uploader)
	lineClearanceHandler := handlers.NewLineClearanceHandler(lineClearanceService, sender, uploader)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := ihttp.NewRouter(
		inspectionFormHandler,
		incomingQualityHandler,
		lineClearanceHandler,
		healthHandler,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
