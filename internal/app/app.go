package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"markethub_backend/database"
	"markethub_backend/internal/auth"
	"markethub_backend/internal/config"
	"markethub_backend/internal/email"
	"markethub_backend/internal/handlers"
	"markethub_backend/internal/logger"
	"markethub_backend/internal/middleware"
	"markethub_backend/internal/models"
	"markethub_backend/internal/repositories"
	"markethub_backend/internal/routes"
	"markethub_backend/internal/services"
	"markethub_backend/internal/storage"
	"markethub_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	router := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	serviceContainer := initializeServices(cfg, gormDB, storageInstance)
	appHandlers := initializeHandlers(serviceContainer)

	router := initializeGinRouter(cfg)
	routes.Setup(router, appHandlers)

	return router
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, storageInstance storage.Storage) *services.ServiceContainer {
	var emailProvider email.Provider
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, outgoing email is disabled")
		emailProvider = &MockEmailProvider{}
	} else {
		emailProvider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			Timeout:   30 * time.Second,
		}, email.NewTemplateManager())
	}

	userRepo := repositories.NewUserRepository(gormDB)
	resetRepo := repositories.NewPasswordResetRepository(gormDB)
	jobRepo := repositories.NewJobRepository(gormDB)
	propertyRepo := repositories.NewPropertyRepository(gormDB)
	applicationRepo := repositories.NewApplicationRepository(gormDB)
	inquiryRepo := repositories.NewInquiryRepository(gormDB)

	notificationService := services.NewNotificationService(emailProvider)
	verificationService := services.NewVerificationService(userRepo)
	authService := services.NewAuthService(userRepo, storageInstance, notificationService)
	passwordResetService := services.NewPasswordResetService(userRepo, resetRepo, notificationService)
	jobService := services.NewJobService(jobRepo, verificationService, storageInstance, notificationService)
	propertyService := services.NewPropertyService(propertyRepo, verificationService, storageInstance, notificationService)
	moderationService := services.NewModerationService(jobRepo, propertyRepo, notificationService)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, verificationService, storageInstance, notificationService)
	inquiryService := services.NewInquiryService(inquiryRepo, propertyRepo, verificationService, notificationService)

	return &services.ServiceContainer{
		AuthService:          authService,
		PasswordResetService: passwordResetService,
		VerificationService:  verificationService,
		JobService:           jobService,
		PropertyService:      propertyService,
		ModerationService:    moderationService,
		ApplicationService:   applicationService,
		InquiryService:       inquiryService,
		NotificationService:  notificationService,
	}
}

func initializeHandlers(sc *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		Auth:     handlers.NewAuthHandler(baseHandler, sc.AuthService, sc.PasswordResetService),
		Job:      handlers.NewJobHandler(baseHandler, sc.JobService, sc.ApplicationService, sc.ModerationService),
		Property: handlers.NewPropertyHandler(baseHandler, sc.PropertyService, sc.InquiryService, sc.ModerationService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := strings.ToLower(cfg.FirstAdminEmail)
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var existing models.User
	result := db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:         adminEmail,
		PasswordHash:  hash,
		FirstName:     "Platform",
		Surname:       "Admin",
		EmailVerified: true,
		IsAdmin:       true,
	}

	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return nil
}
