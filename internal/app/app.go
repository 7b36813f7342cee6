package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"campuscore/internal/authz"
	"campuscore/internal/config"
	"campuscore/internal/handlers"
	"campuscore/internal/middleware"
	"campuscore/internal/pdf"
	"campuscore/internal/repositories"
	"campuscore/internal/routes"
	"campuscore/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "campuscore/docs"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.JWTSecret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	pendingRepo := repositories.NewPendingLoginRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	var alerts *services.TelegramService
	if cfg.Telegram.Enabled {
		alerts = services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
	}

	otpService := services.NewOTPService(userRepo, otpRepo, emailService, cfg.OTPTTL())
	loginService := services.NewLoginService(userRepo, authService, otpService, pendingRepo, alerts)
	userService := services.NewUserService(userRepo, emailService, authService, alerts)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)

	letterGen := pdf.NewLetterGenerator(cfg.Files.RootDir, "CampusCore School")
	profileService := services.NewProfileService(profileRepo, userRepo, letterGen)
	reportService := services.NewReportService(userRepo, profileRepo)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(loginService, userService, resetService)
	otpHandler := handlers.NewOTPHandler(otpService, userService)
	userHandler := handlers.NewUserHandler(userService, cfg.Files.RootDir)
	studentHandler := handlers.NewProfileHandler(profileService, authz.RoleStudent, cfg.Files.RootDir)
	teacherHandler := handlers.NewProfileHandler(profileService, authz.RoleTeachingStaff, cfg.Files.RootDir)
	nonTeachingHandler := handlers.NewProfileHandler(profileService, authz.RoleNonTeachingStaff, cfg.Files.RootDir)
	reportHandler := handlers.NewReportHandler(reportService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// generated letters and uploaded images
	router.Static("/files", cfg.Files.RootDir)

	// Routes (JWT/RBAC inside SetupRoutes)
	routes.SetupRoutes(
		router,
		authHandler,
		otpHandler,
		userHandler,
		studentHandler,
		teacherHandler,
		nonTeachingHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
