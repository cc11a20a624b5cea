package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"prospera/internal/config"
	"prospera/internal/handlers"
	"prospera/internal/middleware"
	"prospera/internal/pdf"
	"prospera/internal/repositories"
	"prospera/internal/routes"
	"prospera/internal/services"
	"prospera/migrations"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "prospera/docs"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.JWT.Secret != "" {
		middleware.JWTKey = []byte(cfg.JWT.Secret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	if err := migrations.Apply(db); err != nil {
		log.Fatal("failed to apply migrations: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	lostReasonRepo := repositories.NewLostReasonRepository(db)
	funnelRepo := repositories.NewFunnelRepository(db)
	opportunityRepo := repositories.NewOpportunityRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	userService := services.NewUserService(userRepo, emailService, authService)
	contactService := services.NewContactService(contactRepo)
	funnelService := services.NewFunnelService(funnelRepo)
	ticketService := services.NewTicketService(ticketRepo)

	// pipeline notifiers are best-effort, a nil telegram notifier is skipped
	emailNotifier := services.NewEmailPipelineNotifier(emailService, userRepo)
	tgNotifier, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Printf("telegram notifier disabled: %v", err)
	}

	opportunityService := services.NewOpportunityService(
		opportunityRepo,
		funnelRepo,
		historyRepo,
		lostReasonRepo,
		emailNotifier,
		tgNotifier,
	)

	pdfGen := pdf.NewDocumentGenerator(cfg.Files.RootDir, cfg.Files.FontPath)
	documentService := services.NewDocumentService(
		documentRepo,
		contactRepo,
		opportunityRepo,
		funnelRepo,
		cfg.Files.RootDir,
		pdfGen,
	)
	reportService := services.NewReportService(opportunityRepo, funnelRepo, opportunityRepo)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	contactHandler := handlers.NewContactHandler(contactService)
	funnelHandler := handlers.NewFunnelHandler(funnelService, opportunityService)
	opportunityHandler := handlers.NewOpportunityHandler(opportunityService)
	lostReasonHandler := handlers.NewLostReasonHandler(lostReasonRepo)
	documentHandler := handlers.NewDocumentHandler(documentService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	reportsHandler := handlers.NewReportsHandler(reportService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// JWT/RBAC live inside SetupRoutes
	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		contactHandler,
		funnelHandler,
		opportunityHandler,
		lostReasonHandler,
		documentHandler,
		ticketHandler,
		reportsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
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
