package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/eventick/eventick/config"
	"github.com/eventick/eventick/internal/handlers"
	"github.com/eventick/eventick/internal/logging"
	"github.com/eventick/eventick/internal/middleware"
	"github.com/eventick/eventick/internal/notify"
	"github.com/eventick/eventick/internal/otp"
	"github.com/eventick/eventick/internal/payments"
	"github.com/eventick/eventick/internal/signer"
	"github.com/eventick/eventick/internal/ticketing"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	rdb, err := config.InitRedis()
	if err != nil {
		return fmt.Errorf("failed to connect redis: %v", err)
	}

	log := logging.Get()
	defer logging.Sync()

	baseURL := config.BaseURL()
	sig := signer.New(os.Getenv("JWT_SECRET"))
	mailer := notify.NewMailer(config.LoadSMTPConfig())
	store := ticketing.NewGormStore(db)

	svc := &middleware.Services{
		Issuer:   ticketing.NewIssuer(store, sig, mailer, baseURL, log),
		Verifier: ticketing.NewVerifier(store, sig, log),
		Ledger:   ticketing.NewLedger(store),
		Signer:   sig,
		Payments: payments.NewClient(config.LoadRazorpayConfig()),
		Mailer:   mailer,
		OTP:      otp.NewStore(rdb),
		BaseURL:  baseURL,
	}

	r := gin.Default()

	setupRoutes(r, db, svc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, svc *middleware.Services) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.ServicesMiddleware(svc))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/password-reset/request", handlers.RequestPasswordReset)
		public.POST("/password-reset/confirm", handlers.ResetPassword)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}

		public.POST("/tickets/verify-public", handlers.PublicVerifyTicket)
		public.POST("/payments/webhook", handlers.HandleWebhook)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)
			eventProtected.GET("/:id/tickets", handlers.GetEventTickets)
		}

		paymentProtected := protected.Group("/payments")
		{
			paymentProtected.POST("/orders", handlers.CreatePaymentOrder)
			paymentProtected.POST("/verify", handlers.VerifyPayment)
		}

		ticketProtected := protected.Group("/tickets")
		{
			ticketProtected.POST("", handlers.CreateFreeTicket)
			ticketProtected.GET("", handlers.GetMyTickets)
			ticketProtected.GET("/:id", handlers.GetTicket)
			ticketProtected.GET("/:id/qr", handlers.TicketQR)
			ticketProtected.POST("/:id/share-link", handlers.ShareTicketLink)
			ticketProtected.POST("/verify", handlers.VerifyTicket)
		}
	}
}
