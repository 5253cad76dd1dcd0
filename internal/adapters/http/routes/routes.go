package routes

import (
	"time"

	"librelend/internal/adapters/http/handlers"
	"librelend/internal/adapters/http/middleware"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/config"
	"librelend/internal/core/services"
	"librelend/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes and wires the service graph.
// It returns the reminder service so main can manage its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.ReminderService {
	// Persistence
	store := repositories.NewStore(db)
	clk := clock.System{}

	// Side-effect services
	notificationService := services.NewNotificationService(store, cfg.Notify.WebhookURL)
	emailService := services.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Core services
	authService := services.NewAuthService(store, cfg)
	userService := services.NewUserService(store, notificationService)
	bookService := services.NewBookService(store)
	fineService := services.NewFineService(store, clk, cfg.Lending.FinePerDay, cfg.Lending.LegacyAccumulate)
	cartService := services.NewCartService(store, clk, cfg.Lending.LoanPeriodDays)
	loanService := services.NewLoanService(store, fineService, clk, notificationService, emailService)
	borrowingService := services.NewBorrowingService(store, fineService, clk, notificationService, emailService)
	reminderService := services.NewReminderService(store, clk, notificationService, emailService)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	bookHandler := handlers.NewBookHandler(bookService)
	loanHandler := handlers.NewLoanHandler(cartService, loanService)
	borrowingHandler := handlers.NewBorrowingHandler(borrowingService)
	fineHandler := handlers.NewFineHandler(fineService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")

	// Auth routes (rate limited)
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Catalog routes (public reads, staff writes)
	books := api.Group("/books")
	books.Get("/", middleware.CatalogCache(30*time.Second), bookHandler.List)
	books.Get("/:id", middleware.CatalogCache(30*time.Second), bookHandler.Get)
	books.Post("/", middleware.AuthMiddleware(cfg), middleware.StaffOnly(), bookHandler.Create)
	books.Put("/:id", middleware.AuthMiddleware(cfg), middleware.StaffOnly(), bookHandler.Update)
	books.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.StaffOnly(), bookHandler.Delete)
	books.Post("/:id/copies", middleware.AuthMiddleware(cfg), middleware.StaffOnly(), bookHandler.AddCopies)

	// Cart routes (borrower)
	cart := api.Group("/cart", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	cart.Get("/", loanHandler.GetCart)
	cart.Post("/items", loanHandler.AddToCart)

	// Loan routes
	loans := api.Group("/loans", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	loans.Get("/", loanHandler.List)
	loans.Get("/:id", loanHandler.Get)
	loans.Patch("/:id/status", loanHandler.UpdateStatus)

	// Borrowing routes
	borrowings := api.Group("/borrowings", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	borrowings.Get("/", borrowingHandler.List)
	borrowings.Get("/:id", borrowingHandler.Get)
	borrowings.Get("/:id/overdue", borrowingHandler.Overdue)
	borrowings.Post("/:id/extend", middleware.StaffOnly(), borrowingHandler.Extend)
	borrowings.Post("/:id/return", middleware.StaffOnly(), borrowingHandler.Return)
	borrowings.Post("/:id/fine/refresh", middleware.StaffOnly(), borrowingHandler.RefreshFine)

	// Fine routes
	fines := api.Group("/fines", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	fines.Get("/", fineHandler.List)
	fines.Get("/:id", fineHandler.Get)
	fines.Post("/:id/settle", middleware.StaffOnly(), fineHandler.Settle)

	// User routes
	users := api.Group("/users", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	users.Get("/me", userHandler.GetProfile)
	users.Put("/me", userHandler.UpdateProfile)
	users.Put("/me/password", userHandler.ChangePassword)
	users.Get("/me/notifications", userHandler.ListNotifications)
	users.Patch("/me/notifications/:id/read", userHandler.MarkNotificationRead)
	users.Get("/", middleware.StaffOnly(), userHandler.List)
	users.Patch("/:id/verify", middleware.StaffOnly(), userHandler.SetVerified)
	users.Patch("/:id/restrict", middleware.StaffOnly(), userHandler.SetRestricted)
	users.Patch("/:id/role", middleware.AdminOnly(), userHandler.SetRole)

	return reminderService
}
