package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pklimczu/FinTrack/db"
	"github.com/pklimczu/FinTrack/internal/auth"
	"github.com/pklimczu/FinTrack/internal/finance/application"
	"github.com/pklimczu/FinTrack/internal/finance/infrastructure"
	"github.com/pklimczu/FinTrack/internal/finance/interfaces"
	"github.com/pklimczu/FinTrack/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errs) > 0 && len(errs[0]) > 0 {
		payload["errors"] = errs[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	authService        auth.Service
	userHandler        *user.Handler
	transactionHandler *interfaces.TransactionHandler
	analyticsHandler   *interfaces.AnalyticsHandler
	budgetHandler      *interfaces.BudgetHandler
	exportHandler      *interfaces.ExportHandler
	dbService          *database.DBService
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	health := s.dbService.Health()
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) RegisterRoutes() {
	protect := s.authService.JWTAccessTokenMiddleware()

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/auth/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	publicRoutes.Handle("GET /api/auth/profile", protect(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))

	// TRANSACTIONS API
	publicRoutes.Handle("GET /api/transactions", protect(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))
	publicRoutes.Handle("POST /api/transactions", protect(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	publicRoutes.Handle("POST /api/transactions/bulk", protect(http.HandlerFunc(s.transactionHandler.CreateTransactionsBulk)))
	publicRoutes.Handle("GET /api/transactions/categories", protect(http.HandlerFunc(s.transactionHandler.GetCategories)))
	publicRoutes.Handle("GET /api/transactions/category-totals", protect(http.HandlerFunc(s.transactionHandler.GetCategoryTotals)))
	publicRoutes.Handle("GET /api/transactions/range", protect(http.HandlerFunc(s.transactionHandler.GetTransactionsInRange)))
	publicRoutes.Handle("GET /api/transactions/date/{date}", protect(http.HandlerFunc(s.transactionHandler.GetTransactionsByDate)))
	publicRoutes.Handle("PUT /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	publicRoutes.Handle("DELETE /api/transactions/bulk", protect(http.HandlerFunc(s.transactionHandler.DeleteTransactionsBulk)))
	publicRoutes.Handle("DELETE /api/transactions/{id}", protect(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))

	// ANALYTICS API
	publicRoutes.Handle("GET /api/analytics/dashboard", protect(http.HandlerFunc(s.analyticsHandler.GetDashboard)))
	publicRoutes.Handle("GET /api/analytics/monthly", protect(http.HandlerFunc(s.analyticsHandler.GetMonthly)))
	publicRoutes.Handle("GET /api/analytics/trends", protect(http.HandlerFunc(s.analyticsHandler.GetTrends)))

	// BUDGET API
	publicRoutes.Handle("GET /api/budget", protect(http.HandlerFunc(s.budgetHandler.GetGoal)))
	publicRoutes.Handle("PUT /api/budget", protect(http.HandlerFunc(s.budgetHandler.SaveGoal)))
	publicRoutes.Handle("GET /api/budget/status", protect(http.HandlerFunc(s.budgetHandler.GetStatus)))

	// IMPORT / EXPORT
	publicRoutes.Handle("GET /api/export", protect(http.HandlerFunc(s.exportHandler.Export)))
	publicRoutes.Handle("POST /api/import", protect(http.HandlerFunc(s.exportHandler.Import)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

// profileProvider adapts the user service to the export handler.
type profileProvider struct {
	userService user.Service
}

func (p *profileProvider) GetProfile(userID string) (application.UserProfile, error) {
	existingUser, err := p.userService.GetUserByID(userID)
	if err != nil {
		return application.UserProfile{}, err
	}
	return application.UserProfile{
		ID:    existingUser.ID,
		Email: existingUser.Email,
		Login: existingUser.Login,
	}, nil
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager()
	authService := auth.NewAuthService(userService, jwtManager)
	authHandler := auth.NewHandler(authService)

	transactionRepo := infrastructure.NewPostgresTransactionRepository(dbService.DB)
	budgetRepo := infrastructure.NewPostgresBudgetGoalRepository(dbService.DB)

	transactionService := application.NewTransactionService(transactionRepo)
	aggregationService := application.NewAggregationService(transactionRepo)
	budgetService := application.NewBudgetService(budgetRepo, aggregationService)
	exportService := application.NewExportService(transactionService, budgetService, transactionRepo)

	server := &Server{
		authHandler: authHandler,
		authService: authService,
		userHandler: userHandler,
		transactionHandler: interfaces.NewTransactionHandler(
			transactionService,
			respondJSON,
			respondError,
		),
		analyticsHandler: interfaces.NewAnalyticsHandler(
			aggregationService,
			respondJSON,
			respondError,
		),
		budgetHandler: interfaces.NewBudgetHandler(
			budgetService,
			respondJSON,
			respondError,
		),
		exportHandler: interfaces.NewExportHandler(
			exportService,
			&profileProvider{userService: userService},
			respondJSON,
			respondError,
		),
		dbService: dbService,
	}
	server.RegisterRoutes()

	handler := loggingMiddleware(server.router)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s...", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
