package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"DATABASE_URL",
		"REDIS_URL",
		"SUPABASE_URL",
		"SUPABASE_ANON_KEY",
		"SUPABASE_SERVICE_ROLE_KEY",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
}

type appDeps struct {
	sessionRepo  *repository.SessionRepo
	notesService *usecase.NotesService
	provider     *services.SupabaseAuth
	strategy     services.Strategy
}

func setupRouter(deps appDeps) *gin.Engine {
	gin.SetMode(utils.GetEnvAsString("GIN_MODE", gin.ReleaseMode))
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(1 << 20)) // 1 MiB bodies
	router.Use(middleware.SessionMiddleware(deps.sessionRepo, deps.provider))

	router.GET("/health", handler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", func(c *gin.Context) {
			handler.RegistrationHandler(c, deps.provider)
		})
		auth.POST("/login", func(c *gin.Context) {
			handler.LoginHandler(c, deps.strategy, deps.sessionRepo)
		})
		auth.POST("/forgot-password", func(c *gin.Context) {
			handler.ForgotPasswordHandler(c, deps.provider)
		})
		auth.POST("/reset-password", func(c *gin.Context) {
			handler.ResetPasswordHandler(c, deps.provider)
		})
		auth.GET("/me", handler.GetCurrentUserHandler)
		auth.POST("/logout", func(c *gin.Context) {
			handler.LogoutHandler(c, deps.sessionRepo, deps.provider)
		})
	}

	notes := api.Group("/notes")
	notes.Use(middleware.AuthMiddleware())
	{
		notes.GET("", func(c *gin.Context) {
			handler.GetUserNotesHandler(c, deps.notesService)
		})
		notes.GET("/search/:term", func(c *gin.Context) {
			handler.SearchNotesHandler(c, deps.notesService)
		})
		notes.GET("/category/:category", func(c *gin.Context) {
			handler.GetNotesByCategoryHandler(c, deps.notesService)
		})
		notes.GET("/:id", func(c *gin.Context) {
			handler.GetNoteHandler(c, deps.notesService)
		})
		notes.POST("", func(c *gin.Context) {
			handler.CreateNoteHandler(c, deps.notesService)
		})
		notes.PUT("/:id", func(c *gin.Context) {
			handler.UpdateNoteHandler(c, deps.notesService)
		})
		notes.PUT("/:id/pin", func(c *gin.Context) {
			handler.TogglePinHandler(c, deps.notesService)
		})
		notes.DELETE("/:id", func(c *gin.Context) {
			handler.DeleteNoteHandler(c, deps.notesService)
		})
	}

	return router
}

func main() {
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := repository.NewRedisClient(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	provider := services.NewSupabaseAuth(
		os.Getenv("SUPABASE_URL"),
		os.Getenv("SUPABASE_ANON_KEY"),
		os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
	)

	deps := appDeps{
		sessionRepo:  repository.GetSessionRepo(redisClient),
		notesService: &usecase.NotesService{NotesRepo: repository.GetNotesRepo(db)},
		provider:     provider,
		strategy:     services.NewPasswordStrategy(provider),
	}

	router := setupRouter(deps)

	port := utils.GetEnvAsString("PORT", "4000")
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	sig := <-signalChan
	log.Printf("Caught signal %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
