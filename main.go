package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskForestAPI/handlers"
	"taskForestAPI/internal/workers"
	"taskForestAPI/middleware"
	"taskForestAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	taskService         *services.TaskService
	achievementService  *services.AchievementService
	notificationService *services.NotificationService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("SESSION_SECRET") == "" {
		log.Fatal("SESSION_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	userService = services.NewUserService(dbPool)
	taskService = services.NewTaskService(dbPool)
	achievementService = services.NewAchievementService(dbPool)
	notificationService = services.NewNotificationService(dbPool)

	// The achievement catalog is reference data. Seeding is guarded by
	// "catalog currently empty", so restarts never duplicate it.
	if err := achievementService.SeedCatalog(ctx); err != nil {
		log.Fatal("Failed to seed achievement catalog:", err)
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	workers.StartOverdueWorker(dbPool)

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "task-forest-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Session (demo identity): get-or-create by username, token back.
	api.HandleFunc("/session", userHandler.CreateSession).Methods("POST")

	// Users
	api.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{id}/stats", userHandler.GetUserStats).Methods("GET")

	// The leaderboard works anonymously; a bearer token additionally
	// marks the caller's own position in the response.
	api.Handle("/leaderboard",
		middleware.OptionalSessionAuthMiddleware(http.HandlerFunc(userHandler.GetLeaderboard))).Methods("GET")

	// Tasks
	api.HandleFunc("/users/{userId}/tasks", taskHandler.GetUserTasks).Methods("GET")
	api.HandleFunc("/users/{userId}/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")
	api.HandleFunc("/tasks/{id}/complete", taskHandler.CompleteTask).Methods("POST")

	// Achievements
	api.HandleFunc("/achievements", achievementHandler.GetCatalog).Methods("GET")
	api.HandleFunc("/users/{userId}/achievements", achievementHandler.GetUserAchievements).Methods("GET")
	api.HandleFunc("/users/{userId}/achievements/status", achievementHandler.GetUserAchievementsWithStatus).Methods("GET")

	// Notifications
	api.HandleFunc("/users/{userId}/notifications", notificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/users/{userId}/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	api.HandleFunc("/users/{userId}/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")

	// Routes that resolve the actor from the session token.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.SessionAuthMiddleware)
	protected.HandleFunc("/me", userHandler.GetMe).Methods("GET")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
