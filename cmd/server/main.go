package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/MarcBaumholz/habit-toolbox/internal/config"
	"github.com/MarcBaumholz/habit-toolbox/internal/database"
	"github.com/MarcBaumholz/habit-toolbox/internal/handlers"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	cronjobs "github.com/MarcBaumholz/habit-toolbox/internal/scheduler"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to SQLite and run migrations
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	habitRepo := repository.NewHabitRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	proofRepo := repository.NewProofRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	trustRepo := repository.NewTrustRepository(db)
	toolRepo := repository.NewToolRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	habitService := services.NewHabitService(habitRepo, completionRepo, subscriptionRepo, cfg.StreakHorizonDays)
	groupService := services.NewGroupService(groupRepo, proofRepo, messageRepo)
	trustService := services.NewTrustService(trustRepo, userRepo)
	toolService := services.NewToolService(toolRepo)
	summaryService := services.NewSummaryService(completionRepo, habitRepo, trustRepo, messageRepo)
	notificationService := services.NewNotificationService(notificationRepo, habitRepo, completionRepo)

	// --- Handlers ---
	hub := handlers.NewMessageHub()
	userHandler := handlers.NewUserHandler(userService, cfg)
	habitHandler := handlers.NewHabitHandler(habitService)
	groupHandler := handlers.NewGroupHandler(groupService, hub, cfg.UploadDir)
	feedHandler := handlers.NewGroupFeedHandler(groupService, hub, cfg.JWTSecret)
	socialHandler := handlers.NewSocialHandler(trustService)
	toolHandler := handlers.NewToolHandler(toolService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Auth routes
	router.HandleFunc("/auth/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/auth/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateMeHandler).Methods("PATCH")

	// Habit routes. Static paths are registered before the {id} patterns so
	// "public" and "subscriptions" never match as identifiers.
	protectedHabitRoutes := router.PathPrefix("/habits").Subrouter()
	protectedHabitRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedHabitRoutes.HandleFunc("", habitHandler.CreateHabitHandler).Methods("POST")
	protectedHabitRoutes.HandleFunc("", habitHandler.GetHabitsHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("/public", habitHandler.GetPublicHabitsHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("/subscriptions", habitHandler.GetSubscriptionsHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}", habitHandler.GetHabitHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}", habitHandler.UpdateHabitHandler).Methods("PUT")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}/week", habitHandler.GetWeekHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}/toggle/{day}", habitHandler.ToggleDayHandler).Methods("POST")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}/clone", habitHandler.CloneHabitHandler).Methods("POST")
	protectedHabitRoutes.HandleFunc("/{id:[0-9]+}/subscribe", habitHandler.SubscribeHandler).Methods("POST")

	// Group routes
	protectedGroupRoutes := router.PathPrefix("/groups").Subrouter()
	protectedGroupRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGroupRoutes.HandleFunc("", groupHandler.CreateGroupHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("", groupHandler.GetGroupsHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/my", groupHandler.GetMyGroupsHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}", groupHandler.GetGroupHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/join", groupHandler.JoinGroupHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/proofs", groupHandler.CreateProofHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/proofs/upload", groupHandler.UploadProofHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/proofs/week", groupHandler.GetWeekProofsHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/messages", groupHandler.PostMessageHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id:[0-9]+}/messages", groupHandler.GetMessagesHandler).Methods("GET")

	// The websocket feed authenticates via token query parameter, so it sits
	// outside the Bearer middleware.
	router.HandleFunc("/groups/{id:[0-9]+}/ws", feedHandler.ServeFeed).Methods("GET")

	// Trust routes
	protectedTrustRoutes := router.PathPrefix("/trusts").Subrouter()
	protectedTrustRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedTrustRoutes.HandleFunc("", socialHandler.GetTrustedHandler).Methods("GET")
	protectedTrustRoutes.HandleFunc("/{id:[0-9]+}", socialHandler.TrustUserHandler).Methods("POST")
	protectedTrustRoutes.HandleFunc("/{id:[0-9]+}", socialHandler.UntrustUserHandler).Methods("DELETE")

	// Toolbox routes. Browsing the toolbox needs no account; contributing does.
	authOnly := middleware.AuthMiddleware(cfg.JWTSecret)
	router.HandleFunc("/tools", toolHandler.GetToolsHandler).Methods("GET")
	router.Handle("/tools", authOnly(http.HandlerFunc(toolHandler.CreateToolHandler))).Methods("POST")
	router.Handle("/ai/suggest", authOnly(http.HandlerFunc(toolHandler.SuggestToolsHandler))).Methods("POST")
	router.Handle("/learnings", authOnly(http.HandlerFunc(groupHandler.GetLearningsHandler))).Methods("GET")
	router.Handle("/summary/weekly", authOnly(http.HandlerFunc(summaryHandler.GetSummaryHandler))).Methods("GET")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id:[0-9]+}/read", notificationHandler.MarkReadHandler).Methods("POST")

	// Static serving for uploaded proof images
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Health check
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background reminder jobs
	cronjobs.StartReminderCronJobs(notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
