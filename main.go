package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"taskboard-service/broadcast"
	"taskboard-service/eventbus"
	"taskboard-service/handlers"
	"taskboard-service/logging"
	"taskboard-service/middleware"
	"taskboard-service/repositories"
	"taskboard-service/services"
	"taskboard-service/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Taskboard Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "taskboard_db"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	taskRepo := repositories.NewTaskRepo(db)
	userRepo := repositories.NewUserRepo(db)

	// Single-node runs use the in-process bus; setting NATS_URL moves
	// the event stream onto NATS so every instance's viewers see every
	// mutation.
	var bus eventbus.PubSub
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsBus, err := eventbus.ConnectNATS(natsURL)
		if err != nil {
			logging.Logger.Fatalf("Event ID: NATS_CONNECTION_FAILED, Description: %v", err)
		}
		defer natsBus.Close()
		bus = natsBus
	} else {
		bus = eventbus.NewBus()
	}

	hub := broadcast.NewHub()
	stopHub, err := hub.Start(bus)
	if err != nil {
		logging.Logger.Fatalf("Event ID: HUB_START_FAILED, Description: %v", err)
	}
	defer stopHub()

	storeBreaker := services.NewStoreBreaker("taskboard-store")
	taskService := services.NewTaskService(taskRepo, userRepo, bus, storeBreaker)
	userService := services.NewUserService(userRepo, storeBreaker)
	reportService := services.NewReportService(taskRepo, storeBreaker)

	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	reportHandler := handlers.NewReportHandler(reportService)
	wsHandler := handlers.NewWSHandler(hub)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}
	auth := middleware.Auth(middleware.NewJWTResolver(utils.NewJWTService([]byte(jwtSecret))))

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth)
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}/status", taskHandler.SetTaskStatus).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/users/employees", userHandler.GetEmployees).Methods(http.MethodGet)
	api.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/reports/tasks", reportHandler.ExportTasks).Methods(http.MethodGet)
	api.HandleFunc("/ws", wsHandler.Serve).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
