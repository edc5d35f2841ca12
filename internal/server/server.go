package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"benchtrack-backend/internal/cache"
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/skillsync"
)

// MyServer holds the database instance and the skill sync coordinator shared
// by every route handler.
type MyServer struct {
	DB   *database.DBinstanceStruct
	Sync *skillsync.Coordinator
}

// NewServer construct new Server instance
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}

	s := &MyServer{
		DB:   db,
		Sync: skillsync.NewCoordinator(db, cache.NewRedis()),
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
