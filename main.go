package main

import (
	"net/http"
	"os"

	"presodeck/config/database"
	"presodeck/internal/deck/repository"
	"presodeck/pkg/logger"
	"presodeck/router"
	"presodeck/socket"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	hub := socket.NewHub(repository.NewDeckRepository(db))

	handler := router.Setup(db, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Sugar.Infof("presodeck backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
