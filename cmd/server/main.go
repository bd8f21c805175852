package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oncallrota/rota-api-go/pkg/handlers"
	"github.com/oncallrota/rota-api-go/pkg/logging"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logging.New()

	h, err := handlers.FromEnv(log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not assemble service")
	}

	r := handlers.Router(h, os.Getenv("SLACK_SIGNING_SECRET"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Info().Str("port", port).Msg("server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("could not run server")
	}
}
