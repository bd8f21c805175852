package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oncallrota/rota-api-go/pkg/handlers"
	"github.com/oncallrota/rota-api-go/pkg/logging"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	gin.SetMode(gin.ReleaseMode)
	log := logging.New()

	h, err := handlers.FromEnv(log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not assemble service")
	}

	r = handlers.Router(h, os.Getenv("SLACK_SIGNING_SECRET"))
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
