package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oncallrota/rota-api-go/pkg/boxstore"
	"github.com/oncallrota/rota-api-go/pkg/cache"
	"github.com/oncallrota/rota-api-go/pkg/models"
	"github.com/oncallrota/rota-api-go/pkg/rota"
	"github.com/oncallrota/rota-api-go/pkg/rotapdf"
)

// Version is reported by the banner route.
const Version = "1.0.0"

// FromEnv assembles the full handler stack from environment configuration:
// Box adapter, TTL cache, resolver and PDF renderer.
func FromEnv(log zerolog.Logger) (*Handler, error) {
	cfgPath := os.Getenv("BOX_CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "box_config.json"
	}
	cfg, err := boxstore.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	box, err := boxstore.NewClient(cfg, os.Getenv("BOX_FILE_ID"), log)
	if err != nil {
		return nil, err
	}

	ttl := cache.DefaultTTL
	if raw := os.Getenv("ROSTER_CACHE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ROSTER_CACHE_TTL %q: %w", raw, err)
		}
		ttl = parsed
	}

	limit := 0
	if raw := os.Getenv("UPCOMING_LIMIT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UPCOMING_LIMIT %q: %w", raw, err)
		}
		limit = parsed
	}

	return &Handler{
		Cache: cache.New(box, ttl, log),
		Resolver: rota.Resolver{
			Match: rota.ParseMatchMode(os.Getenv("NAME_MATCH")),
			Limit: limit,
		},
		PDF:   rotapdf.New(log, os.Getenv("CHROME_PATH")),
		Log:   log,
		Today: func() models.Date { return models.DateOf(time.Now()) },
	}, nil
}

// Router builds the gin engine with all routes attached.
func Router(h *Handler, slackSigningSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "On-call Rota API (Go Version)",
			"version": Version,
		})
	})

	r.POST("/check-document", h.CheckDocument)
	r.POST("/when-am-i-on-call", h.WhenAmIOnCall)
	r.POST("/slack/events", SlackSigningMiddleware(slackSigningSecret), h.SlackEvents)
	r.GET("/rota-pdf", h.RotaPDF)

	return r
}
