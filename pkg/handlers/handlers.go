// Package handlers wires the roster engine to the HTTP surface. Every
// lookup endpoint speaks two dialects: JSON bodies for API callers and
// form-encoded `text` fields for Slack slash commands, detected by content
// type exactly like the service it replaces.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oncallrota/rota-api-go/pkg/cache"
	"github.com/oncallrota/rota-api-go/pkg/datequery"
	"github.com/oncallrota/rota-api-go/pkg/format"
	"github.com/oncallrota/rota-api-go/pkg/models"
	"github.com/oncallrota/rota-api-go/pkg/rota"
	"github.com/oncallrota/rota-api-go/pkg/rotapdf"
)

const formURLEncoded = "application/x-www-form-urlencoded"

// fetchUnavailableMessage is deliberately generic: upstream fetch
// diagnostics stay in the logs, never in responses.
const fetchUnavailableMessage = "The on-call roster is currently unavailable."

// Handler contains dependencies for the route handlers.
type Handler struct {
	Cache    *cache.RosterCache
	Resolver rota.Resolver
	PDF      *rotapdf.Renderer
	Log      zerolog.Logger
	// Today supplies the relative base for date phrases; injected so tests
	// control time.
	Today func() models.Date
}

// CheckDocument answers "who is on call during week/day X?". 400 on an
// unparsable phrase (before any roster fetch), 404 on no match, 500 when
// the roster is unavailable.
func (h *Handler) CheckDocument(c *gin.Context) {
	query, slackMode := h.textInput(c, "week_query")

	rng, err := datequery.Normalize(query, h.Today())
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_query", format.InvalidQueryMessage(query), slackMode)
		return
	}

	roster, err := h.Cache.Get(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Str("query", query).Msg("roster unavailable for date lookup")
		h.respondError(c, http.StatusInternalServerError, "fetch_failed", fetchUnavailableMessage, slackMode)
		return
	}

	row, err := h.Resolver.FindByDate(roster, rng.Start)
	if err != nil {
		h.respondError(c, http.StatusNotFound, "not_found", format.DateNotFoundMessage(), slackMode)
		return
	}

	if slackMode {
		c.JSON(http.StatusOK, gin.H{"text": format.ChatDateMatch(row)})
		return
	}
	c.JSON(http.StatusOK, format.DateLookupResult(row))
}

// WhenAmIOnCall answers "when is person Y next on call?". 400 on a missing
// name, 404 when no upcoming slot exists.
func (h *Handler) WhenAmIOnCall(c *gin.Context) {
	name, slackMode := h.textInput(c, "name")
	if strings.TrimSpace(name) == "" {
		h.respondError(c, http.StatusBadRequest, "invalid_query", format.MissingNameMessage(), slackMode)
		return
	}

	roster, err := h.Cache.Get(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Str("name", name).Msg("roster unavailable for person lookup")
		h.respondError(c, http.StatusInternalServerError, "fetch_failed", fetchUnavailableMessage, slackMode)
		return
	}

	upcoming := h.Resolver.FindUpcomingForPerson(roster, name, h.Today())
	if len(upcoming) == 0 {
		if slackMode {
			c.JSON(http.StatusNotFound, gin.H{"text": format.PersonNotFoundMessage(name)})
			return
		}
		c.JSON(http.StatusNotFound, format.PersonLookupResult(name, nil))
		return
	}

	if slackMode {
		c.JSON(http.StatusOK, gin.H{"text": format.ChatUpcoming(name, upcoming)})
		return
	}
	c.JSON(http.StatusOK, format.PersonLookupResult(name, upcoming))
}

// RotaPDF serves the current roster as a PDF, rendered once per roster
// fetch.
func (h *Handler) RotaPDF(c *gin.Context) {
	entry, err := h.Cache.GetEntry(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("roster unavailable for pdf")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchUnavailableMessage})
		return
	}

	pdf, err := h.PDF.Render(c.Request.Context(), entry)
	if err != nil {
		h.Log.Error().Err(err).Msg("rota pdf render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not render the rota PDF"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// textInput pulls the query text from either dialect: the form field `text`
// in slack mode, or the named JSON field otherwise.
func (h *Handler) textInput(c *gin.Context, jsonField string) (string, bool) {
	if c.ContentType() == formURLEncoded {
		return c.PostForm("text"), true
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", false
	}
	value, _ := body[jsonField].(string)
	return value, false
}

// respondError renders an error in the caller's dialect. API bodies carry a
// machine-readable kind alongside the message.
func (h *Handler) respondError(c *gin.Context, status int, kind, message string, slackMode bool) {
	if slackMode {
		c.JSON(status, gin.H{"text": message})
		return
	}
	c.JSON(status, gin.H{"error": message, "kind": kind})
}
