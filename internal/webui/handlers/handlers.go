package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatterdash/internal/chatlog"
	"chatterdash/internal/mentions"
	appmodels "chatterdash/internal/models"
	"chatterdash/internal/webui/models"
)

var (
	engine      *mentions.Engine
	pollRestart func(intervalSeconds int)
)

// SetEngine injects the sync engine used by all handlers
func SetEngine(e *mentions.Engine) {
	engine = e
}

// SetPollRestart injects the callback that restarts the mention-sync
// schedule after the user saves a new polling interval or identity.
func SetPollRestart(fn func(intervalSeconds int)) {
	pollRestart = fn
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
		"status":  "ok",
		"service": "chatterdash",
	}))
}

// GetMentions returns the visible mention view, newest first
func GetMentions(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse(engine.Visible()))
}

// HideMention acknowledges a mention. The local hide always sticks; a
// failed server-side hide comes back as a warning, not an error.
func HideMention(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid mention id"))
		return
	}

	err = engine.Hide(c.Request.Context(), id)
	if err != nil {
		var hideErr *chatlog.HideError
		if errors.As(err, &hideErr) {
			c.JSON(http.StatusOK, models.WarningResponse(gin.H{"id": id}, hideErr.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"id": id}))
}

// AlertPulse reports and clears the pending alert, so polling clients
// play the sound at most once per batch of new mentions.
func AlertPulse(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
		"alert": engine.ConsumeAlertPulse(),
	}))
}

// TriggerSync runs one synchronization cycle on demand
func TriggerSync(c *gin.Context) {
	shouldAlert, err := engine.Sync(c.Request.Context())
	if err != nil {
		var fetchErr *chatlog.FetchError
		if errors.As(err, &fetchErr) {
			c.JSON(http.StatusBadGateway, models.ErrorResponse(fetchErr.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
		"should_alert": shouldAlert,
		"mentions":     engine.Visible(),
	}))
}

// GetUserConfig returns the saved dashboard preferences
func GetUserConfig(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse(engine.Config()))
}

// SaveUserConfig persists new preferences and restarts the poll schedule
// so interval and identity changes take effect immediately.
func SaveUserConfig(c *gin.Context) {
	var cfg appmodels.UserConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid config payload: "+err.Error()))
		return
	}

	if err := engine.SaveConfig(cfg); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}

	saved := engine.Config()
	if pollRestart != nil {
		pollRestart(saved.PollIntervalSeconds)
	}

	c.JSON(http.StatusOK, models.SuccessResponse(saved))
}
