package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// schedulerHandler enqueues reminder and vote commands.
type schedulerHandler struct {
	reminders portssvc.ReminderEnqueuer
}

func newSchedulerHandler(reminders portssvc.ReminderEnqueuer) *schedulerHandler {
	return &schedulerHandler{reminders: reminders}
}

func registerSchedulerRoutes(rg *gin.RouterGroup, reminders portssvc.ReminderEnqueuer) {
	h := newSchedulerHandler(reminders)

	rg.POST("/reminders", h.remind)
	rg.POST("/votes", h.vote)
	rg.POST("/votes/did", h.didVote)
}

func (h *schedulerHandler) remind(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RemindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind remind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewRemindCommand(req.TargetID, req.Time, req.Details)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.reminders.EnqueueReminder(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *schedulerHandler) vote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind vote request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewVoteCommand(req.Time, req.Title, req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.reminders.EnqueueReminder(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *schedulerHandler) didVote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DidVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind didvote request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewDidVoteCommand(req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.reminders.EnqueueReminder(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
