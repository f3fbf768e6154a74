package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// roleHandler enqueues role grant/revoke commands for the role worker.
type roleHandler struct {
	roles portssvc.RoleEnqueuer
}

func newRoleHandler(roles portssvc.RoleEnqueuer) *roleHandler {
	return &roleHandler{roles: roles}
}

func registerRoleRoutes(rg *gin.RouterGroup, roles portssvc.RoleEnqueuer) {
	h := newRoleHandler(roles)

	r := rg.Group("/roles")
	{
		r.POST("/grant", h.grant)
		r.POST("/revoke", h.revoke)
	}
}

func (h *roleHandler) grant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind grant role request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewGrantRoleCommand(req.PlayerID, req.RoleName, req.End, req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.roles.EnqueueRole(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *roleHandler) revoke(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RevokeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind revoke role request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewRevokeRoleCommand(req.PlayerID, req.RoleName, req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.roles.EnqueueRole(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
