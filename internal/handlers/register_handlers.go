package handlers

import (
	"net/http"

	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// Services bundles the enqueue facades the ingress needs.
type Services struct {
	Banking   portssvc.BankingEnqueuer
	Reminders portssvc.ReminderEnqueuer
	Roles     portssvc.RoleEnqueuer
}

// Register wires every ingress route onto the router group.
func Register(rg *gin.RouterGroup, svcs Services) {
	registerBankingRoutes(rg, svcs.Banking)
	registerSchedulerRoutes(rg, svcs.Reminders)
	registerRoleRoutes(rg, svcs.Roles)
}

// Healthz reports process liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
