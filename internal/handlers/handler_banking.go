package handlers

import (
	"log/slog"
	"net/http"

	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/middleware"
	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/utils/moneyfmt"
	"github.com/gin-gonic/gin"
)

// bankingHandler enqueues banking commands for the ledger worker. All
// responses are 202: results come back asynchronously over the relay.
type bankingHandler struct {
	banking portssvc.BankingEnqueuer
}

func newBankingHandler(banking portssvc.BankingEnqueuer) *bankingHandler {
	return &bankingHandler{banking: banking}
}

func registerBankingRoutes(rg *gin.RouterGroup, banking portssvc.BankingEnqueuer) {
	h := newBankingHandler(banking)

	b := rg.Group("/banking")
	{
		b.POST("/accounts", h.createAccount)
		b.POST("/balance", h.balance)
		b.POST("/transfer", h.transfer)
		b.POST("/save", h.save)
	}
}

func (h *bankingHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind create account request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewCreateAccountCommand(req.PlayerID, req.Name, req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.banking.EnqueueBanking(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *bankingHandler) balance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind balance request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	cmd, err := dto.NewBalanceQueryCommand(req.PlayerID, req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.banking.EnqueueBanking(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *bankingHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transfer request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	// Ids and amount arrive in their rendered forms; parse failures are
	// rejected here rather than coerced to a guess.
	from, err := moneyfmt.ParseAccountID(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source account id"})
		return
	}
	to, err := moneyfmt.ParseAccountID(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target account id"})
		return
	}
	amount, err := moneyfmt.ParseBalance(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	cmd, err := dto.NewTransferCommand(req.PlayerID, from, to, amount, req.Details, req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.banking.EnqueueBanking(cmd)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *bankingHandler) save(c *gin.Context) {
	h.banking.EnqueueBanking(dto.SaveLedgerCommand{})
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
