package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/relay"
	"github.com/democratia-universalis/duengine/internal/utils/moneyfmt"
)

// LedgerService owns the account and transaction collections. All
// mutations flow through its command queue and are applied sequentially
// by its worker, which is what makes a transfer atomic with respect to
// every other command: two transfers touching the same account are never
// evaluated against the same balance. The mutex only guards the secondary
// access path taken by the snapshot timer.
type LedgerService struct {
	mu                sync.Mutex
	accounts          map[int64]*domain.Account
	transactions      map[int64]*domain.Transaction
	nextAccountID     int64
	nextTransactionID int64

	store    portsrepo.LedgerStore
	out      *relay.Queue
	commands chan dto.BankingCommand
	logger   *slog.Logger
	now      func() time.Time
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithLedgerClock overrides the service clock.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) {
		s.now = now
	}
}

// WithLedgerQueueCapacity bounds the inbound command queue.
func WithLedgerQueueCapacity(n int) LedgerOption {
	return func(s *LedgerService) {
		s.commands = make(chan dto.BankingCommand, n)
	}
}

// NewLedgerService creates an empty ledger.
func NewLedgerService(store portsrepo.LedgerStore, out *relay.Queue, logger *slog.Logger, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		accounts:     make(map[int64]*domain.Account),
		transactions: make(map[int64]*domain.Transaction),
		store:        store,
		out:          out,
		commands:     make(chan dto.BankingCommand, 256),
		logger:       logger.With(slog.String("component", "banking")),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure LedgerService satisfies the ports it is wired through.
var _ portssvc.BankingEnqueuer = (*LedgerService)(nil)
var _ portssvc.StateSaver = (*LedgerService)(nil)

// Name identifies the ledger worker in logs.
func (s *LedgerService) Name() string {
	return "banking"
}

// EnqueueBanking puts a command on the inbound queue. It blocks when the
// queue is full.
func (s *LedgerService) EnqueueBanking(cmd dto.BankingCommand) {
	s.commands <- cmd
}

// Update drains the inbound queue, applying each command in arrival
// order. It is called once per worker wake.
func (s *LedgerService) Update(ctx context.Context) {
	for {
		select {
		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)
		default:
			return
		}
	}
}

func (s *LedgerService) handleCommand(ctx context.Context, cmd dto.BankingCommand) {
	switch c := cmd.(type) {
	case dto.SaveLedgerCommand:
		if err := s.SaveState(ctx); err != nil {
			s.logger.Error("Failed to save banking state", slog.String("error", err.Error()))
		}
	case dto.CreateAccountCommand:
		acc := s.CreateAccount(c.Name, c.PlayerID)
		s.reply(c.Channel, c.PlayerID,
			fmt.Sprintf("Opened account [%s] %s.", moneyfmt.FormatAccountID(acc.AccountID), acc.Name))
	case dto.BalanceQueryCommand:
		s.reply(c.Channel, c.PlayerID, s.balanceLines(c.PlayerID)...)
	case dto.TransferCommand:
		txn, err := s.Transfer(c.PlayerID, c.FromAccountID, c.ToAccountID, c.Amount, c.Details)
		if err != nil {
			s.reply(c.Channel, c.PlayerID, transferFailureMessage(err, c.FromAccountID, c.ToAccountID))
			return
		}
		s.reply(c.Channel, c.PlayerID,
			fmt.Sprintf("Transferred %s from [%s] to [%s].",
				moneyfmt.FormatBalance(txn.Amount),
				moneyfmt.FormatAccountID(txn.FromAccountID),
				moneyfmt.FormatAccountID(txn.ToAccountID)))
	default:
		s.logger.Error("Unknown banking command", slog.String("type", fmt.Sprintf("%T", cmd)))
	}
}

// CreateAccount opens a new account owned by ownerID with a zero balance.
func (s *LedgerService) CreateAccount(name, ownerID string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := domain.NewAccount(s.nextAccountID, name, ownerID)
	s.nextAccountID++
	s.accounts[acc.AccountID] = acc

	s.logger.Info("New banking account",
		slog.Int64("account_id", acc.AccountID),
		slog.String("name", acc.Name),
		slog.String("owner_id", ownerID),
	)
	return acc
}

// ListAccounts returns a summary for every account the player can
// operate, ordered by account id so the order is stable within a run.
func (s *LedgerService) ListAccounts(playerID string) []domain.AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.AccountSummary
	for _, acc := range s.accounts {
		if acc.HasUser(playerID) {
			out = append(out, domain.AccountSummary{
				AccountID: acc.AccountID,
				Name:      acc.Name,
				Balance:   acc.Balance,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// GetAccount returns the account if and only if the actor can operate it.
func (s *LedgerService) GetAccount(actorID string, accountID int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", accountID, apperrors.ErrNotFound)
	}
	if !acc.HasUser(actorID) {
		return nil, fmt.Errorf("account %d: %w", accountID, apperrors.ErrUnauthorized)
	}
	return acc, nil
}

// ListOwners returns the player ids authorized on an account.
func (s *LedgerService) ListOwners(accountID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", accountID, apperrors.ErrNotFound)
	}
	users := make([]string, len(acc.UserIDs))
	copy(users, acc.UserIDs)
	return users, nil
}

// AddAccountUser authorizes another player on an account. Only the owner
// may change the user set.
func (s *LedgerService) AddAccountUser(actorID string, accountID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %d: %w", accountID, apperrors.ErrNotFound)
	}
	if acc.OwnerID != actorID {
		return fmt.Errorf("account %d: %w", accountID, apperrors.ErrUnauthorized)
	}
	acc.AddUser(userID)
	return nil
}

// RemoveAccountUser revokes a player's access to an account. Only the
// owner may change the user set, and the owner cannot be removed.
func (s *LedgerService) RemoveAccountUser(actorID string, accountID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %d: %w", accountID, apperrors.ErrNotFound)
	}
	if acc.OwnerID != actorID {
		return fmt.Errorf("account %d: %w", accountID, apperrors.ErrUnauthorized)
	}
	if !acc.RemoveUser(userID) {
		return fmt.Errorf("user %s on account %d: %w", userID, accountID, apperrors.ErrValidation)
	}
	return nil
}

// Transfer debits the source account, credits the destination and appends
// a transaction, atomically with respect to every other ledger command.
// A self-transfer is permitted: it records a transaction and leaves the
// balance unchanged. On any failure both balances and the transaction log
// are untouched.
func (s *LedgerService) Transfer(actorID string, fromID, toID, amount int64, details string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[fromID]
	if !ok {
		return nil, fmt.Errorf("source account %d: %w", fromID, apperrors.ErrNotFound)
	}
	to, ok := s.accounts[toID]
	if !ok {
		return nil, fmt.Errorf("target account %d: %w", toID, apperrors.ErrNotFound)
	}
	if !from.HasUser(actorID) {
		return nil, fmt.Errorf("source account %d: %w", fromID, apperrors.ErrUnauthorized)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount %d: %w", amount, apperrors.ErrInvalidAmount)
	}
	if from.Balance < amount {
		return nil, fmt.Errorf("source account %d: %w", fromID, apperrors.ErrInsufficientBalance)
	}

	from.Balance -= amount
	to.Balance += amount

	txn := &domain.Transaction{
		TransactionID: s.nextTransactionID,
		Date:          s.now(),
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Details:       details,
	}
	s.transactions[txn.TransactionID] = txn
	s.nextTransactionID++

	s.logger.Info("Transfer completed",
		slog.Int64("transaction_id", txn.TransactionID),
		slog.Int64("from", fromID),
		slog.Int64("to", toID),
		slog.Int64("amount", amount),
	)
	return txn, nil
}

// Snapshot deep-copies the full ledger state.
func (s *LedgerService) Snapshot() domain.LedgerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.LedgerSnapshot{
		Accounts:     make(map[int64]*domain.Account, len(s.accounts)),
		Transactions: make(map[int64]*domain.Transaction, len(s.transactions)),
	}
	for id, acc := range s.accounts {
		cp := *acc
		cp.UserIDs = append([]string(nil), acc.UserIDs...)
		snap.Accounts[id] = &cp
	}
	for id, txn := range s.transactions {
		cp := *txn
		snap.Transactions[id] = &cp
	}
	return snap
}

// SaveState writes the full snapshot to durable storage.
func (s *LedgerService) SaveState(ctx context.Context) error {
	s.logger.Info("Saving banking state")
	return s.store.SaveLedger(ctx, s.Snapshot())
}

// LoadState restores the ledger from durable storage, recomputing the
// next-id counters as max(existing ids)+1 so ids never collide after a
// restart.
func (s *LedgerService) LoadState(ctx context.Context) error {
	s.logger.Info("Loading banking state")
	snap, err := s.store.LoadLedger(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = snap.Accounts
	if s.accounts == nil {
		s.accounts = make(map[int64]*domain.Account)
	}
	s.transactions = snap.Transactions
	if s.transactions == nil {
		s.transactions = make(map[int64]*domain.Transaction)
	}

	s.nextAccountID = 0
	for id := range s.accounts {
		if id >= s.nextAccountID {
			s.nextAccountID = id + 1
		}
	}
	s.nextTransactionID = 0
	for id := range s.transactions {
		if id >= s.nextTransactionID {
			s.nextTransactionID = id + 1
		}
	}
	return nil
}

// NextIDs exposes the id counters for restore verification.
func (s *LedgerService) NextIDs() (accountID, transactionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextAccountID, s.nextTransactionID
}

func (s *LedgerService) balanceLines(playerID string) []string {
	summaries := s.ListAccounts(playerID)
	if len(summaries) == 0 {
		return []string{"You have no bank accounts."}
	}

	lines := make([]string, 0, len(summaries)+1)
	var total int64
	for _, sum := range summaries {
		total += sum.Balance
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			moneyfmt.FormatAccountID(sum.AccountID), sum.Name, moneyfmt.FormatBalance(sum.Balance)))
	}
	lines = append(lines, fmt.Sprintf("Total: %s", moneyfmt.FormatBalance(total)))
	return lines
}

func (s *LedgerService) reply(channel, playerID string, lines ...string) {
	s.out.Push(relay.NewNotification(replyAddress(channel, playerID), lines...))
}

// replyAddress routes a command reply: to the originating channel when
// one was given, otherwise directly to the player.
func replyAddress(channel, playerID string) relay.Address {
	if channel != "" {
		return relay.Recipient(channel)
	}
	return relay.PlayerRef(playerID)
}

func transferFailureMessage(err error, fromID, toID int64) string {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		return "Insufficient balance."
	case errors.Is(err, apperrors.ErrInvalidAmount):
		return "Invalid transfer amount."
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fmt.Sprintf("You have no access to account [%s].", moneyfmt.FormatAccountID(fromID))
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Sprintf("Failed to find account [%s] or [%s].",
			moneyfmt.FormatAccountID(fromID), moneyfmt.FormatAccountID(toID))
	default:
		return "Transfer failed."
	}
}
