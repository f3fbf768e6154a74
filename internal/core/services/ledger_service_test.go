package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	"github.com/democratia-universalis/duengine/internal/core/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/relay"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockLedgerStore is a mock type for the LedgerStore interface
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) SaveLedger(ctx context.Context, snap domain.LedgerSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockLedgerStore) LoadLedger(ctx context.Context) (*domain.LedgerSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSnapshot), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drain pops every queued notification without blocking.
func drain(q *relay.Queue) []relay.Notification {
	var out []relay.Notification
	for {
		select {
		case n := <-q.Notifications():
			out = append(out, n)
		default:
			return out
		}
	}
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockStore *MockLedgerStore
	out       *relay.Queue
	service   *services.LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockLedgerStore)
	suite.out = relay.NewQueue(64)
	suite.service = services.NewLedgerService(suite.mockStore, suite.out, testLogger(),
		services.WithLedgerClock(func() time.Time {
			return time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)
		}))
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestCreateAccount_AssignsMonotonicIDs() {
	first := suite.service.CreateAccount("Treasury", "1001")
	second := suite.service.CreateAccount("Savings", "1001")

	suite.Equal(int64(0), first.AccountID)
	suite.Equal(int64(1), second.AccountID)
	suite.Equal(int64(0), first.Balance)
	suite.Equal([]string{"1001"}, first.UserIDs)
	suite.Equal("1001", first.OwnerID)
}

func (suite *LedgerServiceTestSuite) TestListAccounts_OnlyAccessible() {
	a := suite.service.CreateAccount("Mine", "1001")
	suite.service.CreateAccount("Theirs", "2002")
	shared := suite.service.CreateAccount("Shared", "2002")
	suite.Require().NoError(suite.service.AddAccountUser("2002", shared.AccountID, "1001"))

	summaries := suite.service.ListAccounts("1001")
	suite.Require().Len(summaries, 2)
	suite.Equal(a.AccountID, summaries[0].AccountID)
	suite.Equal(shared.AccountID, summaries[1].AccountID)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ConservesTotalBalance() {
	from := suite.service.CreateAccount("From", "1001")
	to := suite.service.CreateAccount("To", "2002")
	from.Balance = 1000

	before := from.Balance + to.Balance

	txn, err := suite.service.Transfer("1001", from.AccountID, to.AccountID, 300, "rent")
	suite.Require().NoError(err)
	suite.Equal(before, from.Balance+to.Balance)
	suite.Equal(int64(700), from.Balance)
	suite.Equal(int64(300), to.Balance)
	suite.Equal(int64(300), txn.Amount)
	suite.Equal("rent", txn.Details)
	suite.Equal(int64(0), txn.TransactionID)
}

func (suite *LedgerServiceTestSuite) TestTransfer_FailuresLeaveStateUnchanged() {
	from := suite.service.CreateAccount("From", "1001")
	to := suite.service.CreateAccount("To", "2002")
	from.Balance = 100

	tests := []struct {
		name    string
		actor   string
		fromID  int64
		toID    int64
		amount  int64
		wantErr error
	}{
		{name: "unknown source", actor: "1001", fromID: 99, toID: to.AccountID, amount: 10, wantErr: apperrors.ErrNotFound},
		{name: "unknown target", actor: "1001", fromID: from.AccountID, toID: 99, amount: 10, wantErr: apperrors.ErrNotFound},
		{name: "no access", actor: "3003", fromID: from.AccountID, toID: to.AccountID, amount: 10, wantErr: apperrors.ErrUnauthorized},
		{name: "zero amount", actor: "1001", fromID: from.AccountID, toID: to.AccountID, amount: 0, wantErr: apperrors.ErrInvalidAmount},
		{name: "negative amount", actor: "1001", fromID: from.AccountID, toID: to.AccountID, amount: -5, wantErr: apperrors.ErrInvalidAmount},
		{name: "insufficient balance", actor: "1001", fromID: from.AccountID, toID: to.AccountID, amount: 101, wantErr: apperrors.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			txn, err := suite.service.Transfer(tt.actor, tt.fromID, tt.toID, tt.amount, "")
			suite.Nil(txn)
			suite.ErrorIs(err, tt.wantErr)
			suite.Equal(int64(100), from.Balance)
			suite.Equal(int64(0), to.Balance)

			snap := suite.service.Snapshot()
			suite.Empty(snap.Transactions, "transaction log must stay empty")
		})
	}
}

func (suite *LedgerServiceTestSuite) TestTransfer_SelfTransferIsRecordedNoOp() {
	acc := suite.service.CreateAccount("Solo", "1001")
	acc.Balance = 500

	txn, err := suite.service.Transfer("1001", acc.AccountID, acc.AccountID, 200, "note to self")
	suite.Require().NoError(err)
	suite.Equal(int64(500), acc.Balance)
	suite.Equal(acc.AccountID, txn.FromAccountID)
	suite.Equal(acc.AccountID, txn.ToAccountID)
}

func (suite *LedgerServiceTestSuite) TestSequentialDoubleSpend() {
	from := suite.service.CreateAccount("A", "1001")
	to := suite.service.CreateAccount("B", "2002")
	from.Balance = 100

	// Two transfer commands arrive back-to-back; sequential processing
	// must let exactly one through.
	for i := 0; i < 2; i++ {
		cmd, err := dto.NewTransferCommand("1001", from.AccountID, to.AccountID, 80, "", "court")
		suite.Require().NoError(err)
		suite.service.EnqueueBanking(cmd)
	}
	suite.service.Update(context.Background())

	suite.Equal(int64(20), from.Balance)
	suite.Equal(int64(80), to.Balance)

	snap := suite.service.Snapshot()
	suite.Len(snap.Transactions, 1)

	replies := drain(suite.out)
	suite.Require().Len(replies, 2)
	suite.Contains(replies[0].Message[0], "Transferred")
	suite.Equal([]string{"Insufficient balance."}, replies[1].Message)
}

func (suite *LedgerServiceTestSuite) TestBalanceCommand_RepliesWithSummaries() {
	acc := suite.service.CreateAccount("Treasury", "1001")
	acc.Balance = 1250

	cmd, err := dto.NewBalanceQueryCommand("1001", "")
	suite.Require().NoError(err)
	suite.service.EnqueueBanking(cmd)
	suite.service.Update(context.Background())

	replies := drain(suite.out)
	suite.Require().Len(replies, 1)
	suite.Equal(relay.PlayerRef("1001"), replies[0].To)
	suite.Require().Len(replies[0].Message, 2)
	suite.Equal("[0000 0000] Treasury: 12.50 DU", replies[0].Message[0])
	suite.Equal("Total: 12.50 DU", replies[0].Message[1])
}

func (suite *LedgerServiceTestSuite) TestGetAccount_RequiresAccess() {
	acc := suite.service.CreateAccount("Treasury", "1001")

	got, err := suite.service.GetAccount("1001", acc.AccountID)
	suite.Require().NoError(err)
	suite.Equal(acc, got)

	_, err = suite.service.GetAccount("2002", acc.AccountID)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.GetAccount("1001", 99)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestListOwners() {
	acc := suite.service.CreateAccount("Shared", "1001")
	suite.Require().NoError(suite.service.AddAccountUser("1001", acc.AccountID, "2002"))

	owners, err := suite.service.ListOwners(acc.AccountID)
	suite.Require().NoError(err)
	suite.Equal([]string{"1001", "2002"}, owners)

	_, err = suite.service.ListOwners(99)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestRemoveAccountUser_OwnerIsProtected() {
	acc := suite.service.CreateAccount("Shared", "1001")
	suite.Require().NoError(suite.service.AddAccountUser("1001", acc.AccountID, "2002"))

	err := suite.service.RemoveAccountUser("2002", acc.AccountID, "1001")
	suite.ErrorIs(err, apperrors.ErrUnauthorized, "only the owner may change the user set")

	err = suite.service.RemoveAccountUser("1001", acc.AccountID, "1001")
	suite.ErrorIs(err, apperrors.ErrValidation, "the owner cannot be removed")

	suite.Require().NoError(suite.service.RemoveAccountUser("1001", acc.AccountID, "2002"))
	suite.False(acc.HasUser("2002"))
}

func (suite *LedgerServiceTestSuite) TestSnapshotRestore_RoundTrip() {
	from := suite.service.CreateAccount("From", "1001")
	to := suite.service.CreateAccount("To", "2002")
	from.Balance = 1000
	_, err := suite.service.Transfer("1001", from.AccountID, to.AccountID, 250, "tax")
	suite.Require().NoError(err)

	var captured domain.LedgerSnapshot
	suite.mockStore.On("SaveLedger", mock.Anything, mock.AnythingOfType("domain.LedgerSnapshot")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.LedgerSnapshot)
		}).Return(nil).Once()
	suite.Require().NoError(suite.service.SaveState(context.Background()))

	restoreStore := new(MockLedgerStore)
	restoreStore.On("LoadLedger", mock.Anything).Return(&captured, nil).Once()
	restored := services.NewLedgerService(restoreStore, relay.NewQueue(4), testLogger())
	suite.Require().NoError(restored.LoadState(context.Background()))

	suite.Equal(suite.service.Snapshot().Accounts, restored.Snapshot().Accounts)
	suite.Equal(suite.service.Snapshot().Transactions, restored.Snapshot().Transactions)

	wantAID, wantTID := suite.service.NextIDs()
	gotAID, gotTID := restored.NextIDs()
	suite.Equal(wantAID, gotAID)
	suite.Equal(wantTID, gotTID)

	suite.mockStore.AssertExpectations(suite.T())
	restoreStore.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
