package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate checks command structs at construction so that consumers never
// see a half-formed command.
var validate = validator.New()

// BankingCommand is the tagged union of commands consumed by the ledger
// worker. Each kind is an explicit struct; handlers dispatch with a type
// switch.
type BankingCommand interface {
	isBankingCommand()
}

// SaveLedgerCommand asks the ledger to synchronously snapshot its state.
type SaveLedgerCommand struct{}

// CreateAccountCommand opens a new account owned by PlayerID.
type CreateAccountCommand struct {
	PlayerID string `validate:"required"`
	Name     string `validate:"required"`
	Channel  string
}

// BalanceQueryCommand asks for every account PlayerID can operate.
type BalanceQueryCommand struct {
	PlayerID string `validate:"required"`
	Channel  string
}

// TransferCommand moves Amount minor units between two accounts on behalf
// of PlayerID. Amount validity and balance checks are the ledger's job;
// construction only guards the required fields.
type TransferCommand struct {
	PlayerID      string `validate:"required"`
	FromAccountID int64  `validate:"gte=0"`
	ToAccountID   int64  `validate:"gte=0"`
	Amount        int64
	Details       string
	Channel       string
}

func (SaveLedgerCommand) isBankingCommand()    {}
func (CreateAccountCommand) isBankingCommand() {}
func (BalanceQueryCommand) isBankingCommand()  {}
func (TransferCommand) isBankingCommand()      {}

// NewCreateAccountCommand validates and builds a CreateAccountCommand.
func NewCreateAccountCommand(playerID, name, channel string) (CreateAccountCommand, error) {
	cmd := CreateAccountCommand{PlayerID: playerID, Name: name, Channel: channel}
	if err := validate.Struct(cmd); err != nil {
		return CreateAccountCommand{}, fmt.Errorf("create account command: %w", err)
	}
	return cmd, nil
}

// NewBalanceQueryCommand validates and builds a BalanceQueryCommand.
func NewBalanceQueryCommand(playerID, channel string) (BalanceQueryCommand, error) {
	cmd := BalanceQueryCommand{PlayerID: playerID, Channel: channel}
	if err := validate.Struct(cmd); err != nil {
		return BalanceQueryCommand{}, fmt.Errorf("balance command: %w", err)
	}
	return cmd, nil
}

// NewTransferCommand validates and builds a TransferCommand.
func NewTransferCommand(playerID string, from, to, amount int64, details, channel string) (TransferCommand, error) {
	cmd := TransferCommand{
		PlayerID:      playerID,
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Details:       details,
		Channel:       channel,
	}
	if err := validate.Struct(cmd); err != nil {
		return TransferCommand{}, fmt.Errorf("transfer command: %w", err)
	}
	return cmd, nil
}
