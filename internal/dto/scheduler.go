package dto

import (
	"fmt"
	"time"
)

// ReminderCommand is the tagged union of commands consumed by the
// reminder scheduler worker.
type ReminderCommand interface {
	isReminderCommand()
}

// RemindCommand schedules a generic reminder for one player.
type RemindCommand struct {
	TargetID string    `validate:"required"`
	When     time.Time `validate:"required"`
	Details  string    `validate:"required"`
}

// VoteCommand announces a vote; the scheduler derives a vote reminder for
// every opted-in player.
type VoteCommand struct {
	When  time.Time `validate:"required"`
	Title string    `validate:"required"`
	URL   string    `validate:"required,url"`
}

// DidVoteCommand records that a player has voted, cancelling any pending
// vote reminders for them.
type DidVoteCommand struct {
	TargetID string `validate:"required"`
}

func (RemindCommand) isReminderCommand()  {}
func (VoteCommand) isReminderCommand()    {}
func (DidVoteCommand) isReminderCommand() {}

// NewRemindCommand validates and builds a RemindCommand.
func NewRemindCommand(targetID string, when time.Time, details string) (RemindCommand, error) {
	cmd := RemindCommand{TargetID: targetID, When: when, Details: details}
	if err := validate.Struct(cmd); err != nil {
		return RemindCommand{}, fmt.Errorf("remind command: %w", err)
	}
	return cmd, nil
}

// NewVoteCommand validates and builds a VoteCommand.
func NewVoteCommand(when time.Time, title, url string) (VoteCommand, error) {
	cmd := VoteCommand{When: when, Title: title, URL: url}
	if err := validate.Struct(cmd); err != nil {
		return VoteCommand{}, fmt.Errorf("vote command: %w", err)
	}
	return cmd, nil
}

// NewDidVoteCommand validates and builds a DidVoteCommand.
func NewDidVoteCommand(targetID string) (DidVoteCommand, error) {
	cmd := DidVoteCommand{TargetID: targetID}
	if err := validate.Struct(cmd); err != nil {
		return DidVoteCommand{}, fmt.Errorf("didvote command: %w", err)
	}
	return cmd, nil
}

// RoleCommand is the tagged union of commands consumed by the role worker.
type RoleCommand interface {
	isRoleCommand()
}

// GrantRoleCommand gives PlayerID a named role. End is an optional
// DD-MM-YYYY term end; empty means an indefinite grant.
type GrantRoleCommand struct {
	PlayerID string `validate:"required"`
	RoleName string `validate:"required"`
	End      string
	Channel  string
}

// RevokeRoleCommand takes a named role away from PlayerID.
type RevokeRoleCommand struct {
	PlayerID string `validate:"required"`
	RoleName string `validate:"required"`
	Channel  string
}

// RolesQueryCommand asks for the roles held by OfPlayer (or by the asking
// player when OfPlayer is empty) and their term ends.
type RolesQueryCommand struct {
	PlayerID string `validate:"required"`
	OfPlayer string
	Channel  string
}

func (GrantRoleCommand) isRoleCommand()  {}
func (RevokeRoleCommand) isRoleCommand() {}
func (RolesQueryCommand) isRoleCommand() {}

// NewGrantRoleCommand validates and builds a GrantRoleCommand.
func NewGrantRoleCommand(playerID, roleName, end, channel string) (GrantRoleCommand, error) {
	cmd := GrantRoleCommand{PlayerID: playerID, RoleName: roleName, End: end, Channel: channel}
	if err := validate.Struct(cmd); err != nil {
		return GrantRoleCommand{}, fmt.Errorf("grant role command: %w", err)
	}
	return cmd, nil
}

// NewRolesQueryCommand validates and builds a RolesQueryCommand.
func NewRolesQueryCommand(playerID, ofPlayer, channel string) (RolesQueryCommand, error) {
	cmd := RolesQueryCommand{PlayerID: playerID, OfPlayer: ofPlayer, Channel: channel}
	if err := validate.Struct(cmd); err != nil {
		return RolesQueryCommand{}, fmt.Errorf("roles query command: %w", err)
	}
	return cmd, nil
}

// NewRevokeRoleCommand validates and builds a RevokeRoleCommand.
func NewRevokeRoleCommand(playerID, roleName, channel string) (RevokeRoleCommand, error) {
	cmd := RevokeRoleCommand{PlayerID: playerID, RoleName: roleName, Channel: channel}
	if err := validate.Struct(cmd); err != nil {
		return RevokeRoleCommand{}, fmt.Errorf("revoke role command: %w", err)
	}
	return cmd, nil
}
