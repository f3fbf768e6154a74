package dto

import "time"

// Request DTOs bound by the HTTP ingress. Account ids and amounts arrive
// in their rendered string forms and are parsed at the edge; the command
// structs above carry the internal integer representation.

// CreateAccountRequest opens a new account for a player.
type CreateAccountRequest struct {
	PlayerID string `json:"pid" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Channel  string `json:"channel"`
}

// BalanceRequest lists a player's accounts and balances.
type BalanceRequest struct {
	PlayerID string `json:"pid" binding:"required"`
	Channel  string `json:"channel"`
}

// TransferRequest moves money between two accounts. From, To and Amount
// use the rendered string forms ("0000 0045", "12.50 DU").
type TransferRequest struct {
	PlayerID string `json:"pid" binding:"required"`
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Details  string `json:"details"`
	Channel  string `json:"channel"`
}

// RemindRequest schedules a generic reminder.
type RemindRequest struct {
	TargetID string    `json:"target" binding:"required"`
	Time     time.Time `json:"time" binding:"required"`
	Details  string    `json:"details" binding:"required"`
}

// VoteRequest announces a vote to remind opted-in players about.
type VoteRequest struct {
	Time  time.Time `json:"time" binding:"required"`
	Title string    `json:"title" binding:"required"`
	URL   string    `json:"url" binding:"required,url"`
}

// DidVoteRequest marks a player as having voted.
type DidVoteRequest struct {
	TargetID string `json:"target" binding:"required"`
}

// GrantRoleRequest gives a role to a player. End is DD-MM-YYYY; empty
// means indefinite.
type GrantRoleRequest struct {
	PlayerID string `json:"player" binding:"required"`
	RoleName string `json:"role" binding:"required"`
	End      string `json:"end"`
	Channel  string `json:"channel"`
}

// RevokeRoleRequest takes a role away from a player.
type RevokeRoleRequest struct {
	PlayerID string `json:"player" binding:"required"`
	RoleName string `json:"role" binding:"required"`
	Channel  string `json:"channel"`
}
