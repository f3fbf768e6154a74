// Package services defines the service facades the ingress and the
// lifecycle wiring depend on.
package services

import (
	"context"

	"github.com/democratia-universalis/duengine/internal/dto"
)

// BankingEnqueuer accepts commands for the ledger worker's inbound queue.
type BankingEnqueuer interface {
	EnqueueBanking(cmd dto.BankingCommand)
}

// ReminderEnqueuer accepts commands for the reminder worker's inbound
// queue.
type ReminderEnqueuer interface {
	EnqueueReminder(cmd dto.ReminderCommand)
}

// RoleEnqueuer accepts commands for the role worker's inbound queue.
type RoleEnqueuer interface {
	EnqueueRole(cmd dto.RoleCommand)
}

// StateSaver is any component whose full state can be snapshotted to
// durable storage. The snapshot timer and the shutdown path call it.
type StateSaver interface {
	SaveState(ctx context.Context) error
}
