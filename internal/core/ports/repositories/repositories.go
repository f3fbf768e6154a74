// Package repositories defines the persistence ports the core services
// depend on. Implementations live under internal/adapters/storage.
package repositories

import (
	"context"

	"github.com/democratia-universalis/duengine/internal/core/domain"
)

// LedgerStore persists and restores the full ledger snapshot.
type LedgerStore interface {
	SaveLedger(ctx context.Context, snap domain.LedgerSnapshot) error
	// LoadLedger returns an empty snapshot when no file exists yet; an
	// unreadable file is an apperrors.ErrSerialization.
	LoadLedger(ctx context.Context) (*domain.LedgerSnapshot, error)
}

// ReminderStore persists and restores the pending reminder set.
type ReminderStore interface {
	SaveReminders(ctx context.Context, snap domain.ReminderSnapshot) error
	LoadReminders(ctx context.Context) (*domain.ReminderSnapshot, error)
}

// PlayerStore persists and restores the player registry, including each
// player's embedded role grants and settings.
type PlayerStore interface {
	SavePlayers(ctx context.Context, snap domain.PlayerSnapshot) error
	LoadPlayers(ctx context.Context) (*domain.PlayerSnapshot, error)
}
