package services

import (
	"context"
	"log/slog"

	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
)

// SnapshotService periodically writes every registered component's full
// state to durable storage. It runs in its own low-frequency worker so a
// save never competes with command processing for more than the guard
// locks.
type SnapshotService struct {
	savers []portssvc.StateSaver
	logger *slog.Logger
}

// NewSnapshotService creates a snapshotter over the given savers.
func NewSnapshotService(logger *slog.Logger, savers ...portssvc.StateSaver) *SnapshotService {
	return &SnapshotService{
		savers: savers,
		logger: logger.With(slog.String("component", "snapshot")),
	}
}

// Name identifies the snapshot worker in logs.
func (s *SnapshotService) Name() string {
	return "snapshot"
}

// Update saves every component. A failing saver is logged and does not
// stop the others.
func (s *SnapshotService) Update(ctx context.Context) {
	s.SaveAll(ctx)
}

// SaveAll synchronously saves every component. The shutdown path calls
// this before stopping the workers so queued state survives the stop.
func (s *SnapshotService) SaveAll(ctx context.Context) {
	for _, saver := range s.savers {
		if err := saver.SaveState(ctx); err != nil {
			s.logger.Error("Failed to save component state", slog.String("error", err.Error()))
		}
	}
}
