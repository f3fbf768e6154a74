package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/relay"
)

// voteReminderDelay is how long after the vote announcement the derived
// reminders fire, truncated to the hour.
const voteReminderDelay = 12 * time.Hour

// ReminderService owns the pending reminder set. On every wake it drains
// its command queue, then fires every reminder whose time has passed.
// Firing is fire-once: a reminder missed while the scheduler was down is
// delivered on the next wake, not repeated.
type ReminderService struct {
	mu        sync.Mutex
	reminders map[int64]*domain.Reminder
	nextID    int64

	store    portsrepo.ReminderStore
	registry *RegistryService
	out      *relay.Queue
	commands chan dto.ReminderCommand
	logger   *slog.Logger
	now      func() time.Time
}

// ReminderOption configures a ReminderService.
type ReminderOption func(*ReminderService)

// WithReminderClock overrides the service clock.
func WithReminderClock(now func() time.Time) ReminderOption {
	return func(s *ReminderService) {
		s.now = now
	}
}

// WithReminderQueueCapacity bounds the inbound command queue.
func WithReminderQueueCapacity(n int) ReminderOption {
	return func(s *ReminderService) {
		s.commands = make(chan dto.ReminderCommand, n)
	}
}

// NewReminderService creates an empty reminder scheduler.
func NewReminderService(store portsrepo.ReminderStore, registry *RegistryService, out *relay.Queue, logger *slog.Logger, opts ...ReminderOption) *ReminderService {
	s := &ReminderService{
		reminders: make(map[int64]*domain.Reminder),
		store:     store,
		registry:  registry,
		out:       out,
		commands:  make(chan dto.ReminderCommand, 256),
		logger:    logger.With(slog.String("component", "reminder-manager")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ReminderEnqueuer = (*ReminderService)(nil)
var _ portssvc.StateSaver = (*ReminderService)(nil)

// Name identifies the reminder worker in logs.
func (s *ReminderService) Name() string {
	return "reminder-manager"
}

// EnqueueReminder puts a command on the inbound queue.
func (s *ReminderService) EnqueueReminder(cmd dto.ReminderCommand) {
	s.commands <- cmd
}

// Update drains the command queue, then delivers everything due.
func (s *ReminderService) Update(ctx context.Context) {
	for {
		select {
		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)
		default:
			s.fireDue()
			return
		}
	}
}

func (s *ReminderService) handleCommand(ctx context.Context, cmd dto.ReminderCommand) {
	switch c := cmd.(type) {
	case dto.RemindCommand:
		s.Schedule(c.TargetID, c.When, c.Details, domain.ReminderGeneric)
		if err := s.SaveState(ctx); err != nil {
			s.logger.Error("Failed to save reminder state", slog.String("error", err.Error()))
		}
	case dto.VoteCommand:
		s.DeriveVoteReminders(c.Title, c.URL, c.When)
		if err := s.SaveState(ctx); err != nil {
			s.logger.Error("Failed to save reminder state", slog.String("error", err.Error()))
		}
	case dto.DidVoteCommand:
		s.CancelByKind(c.TargetID, domain.ReminderVote)
	default:
		s.logger.Error("Unknown reminder command", slog.String("type", fmt.Sprintf("%T", cmd)))
	}
}

// Schedule adds a pending reminder and returns its id.
func (s *ReminderService) Schedule(targetID string, when time.Time, message string, kind domain.ReminderKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &domain.Reminder{
		ReminderID: s.nextID,
		TargetID:   targetID,
		When:       when,
		Message:    message,
		Kind:       kind,
	}
	s.reminders[r.ReminderID] = r
	s.nextID++

	s.logger.Info("Reminder scheduled",
		slog.Int64("reminder_id", r.ReminderID),
		slog.String("target_id", targetID),
		slog.Time("when", when),
		slog.String("kind", string(kind)),
	)
	return r.ReminderID
}

// CancelByKind removes every pending reminder of the given kind for one
// target. It is how a didvote event suppresses a pending vote reminder.
func (s *ReminderService) CancelByKind(targetID string, kind domain.ReminderKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cancelled int
	for id, r := range s.reminders {
		if r.TargetID == targetID && r.Kind == kind {
			delete(s.reminders, id)
			cancelled++
		}
	}
	if cancelled > 0 {
		s.logger.Info("Reminders cancelled",
			slog.String("target_id", targetID),
			slog.String("kind", string(kind)),
			slog.Int("count", cancelled),
		)
	}
	return cancelled
}

// DeriveVoteReminders schedules one vote reminder for every opted-in
// player, firing twelve hours after the vote time, truncated to the hour.
func (s *ReminderService) DeriveVoteReminders(title, url string, voteTime time.Time) {
	when := truncateToHour(voteTime.Add(voteReminderDelay))

	for _, p := range s.registry.Players() {
		if !p.BoolSetting(domain.SettingRemindMe) {
			continue
		}
		message := fmt.Sprintf("Dear %s,\nPlease remember to vote on the **%s**!\nLink: %s",
			p.Username, title, url)
		s.Schedule(p.PlayerID, when, message, domain.ReminderVote)
	}
}

// Pending returns the pending reminders for one target, ordered by id.
func (s *ReminderService) Pending(targetID string) []domain.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Reminder
	for _, r := range s.reminders {
		if r.TargetID == targetID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderID < out[j].ReminderID })
	return out
}

// fireDue delivers and removes every reminder whose time has passed.
func (s *ReminderService) fireDue() {
	now := s.now()

	s.mu.Lock()
	var due []*domain.Reminder
	for id, r := range s.reminders {
		if r.Due(now) {
			due = append(due, r)
			delete(s.reminders, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].ReminderID < due[j].ReminderID })
	for _, r := range due {
		s.out.Push(relay.NewNotification(relay.PlayerRef(r.TargetID), r.Message))
		s.logger.Info("Reminder fired",
			slog.Int64("reminder_id", r.ReminderID),
			slog.String("target_id", r.TargetID),
		)
	}
}

// Snapshot deep-copies the pending reminder set.
func (s *ReminderService) Snapshot() domain.ReminderSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.ReminderSnapshot{
		NextID: s.nextID,
		Active: make(map[int64]*domain.Reminder, len(s.reminders)),
	}
	for id, r := range s.reminders {
		cp := *r
		snap.Active[id] = &cp
	}
	return snap
}

// SaveState writes the pending reminder set to durable storage.
func (s *ReminderService) SaveState(ctx context.Context) error {
	return s.store.SaveReminders(ctx, s.Snapshot())
}

// LoadState restores the pending reminder set from durable storage. The
// lifetime counter is taken from the snapshot so ids never collide after
// a restart.
func (s *ReminderService) LoadState(ctx context.Context) error {
	snap, err := s.store.LoadReminders(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = snap.Active
	if s.reminders == nil {
		s.reminders = make(map[int64]*domain.Reminder)
	}
	s.nextID = snap.NextID
	for id := range s.reminders {
		if id >= s.nextID {
			s.nextID = id + 1
		}
	}
	return nil
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
