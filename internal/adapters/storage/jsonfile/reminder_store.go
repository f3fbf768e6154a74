package jsonfile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
)

// ReminderStore persists the pending reminder set: a lifetime counter and
// a map of active reminders keyed by decimal id.
type ReminderStore struct {
	path string
}

// NewReminderStore creates a store writing to path.
func NewReminderStore(path string) *ReminderStore {
	return &ReminderStore{path: path}
}

var _ portsrepo.ReminderStore = (*ReminderStore)(nil)

type reminderRecord struct {
	Who  string    `json:"who"`
	When time.Time `json:"when"`
	Why  string    `json:"why"`
	Type string    `json:"type"`
}

type reminderFile struct {
	TotalReminders int64                     `json:"total-reminders"`
	Active         map[string]reminderRecord `json:"active-reminders"`
}

// SaveReminders writes the full snapshot.
func (s *ReminderStore) SaveReminders(_ context.Context, snap domain.ReminderSnapshot) error {
	doc := reminderFile{
		TotalReminders: snap.NextID,
		Active:         make(map[string]reminderRecord, len(snap.Active)),
	}
	for id, r := range snap.Active {
		doc.Active[strconv.FormatInt(id, 10)] = reminderRecord{
			Who:  r.TargetID,
			When: r.When,
			Why:  r.Message,
			Type: string(r.Kind),
		}
	}
	return writeFile(s.path, doc)
}

// LoadReminders reads the snapshot back. A missing file yields an empty
// snapshot.
func (s *ReminderStore) LoadReminders(_ context.Context) (*domain.ReminderSnapshot, error) {
	snap := &domain.ReminderSnapshot{Active: make(map[int64]*domain.Reminder)}

	var doc reminderFile
	found, err := readFile(s.path, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return snap, nil
	}

	snap.NextID = doc.TotalReminders
	for key, rec := range doc.Active {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("reminder file %s: reminder id %q: %w", s.path, key, apperrors.ErrSerialization)
		}
		kind := domain.ReminderKind(rec.Type)
		switch kind {
		case domain.ReminderGeneric, domain.ReminderVote:
		default:
			return nil, fmt.Errorf("reminder file %s: reminder %d kind %q: %w", s.path, id, rec.Type, apperrors.ErrSerialization)
		}
		snap.Active[id] = &domain.Reminder{
			ReminderID: id,
			TargetID:   rec.Who,
			When:       rec.When,
			Message:    rec.Why,
			Kind:       kind,
		}
	}
	return snap, nil
}
