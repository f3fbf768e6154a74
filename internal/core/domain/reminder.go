package domain

import "time"

// ReminderKind tags a reminder so a whole class of reminders for one
// target can be cancelled at once.
type ReminderKind string

const (
	ReminderGeneric ReminderKind = "generic"
	ReminderVote    ReminderKind = "vote"
)

// Reminder is a pending timed notification for one player.
type Reminder struct {
	ReminderID int64        `json:"reminderID"` // Monotonically assigned by the scheduler
	TargetID   string       `json:"targetID"`
	When       time.Time    `json:"when"`
	Message    string       `json:"message"`
	Kind       ReminderKind `json:"kind"`
}

// Due reports whether the reminder's firing time has passed.
func (r Reminder) Due(now time.Time) bool {
	return !now.Before(r.When)
}
