package domain

// LedgerSnapshot is the full serializable state of the ledger.
type LedgerSnapshot struct {
	Accounts     map[int64]*Account
	Transactions map[int64]*Transaction
}

// ReminderSnapshot is the full serializable state of the reminder
// scheduler. NextID is the lifetime reminder counter, not the count of
// active reminders.
type ReminderSnapshot struct {
	NextID int64
	Active map[int64]*Reminder
}

// PlayerSnapshot is the full serializable state of the player registry.
type PlayerSnapshot struct {
	Players map[string]*Player
}
