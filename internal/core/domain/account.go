package domain

// Account represents a bank account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID int64    `json:"accountID"` // Monotonically assigned by the ledger
	Name      string   `json:"name"`      // User-defined display name
	OwnerID   string   `json:"ownerID"`   // Opaque player id of the owner
	UserIDs   []string `json:"userIDs"`   // Players authorized to operate the account; always contains OwnerID
	Balance   int64    `json:"balance"`   // Integer minor units; never negative
}

// NewAccount creates an account with a zero balance whose user set
// contains exactly the owner.
func NewAccount(accountID int64, name, ownerID string) *Account {
	return &Account{
		AccountID: accountID,
		Name:      name,
		OwnerID:   ownerID,
		UserIDs:   []string{ownerID},
	}
}

// HasUser reports whether the given player may operate this account.
func (a *Account) HasUser(playerID string) bool {
	for _, id := range a.UserIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// AddUser authorizes a player on this account. Adding an existing user is
// a no-op.
func (a *Account) AddUser(playerID string) {
	if a.HasUser(playerID) {
		return
	}
	a.UserIDs = append(a.UserIDs, playerID)
}

// RemoveUser revokes a player's access. The owner cannot be removed.
func (a *Account) RemoveUser(playerID string) bool {
	if playerID == a.OwnerID {
		return false
	}
	for i, id := range a.UserIDs {
		if id == playerID {
			a.UserIDs = append(a.UserIDs[:i], a.UserIDs[i+1:]...)
			return true
		}
	}
	return false
}

// EqualsByBalance compares two accounts by balance only.
func (a *Account) EqualsByBalance(other *Account) bool {
	if other == nil {
		return false
	}
	return a.Balance == other.Balance
}

// AccountSummary is the (id, name, balance) triple returned by account
// listing queries.
type AccountSummary struct {
	AccountID int64
	Name      string
	Balance   int64
}
