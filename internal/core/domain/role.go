package domain

import "time"

// TermIndefinite is the term length denoting a grant that never expires.
// Any negative length is treated as indefinite.
const TermIndefinite = time.Duration(-24) * time.Hour

// Role is a named, time-bounded privilege attached to a player.
// The name is a case-sensitive key; two grants with the same name are the
// same role for comparison purposes, even if their terms differ.
type Role struct {
	Name       string        `json:"name"`
	TermStart  time.Time     `json:"termStart"`
	TermLength time.Duration `json:"termLength"` // Negative denotes an indefinite term
	Salary     int64         `json:"salary"`     // Reserved, not yet paid out
}

// HasExpired reports whether the role's term has run out at time t.
// Indefinite terms never expire. The boundary is inclusive: a term of
// exactly n days is expired n days after its start.
func (r Role) HasExpired(t time.Time) bool {
	if r.TermLength < 0 {
		return false
	}
	return t.Sub(r.TermStart) >= r.TermLength
}

// TermEnd returns the instant the term runs out. It is meaningless for
// indefinite roles; callers must check Indefinite first.
func (r Role) TermEnd() time.Time {
	return r.TermStart.Add(r.TermLength)
}

// Indefinite reports whether this grant never expires.
func (r Role) Indefinite() bool {
	return r.TermLength < 0
}

// EqualsByName compares two roles by name only.
func (r Role) EqualsByName(other Role) bool {
	return r.Name == other.Name
}
