package domain_test

import (
	"testing"
	"time"

	"github.com/democratia-universalis/duengine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestRole_HasExpired_Indefinite(t *testing.T) {
	start := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	role := domain.Role{Name: "operator", TermStart: start, TermLength: domain.TermIndefinite}

	tests := []struct {
		name string
		now  time.Time
	}{
		{name: "before term start", now: start.AddDate(-1, 0, 0)},
		{name: "at term start", now: start},
		{name: "far in the future", now: start.AddDate(100, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, role.HasExpired(tt.now))
		})
	}
}

func TestRole_HasExpired_Boundary(t *testing.T) {
	start := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	role := domain.Role{Name: "seneschal", TermStart: start, TermLength: 10 * 24 * time.Hour}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "one second before the boundary", now: start.Add(10*24*time.Hour - time.Second), want: false},
		{name: "exactly at the boundary", now: start.Add(10 * 24 * time.Hour), want: true},
		{name: "after the boundary", now: start.Add(11 * 24 * time.Hour), want: true},
		{name: "at term start", now: start, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, role.HasExpired(tt.now))
		})
	}
}

func TestRole_EqualsByName(t *testing.T) {
	start := time.Date(2021, time.June, 12, 0, 0, 0, 0, time.UTC)
	a := domain.Role{Name: "moderator", TermStart: start, TermLength: 5 * 24 * time.Hour}
	b := domain.Role{Name: "moderator", TermStart: start.AddDate(1, 0, 0), TermLength: domain.TermIndefinite}
	c := domain.Role{Name: "Moderator", TermStart: start, TermLength: 5 * 24 * time.Hour}

	assert.True(t, a.EqualsByName(b), "same name with different terms is the same role")
	assert.False(t, a.EqualsByName(c), "role names are case-sensitive")
}

func TestRole_TermEnd(t *testing.T) {
	start := time.Date(2022, time.January, 10, 0, 0, 0, 0, time.UTC)
	role := domain.Role{Name: "clerk", TermStart: start, TermLength: 3 * 24 * time.Hour}

	assert.Equal(t, start.AddDate(0, 0, 3), role.TermEnd())
	assert.False(t, role.Indefinite())
	assert.True(t, domain.Role{TermLength: domain.TermIndefinite}.Indefinite())
}
