package domain

import (
	"fmt"
	"reflect"

	"github.com/democratia-universalis/duengine/internal/apperrors"
)

// SettingRemindMe controls whether a player opts in to vote reminders.
const SettingRemindMe = "remind-me"

// DefaultSettings declares every valid player setting together with its
// default value. The default's type is binding: writes with a different
// type are rejected.
var DefaultSettings = map[string]any{
	SettingRemindMe: false,
}

// Player is the slice of the identity directory the core engine needs:
// an opaque external id, a display name, the ordered roles the player
// holds, and a small set of named settings.
type Player struct {
	PlayerID string         `json:"playerID"`
	Username string         `json:"username"`
	Roles    []Role         `json:"roles"` // Insertion order is display order
	Settings map[string]any `json:"settings"`
}

// NewPlayer creates a player with no roles and empty settings.
func NewPlayer(playerID, username string) *Player {
	return &Player{
		PlayerID: playerID,
		Username: username,
		Settings: map[string]any{},
	}
}

// Setting returns the value of a named setting, falling back to the
// declared default when the player has not set it. Unknown keys yield nil.
func (p *Player) Setting(name string) any {
	def, ok := DefaultSettings[name]
	if !ok {
		return nil
	}
	if v, ok := p.Settings[name]; ok {
		return v
	}
	return def
}

// BoolSetting returns a boolean setting, false for non-boolean values.
func (p *Player) BoolSetting(name string) bool {
	v, _ := p.Setting(name).(bool)
	return v
}

// SetSetting writes a named setting. The key must be declared in
// DefaultSettings and the value must have the default's type.
func (p *Player) SetSetting(name string, value any) error {
	def, ok := DefaultSettings[name]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", name, apperrors.ErrValidation)
	}
	if reflect.TypeOf(value) != reflect.TypeOf(def) {
		return fmt.Errorf("invalid value %v for setting %q: %w", value, name, apperrors.ErrValidation)
	}
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	p.Settings[name] = value
	return nil
}

// HasRole reports whether the player holds a role, compared by name.
func (p *Player) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// AddRole appends a role grant, preserving insertion order.
func (p *Player) AddRole(role Role) {
	p.Roles = append(p.Roles, role)
}

// RemoveRole removes the role with the given name. It reports whether a
// grant was removed.
func (p *Player) RemoveRole(name string) bool {
	for i, r := range p.Roles {
		if r.Name == name {
			p.Roles = append(p.Roles[:i], p.Roles[i+1:]...)
			return true
		}
	}
	return false
}
