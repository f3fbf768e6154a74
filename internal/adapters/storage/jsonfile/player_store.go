package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
)

// roleDateLayout is the on-disk date format of role term starts.
const roleDateLayout = "02-01-2006"

// hoursPerDay converts between the persisted term length (whole days,
// negative for indefinite) and the in-memory duration.
const hoursPerDay = 24

// PlayerStore persists the player registry, with each player's role
// grants and settings embedded in their record.
type PlayerStore struct {
	path string
}

// NewPlayerStore creates a store writing to path.
func NewPlayerStore(path string) *PlayerStore {
	return &PlayerStore{path: path}
}

var _ portsrepo.PlayerStore = (*PlayerStore)(nil)

type roleRecord struct {
	Name   string `json:"name"`
	Start  string `json:"start"`
	Length int    `json:"length"`
	Salary int64  `json:"salary"`
}

type playerRecord struct {
	Username string         `json:"username"`
	Roles    []roleRecord   `json:"roles"`
	Settings map[string]any `json:"settings"`
}

type playerFile struct {
	Players map[string]playerRecord `json:"players"`
}

// SavePlayers writes the full snapshot.
func (s *PlayerStore) SavePlayers(_ context.Context, snap domain.PlayerSnapshot) error {
	doc := playerFile{Players: make(map[string]playerRecord, len(snap.Players))}
	for id, p := range snap.Players {
		rec := playerRecord{
			Username: p.Username,
			Roles:    make([]roleRecord, 0, len(p.Roles)),
			Settings: p.Settings,
		}
		for _, r := range p.Roles {
			length := -1
			if r.TermLength >= 0 {
				length = int(r.TermLength / (hoursPerDay * time.Hour))
			}
			rec.Roles = append(rec.Roles, roleRecord{
				Name:   r.Name,
				Start:  r.TermStart.Format(roleDateLayout),
				Length: length,
				Salary: r.Salary,
			})
		}
		doc.Players[id] = rec
	}
	return writeFile(s.path, doc)
}

// LoadPlayers reads the snapshot back. A missing file yields an empty
// snapshot.
func (s *PlayerStore) LoadPlayers(_ context.Context) (*domain.PlayerSnapshot, error) {
	snap := &domain.PlayerSnapshot{Players: make(map[string]*domain.Player)}

	var doc playerFile
	found, err := readFile(s.path, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return snap, nil
	}

	for id, rec := range doc.Players {
		p := domain.NewPlayer(id, rec.Username)
		for key, value := range rec.Settings {
			if err := p.SetSetting(key, value); err != nil {
				return nil, fmt.Errorf("player file %s: player %s: %v: %w", s.path, id, err, apperrors.ErrSerialization)
			}
		}
		for _, rr := range rec.Roles {
			start, err := time.Parse(roleDateLayout, rr.Start)
			if err != nil {
				return nil, fmt.Errorf("player file %s: player %s role %q start %q: %w", s.path, id, rr.Name, rr.Start, apperrors.ErrSerialization)
			}
			length := domain.TermIndefinite
			if rr.Length >= 0 {
				length = time.Duration(rr.Length) * hoursPerDay * time.Hour
			}
			p.AddRole(domain.Role{
				Name:       rr.Name,
				TermStart:  start,
				TermLength: length,
				Salary:     rr.Salary,
			})
		}
		snap.Players[id] = p
	}
	return snap, nil
}
