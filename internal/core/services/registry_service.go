package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/relay"
)

// RegistryService is the engine's view of the player directory: players
// keyed by opaque id, with their usernames, role grants and settings.
// Role mutations are funneled through the role worker's queue; the RWMutex
// guards the secondary read paths (address resolution, vote derivation,
// the snapshot timer).
type RegistryService struct {
	mu      sync.RWMutex
	players map[string]*domain.Player
	owners  map[string]struct{}

	store  portsrepo.PlayerStore
	logger *slog.Logger
}

// NewRegistryService creates an empty registry.
func NewRegistryService(store portsrepo.PlayerStore, logger *slog.Logger) *RegistryService {
	return &RegistryService{
		players: make(map[string]*domain.Player),
		owners:  make(map[string]struct{}),
		store:   store,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

var _ relay.Directory = (*RegistryService)(nil)
var _ portssvc.StateSaver = (*RegistryService)(nil)

// NewPlayer registers a player. Registering an existing id replaces the
// username but keeps roles and settings.
func (s *RegistryService) NewPlayer(playerID, username string) *domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[playerID]; ok {
		p.Username = username
		return p
	}
	p := domain.NewPlayer(playerID, username)
	s.players[playerID] = p
	s.logger.Info("New player", slog.String("player_id", playerID), slog.String("username", username))
	return p
}

// PlayerByID looks a player up by opaque id.
func (s *RegistryService) PlayerByID(id string) (*domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// FindPlayer looks a player up by id first, then by case-insensitive
// username.
func (s *RegistryService) FindPlayer(idOrName string) (*domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.players[idOrName]; ok {
		return p, true
	}
	for _, p := range s.players {
		if strings.EqualFold(p.Username, idOrName) {
			return p, true
		}
	}
	return nil, false
}

// PlayersWithRole returns every tracked player holding the named role.
func (s *RegistryService) PlayersWithRole(roleName string) []*domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Player
	for _, p := range s.players {
		if p.HasRole(roleName) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// Players returns all tracked players ordered by id.
func (s *RegistryService) Players() []*domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// UpdatePlayer runs fn on a player under the write lock. The role worker
// uses this for grant and revoke so role slices are never mutated
// concurrently with a read path.
func (s *RegistryService) UpdatePlayer(playerID string, fn func(p *domain.Player) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("player %s: %w", playerID, apperrors.ErrNotFound)
	}
	return fn(p)
}

// SetSetting writes a player setting, enforcing the declared keys and
// types.
func (s *RegistryService) SetSetting(playerID, name string, value any) error {
	return s.UpdatePlayer(playerID, func(p *domain.Player) error {
		return p.SetSetting(name, value)
	})
}

// AddOwner marks a player id as a game owner.
func (s *RegistryService) AddOwner(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[playerID] = struct{}{}
}

// RemoveOwner unmarks a game owner.
func (s *RegistryService) RemoveOwner(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, playerID)
}

// IsOwner reports whether the player id is a game owner.
func (s *RegistryService) IsOwner(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[playerID]
	return ok
}

// Snapshot deep-copies the registry state.
func (s *RegistryService) Snapshot() domain.PlayerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.PlayerSnapshot{Players: make(map[string]*domain.Player, len(s.players))}
	for id, p := range s.players {
		cp := *p
		cp.Roles = append([]domain.Role(nil), p.Roles...)
		cp.Settings = make(map[string]any, len(p.Settings))
		for k, v := range p.Settings {
			cp.Settings[k] = v
		}
		snap.Players[id] = &cp
	}
	return snap
}

// SaveState writes the registry to durable storage.
func (s *RegistryService) SaveState(ctx context.Context) error {
	s.logger.Info("Saving player registry")
	return s.store.SavePlayers(ctx, s.Snapshot())
}

// LoadState restores the registry from durable storage.
func (s *RegistryService) LoadState(ctx context.Context) error {
	snap, err := s.store.LoadPlayers(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = snap.Players
	if s.players == nil {
		s.players = make(map[string]*domain.Player)
	}
	s.logger.Info("Loaded players", slog.Int("count", len(s.players)))
	return nil
}
