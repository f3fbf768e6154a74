package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portssvc "github.com/democratia-universalis/duengine/internal/core/ports/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/relay"
)

// termDateLayout is the wire format of role term dates.
const termDateLayout = "02-01-2006"

// RoleService evaluates and administers term grants. It owns no
// collection of its own: roles live on the players that hold them, and
// every mutation goes through the registry under its lock.
type RoleService struct {
	registry *RegistryService
	out      *relay.Queue
	commands chan dto.RoleCommand
	logger   *slog.Logger
	now      func() time.Time
}

// RoleOption configures a RoleService.
type RoleOption func(*RoleService)

// WithRoleClock overrides the service clock.
func WithRoleClock(now func() time.Time) RoleOption {
	return func(s *RoleService) {
		s.now = now
	}
}

// WithRoleQueueCapacity bounds the inbound command queue.
func WithRoleQueueCapacity(n int) RoleOption {
	return func(s *RoleService) {
		s.commands = make(chan dto.RoleCommand, n)
	}
}

// NewRoleService creates the term scheduler over the given registry.
func NewRoleService(registry *RegistryService, out *relay.Queue, logger *slog.Logger, opts ...RoleOption) *RoleService {
	s := &RoleService{
		registry: registry,
		out:      out,
		commands: make(chan dto.RoleCommand, 256),
		logger:   logger.With(slog.String("component", "role-manager")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.RoleEnqueuer = (*RoleService)(nil)

// Name identifies the role worker in logs.
func (s *RoleService) Name() string {
	return "role-manager"
}

// EnqueueRole puts a command on the inbound queue.
func (s *RoleService) EnqueueRole(cmd dto.RoleCommand) {
	s.commands <- cmd
}

// Update drains the inbound queue once per worker wake.
func (s *RoleService) Update(ctx context.Context) {
	for {
		select {
		case cmd := <-s.commands:
			s.handleCommand(cmd)
		default:
			return
		}
	}
}

func (s *RoleService) handleCommand(cmd dto.RoleCommand) {
	switch c := cmd.(type) {
	case dto.GrantRoleCommand:
		err := s.GrantUntil(c.PlayerID, c.RoleName, c.End)
		if err != nil {
			s.reply(c.Channel, c.PlayerID, grantFailureMessage(err, c.RoleName))
			return
		}
		s.reply(c.Channel, c.PlayerID, fmt.Sprintf("Granted role %s.", c.RoleName))
	case dto.RevokeRoleCommand:
		if err := s.Revoke(c.PlayerID, c.RoleName); err != nil {
			s.reply(c.Channel, c.PlayerID, revokeFailureMessage(err, c.RoleName))
			return
		}
		s.reply(c.Channel, c.PlayerID, fmt.Sprintf("Revoked role %s.", c.RoleName))
	case dto.RolesQueryCommand:
		target := c.OfPlayer
		if target == "" {
			target = c.PlayerID
		}
		s.reply(c.Channel, c.PlayerID, s.roleLines(target)...)
	default:
		s.logger.Error("Unknown role command", slog.String("type", fmt.Sprintf("%T", cmd)))
	}
}

// HasExpired evaluates a grant against the given instant. Indefinite
// grants never expire; definite terms expire on the inclusive boundary.
func (s *RoleService) HasExpired(role domain.Role, t time.Time) bool {
	return role.HasExpired(t)
}

// Grant attaches a role grant to a player. Granting a role the player
// already holds fails, whatever the existing grant's term.
func (s *RoleService) Grant(playerID, roleName string, start time.Time, length time.Duration) error {
	err := s.registry.UpdatePlayer(playerID, func(p *domain.Player) error {
		if p.HasRole(roleName) {
			return fmt.Errorf("role %s: %w", roleName, apperrors.ErrAlreadyGranted)
		}
		p.AddRole(domain.Role{Name: roleName, TermStart: start, TermLength: length})
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Role granted",
		slog.String("player_id", playerID),
		slog.String("role", roleName),
		slog.Bool("indefinite", length < 0),
	)
	return nil
}

// GrantUntil grants a role with a DD-MM-YYYY term end. An empty end means
// an indefinite grant. The term starts at the current day boundary.
func (s *RoleService) GrantUntil(playerID, roleName, end string) error {
	start := dayStart(s.now())
	if end == "" {
		return s.Grant(playerID, roleName, start, domain.TermIndefinite)
	}
	endDate, err := time.Parse(termDateLayout, end)
	if err != nil {
		return fmt.Errorf("term end %q: %w", end, apperrors.ErrMalformedDate)
	}
	length := endDate.Sub(start)
	if length < 0 {
		return fmt.Errorf("term end %q is in the past: %w", end, apperrors.ErrValidation)
	}
	return s.Grant(playerID, roleName, start, length)
}

// Revoke removes a grant by name.
func (s *RoleService) Revoke(playerID, roleName string) error {
	err := s.registry.UpdatePlayer(playerID, func(p *domain.Player) error {
		if !p.RemoveRole(roleName) {
			return fmt.Errorf("role %s: %w", roleName, apperrors.ErrNotGranted)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Role revoked", slog.String("player_id", playerID), slog.String("role", roleName))
	return nil
}

// RolesOf lists a player's grants in insertion order.
func (s *RoleService) RolesOf(playerID string) ([]domain.Role, error) {
	p, ok := s.registry.PlayerByID(playerID)
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, apperrors.ErrNotFound)
	}
	return append([]domain.Role(nil), p.Roles...), nil
}

func (s *RoleService) roleLines(idOrName string) []string {
	p, ok := s.registry.FindPlayer(idOrName)
	if !ok {
		return []string{fmt.Sprintf("Failed to find player %s.", idOrName)}
	}
	if len(p.Roles) == 0 {
		return []string{fmt.Sprintf("%s holds no roles.", p.Username)}
	}

	lines := make([]string, 0, len(p.Roles)+1)
	lines = append(lines, fmt.Sprintf("Roles of %s:", p.Username))
	for _, r := range p.Roles {
		if r.Indefinite() {
			lines = append(lines, fmt.Sprintf("%s (indefinite)", r.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (until %s)", r.Name, r.TermEnd().Format(termDateLayout)))
	}
	return lines
}

func (s *RoleService) reply(channel, playerID string, lines ...string) {
	s.out.Push(relay.NewNotification(replyAddress(channel, playerID), lines...))
}

func grantFailureMessage(err error, roleName string) string {
	switch {
	case errors.Is(err, apperrors.ErrAlreadyGranted):
		return fmt.Sprintf("Player already holds role %s.", roleName)
	case errors.Is(err, apperrors.ErrMalformedDate):
		return "The end date must be of the format DD-MM-YYYY."
	case errors.Is(err, apperrors.ErrNotFound):
		return "Failed to find player."
	case errors.Is(err, apperrors.ErrValidation):
		return "The end date must not be in the past."
	default:
		return fmt.Sprintf("Failed to grant role %s.", roleName)
	}
}

func revokeFailureMessage(err error, roleName string) string {
	switch {
	case errors.Is(err, apperrors.ErrNotGranted):
		return fmt.Sprintf("Player does not hold role %s.", roleName)
	case errors.Is(err, apperrors.ErrNotFound):
		return "Failed to find player."
	default:
		return fmt.Sprintf("Failed to revoke role %s.", roleName)
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
