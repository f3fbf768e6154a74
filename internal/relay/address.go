// Package relay carries addressed notifications from the state-owning
// workers to the delivery layer. An Address is a tagged variant resolved
// by an explicit, exhaustive resolver rather than runtime type probing at
// the delivery site.
package relay

import (
	"fmt"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
)

// Address is the polymorphic destination of a notification. The four
// shapes are Recipient, PlayerRef, RoleRef and Group.
type Address interface {
	isAddress()
}

// Recipient is a fully resolved external recipient, ready for delivery.
type Recipient string

// PlayerRef is a raw player id that must be resolved to a recipient
// before delivery.
type PlayerRef string

// RoleRef fans out to every currently tracked player holding the named
// role.
type RoleRef string

// Group is a list of addresses, each recursively resolved.
type Group []Address

func (Recipient) isAddress() {}
func (PlayerRef) isAddress() {}
func (RoleRef) isAddress()   {}
func (Group) isAddress()     {}

// Directory is the slice of the player registry the resolver needs.
type Directory interface {
	PlayerByID(id string) (*domain.Player, bool)
	PlayersWithRole(roleName string) []*domain.Player
}

// Resolver expands an Address into the concrete recipients it denotes.
type Resolver struct {
	dir Directory
}

// NewResolver creates a resolver over the given directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve expands addr into deliverable recipients. A single expansion
// never yields the same recipient twice, however many branches of a group
// reach it. Unknown player ids fail resolution.
func (r *Resolver) Resolve(addr Address) ([]Recipient, error) {
	seen := make(map[Recipient]struct{})
	var out []Recipient

	var walk func(a Address) error
	walk = func(a Address) error {
		switch v := a.(type) {
		case Recipient:
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		case PlayerRef:
			p, ok := r.dir.PlayerByID(string(v))
			if !ok {
				return fmt.Errorf("resolve player %q: %w", string(v), apperrors.ErrNotFound)
			}
			return walk(Recipient(p.PlayerID))
		case RoleRef:
			for _, p := range r.dir.PlayersWithRole(string(v)) {
				if err := walk(Recipient(p.PlayerID)); err != nil {
					return err
				}
			}
		case Group:
			for _, elem := range v {
				if err := walk(elem); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("resolve address: unsupported shape %T", a)
		}
		return nil
	}

	if err := walk(addr); err != nil {
		return nil, err
	}
	return out, nil
}
