// Package session implements the role picker in front of the two
// workspaces. It carries no identity: a role is chosen, not proven.
package session

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleNone      Role = ""
	RoleDoctor    Role = "DOCTOR"
	RoleReception Role = "RECEPTION"
)

// Workspace is the view a role unlocks.
type Workspace string

const (
	WorkspaceLogin     Workspace = "login"
	WorkspaceDoctor    Workspace = "doctor"
	WorkspaceReception Workspace = "reception"
)

var (
	ErrInvalidRole = errors.New("role must be DOCTOR or RECEPTION")
	ErrNoRole      = errors.New("no role selected")
)

// ParseRole is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleDoctor, RoleReception:
		return r, nil
	}
	return RoleNone, ErrInvalidRole
}

// Gate is unset until a role is selected; Logout returns it to unset.
type Gate struct {
	role Role
}

func (g *Gate) Select(r Role) error {
	if r != RoleDoctor && r != RoleReception {
		return ErrInvalidRole
	}
	g.role = r
	return nil
}

func (g *Gate) Logout() {
	g.role = RoleNone
}

func (g *Gate) Role() Role {
	return g.role
}

// Workspace is the only view reachable in the current state.
func (g *Gate) Workspace() Workspace {
	switch g.role {
	case RoleDoctor:
		return WorkspaceDoctor
	case RoleReception:
		return WorkspaceReception
	default:
		return WorkspaceLogin
	}
}

func (g *Gate) CanReach(w Workspace) bool {
	return g.Workspace() == w
}
