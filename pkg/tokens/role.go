package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRole = errors.New("tokens: unknown role")

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleCliente    Role = "CLIENTE"
	RoleRepartidor Role = "REPARTIDOR"
	RoleSupervisor Role = "SUPERVISOR"
)

var Roles = []Role{RoleAdmin, RoleCliente, RoleRepartidor, RoleSupervisor}

// ParseRole accepts any letter case and returns the canonical role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleCliente, RoleRepartidor, RoleSupervisor:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Privileged roles may perform administrative mutations across services.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

func (r Role) String() string { return string(r) }

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
