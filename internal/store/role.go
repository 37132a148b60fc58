package store

import "github.com/pkg/errors"

const (
	Operator  Role = 10
	Admin     Role = 1_000
	Superuser Role = 10_000
)

type Role int64

func (r Role) ToString() string {
	switch r {
	case Superuser:
		return "superuser"
	case Admin:
		return "admin"
	default:
		return "operator"
	}
}

// ParseRole maps a role name to its Role value.
func ParseRole(s string) (Role, error) {
	switch s {
	case "operator":
		return Operator, nil
	case "admin":
		return Admin, nil
	case "superuser":
		return Superuser, nil
	default:
		return 0, errors.Errorf("unknown role %q", s)
	}
}
