package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xraph/weave"
)

// NameSet holds the allow-listed method names for each role.
type NameSet struct {
	Before  []string
	After   []string
	Finally []string
}

// DefaultNames returns the allow-lists of weave.DefaultConfig.
func DefaultNames() NameSet {
	return NamesFrom(weave.DefaultConfig())
}

// NamesFrom returns the allow-lists configured in cfg.
func NamesFrom(cfg weave.Config) NameSet {
	return NameSet{
		Before:  slices.Clone(cfg.BeforeNames),
		After:   slices.Clone(cfg.AfterNames),
		Finally: slices.Clone(cfg.FinallyNames),
	}
}

// For returns the allow-list for role.
func (n NameSet) For(role Role) []string {
	switch role {
	case RoleBefore:
		return n.Before
	case RoleAfter:
		return n.After
	case RoleFinally:
		return n.Finally
	default:
		return nil
	}
}

// Classify returns the methods that belong to role: those not ignored
// whose name is in allowed or whose marker is role. Order is preserved.
func Classify(methods []Method, allowed []string, role Role) []Method {
	var out []Method
	for _, m := range methods {
		if matches(m, allowed, role) {
			out = append(out, m)
		}
	}
	return out
}

func matches(m Method, allowed []string, role Role) bool {
	if m.Ignore {
		return false
	}
	if role != RoleNone && m.Marker == role {
		return true
	}
	return slices.Contains(allowed, m.Name)
}

// Classification is the partition of a middleware type's methods.
type Classification struct {
	Before  []Method
	After   []Method
	Finally []Method
}

// Len returns the number of classified methods across all roles.
func (c Classification) Len() int {
	return len(c.Before) + len(c.After) + len(c.Finally)
}

// ClassifyAll classifies methods into all three roles. It fails with an
// InvalidMiddlewareError naming owner when a method lands in more than
// one role.
func ClassifyAll(owner string, methods []Method, names NameSet) (Classification, error) {
	for _, m := range methods {
		var hits []string
		for _, role := range roles {
			if matches(m, names.For(role), role) {
				hits = append(hits, role.String())
			}
		}
		if len(hits) > 1 {
			return Classification{}, weave.NewInvalidMethod(owner, m.Name,
				fmt.Sprintf("classified into more than one lifecycle role (%s)", strings.Join(hits, ", ")))
		}
	}

	return Classification{
		Before:  Classify(methods, names.Before, RoleBefore),
		After:   Classify(methods, names.After, RoleAfter),
		Finally: Classify(methods, names.Finally, RoleFinally),
	}, nil
}
