package pin

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Comparison is one operator/version pair of a constraint, e.g. ">= 1.9.0".
type Comparison struct {
	Op      string `json:"op" yaml:"op"`
	Version string `json:"version" yaml:"version"`
}

func (c Comparison) String() string {
	return c.Op + " " + c.Version
}

// Constraint is a conjunction of comparisons.
type Constraint []Comparison

func (c Constraint) String() string {
	parts := make([]string, len(c))
	for i, cmp := range c {
		parts[i] = cmp.String()
	}
	return strings.Join(parts, ", ")
}

var operators = []string{">=", "<=", "!=", "==", ">", "<", "="}

// ParseConstraint parses a comma separated list of comparisons. A bare
// version means equality.
func ParseConstraint(s string) (Constraint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty constraint")
	}

	var out Constraint
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, fmt.Errorf("invalid constraint %q: empty clause", s)
		}

		op := "="
		for _, candidate := range operators {
			if strings.HasPrefix(raw, candidate) {
				op = candidate
				raw = strings.TrimSpace(strings.TrimPrefix(raw, candidate))
				break
			}
		}
		if op == "==" {
			op = "="
		}
		if _, err := canonical(raw); err != nil {
			return nil, fmt.Errorf("invalid constraint %q: %w", s, err)
		}
		out = append(out, Comparison{Op: op, Version: raw})
	}
	return out, nil
}

// Allows reports whether version satisfies every comparison.
func (c Constraint) Allows(version string) (bool, error) {
	v, err := canonical(version)
	if err != nil {
		return false, err
	}
	for _, cmp := range c {
		want, err := canonical(cmp.Version)
		if err != nil {
			return false, err
		}
		r := semver.Compare(v, want)
		var ok bool
		switch cmp.Op {
		case "=":
			ok = r == 0
		case "!=":
			ok = r != 0
		case ">":
			ok = r > 0
		case ">=":
			ok = r >= 0
		case "<":
			ok = r < 0
		case "<=":
			ok = r <= 0
		default:
			return false, fmt.Errorf("unknown operator %q", cmp.Op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// canonical converts a Maven style version ("1.9.22") to the "v"-prefixed
// form golang.org/x/mod/semver understands.
func canonical(version string) (string, error) {
	v := strings.TrimSpace(version)
	if v == "" {
		return "", fmt.Errorf("empty version")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version %q is not a semantic version", version)
	}
	return v, nil
}
