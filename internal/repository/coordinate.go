package repository

import (
	"fmt"
	"strings"
)

// Coordinate identifies a Maven artifact.
type Coordinate struct {
	Group    string `json:"group" yaml:"group"`
	Artifact string `json:"artifact" yaml:"artifact"`
	Version  string `json:"version" yaml:"version"`
}

// ParseCoordinate parses "group:artifact:version".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:artifact:version", s)
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if c.Group == "" || c.Artifact == "" || c.Version == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty segment", s)
	}
	return c, nil
}

// Module returns "group:artifact".
func (c Coordinate) Module() string {
	return c.Group + ":" + c.Artifact
}

func (c Coordinate) String() string {
	return c.Module() + ":" + c.Version
}

// POMPath is the repository-relative location of the artifact's POM in the
// Maven layout.
func (c Coordinate) POMPath() string {
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" +
		c.Artifact + "-" + c.Version + ".pom"
}
