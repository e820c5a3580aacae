package types

import (
	"fmt"
	"time"
)

// Color identifies one of the two blue-green deployment slots.
type Color string

const (
	ColorBlue  Color = "blue"
	ColorGreen Color = "green"
)

// Valid reports whether c is one of the two recognized colors.
func (c Color) Valid() bool {
	return c == ColorBlue || c == ColorGreen
}

// Other returns the complementary color.
func (c Color) Other() Color {
	if c == ColorBlue {
		return ColorGreen
	}
	return ColorBlue
}

// PortMap is the fixed two-element mapping between colors and host ports.
// Exactly two ports exist; one of them is live behind the proxy at any time.
type PortMap struct {
	Blue  int
	Green int
}

// DefaultPortMap returns the conventional 3001=blue / 3002=green mapping.
func DefaultPortMap() PortMap {
	return PortMap{Blue: 3001, Green: 3002}
}

// Validate checks that both ports are set and distinct.
func (pm PortMap) Validate() error {
	if pm.Blue <= 0 || pm.Blue > 65535 {
		return fmt.Errorf("blue port %d out of range", pm.Blue)
	}
	if pm.Green <= 0 || pm.Green > 65535 {
		return fmt.Errorf("green port %d out of range", pm.Green)
	}
	if pm.Blue == pm.Green {
		return fmt.Errorf("blue and green ports must differ, both are %d", pm.Blue)
	}
	return nil
}

// PortOf returns the host port assigned to a color.
func (pm PortMap) PortOf(c Color) int {
	if c == ColorBlue {
		return pm.Blue
	}
	return pm.Green
}

// ColorOf returns the color assigned to a host port, if any.
func (pm PortMap) ColorOf(port int) (Color, bool) {
	switch port {
	case pm.Blue:
		return ColorBlue, true
	case pm.Green:
		return ColorGreen, true
	default:
		return "", false
	}
}

// Target binds a color to its host port and container name.
type Target struct {
	Color         Color
	Port          int
	ContainerName string
}

// NewTarget builds the target for a color using the given container name prefix.
func NewTarget(c Color, pm PortMap, prefix string) Target {
	return Target{
		Color:         c,
		Port:          pm.PortOf(c),
		ContainerName: fmt.Sprintf("%s-%s", prefix, c),
	}
}

// Stage represents the current phase of a deployment
type Stage string

const (
	StageIdle       Stage = "idle"
	StageLaunching  Stage = "launching"
	StageProbing    Stage = "probing"
	StageSwitching  Stage = "switching"
	StageReaping    Stage = "reaping"
	StageDone       Stage = "done"
	StageRolledBack Stage = "rolled-back"
)

// Terminal reports whether the stage ends a deployment.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageRolledBack
}

// Deployment records a single blue-green run. It exists only for the
// lifetime of the process; nothing here is persisted between invocations.
type Deployment struct {
	ID        string
	Image     string
	Active    Target // serving traffic when the run started
	Candidate Target // receives the new image
	Stage     Stage
	StartedAt time.Time
	EndedAt   time.Time
	Err       error
}

// Outcome returns a short label for metrics and logs.
func (d *Deployment) Outcome() string {
	switch d.Stage {
	case StageDone:
		return "success"
	case StageRolledBack:
		return "rolled-back"
	default:
		return "aborted"
	}
}

// HealthCheckType defines the type of readiness check
type HealthCheckType string

const (
	HealthCheckHTTP HealthCheckType = "http"
	HealthCheckTCP  HealthCheckType = "tcp"
)

// HealthCheck defines how the candidate instance is probed for readiness
type HealthCheck struct {
	Type        HealthCheckType // "http" or "tcp"
	Path        string          // For http type (e.g., "/healthz")
	Interval    time.Duration
	Timeout     time.Duration // Per-probe timeout
	StartPeriod time.Duration // Grace period before failures count
	StatusMin   int           // Lowest acceptable HTTP status
	StatusMax   int           // Highest acceptable HTTP status
}

// ContainerState is the observed runtime state of one slot's container,
// re-derived from the container runtime on every inspection.
type ContainerState struct {
	Target  Target
	Running bool
	Active  bool // true when the proxy currently points at this slot
}
