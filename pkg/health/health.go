package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hueshift/hueshift/pkg/types"
)

// CheckType represents the type of readiness check
type CheckType string

const (
	CheckTypeHTTP CheckType = "http"
	CheckTypeTCP  CheckType = "tcp"
)

// Result represents the outcome of a single readiness check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface all readiness checkers implement
type Checker interface {
	// Check performs one readiness check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of check
	Type() CheckType
}

// ForTarget builds the checker for a candidate listening on the given port,
// according to the deployfile's health section.
func ForTarget(hc types.HealthCheck, port int) Checker {
	switch hc.Type {
	case types.HealthCheckTCP:
		checker := NewTCPChecker(fmt.Sprintf("127.0.0.1:%d", port))
		if hc.Timeout > 0 {
			checker = checker.WithTimeout(hc.Timeout)
		}
		return checker
	default:
		checker := NewHTTPChecker(fmt.Sprintf("http://127.0.0.1:%d%s", port, hc.Path))
		if hc.Timeout > 0 {
			checker = checker.WithTimeout(hc.Timeout)
		}
		if hc.StatusMin > 0 && hc.StatusMax > 0 {
			checker = checker.WithStatusRange(hc.StatusMin, hc.StatusMax)
		}
		return checker
	}
}
