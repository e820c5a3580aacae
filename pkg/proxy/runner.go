package proxy

import (
	"context"
	"fmt"
	"os/exec"

	"al.essio.dev/pkg/shellescape"

	"github.com/hueshift/hueshift/pkg/log"
)

// CommandRunner executes an external command and returns its combined output.
// It exists so tests can observe and fake the nginx invocations.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run executes argv[0] with the remaining arguments.
func (ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	logger := log.WithComponent("proxy")
	logger.Debug().Str("cmd", shellescape.QuoteCommand(argv)).Msg("running command")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", argv[0], err, string(out))
	}
	return out, nil
}
