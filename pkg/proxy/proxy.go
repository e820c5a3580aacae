package proxy

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/hueshift/hueshift/pkg/log"
	"github.com/hueshift/hueshift/pkg/types"
)

// upstreamPattern matches the single upstream port reference in the managed
// nginx config. Both forms are recognized:
//
//	proxy_pass http://127.0.0.1:3001;
//	server 127.0.0.1:3001;
var upstreamPattern = regexp.MustCompile(`(?m)((?:proxy_pass\s+https?://|server\s+)(?:127\.0\.0\.1|localhost):)(\d+)`)

// ParseError indicates the active port could not be determined from the
// proxy configuration.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot determine active port from %s: %s", e.Path, e.Reason)
}

// ReloadError indicates the rewritten configuration was rejected, either by
// syntax validation or by the reload signal. The config file has already
// been restored to its prior content when this error is returned.
type ReloadError struct {
	Step string // "validate" or "reload"
	Err  error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("proxy %s failed: %v", e.Step, e.Err)
}

func (e *ReloadError) Unwrap() error { return e.Err }

// File manages the single proxy configuration file holding the live
// upstream port. It is the tool's only mutable external text resource.
type File struct {
	path        string
	validateCmd []string
	reloadCmd   []string
	runner      CommandRunner
}

// New creates a File for the given config path. validateCmd may be empty to
// skip syntax validation; reloadCmd must signal the proxy to reload without
// dropping in-flight connections.
func New(path string, validateCmd, reloadCmd []string) *File {
	return &File{
		path:        path,
		validateCmd: validateCmd,
		reloadCmd:   reloadCmd,
		runner:      ExecRunner{},
	}
}

// WithRunner replaces the command runner. Used by tests.
func (f *File) WithRunner(r CommandRunner) *File {
	f.runner = r
	return f
}

// Path returns the managed config file path.
func (f *File) Path() string { return f.path }

// ActivePort reads the config and extracts the currently configured
// upstream port. Exactly one distinct port must be present.
func (f *File) ActivePort() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, &ParseError{Path: f.path, Reason: err.Error()}
	}
	return extractPort(f.path, data)
}

// ActiveTarget resolves the active port against the port map and returns
// the active and candidate targets.
func (f *File) ActiveTarget(pm types.PortMap, prefix string) (active, candidate types.Target, err error) {
	port, err := f.ActivePort()
	if err != nil {
		return types.Target{}, types.Target{}, err
	}

	color, ok := pm.ColorOf(port)
	if !ok {
		return types.Target{}, types.Target{}, &ParseError{
			Path:   f.path,
			Reason: fmt.Sprintf("upstream port %d is neither blue (%d) nor green (%d)", port, pm.Blue, pm.Green),
		}
	}

	active = types.NewTarget(color, pm, prefix)
	candidate = types.NewTarget(color.Other(), pm, prefix)
	return active, candidate, nil
}

// Switch rewrites the upstream port to newPort, validates the result, and
// signals the proxy to reload. On any failure the file is restored
// byte-for-byte to its pre-attempt content and a ReloadError is returned.
func (f *File) Switch(ctx context.Context, newPort int) error {
	original, err := os.ReadFile(f.path)
	if err != nil {
		return &ParseError{Path: f.path, Reason: err.Error()}
	}

	current, err := extractPort(f.path, original)
	if err != nil {
		return err
	}
	if current == newPort {
		return &ParseError{Path: f.path, Reason: fmt.Sprintf("upstream already points at %d", newPort)}
	}

	mode := os.FileMode(0644)
	if fi, statErr := os.Stat(f.path); statErr == nil {
		mode = fi.Mode()
	}

	rewritten := upstreamPattern.ReplaceAll(original, []byte("${1}"+strconv.Itoa(newPort)))
	if err := atomicWrite(f.path, rewritten, mode); err != nil {
		return &ReloadError{Step: "write", Err: err}
	}

	logger := log.WithComponent("proxy")
	logger.Info().Int("from", current).Int("to", newPort).Msg("upstream rewritten")

	if len(f.validateCmd) > 0 {
		if _, err := f.runner.Run(ctx, f.validateCmd); err != nil {
			f.restore(original, mode)
			return &ReloadError{Step: "validate", Err: err}
		}
	}

	if _, err := f.runner.Run(ctx, f.reloadCmd); err != nil {
		f.restore(original, mode)
		return &ReloadError{Step: "reload", Err: err}
	}

	logger.Info().Int("port", newPort).Msg("proxy reloaded")
	return nil
}

func (f *File) restore(original []byte, mode os.FileMode) {
	if err := atomicWrite(f.path, original, mode); err != nil {
		// The rename either happened or it did not; a failed restore means
		// the filesystem itself is broken, which we can only report.
		logger := log.WithComponent("proxy")
		logger.Error().Err(err).Msg("failed to restore proxy config")
	}
}

// extractPort finds the single upstream port in the config bytes.
func extractPort(path string, data []byte) (int, error) {
	matches := upstreamPattern.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return 0, &ParseError{Path: path, Reason: "no upstream port pattern found"}
	}

	port := 0
	for _, m := range matches {
		p, err := strconv.Atoi(string(m[2]))
		if err != nil {
			return 0, &ParseError{Path: path, Reason: fmt.Sprintf("bad port %q", m[2])}
		}
		if port != 0 && p != port {
			return 0, &ParseError{Path: path, Reason: fmt.Sprintf("ambiguous upstream ports %d and %d", port, p)}
		}
		port = p
	}
	return port, nil
}

// atomicWrite writes data to a sibling temp file and renames it into place
// so the proxy never observes a half-written config.
func atomicWrite(path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
