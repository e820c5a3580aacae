/*
Package proxy reads and rewrites the reverse proxy's upstream configuration.

hueshift treats the proxy as an external collaborator: a text configuration
file holding exactly one upstream port, plus a validate command and a reload
command. This package implements both halves of that contract: discovering
which port (and therefore which color) is live, and atomically moving the
upstream to the other port.

# Architecture

	┌──────────────── PROXY MANAGEMENT ────────────────┐
	│                                                    │
	│  ┌──────────────────────────────────┐            │
	│  │           File                    │            │
	│  │  - ActivePort / ActiveTarget     │            │
	│  │  - Switch(newPort)                │            │
	│  └───────────────┬──────────────────┘            │
	│                  │                                 │
	│  Switch sequence:                                 │
	│   1. read current bytes, keep them                │
	│   2. rewrite upstream port                        │
	│   3. write tmp + rename (atomic)                  │
	│   4. run validate command (nginx -t)              │
	│   5. run reload command (nginx -s reload)         │
	│   6. on 4/5 failure: restore original bytes       │
	│                                                    │
	└────────────────────────────────────────────────────┘

The recognized upstream forms are:

	proxy_pass http://127.0.0.1:3001;
	server 127.0.0.1:3001;        (inside an upstream block)

Multiple occurrences are allowed as long as they agree on one port; a config
mentioning two different recognized ports is rejected as ambiguous.

# Guarantees

  - The rewrite is atomic from the proxy's perspective: the new content
    appears via rename, never through partial writes.
  - Validation runs before the reload signal. If either fails, the file is
    restored byte-for-byte to its pre-attempt content and a ReloadError is
    returned. A failed Switch never leaves the file changed.
  - Reload is a signal ("nginx -s reload" or "systemctl reload nginx"),
    never a restart, so in-flight connections are not dropped.

# Errors

  - ParseError: the active port cannot be determined (file unreadable, no
    recognized upstream line, ambiguous ports, or a port outside the
    blue/green mapping).
  - ReloadError: validation or the reload signal failed; carries which step
    broke and the underlying command output.

# Usage

	f := proxy.New("/etc/nginx/conf.d/app.conf",
		[]string{"nginx", "-t"},
		[]string{"nginx", "-s", "reload"})

	active, candidate, err := f.ActiveTarget(types.DefaultPortMap(), "myapp")
	if err != nil {
		return err
	}
	if err := f.Switch(ctx, candidate.Port); err != nil {
		// config already restored; old instance still serving
		return err
	}
*/
package proxy
