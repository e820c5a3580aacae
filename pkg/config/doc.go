/*
Package config loads and validates the hueshift deployfile.

A deployfile is a small YAML document describing the one deployment target a
host carries: where the proxy config lives, which container runtime to use,
the blue/green port pair, how the candidate is probed, and per-run limits.
Every field has a default; a minimal deployfile sets only the proxy path and
the container name prefix.

# Deployfile Format

	proxy:
	  config_path: /etc/nginx/conf.d/myapp.conf
	  validate_cmd: ["nginx", "-t"]
	  reload_cmd: ["nginx", "-s", "reload"]
	runtime:
	  kind: docker              # or "containerd"
	  env: ["NODE_ENV=production"]
	ports:
	  blue: 3001
	  green: 3002
	container:
	  name_prefix: myapp        # containers are myapp-blue / myapp-green
	  image: registry.example.com/myapp:latest
	health:
	  type: http                # or "tcp"
	  path: /healthz
	  interval: 2s
	  timeout: 5s
	  start_period: 10s
	deploy:
	  timeout: 2m
	  lock_dir: /tmp

# Usage

	cfg, err := config.Load("deploy.yaml")
	if err != nil {
		return err
	}
	pm := cfg.PortMap()
	hc := cfg.HealthCheck()

Load merges the file over Default() and then validates, so callers never see
a partially-defaulted config. Validation failures name the offending field.

# Integration Points

  - cmd/hueshift loads the deployfile once per invocation
  - pkg/deploy consumes the derived PortMap and HealthCheck
  - pkg/proxy uses ProxyConfig verbatim
*/
package config
