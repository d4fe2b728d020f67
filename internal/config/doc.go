// Package config handles configuration loading for gatehouse.
//
// # Overview
//
// Two documents configure the portal:
//
//   - The server config (YAML): listen address, optional Tailscale node,
//     session cookie settings, logging, and where to find the endpoint
//     document.
//   - The endpoint document (JSON, usually dist/config.json): the auth
//     backend base URL, the database proxy WebSocket URL, and the hub's
//     outbound link. It is loaded once at startup and never mutated.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from GATEHOUSE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/gatehouse/portal.yaml
//  3. ~/.config/gatehouse/portal.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	client:
//	  endpoints: "${GATEHOUSE_ENDPOINTS}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
//	tailscale:
//	  enabled: false
//	  hostname: "gatehouse"
//	  https: true
//
//	client:
//	  endpoints: "dist/config.json"   # or https://static.example.com/config.json
//	  request_timeout: "10s"          # unset means no timeout
//
//	session:
//	  lifetime: "24h"
//	  secure: false
//
//	ui:
//	  hub_notice: "notice.md"
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text or json
//
// # Endpoint Document
//
//	{
//	  "AUTH_BASE_URL": "https://auth.example.com",
//	  "DATABASE_PROXY_URL": "wss://db.example.com/db",
//	  "HANGMAN_URL": "https://hangman.example.com"
//	}
//
// AUTH_ENDPOINT, TOKEN_ENDPOINT and LOGOUT_ENDPOINT may override the paths
// derived from AUTH_BASE_URL. Any other key is rejected.
package config
