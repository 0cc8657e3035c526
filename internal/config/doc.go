// Package config handles configuration loading for sparkdesk.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SPARKDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/sparkdesk/sparkdesk.yaml
//  3. ~/.config/sparkdesk/sparkdesk.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	telegram:
//	  token: "${TELEGRAM_BOT_TOKEN}"
//
// # Configuration Sections
//
// Transport:
//
//	telegram:
//	  token: "${TELEGRAM_BOT_TOKEN}"         # Required
//	  apply_form_url: "https://example.com/apply"
//
// Operator registration:
//
//	auth:
//	  operator_secret: "${SPARKDESK_OPERATOR_SECRET}"  # Required
//
// Thread table bounds:
//
//	threads:
//	  ttl: "72h"          # Go time.ParseDuration syntax
//	  max_entries: 4096
//
// Form prompt overrides (keys: name, organization, idea, timeline, contact):
//
//	form:
//	  prompts:
//	    idea: "What would you like to build with us?"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
