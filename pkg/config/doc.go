// Package config provides configuration management for ragdoctor.
//
// Configuration is read from an optional YAML file (default ragdoctor.yaml),
// completed with defaults and overridden by RAGDOCTOR_* environment variables.
// This configures the tool itself; the deployment's env files that ragdoctor
// inspects are handled by the envcheck package.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file, when it exists
//  3. Environment variable overrides (RAGDOCTOR_SECTION_FIELD)
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All validation errors are collected and returned together:
//
//	configuration validation failed with 2 errors:
//	  - probe.targets[1].url: must be a valid http or https URL
//	  - history.driver: invalid driver "postgres" (must be: sqlite, sqlite3)
//
// # Example Configuration
//
//	env:
//	  files: [".env", "frontend/.env.local"]
//	  external_host: "rag.example.edu"
//
//	probe:
//	  default_timeout: 5s
//	  targets:
//	    - name: reranker
//	      url: http://localhost:8008/health
//	      info_url: http://localhost:8008/info
//	    - name: aprag
//	      url: http://localhost:8007/health
//	      timeout: 30s
//
//	logs:
//	  tail: 500
//	  watches:
//	    - container: reranker-service
//	      keywords: [reorder]
//
//	history:
//	  enabled: true
//	  path: /var/lib/ragdoctor/history.db
package config
