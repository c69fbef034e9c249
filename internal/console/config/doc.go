// Package config loads runtime configuration for the OwnCent admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the authoritative store endpoint
//	-n string   tenant identifier sent with every request
//	-f string   path of the local credential database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "endpoint_url": "http://127.0.0.1:8080",
//	  "tenant_id": "tenant-demo",
//	  "local_db_path": "owncent-admin.db",
//	  "request_timeout": "30s"
//	}
package config
