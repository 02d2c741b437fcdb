// Package config loads runtime configuration for the betterimg client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-m string   store mode: "local" or "remote"
//	-d string   path of the local sqlite database
//	-r string   base URL of the hosted record service
//	-s string   HMAC secret for local session tokens
//	-t int      session token validity (minutes)
//	-g string   image-generation service base URL
//	-k string   image-generation API key
//	-v int      avatar generation timeout (seconds)
//	-p string   checkout API base URL
//	-u string   checkout API client id
//	-w string   checkout API secret
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "store_mode": "remote",
//	  "remote_endpoint_addr": "http://127.0.0.1:8090",
//	  "avatar_timeout": "30s"
//	}
//
// Note: This package does not read environment variables; use the JSON file
// or flags to configure values.
package config
