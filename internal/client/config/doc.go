// Package config loads runtime configuration for the vault CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   address:port of the gRPC endpoint
//	-t string   transport: grpc or http
//	-u string   base URL of the REST API
//	-r int      request timeout (seconds)
//	-k int      PBKDF2 iterations
//	-l string   log level: debug, info, warn, error
//
// The JSON file accepts durations as "3s" strings or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "transport": "grpc",
//	  "request_timeout": "10s",
//	  "vault_debounce": "2s",
//	  "cards_min_interval": "5s"
//	}
package config
