// Package config loads runtime configuration for the pdfier CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c/-config or $PDFIER_CONFIG.
//  3. PDFIER_* environment variables, with an optional .env file (see parseEnv).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-b string   backend base URL
//	-e string   environment (development|production)
//	-d string   local database path
//	-l int      guest daily operation limit
//	-v          verbose logging
//
// # JSON schema
//
//	{
//	  "backend_url": "https://api.pdfier.com",
//	  "environment": "production",
//	  "database_path": "/home/me/.pdfier/pdfier.db",
//	  "download_dir": "/home/me/Downloads",
//	  "access_token_ttl": "7h",
//	  "refresh_token_ttl": "2160h",
//	  "guest_daily_limit": 10,
//	  "log_format": "console"
//	}
package config
