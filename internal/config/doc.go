// Package config provides centralized configuration management for finanalytics.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (FINA_CONFIG_FILE, or finanalytics.yaml / configs/finanalytics.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FINA_<SECTION>_<KEY>:
//
//	FINA_SERVER_PORT=8080
//	FINA_LOGGING_LEVEL=debug
//	FINA_ENGINE_WORKERS=4
//	FINA_VALUATION_DISCOUNT_RATE=0.14
//	FINA_BENCHMARKS_SOURCE=chain
//	FINA_BENCHMARKS_DATABASE_URL=postgres://...
//
// The command-line programs also read a .env file before loading.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths := cfg.ResolvedPaths()
//
// Tests use config.Default(), which needs no environment or files.
package config
