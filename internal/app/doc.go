// Package app wires the analysis service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Build the benchmark provider (static tables, Postgres, or both)
//	4. Build the engine, report store and services
//	5. Set up middleware and HTTP handlers
//	6. Start the HTTP server and the system metrics collector
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
