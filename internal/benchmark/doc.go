// Package benchmark supplies the industry reference values analyses are rated against.
//
// A Provider answers one key at a time; providers that can answer many keys in one
// round trip also implement BatchProvider. Three implementations exist:
//
// Static: generic baselines from the analysis catalogue with per-sector values and
// multipliers loaded from YAML.
//
// Postgres: the industry_benchmarks table, read with one query per run.
//
// Chain: asks providers in order so a database can be backed by the static table.
//
// Resolve memoizes every key a run needs into a read-only Table before any analysis
// is rated, so a run never calls a provider twice for the same key.
package benchmark
