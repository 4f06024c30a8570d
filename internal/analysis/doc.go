// Package analysis runs the financial-statement analysis catalogue.
//
// The catalogue is data: every analysis is a Definition holding its identity,
// bilingual name, formula, unit, polarity, minimum history, benchmark key and a
// pure Compute function. Default returns the built-in catalogue of classical,
// applied and advanced analyses in tier order.
//
// Engine evaluates a selection of definitions over a company's statements,
// oldest period first:
//
//	engine := analysis.NewEngine(
//		analysis.WithLogger(logger),
//		analysis.WithProvider(benchmarks),
//	)
//	report, err := engine.Run(ctx, statements, company,
//		analysis.WithSelection(analysis.Selection{Categories: []string{"liquidity"}}),
//	)
//
// Each result is compared with its industry benchmark, rated, and enriched with
// interpretation, risks, forecasts, SWOT entries and strategic recommendations
// in the company's language. Summarize folds the results into an executive
// summary. A definition that fails never aborts a run; it yields a failed result.
package analysis
