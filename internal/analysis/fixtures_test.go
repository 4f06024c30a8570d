package analysis

import (
	"io"
	"log/slog"
	"time"

	"finanalytics/internal/shared/testutil"
	"finanalytics/pkg/contracts/domain"
)

var fixedDate = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(opts ...Option) *Engine {
	base := []Option{
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return fixedDate }),
	}
	return NewEngine(append(base, opts...)...)
}

func testCompany() domain.CompanyInfo {
	return testutil.Company()
}

func statement(year int, g float64) domain.FinancialStatement {
	return testutil.Statement(year, g)
}

func sampleStatements() []domain.FinancialStatement {
	return testutil.Statements()
}
