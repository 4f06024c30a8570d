package domain

// Language selects the output language of generated text
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// BenchmarkType selects which benchmark table is used for comparisons
type BenchmarkType string

const (
	// BenchmarkSector compares against the company's sector table
	BenchmarkSector BenchmarkType = "sector"
	// BenchmarkGeneral ignores the sector and uses cross-industry values
	BenchmarkGeneral BenchmarkType = "general"
)

// CompanyInfo describes the company under analysis. Supplied once per run.
type CompanyInfo struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Sector        string        `json:"sector" validate:"max=100"`
	LegalForm     string        `json:"legalForm,omitempty" validate:"max=100"`
	Language      Language      `json:"language,omitempty" validate:"omitempty,oneof=en ar"`
	BenchmarkType BenchmarkType `json:"benchmarkType,omitempty" validate:"omitempty,oneof=sector general"`
}

// BenchmarkSectorKey returns the sector used for benchmark lookups
func (c CompanyInfo) BenchmarkSectorKey() string {
	if c.BenchmarkType == BenchmarkGeneral {
		return ""
	}
	return c.Sector
}

// Lang returns the requested language, defaulting to English
func (c CompanyInfo) Lang() Language {
	if c.Language == "" {
		return LanguageEnglish
	}
	return c.Language
}
