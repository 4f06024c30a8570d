package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalytics/pkg/contracts/domain"
)

func TestDefaultCatalogLoadsBothLanguages(t *testing.T) {
	c := Default()
	assert.Equal(t, []domain.Language{domain.LanguageArabic, domain.LanguageEnglish}, c.Languages())
}

func TestLocalesHaveIdenticalKeys(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	en := c.Keys(domain.LanguageEnglish)
	ar := c.Keys(domain.LanguageArabic)
	assert.Equal(t, en, ar, "arabic and english locales must define the same keys")
	assert.Equal(t, len(c.List(domain.LanguageEnglish, "summary.recommendations")),
		len(c.List(domain.LanguageArabic, "summary.recommendations")))
}

func TestText(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		lang domain.Language
		key  string
		vars Vars
		want string
	}{
		{
			name: "english with vars",
			lang: domain.LanguageEnglish,
			key:  "swot.strength",
			vars: Vars{"name": "Current Ratio"},
			want: "Strong Current Ratio",
		},
		{
			name: "comparison placeholder",
			lang: domain.LanguageEnglish,
			key:  "comparison.above",
			vars: Vars{"diff": "37.7"},
			want: "above benchmark by 37.7%",
		},
		{
			name: "plain message",
			lang: domain.LanguageEnglish,
			key:  "rating.very_good",
			want: "Very good",
		},
		{
			name: "arabic message",
			lang: domain.LanguageArabic,
			key:  "rating.excellent",
			want: "ممتاز",
		},
		{
			name: "unknown language falls back to english",
			lang: domain.Language("fr"),
			key:  "rating.poor",
			want: "Poor",
		},
		{
			name: "missing key returns key",
			lang: domain.LanguageEnglish,
			key:  "does.not.exist",
			want: "does.not.exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Text(tt.lang, tt.key, tt.vars))
		})
	}
}

func TestTextLeavesUnknownPlaceholders(t *testing.T) {
	c := Default()
	got := c.Text(domain.LanguageEnglish, "interpretation.text", Vars{"name": "Altman Zone"})
	assert.True(t, strings.HasPrefix(got, "Altman Zone: "))
	assert.Contains(t, got, "{value}")
}

func TestParseFallsBackToEnglish(t *testing.T) {
	c, err := Parse(domain.LanguageEnglish, []byte("greeting:\n  hello: \"Hello {who}\"\nitems:\n  - a\n  - b\n"))
	require.NoError(t, err)

	assert.True(t, c.Has(domain.LanguageArabic, "greeting.hello"))
	assert.Equal(t, "Hello world", c.Text(domain.LanguageArabic, "greeting.hello", Vars{"who": "world"}))
	assert.Equal(t, []string{"a", "b"}, c.List(domain.LanguageArabic, "items"))
	assert.Empty(t, c.List(domain.LanguageEnglish, "missing"))
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse(domain.LanguageEnglish, []byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestListReturnsCopy(t *testing.T) {
	c := Default()
	first := c.List(domain.LanguageEnglish, "summary.recommendations")
	require.NotEmpty(t, first)
	first[0] = "mutated"
	assert.NotEqual(t, "mutated", c.List(domain.LanguageEnglish, "summary.recommendations")[0])
}
