package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"number", Number(1.25), `1.25`},
		{"text", Text("Conservative"), `"Conservative"`},
		{"not applicable", NotApplicable(), `"N/A"`},
		{"reserved text", Text(NotApplicableText), `"N/A"`},
		{"infinite number", Number(math.Inf(1)), `"N/A"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got Value
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.v, got)
		})
	}
}

func TestTextReservesNotApplicable(t *testing.T) {
	v := Text(NotApplicableText)
	assert.True(t, v.IsNotApplicable())
	assert.False(t, v.IsText())
	assert.Equal(t, NotApplicable(), v)

	assert.True(t, Text("n/a").IsText(), "only the exact sentinel is reserved")
}

func TestValueUnmarshalRejectsObjects(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
}

func TestRatingCountsTotal(t *testing.T) {
	var c RatingCounts
	for _, r := range []Rating{RatingExcellent, RatingAcceptable, RatingAcceptable, RatingPoor} {
		c.Add(r)
	}
	assert.Equal(t, 4, c.Total())
	assert.Equal(t, 2, c.Acceptable)
}
