package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssoetl/pkg/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		gallons int64
		isRange bool
		label   string
	}{
		{"25,000", 25_000, false, ""},
		{"850", 850, false, ""},
		{"0", 0, false, ""},
		{"<=1,0", 1_000, true, "0 - 1,000"},
		{"1,000 < gall", 10_000, true, "1,000 - 10,000"},
		{"10,000 < gall", 25_000, true, "10,000 - 25,000"},
		{"10,000 < gallons <= 25,000", 25_000, true, "10,000 - 25,000"},
		{"250,000 < gall", 500_000, true, "250,000 - 500,000"},
		{"500,000 < gall", 750_000, true, "500,000 - 750,000"},
		{"750,000 < gallo", 1_000_000, true, "750,000 - 1,000,000"},
		{"1,000,000 < gall", 1_000_000, true, "≥ 1,000,000"},
		{"2,500 to 7,500 gallons", 7_500, true, "2,500 to 7,500 gallons"},
		{"10,000 - 50,000 gallons", 50_000, true, "10,000 - 50,000 gallons"},
		{"about 5,000 gallons", 5_000, true, "≥ 5,000"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.gallons, got.Gallons)
			assert.Equal(t, tt.isRange, got.IsRange)
			assert.True(t, got.Reported)
			if tt.label == "" {
				assert.Nil(t, got.RangeLabel)
			} else {
				require.NotNil(t, got.RangeLabel)
				assert.Equal(t, tt.label, *got.RangeLabel)
			}
		})
	}
}

func TestParseUnknownIsNotZeroReported(t *testing.T) {
	for _, raw := range []string{"", "   ", "unknown amount, see notes"} {
		got := Parse(raw)
		assert.False(t, got.Reported, "raw %q", raw)
		assert.Zero(t, got.Gallons)
		assert.False(t, got.IsRange)
		assert.Nil(t, got.RangeLabel)
	}
}

func TestParseSentinel(t *testing.T) {
	got := Parse("9999")
	assert.Equal(t, models.SentinelGallons, got.Gallons)
	assert.True(t, got.IsRange)
	assert.True(t, got.Reported)
	assert.Nil(t, got.RangeLabel)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1_000))
	assert.Equal(t, "25,000", groupThousands(25_000))
	assert.Equal(t, "1,000,000", groupThousands(1_000_000))
}
