// Package volume normalizes the free-form estimated-volume answer of a filing
// into a structured VolumeValue.
//
// The answer arrives in several shapes: a plain number, a checkbox bucket
// ("10,000 < gallons <= 25,000", frequently truncated by the form renderer),
// an ad-hoc two-number range, or a bare "Range" selection with no bounds at
// all. Normalization is lossy but consistent: ranges collapse to their upper
// bound with the original bucket echoed in the label, and the boundless range
// selection maps to a reserved sentinel so downstream totals can exclude it.
package volume

import (
	"regexp"
	"strconv"
	"strings"

	"ssoetl/internal/logger"
	"ssoetl/pkg/models"
)

// bucket is one checkbox option on the form, identified by a normalized
// prefix of its text. Prefix matching absorbs the truncation the form
// renderer applies to longer option labels.
type bucket struct {
	prefix string
	lower  int64
	upper  int64
}

// Ordered so that longer prefixes are tried before their shorter variants.
var buckets = []bucket{
	{"<=1,000", 0, 1_000},
	{"<=1000", 0, 1_000},
	{"<=1,0", 0, 1_000},
	{"1,000<gall", 1_000, 10_000},
	{"1000<gall", 1_000, 10_000},
	{"10,000<gall", 10_000, 25_000},
	{"10000<gall", 10_000, 25_000},
	{"25,000<gall", 25_000, 50_000},
	{"25000<gall", 25_000, 50_000},
	{"50,000<gall", 50_000, 75_000},
	{"50000<gall", 50_000, 75_000},
	{"75,000<gallo", 75_000, 100_000},
	{"75,000<gall", 75_000, 100_000},
	{"75000<gall", 75_000, 100_000},
	{"100,000<gall", 100_000, 250_000},
	{"100000<gall", 100_000, 250_000},
	{"250,000<gall", 250_000, 500_000},
	{"250000<gall", 250_000, 500_000},
	{"500,000<gall", 500_000, 750_000},
	{"500000<gall", 500_000, 750_000},
	{"750,000<gallo", 750_000, 1_000_000},
	{"750,000<gall", 750_000, 1_000_000},
	{"750000<gall", 750_000, 1_000_000},
}

var (
	plainNumberRe = regexp.MustCompile(`^[\d,\s]+$`)
	numberRe      = regexp.MustCompile(`\d[\d,]*`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// Parse turns the raw volume answer into a VolumeValue. It never fails: an
// empty or unrecognizable answer comes back as an explicit unknown, with
// Reported false, which is distinct from a genuine reported zero.
func Parse(raw string) models.VolumeValue {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.VolumeValue{}
	}

	// The bare "Range" checkbox with no recoverable bounds is carried as a
	// reserved sentinel, never as a measurement.
	if raw == strconv.FormatInt(models.SentinelGallons, 10) {
		return models.VolumeValue{
			Gallons:  models.SentinelGallons,
			IsRange:  true,
			Reported: true,
		}
	}

	if plainNumberRe.MatchString(raw) {
		n, err := strconv.ParseInt(stripSeparators(raw), 10, 64)
		if err == nil {
			return models.VolumeValue{Gallons: n, Reported: true}
		}
	}

	norm := strings.ToLower(spacesRe.ReplaceAllString(raw, ""))
	for _, b := range buckets {
		if strings.HasPrefix(norm, b.prefix) {
			return models.VolumeValue{
				Gallons:    b.upper,
				IsRange:    true,
				RangeLabel: strptr(bucketLabel(b.lower, &b.upper)),
				Reported:   true,
			}
		}
	}

	numbers := parseNumbers(raw)
	switch {
	case len(numbers) >= 2:
		// Free-text ranges echo the filer's own wording in the label.
		return models.VolumeValue{
			Gallons:    numbers[1],
			IsRange:    true,
			RangeLabel: strptr(raw),
			Reported:   true,
		}
	case len(numbers) == 1:
		return models.VolumeValue{
			Gallons:    numbers[0],
			IsRange:    true,
			RangeLabel: strptr(bucketLabel(numbers[0], nil)),
			Reported:   true,
		}
	}

	volLog := logger.WithComponent("volume")
	volLog.Warn().Str("raw", raw).Msg("unrecognized estimated volume format")
	return models.VolumeValue{}
}

func parseNumbers(raw string) []int64 {
	var out []int64
	for _, m := range numberRe.FindAllString(raw, -1) {
		n, err := strconv.ParseInt(stripSeparators(m), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return spacesRe.ReplaceAllString(s, "")
}

// bucketLabel renders the canonical label for a bound pair, e.g.
// "10,000 - 25,000", "0 - 1,000" or "≥ 5,000" when only a floor is known.
func bucketLabel(lower int64, upper *int64) string {
	if upper == nil {
		return "≥ " + groupThousands(lower)
	}
	return groupThousands(lower) + " - " + groupThousands(*upper)
}

// groupThousands formats n with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func strptr(s string) *string { return &s }
