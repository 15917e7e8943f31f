package extract

import (
	"regexp"
	"strings"
	"time"
)

var incidentIDRe = regexp.MustCompile(`(?i)(?:Assigned\s+)?SSO\s*ID\s*(SSO-\d+)`)

// incidentID finds the assigned incident identifier anywhere in the text.
func (d *Document) incidentID() *string {
	m := incidentIDRe.FindStringSubmatch(d.Text)
	if m == nil {
		return nil
	}
	id := m[1]
	return &id
}

// Lines that are form-provided hints rather than operator answers. A value
// line containing one of these is skipped, not returned.
var valuePlaceholders = []string{
	"creek or river",
	"drainage ditch",
	"storm drain",
	"provide",
	"n/a",
	"na",
}

// after returns the first plausible value line following the line that
// contains label. The scan stops at the next label-looking line (trailing
// colon) and skips blank and placeholder lines. nil when nothing usable
// follows within the window.
func (d *Document) after(label string) *string {
	labelLower := strings.ToLower(label)
	for i, ln := range d.Lines {
		if !strings.Contains(strings.ToLower(ln), labelLower) {
			continue
		}
		for _, next := range window(d.Lines, i+1, 9) {
			if next == "" {
				continue
			}
			if strings.HasSuffix(next, ":") {
				break
			}
			if containsPlaceholder(next) {
				continue
			}
			v := next
			return &v
		}
		break
	}
	return nil
}

func containsPlaceholder(line string) bool {
	low := strings.ToLower(line)
	for _, ph := range valuePlaceholders {
		if strings.Contains(low, ph) {
			return true
		}
	}
	return false
}

var permitteeLineRe = regexp.MustCompile(`(?i)^Permittee\s+(.{3,})$`)

// permittee handles both form layouts: a bare "Permittee" heading with the
// name on a following line, and the single-line "Permittee <name>" form.
func (d *Document) permittee() *string {
	for i, ln := range d.Lines {
		if !strings.EqualFold(ln, "permittee") {
			continue
		}
		for _, next := range window(d.Lines, i+1, 5) {
			if next != "" && !strings.Contains(strings.ToLower(next), "permit number") {
				v := next
				return &v
			}
		}
	}
	for _, ln := range d.Lines {
		if m := permitteeLineRe.FindStringSubmatch(ln); m != nil {
			v := strings.TrimSpace(m[1])
			return &v
		}
	}
	return nil
}

const (
	datePattern  = `(\d{1,2}/\d{1,2}/\d{4})`
	clockPattern = `(\d{1,2}:\d{2}\s*(?:AM|PM))`
)

// eventTime finds the first label variant followed, within a bounded window,
// by a date and a clock time. The window tolerates the value landing on a
// wrapped line or in an adjacent form column.
func (d *Document) eventTime(labelVariants ...string) *time.Time {
	for _, lbl := range labelVariants {
		re := regexp.MustCompile(
			`(?i)` + regexp.QuoteMeta(lbl) + `[\s\S]{0,250}?` + datePattern + `[^\d]{0,40}?` + clockPattern,
		)
		m := re.FindStringSubmatch(d.Text)
		if m == nil {
			continue
		}
		ts, err := parseEventTime(m[1], collapseSpaces(m[2]))
		if err != nil {
			continue
		}
		return &ts
	}
	return nil
}

var (
	volumeBucketRe     = regexp.MustCompile(`(?i)\d[\d,]*\s*<\s*gallons\s*<=\s*\d[\d,]*`)
	volumeNumberRe     = regexp.MustCompile(`\d[\d,]*`)
	volumeBareNumberRe = regexp.MustCompile(`^\d[\d,]*$`)
	volumeRangeOnlyRe  = regexp.MustCompile(`(?i)Estimated Volume Discharged[^\n]{0,80}?Range`)
)

// volumeRaw captures the volume answer verbatim so the normalizer can decide
// how to read it. In preference order: an explicit bucket expression, a number
// on or shortly after the "Estimated Volume Discharged" line, or the bare
// "Range" selection, which is carried as the 9999 sentinel. Long follow lines
// are prose, not answers, and are skipped.
func (d *Document) volumeRaw() string {
	if m := volumeBucketRe.FindString(d.Text); m != "" {
		return collapseSpaces(m)
	}
	for i, ln := range d.Lines {
		if !strings.Contains(strings.ToLower(ln), "estimated volume discharged") {
			continue
		}
		if m := volumeNumberRe.FindString(ln); m != "" {
			return m
		}
		for _, next := range window(d.Lines, i+1, 7) {
			if next == "" || len(next) > 25 {
				continue
			}
			if volumeBareNumberRe.MatchString(next) {
				return next
			}
		}
		break
	}
	if volumeRangeOnlyRe.MatchString(d.Text) {
		return "9999"
	}
	return ""
}

var (
	waterHelperRe      = regexp.MustCompile(`(?i)provide the first named creek or river that receives the flow`)
	waterPlaceholderRe = regexp.MustCompile(`(?i)^(creek|river|drainage ditch|storm drain|provide.*)$`)
	anyLetterRe        = regexp.MustCompile(`[A-Za-z]`)
)

// receivingWater names the waterbody that received the flow. Discharges that
// never reached water are folded into a single "Ground absorbed" value; the
// destination answer is the fallback when the waterbody prompt went
// unanswered.
func (d *Document) receivingWater(destination *string) *string {
	if destination != nil && strings.Contains(strings.ToLower(*destination), "ground absorbed") {
		v := "Ground absorbed"
		return &v
	}
	for i, ln := range d.Lines {
		if !waterHelperRe.MatchString(ln) {
			continue
		}
		for _, next := range window(d.Lines, i+1, 9) {
			if next == "" || waterPlaceholderRe.MatchString(next) {
				continue
			}
			if anyLetterRe.MatchString(next) {
				v := next
				return &v
			}
		}
		break
	}
	if destination != nil && strings.TrimSpace(*destination) != "" {
		return destination
	}
	return nil
}

// window returns up to n lines starting at index start.
func window(lines []string, start, n int) []string {
	if start >= len(lines) {
		return nil
	}
	end := start + n
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}
