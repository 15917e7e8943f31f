// Package extract applies a table of independent field rules to the acquired
// text of one SSO report and produces a CandidateRecord.
//
// Every rule is a best-effort pattern match over normalized text: a rule that
// finds nothing sets its field to nil and extraction continues. Rules never
// depend on each other's results, so fields can be added or removed without
// touching unrelated logic. The label wording drifts across form revisions;
// rules match on stable label fragments, not full lines.
package extract

import (
	"strings"
	"time"

	"ssoetl/internal/acquire"
	"ssoetl/pkg/models"
)

// Document is the normalized view of one report's text that the field rules
// match against: the raw concatenated text for window-based regex rules and
// whitespace-trimmed lines for label/next-line rules.
type Document struct {
	Text  string
	Lines []string
}

// NewDocument builds a Document from concatenated page text.
func NewDocument(text string) *Document {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, ln := range rawLines {
		lines[i] = collapseSpaces(strings.TrimSpace(ln))
	}
	return &Document{Text: text, Lines: lines}
}

// Record runs every field rule against the document and assembles the
// CandidateRecord for fileName. It never fails: missing fields stay nil.
func Record(text *acquire.ExtractedText, fileName string) models.CandidateRecord {
	doc := NewDocument(text.Text())

	destination := doc.after("Destination of discharge")

	rec := models.CandidateRecord{
		IncidentID: doc.incidentID(),
		FileName:   fileName,
		Permittee:  doc.permittee(),
		Facility:   doc.after("Facility Name"),
		EventStart: doc.eventTime(
			"Date/Time SSO Event Started",
			"Date / Time SSO Event Started",
			"Date - Time SSO Event Started",
		),
		EventStop: doc.eventTime(
			"Date/Time SSO Event Stopped",
			"Date / Time SSO Event Stopped",
			"Date - Time SSO Event Stopped",
		),
		VolumeRaw:           doc.volumeRaw(),
		ReceivingWaterRaw:   doc.receivingWater(destination),
		Destination:         destination,
		SwimmingWaterArea:   yesNo(doc.after("Did the discharge reach a designated swimming water")),
		MonitoringPerformed: yesNo(doc.after("Monitoring of the receiving water")),
		Cleaned:             yesNo(doc.after("Was the affected area cleaned")),
		Disinfected:         yesNo(doc.after("Was the affected area disinfected")),
		Cause:               doc.after("Known or suspected cause of the discharge"),
		FooterTimestamp:     text.FooterTimestamp,
		Source:              text.Source,
	}

	rec.Latitude, rec.Longitude = doc.coordinates()

	return rec
}

// yesNo maps an enumerated set of affirmative/negative tokens to a bool.
// Unknown tokens yield nil, never a default of false.
func yesNo(value *string) *bool {
	if value == nil {
		return nil
	}
	token := strings.ToLower(strings.TrimSpace(*value))
	if i := strings.IndexAny(token, " \t"); i > 0 {
		token = token[:i]
	}
	token = strings.TrimRight(token, ".,;:")

	var b bool
	switch token {
	case "yes", "y", "true":
		b = true
	case "no", "n", "false":
		b = false
	default:
		return nil
	}
	return &b
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const eventTimeLayout = "1/2/2006 3:04 PM"

func parseEventTime(date, clock string) (time.Time, error) {
	return time.Parse(eventTimeLayout, date+" "+strings.ToUpper(clock))
}
