// Package models defines the record types shared across the SSO pipeline.
package models

import "time"

// TextSource records how a document's text was obtained.
type TextSource string

const (
	// TextSourceNative means the PDF carried a usable digital text layer.
	TextSourceNative TextSource = "native"

	// TextSourceRecognized means the text came from optical recognition.
	TextSourceRecognized TextSource = "recognized"

	// TextSourceNone means neither extraction path produced usable text.
	TextSourceNone TextSource = "none"
)

// VolumeValue is the normalized form of a report's estimated discharge volume.
//
// Reported distinguishes "the filer reported a volume" from "the field was
// absent or unparsable": an unknown volume is {Gallons: 0, Reported: false},
// which is not the same thing as a reported zero-gallon spill.
type VolumeValue struct {
	// Gallons is the numeric estimate. For bucketed ranges it is the upper
	// bound of the bucket; for the "range selected but no bounds captured"
	// case it is SentinelGallons.
	Gallons int64

	// IsRange is true when the filer selected a volume range rather than a
	// single value.
	IsRange bool

	// RangeLabel echoes the original bucket text, e.g. "10,000 - 25,000".
	// Nil for single values and unknown volumes.
	RangeLabel *string

	// Reported is false only when the volume field was absent or unparsable.
	Reported bool
}

// SentinelGallons marks reports where a volume range was selected on the form
// but no numeric bound survived data entry. Downstream totals must treat it as
// a caveat, not a measurement.
const SentinelGallons int64 = 9999

// CandidateRecord is the per-document extraction result. Every extractable
// field is independently optional; a nil pointer means the extraction rule
// found no match, never an inferred zero or false.
type CandidateRecord struct {
	// IncidentID is the filing system's assigned identifier (e.g. SSO-00212345).
	IncidentID *string

	// FileName identifies the source document and is always present.
	FileName string

	Permittee *string
	Facility  *string

	EventStart *time.Time
	EventStop  *time.Time

	// VolumeRaw is the verbatim volume text the extractor found; Volume is
	// its normalized form.
	VolumeRaw string
	Volume    VolumeValue

	ReceivingWaterRaw *string

	Latitude  *float64
	Longitude *float64

	Destination *string

	// Impact/response answers. Nil means the form token was missing or not a
	// recognized yes/no value.
	SwimmingWaterArea   *bool
	MonitoringPerformed *bool
	Cleaned             *bool
	Disinfected         *bool

	// Cause is the verbatim cause narrative; no semantic parsing is attempted.
	Cause *string

	// FooterTimestamp is the filing-system stamp from the page footers, used
	// to pick the newest copy among duplicate filings.
	FooterTimestamp *time.Time

	// Source records whether the text came from the native layer or OCR.
	Source TextSource
}

// DedupKey returns the incident id when present and non-empty, else the file
// name. Reconciliation groups candidates by this key.
func (r *CandidateRecord) DedupKey() string {
	if r.IncidentID != nil && *r.IncidentID != "" {
		return *r.IncidentID
	}
	return r.FileName
}

// FinalRecord is a CandidateRecord that survived reconciliation.
type FinalRecord struct {
	CandidateRecord

	// Key is unique across the FinalRecord set produced by one run.
	Key string

	// ReceivingWaterDisplay is the raw receiving-water name, suffixed with a
	// permittee tag when the same name is shared by distinct permittees.
	ReceivingWaterDisplay string
}

// PipelineCounts is the accumulator threaded through the run and surfaced in
// the QA summary. It is a value, not shared mutable state.
type PipelineCounts struct {
	DocumentsSeen        int
	DocumentsUnreadable  int
	OCRFallbacks         int
	RecognitionFailures  int
	DuplicatesSuperseded int
}
