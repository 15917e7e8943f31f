// Package report aggregates a run's final records into the QA/completeness
// summary and supporting volume analytics. Everything here is pure
// aggregation over already-finalized data: it never fails and never mutates
// its input. The output is for human spot-checking, not for gating the run.
package report

import (
	"fmt"
	"io"

	"ssoetl/pkg/models"
)

// Summary is the per-run completeness report.
type Summary struct {
	DocumentsSeen       int `json:"documents_seen"`
	DocumentsUnreadable int `json:"documents_unreadable"`
	RecordsEmitted      int `json:"records_emitted"`

	OCRFallbacks         int `json:"ocr_fallbacks"`
	RecognitionFailures  int `json:"recognition_failures"`
	DuplicatesSuperseded int `json:"duplicates_superseded"`

	// Critical-field gaps across the emitted records.
	MissingIncidentID int `json:"missing_incident_id"`
	MissingEventStart int `json:"missing_event_start"`
	MissingVolume     int `json:"missing_volume"`

	// SentinelVolumes counts records carrying the range-selected sentinel,
	// which downstream totals exclude.
	SentinelVolumes int `json:"sentinel_volumes"`
}

// BuildSummary folds the final record set and the run counters into a Summary.
func BuildSummary(records []models.FinalRecord, counts models.PipelineCounts) Summary {
	s := Summary{
		DocumentsSeen:        counts.DocumentsSeen,
		DocumentsUnreadable:  counts.DocumentsUnreadable,
		RecordsEmitted:       len(records),
		OCRFallbacks:         counts.OCRFallbacks,
		RecognitionFailures:  counts.RecognitionFailures,
		DuplicatesSuperseded: counts.DuplicatesSuperseded,
	}
	for i := range records {
		r := &records[i]
		if r.IncidentID == nil || *r.IncidentID == "" {
			s.MissingIncidentID++
		}
		if r.EventStart == nil {
			s.MissingEventStart++
		}
		if !r.Volume.Reported {
			s.MissingVolume++
		}
		if isSentinel(r.Volume) {
			s.SentinelVolumes++
		}
	}
	return s
}

// Write renders the summary as a small fixed-width console block.
func (s Summary) Write(w io.Writer) error {
	rows := []struct {
		label string
		value int
	}{
		{"documents seen", s.DocumentsSeen},
		{"documents unreadable", s.DocumentsUnreadable},
		{"records emitted", s.RecordsEmitted},
		{"ocr fallbacks", s.OCRFallbacks},
		{"recognition failures", s.RecognitionFailures},
		{"duplicates superseded", s.DuplicatesSuperseded},
		{"missing incident id", s.MissingIncidentID},
		{"missing event start", s.MissingEventStart},
		{"missing volume", s.MissingVolume},
		{"sentinel volumes", s.SentinelVolumes},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-24s %d\n", row.label, row.value); err != nil {
			return err
		}
	}
	return nil
}

func isSentinel(v models.VolumeValue) bool {
	return v.Reported && v.IsRange && v.Gallons == models.SentinelGallons
}
