// Package export serializes the final record set for downstream consumers:
// CSV (optionally gzip-compressed, decided by file extension) and XLSX.
package export

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"ssoetl/pkg/models"
)

// Column order of the CSV and XLSX outputs. When the raw receiving-water name
// is retained, it lands directly after the display column.
var fieldNames = []string{
	"sso_id",
	"permittee",
	"facility",
	"start",
	"stop",
	"volume",
	"volume_is_range",
	"volume_range_label",
	"receiving_water",
	"latitude",
	"longitude",
	"destination",
	"swimming_water",
	"monitoring",
	"cleaned",
	"disinfected",
	"cause",
	"file_name",
}

const rawWaterColumn = "receiving_water_raw"

// Header returns the column names, inserting the raw receiving-water column
// when keepRaw is set.
func Header(keepRaw bool) []string {
	if !keepRaw {
		return append([]string(nil), fieldNames...)
	}
	out := make([]string, 0, len(fieldNames)+1)
	for _, name := range fieldNames {
		out = append(out, name)
		if name == "receiving_water" {
			out = append(out, rawWaterColumn)
		}
	}
	return out
}

// Row renders one record in Header order. Absent fields render as empty
// strings, never as zero values.
func Row(r *models.FinalRecord, keepRaw bool) []string {
	out := make([]string, 0, len(fieldNames)+1)
	out = append(out,
		deref(r.IncidentID),
		deref(r.Permittee),
		deref(r.Facility),
		timeCell(r.EventStart),
		timeCell(r.EventStop),
		volumeCell(r.Volume),
		boolCell(isRangeCell(r.Volume)),
		deref(r.Volume.RangeLabel),
		r.ReceivingWaterDisplay,
	)
	if keepRaw {
		out = append(out, deref(r.ReceivingWaterRaw))
	}
	out = append(out,
		floatCell(r.Latitude),
		floatCell(r.Longitude),
		deref(r.Destination),
		boolCell(r.SwimmingWaterArea),
		boolCell(r.MonitoringPerformed),
		boolCell(r.Cleaned),
		boolCell(r.Disinfected),
		deref(r.Cause),
		r.FileName,
	)
	return out
}

// WriteCSV streams records as CSV to w.
func WriteCSV(records []models.FinalRecord, w io.Writer, keepRaw bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(keepRaw)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(Row(&records[i], keepRaw)); err != nil {
			return fmt.Errorf("write record %s: %w", records[i].Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, gzip-compressing when the path ends in
// ".gz".
func WriteCSVFile(records []models.FinalRecord, path string, keepRaw bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := WriteCSV(records, w, keepRaw); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("close gzip stream: %w", err)
		}
	}
	return f.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}

func volumeCell(v models.VolumeValue) string {
	if !v.Reported {
		return ""
	}
	return strconv.FormatInt(v.Gallons, 10)
}

func isRangeCell(v models.VolumeValue) *bool {
	if !v.Reported {
		return nil
	}
	return &v.IsRange
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func boolCell(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "Y"
	default:
		return "N"
	}
}
