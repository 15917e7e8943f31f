package arcgis

import (
	"strconv"
	"strings"
	"time"

	"ssoetl/internal/volume"
	"ssoetl/pkg/models"
)

// Record is one normalized feature from the layer. Typed fields are
// best-effort conversions; Raw preserves the full attribute map for
// consumers that need fields the schema does not model.
type Record struct {
	IncidentID     *string
	PermitNo       *string
	Permittee      *string
	County         *string
	Location       *string
	EventStart     *time.Time
	EventStop      *time.Time
	VolumeGallons  *float64
	EstVolumeRaw   string
	EstVolume      models.VolumeValue
	ReceivingWater *string
	Cause          *string
	X              *float64
	Y              *float64

	Raw map[string]any
}

// Normalize converts a raw attribute map into a Record. It never fails:
// missing or malformed attributes become nil fields.
func Normalize(attrs map[string]any) Record {
	rec := Record{
		IncidentID:     attrString(attrs, FieldIncidentID),
		PermitNo:       attrString(attrs, FieldPermitNo),
		Permittee:      attrString(attrs, FieldPermittee),
		County:         attrString(attrs, FieldCounty),
		Location:       attrString(attrs, "location_desc", FieldLocation),
		EventStart:     attrTime(attrs, FieldStartDate),
		EventStop:      attrTime(attrs, FieldEndDate),
		ReceivingWater: attrString(attrs, FieldReceivingWater, "waterbody"),
		Cause:          attrString(attrs, FieldCause),
		X:              attrFloat(attrs, "x"),
		Y:              attrFloat(attrs, "y"),
		Raw:            attrs,
	}

	if raw := attrString(attrs, FieldEstVolume); raw != nil {
		rec.EstVolumeRaw = *raw
	}
	rec.EstVolume = volume.Parse(rec.EstVolumeRaw)

	rec.VolumeGallons = attrFloat(attrs, FieldVolumeGallons)
	if rec.VolumeGallons == nil && rec.EstVolume.Reported {
		g := float64(rec.EstVolume.Gallons)
		rec.VolumeGallons = &g
	}

	return rec
}

// ToCandidate maps the layer record onto the pipeline's candidate shape so
// reconciliation and export treat both sources uniformly. Layer records carry
// no source document, so FileName stays empty and Source is none.
func (r *Record) ToCandidate() models.CandidateRecord {
	return models.CandidateRecord{
		IncidentID:        r.IncidentID,
		Permittee:         r.Permittee,
		EventStart:        r.EventStart,
		EventStop:         r.EventStop,
		VolumeRaw:         r.EstVolumeRaw,
		Volume:            r.EstVolume,
		ReceivingWaterRaw: r.ReceivingWater,
		Latitude:          r.Y,
		Longitude:         r.X,
		Cause:             r.Cause,
		Source:            models.TextSourceNone,
	}
}

func attrString(attrs map[string]any, keys ...string) *string {
	for _, key := range keys {
		v, ok := attrs[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			continue
		}
		if s != "" {
			return &s
		}
	}
	return nil
}

func attrFloat(attrs map[string]any, key string) *float64 {
	v, ok := attrs[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// attrTime reads the layer's date encodings: epoch milliseconds (the usual
// case), epoch seconds, or a handful of string layouts.
func attrTime(attrs map[string]any, key string) *time.Time {
	v, ok := attrs[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return epochTime(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochTime(f)
		}
		for _, layout := range []string{time.DateOnly, "2006-01-02 15:04:05", time.RFC3339} {
			if ts, err := time.Parse(layout, s); err == nil {
				return &ts
			}
		}
	}
	return nil
}

func epochTime(v float64) *time.Time {
	// Values this large are milliseconds, not seconds.
	if v > 10_000_000_000 {
		v /= 1000
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	ts := time.Unix(sec, nsec).UTC()
	return &ts
}
