package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Coordinates appear after a single combined label, as either a decimal pair
//
//	Latitude/Longitude of discharge 30.5427, -87.6891
//
// or a degree-minute-second pair
//
//	Latitude/Longitude of discharge 30°32'33.7"N 87°41'20.8"W
//
// Both forms normalize to decimal degrees. A malformed or out-of-range pair
// yields no coordinates at all, never one half of a pair.
var (
	decimalPairRe = regexp.MustCompile(`(?i)Latitude/Longitude of discharge\s*(-?\d{1,3}(?:\.\d+)?)[,\s]+(-?\d{1,3}(?:\.\d+)?)`)

	dmsToken   = `(\d{1,3})\s*(?:°|º|deg)\s*(\d{1,2})\s*['’′]\s*(\d{1,2}(?:\.\d+)?)\s*(?:"|”|″)?\s*([NSEW])`
	dmsPairRe  = regexp.MustCompile(`(?i)Latitude/Longitude of discharge\s*` + dmsToken + `[,\s]+` + dmsToken)
	dmsSouthRe = regexp.MustCompile(`(?i)^[SW]$`)
)

func (d *Document) coordinates() (*float64, *float64) {
	if m := decimalPairRe.FindStringSubmatch(d.Text); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLon == nil && plausibleCoords(lat, lon) {
			return &lat, &lon
		}
		return nil, nil
	}

	if m := dmsPairRe.FindStringSubmatch(d.Text); m != nil {
		lat, okLat := dmsToDecimal(m[1], m[2], m[3], m[4])
		lon, okLon := dmsToDecimal(m[5], m[6], m[7], m[8])
		if okLat && okLon && plausibleCoords(lat, lon) {
			return &lat, &lon
		}
	}
	return nil, nil
}

func dmsToDecimal(deg, min, sec, hemisphere string) (float64, bool) {
	dv, err := strconv.ParseFloat(deg, 64)
	if err != nil {
		return 0, false
	}
	mv, err := strconv.ParseFloat(min, 64)
	if err != nil || mv >= 60 {
		return 0, false
	}
	sv, err := strconv.ParseFloat(sec, 64)
	if err != nil || sv >= 60 {
		return 0, false
	}
	v := dv + mv/60 + sv/3600
	if dmsSouthRe.MatchString(strings.ToUpper(hemisphere)) {
		v = -v
	}
	return v, true
}

func plausibleCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
