package report

import (
	"sort"
	"strings"
	"time"

	"ssoetl/pkg/models"
)

// VolumeSummary holds the basic distribution statistics of a volume set, in
// gallons. Mean, median and max are nil for an empty set.
type VolumeSummary struct {
	Count  int      `json:"count"`
	Total  int64    `json:"total_volume_gallons"`
	Mean   *float64 `json:"mean_volume_gallons"`
	Median *float64 `json:"median_volume_gallons"`
	Max    *int64   `json:"max_volume_gallons"`
}

// GroupVolumeSummary is a VolumeSummary for one grouping key (a permittee, a
// month, a waterbody).
type GroupVolumeSummary struct {
	GroupKey string `json:"group_key"`
	VolumeSummary
}

// DateSeriesPoint is one day of the spill time series.
type DateSeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Total int64  `json:"total_volume_gallons"`
}

// usableVolume returns the gallons figure that may participate in totals, or
// false when the record carries no usable measurement. Unreported volumes and
// the range-selected sentinel are excluded rather than silently summed.
func usableVolume(r *models.FinalRecord) (int64, bool) {
	if !r.Volume.Reported || r.Volume.Gallons < 0 {
		return 0, false
	}
	if isSentinel(r.Volume) {
		return 0, false
	}
	return r.Volume.Gallons, true
}

func volumeStats(volumes []int64) VolumeSummary {
	if len(volumes) == 0 {
		return VolumeSummary{}
	}
	sorted := make([]int64, len(volumes))
	copy(sorted, volumes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total int64
	for _, v := range sorted {
		total += v
	}
	mean := float64(total) / float64(len(sorted))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		median = float64(sorted[mid])
	}
	max := sorted[len(sorted)-1]

	return VolumeSummary{
		Count:  len(sorted),
		Total:  total,
		Mean:   &mean,
		Median: &median,
		Max:    &max,
	}
}

// OverallVolume summarizes every record with a usable volume.
func OverallVolume(records []models.FinalRecord) VolumeSummary {
	var volumes []int64
	for i := range records {
		if v, ok := usableVolume(&records[i]); ok {
			volumes = append(volumes, v)
		}
	}
	return volumeStats(volumes)
}

func groupSummaries(groups map[string][]int64) []GroupVolumeSummary {
	out := make([]GroupVolumeSummary, 0, len(groups))
	for key, volumes := range groups {
		out = append(out, GroupVolumeSummary{GroupKey: key, VolumeSummary: volumeStats(volumes)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return strings.ToLower(out[i].GroupKey) < strings.ToLower(out[j].GroupKey)
	})
	return out
}

// VolumeByPermittee groups usable volumes by permittee, largest total first.
func VolumeByPermittee(records []models.FinalRecord) []GroupVolumeSummary {
	groups := make(map[string][]int64)
	for i := range records {
		r := &records[i]
		v, ok := usableVolume(r)
		if !ok || r.Permittee == nil || *r.Permittee == "" {
			continue
		}
		groups[*r.Permittee] = append(groups[*r.Permittee], v)
	}
	return groupSummaries(groups)
}

// VolumeByMonth groups usable volumes by the event-start month ("2025-03").
func VolumeByMonth(records []models.FinalRecord) []GroupVolumeSummary {
	groups := make(map[string][]int64)
	for i := range records {
		r := &records[i]
		v, ok := usableVolume(r)
		if !ok || r.EventStart == nil {
			continue
		}
		key := r.EventStart.Format("2006-01")
		groups[key] = append(groups[key], v)
	}
	return groupSummaries(groups)
}

// VolumeByWater groups usable volumes by disambiguated receiving-water name,
// so two utilities' identically named creeks stay separate series.
func VolumeByWater(records []models.FinalRecord) []GroupVolumeSummary {
	groups := make(map[string][]int64)
	for i := range records {
		r := &records[i]
		v, ok := usableVolume(r)
		if !ok || r.ReceivingWaterDisplay == "" {
			continue
		}
		groups[r.ReceivingWaterDisplay] = append(groups[r.ReceivingWaterDisplay], v)
	}
	return groupSummaries(groups)
}

// TimeSeriesByDate buckets records by event-start day, in ascending date
// order. Records without a start date are omitted; records without a usable
// volume still count toward the day's spill count.
func TimeSeriesByDate(records []models.FinalRecord) []DateSeriesPoint {
	type bucket struct {
		count int
		total int64
	}
	buckets := make(map[string]*bucket)
	for i := range records {
		r := &records[i]
		if r.EventStart == nil {
			continue
		}
		key := r.EventStart.Format(time.DateOnly)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		if v, ok := usableVolume(r); ok {
			b.total += v
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]DateSeriesPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, DateSeriesPoint{Date: k, Count: buckets[k].count, Total: buckets[k].total})
	}
	return points
}

// TopSpills returns the n largest usable spills, ties broken by key then
// permittee so the order is stable across runs.
func TopSpills(records []models.FinalRecord, n int) []models.FinalRecord {
	var usable []models.FinalRecord
	for i := range records {
		if _, ok := usableVolume(&records[i]); ok {
			usable = append(usable, records[i])
		}
	}
	sort.Slice(usable, func(i, j int) bool {
		if usable[i].Volume.Gallons != usable[j].Volume.Gallons {
			return usable[i].Volume.Gallons > usable[j].Volume.Gallons
		}
		if usable[i].Key != usable[j].Key {
			return usable[i].Key < usable[j].Key
		}
		return permitteeOrEmpty(&usable[i]) < permitteeOrEmpty(&usable[j])
	})
	if n > 0 && len(usable) > n {
		usable = usable[:n]
	}
	return usable
}

func permitteeOrEmpty(r *models.FinalRecord) string {
	if r.Permittee == nil {
		return ""
	}
	return *r.Permittee
}
